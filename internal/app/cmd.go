package app

import (
	"fmt"
	"io"
	"strings"
)

// Command はpulseの起動モード（サブコマンド）。
type Command string

const (
	CommandServe       Command = "serve"
	CommandWorker      Command = "worker"
	CommandMigrate     Command = "migrate"
	CommandHealthcheck Command = "healthcheck"
	CommandHelp        Command = "help"
)

// commands はヘルプに表示する順序でサブコマンドを並べたもの。
var commands = []struct {
	cmd  Command
	desc string
}{
	{CommandServe, "start the HTTP API (default)"},
	{CommandWorker, "purge expired sessions periodically"},
	{CommandMigrate, "apply database migrations and exit"},
	{CommandHealthcheck, "probe GET /health on SERVER_PORT (for container health checks)"},
	{CommandHelp, "show this help"},
}

// ParseCommand は引数の先頭からサブコマンドを決める。
// 引数が無い場合はserve。未知のサブコマンドはエラーにする。
// 2番目以降の引数は無視する。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 || args[0] == "" {
		return CommandServe, nil
	}

	name := strings.ToLower(args[0])
	switch name {
	case "-h", "--help":
		return CommandHelp, nil
	}
	for _, c := range commands {
		if string(c.cmd) == name {
			return c.cmd, nil
		}
	}
	return "", fmt.Errorf("unknown command %q (run 'pulse help')", args[0])
}

// PrintUsage はサブコマンドの一覧を書き出す。
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: pulse [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.cmd, c.desc)
	}
}
