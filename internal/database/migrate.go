package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationStatus は適用済みスキーマのバージョン。
// Versionが0の場合はマイグレーション未適用。
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// migrateLogger はgolang-migrateのログをslogへ流すアダプタ。
type migrateLogger struct {
	logger *slog.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)), slog.String("component", "migrate"))
}

func (l migrateLogger) Verbose() bool {
	return false
}

var _ migrate.Logger = migrateLogger{}

// NewMigrator は埋め込みSQLを読み込んだmigrateインスタンスを生成する。
func NewMigrator(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}
	m.Log = migrateLogger{logger: slog.Default()}

	return m, nil
}

// RunMigrations は未適用のマイグレーションをすべて適用する。
// すでに最新の場合は何もしない。
func RunMigrations(databaseURL string) error {
	_, err := Migrate(databaseURL, slog.Default())
	return err
}

// Migrate はマイグレーションを適用し、適用後のバージョンを返す。
// 前回の適用が途中で失敗していた（dirty）場合は適用せずにエラーを返す。
func Migrate(databaseURL string, logger *slog.Logger) (MigrationStatus, error) {
	if logger == nil {
		logger = slog.Default()
	}

	m, err := NewMigrator(databaseURL)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()

	before, err := status(m)
	if err != nil {
		return MigrationStatus{}, err
	}
	if before.Dirty {
		return before, fmt.Errorf("database schema is dirty at version %d; fix it manually before migrating", before.Version)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return MigrationStatus{}, fmt.Errorf("failed to run migrations: %w", err)
	}

	after, err := status(m)
	if err != nil {
		return MigrationStatus{}, err
	}

	logger.Info("database schema is up to date",
		slog.Int("from_version", int(before.Version)),
		slog.Int("to_version", int(after.Version)),
	)
	return after, nil
}

// Status は現在のスキーマバージョンを返す。
func Status(databaseURL string) (MigrationStatus, error) {
	m, err := NewMigrator(databaseURL)
	if err != nil {
		return MigrationStatus{}, err
	}
	defer m.Close()

	return status(m)
}

func status(m *migrate.Migrate) (MigrationStatus, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to read schema version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}
