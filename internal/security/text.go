package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer は外部から取得したテキストをプレーンテキストに整える。
// bluemondayのStrictPolicyで全てのタグを除去する。
type TextSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はTextSanitizerを生成する。
func NewTextSanitizer() *TextSanitizer {
	return &TextSanitizer{policy: bluemonday.StrictPolicy()}
}

// Text はHTMLタグを除去し、文字参照を戻し、連続する空白を1つにまとめる。
func (s *TextSanitizer) Text(raw string) string {
	if raw == "" {
		return ""
	}
	stripped := html.UnescapeString(s.policy.Sanitize(raw))
	return strings.Join(strings.Fields(stripped), " ")
}

// Link はhttp/httpsの絶対URLであればそのまま返し、それ以外は空文字列を返す。
func (s *TextSanitizer) Link(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || !isAllowedScheme(u.Scheme) {
		return ""
	}
	return raw
}
