// Package contract はAPIエンドポイントの入出力の形を宣言する。
// サーバー（handler）とクライアント（client）が同じ宣言を参照することで、
// 双方のリクエスト・レスポンス形式が食い違わないことを保証する。
package contract

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/pulse/internal/model"
)

// FieldKind は入力フィールドの種別を表す。
type FieldKind int

const (
	// KindText は任意の文字列フィールド。
	KindText FieldKind = iota
	// KindEmail はメールアドレス形式の文字列フィールド。
	KindEmail
	// KindFile はmultipartで送信されるファイルフィールド。値にはファイル名が入る。
	KindFile
)

// Field は入力スキーマの1フィールドを表す。
// MinLen/MaxLenは文字数、MaxBytesはバイト数で判定する。0は無制限。
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	MinLen   int
	MaxLen   int
	MaxBytes int
}

// Schema はエンドポイントが受け付ける入力の形を表す。
type Schema struct {
	Fields []Field
}

// ValidationError はスキーマ検証に失敗したフィールドの一覧を保持する。
type ValidationError struct {
	Fields []model.FieldError
}

// Error はerrorインターフェースを実装する。
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// APIError は検証エラーを統一エラーフォーマットに変換する。
func (e *ValidationError) APIError() *model.APIError {
	return model.NewValidationError(e.Fields)
}

// Validate は値の集合をスキーマに照らして検証する。
// 違反がなければnilを返す。フィールドの宣言順にエラーを並べる。
func (s *Schema) Validate(values map[string]string) *ValidationError {
	var errs []model.FieldError
	for _, f := range s.Fields {
		if msg := f.check(values[f.Name]); msg != "" {
			errs = append(errs, model.FieldError{Field: f.Name, Message: msg})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Fields: errs}
}

// check は単一フィールドを検証し、違反時はメッセージを返す。
func (f Field) check(value string) string {
	if strings.TrimSpace(value) == "" {
		if f.Required {
			return "is required"
		}
		return ""
	}
	if f.Kind == KindFile {
		return ""
	}

	n := utf8.RuneCountInString(value)
	if f.MinLen > 0 && n < f.MinLen {
		return fmt.Sprintf("must be at least %d characters", f.MinLen)
	}
	if f.MaxLen > 0 && n > f.MaxLen {
		return fmt.Sprintf("must be at most %d characters", f.MaxLen)
	}
	if f.MaxBytes > 0 && len(value) > f.MaxBytes {
		return fmt.Sprintf("must be at most %d bytes", f.MaxBytes)
	}

	if f.Kind == KindEmail && !isEmail(value) {
		return "must be a valid email address"
	}
	return ""
}

// isEmail は値が表示名を伴わない単一のメールアドレスかを判定する。
func isEmail(value string) bool {
	addr, err := mail.ParseAddress(value)
	if err != nil {
		return false
	}
	return addr.Address == strings.TrimSpace(value)
}
