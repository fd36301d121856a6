package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string       // エラーコード
	Message  string       // エラーメッセージ
	Category string       // カテゴリ: auth, validation, news, not_found, system
	Action   string       // ユーザー向け対処方法
	Fields   []FieldError // 入力検証エラーの場合のフィールド別メッセージ
}

// FieldError は入力フィールド単位の検証エラーを表す。
type FieldError struct {
	Field   string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_FAILED"
	ErrCodeDuplicateEmail     = "DUPLICATE_EMAIL"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeUnsupportedImage   = "UNSUPPORTED_IMAGE"
	ErrCodePayloadTooLarge    = "PAYLOAD_TOO_LARGE"
	ErrCodeNewsFetchFailed    = "NEWS_FETCH_FAILED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeForbiddenOrigin    = "FORBIDDEN_ORIGIN"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエストボディを解析できない場合のエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("Invalid request body: %s", reason),
		Category: "validation",
		Action:   "Send a well-formed request body.",
	}
}

// NewValidationError はフィールド単位の入力検証エラーを生成する。
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "Invalid input",
		Category: "validation",
		Action:   "Fix the highlighted fields and try again.",
		Fields:   fields,
	}
}

// NewDuplicateEmailError は登録済みメールアドレスで再登録しようとした場合のエラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "User already exists",
		Category: "validation",
		Action:   "Log in with this email or register with a different one.",
	}
}

// NewInvalidCredentialsError はログイン失敗時のエラーを生成する。
// メールアドレスとパスワードのどちらが誤っていたかは区別しない。
func NewInvalidCredentialsError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredentials,
		Message:  "Invalid email or password",
		Category: "auth",
		Action:   "Check your email and password and try again.",
	}
}

// NewUnauthorizedError は有効なセッションがない場合のエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Not authenticated",
		Category: "auth",
		Action:   "Log in to continue.",
	}
}

// NewUnsupportedImageError は許可されていない画像形式のエラーを生成する。
func NewUnsupportedImageError(ext string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsupportedImage,
		Message:  fmt.Sprintf("Unsupported image type: %q", ext),
		Category: "validation",
		Action:   "Upload a .jpg, .jpeg, .png, .gif or .webp image.",
	}
}

// NewPayloadTooLargeError はアップロードサイズ超過のエラーを生成する。
func NewPayloadTooLargeError(limit int64) *APIError {
	return &APIError{
		Code:     ErrCodePayloadTooLarge,
		Message:  fmt.Sprintf("Request body exceeds %d bytes", limit),
		Category: "validation",
		Action:   "Upload a smaller image.",
	}
}

// NewNewsFetchFailedError は外部ニュースプロバイダーの呼び出し失敗エラーを生成する。
func NewNewsFetchFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeNewsFetchFailed,
		Message:  "Failed to fetch news",
		Category: "news",
		Action:   "Try again in a few minutes.",
	}
}

// NewNotFoundError はルートやリソースが存在しない場合のエラーを生成する。
func NewNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  "Not found",
		Category: "not_found",
		Action:   "Check the request path.",
	}
}

// NewMethodNotAllowedError はルートが対応していないHTTPメソッドのエラーを生成する。
func NewMethodNotAllowedError() *APIError {
	return &APIError{
		Code:     ErrCodeMethodNotAllowed,
		Message:  "Method not allowed",
		Category: "not_found",
		Action:   "Check the request method.",
	}
}

// NewForbiddenOriginError は許可されていないオリジンからの状態変更リクエストのエラーを生成する。
func NewForbiddenOriginError() *APIError {
	return &APIError{
		Code:     ErrCodeForbiddenOrigin,
		Message:  "Cross-origin request rejected",
		Category: "auth",
		Action:   "Send the request from the Pulse web client.",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal Server Error",
		Category: "system",
		Action:   "Please try again later.",
	}
}
