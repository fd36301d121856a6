package contract

import "net/http"

// Input はスキーマ検証の対象となるリクエスト型が実装するインターフェース。
type Input interface {
	// Values はフィールド名と値の対応を返す。
	Values() map[string]string
}

// Endpoint は1つのAPIエンドポイントの宣言。
// Responsesはステータスコードごとに返却される型のゼロ値を持つ。
type Endpoint struct {
	Name      string
	Method    string
	Path      string
	Auth      bool // trueの場合は有効なセッションが必要
	Input     *Schema
	Responses map[int]any
}

// Validate は入力をエンドポイントのスキーマで検証する。
// スキーマを持たないエンドポイントは常に成功する。
// 失敗時は*ValidationErrorを返す。
func (e Endpoint) Validate(in Input) error {
	if e.Input == nil {
		return nil
	}
	if verr := e.Input.Validate(in.Values()); verr != nil {
		return verr
	}
	return nil
}

// Declares は指定ステータスコードがこのエンドポイントの宣言に含まれるかを返す。
func (e Endpoint) Declares(status int) bool {
	_, ok := e.Responses[status]
	return ok
}

// multipartフォームのフィールド名
const (
	FieldTitle   = "title"
	FieldContent = "content"
	FieldAuthor  = "author"
	FieldImage   = "image"
)

var (
	registerSchema = &Schema{Fields: []Field{
		{Name: "name", Kind: KindText, Required: true, MaxLen: 100},
		{Name: "email", Kind: KindEmail, Required: true, MaxLen: 254},
		// bcryptは72バイトを超える入力を扱えない
		{Name: "password", Kind: KindText, Required: true, MinLen: 6, MaxBytes: 72},
	}}

	loginSchema = &Schema{Fields: []Field{
		{Name: "email", Kind: KindEmail, Required: true, MaxLen: 254},
		{Name: "password", Kind: KindText, Required: true, MaxBytes: 72},
	}}

	createPostSchema = &Schema{Fields: []Field{
		{Name: FieldTitle, Kind: KindText, Required: true, MaxLen: 200},
		{Name: FieldContent, Kind: KindText, Required: true, MaxLen: 20000},
		{Name: FieldAuthor, Kind: KindText, MaxLen: 100},
		{Name: FieldImage, Kind: KindFile},
	}}
)

// エンドポイント宣言
var (
	Register = Endpoint{
		Name:   "register",
		Method: http.MethodPost,
		Path:   "/api/register",
		Input:  registerSchema,
		Responses: map[int]any{
			http.StatusOK:                    AuthResponse{},
			http.StatusBadRequest:            ErrorResponse{},
			http.StatusForbidden:             ErrorResponse{},
			http.StatusRequestEntityTooLarge: ErrorResponse{},
			http.StatusInternalServerError:   ErrorResponse{},
		},
	}

	Login = Endpoint{
		Name:   "login",
		Method: http.MethodPost,
		Path:   "/api/login",
		Input:  loginSchema,
		Responses: map[int]any{
			http.StatusOK:                    AuthResponse{},
			http.StatusBadRequest:            ErrorResponse{},
			http.StatusForbidden:             ErrorResponse{},
			http.StatusRequestEntityTooLarge: ErrorResponse{},
			http.StatusInternalServerError:   ErrorResponse{},
		},
	}

	Logout = Endpoint{
		Name:   "logout",
		Method: http.MethodPost,
		Path:   "/api/logout",
		Responses: map[int]any{
			http.StatusOK:                  MessageResponse{},
			http.StatusForbidden:           ErrorResponse{},
			http.StatusInternalServerError: ErrorResponse{},
		},
	}

	CurrentUser = Endpoint{
		Name:   "currentUser",
		Method: http.MethodGet,
		Path:   "/api/user",
		Auth:   true,
		Responses: map[int]any{
			http.StatusOK:                  UserResponse{},
			http.StatusUnauthorized:        ErrorResponse{},
			http.StatusInternalServerError: ErrorResponse{},
		},
	}

	ListPosts = Endpoint{
		Name:   "listPosts",
		Method: http.MethodGet,
		Path:   "/api/posts",
		Responses: map[int]any{
			http.StatusOK:                  []PostResponse{},
			http.StatusInternalServerError: ErrorResponse{},
		},
	}

	CreatePost = Endpoint{
		Name:   "createPost",
		Method: http.MethodPost,
		Path:   "/api/posts",
		Auth:   true,
		Input:  createPostSchema,
		Responses: map[int]any{
			http.StatusCreated:               PostResponse{},
			http.StatusBadRequest:            ErrorResponse{},
			http.StatusUnauthorized:          ErrorResponse{},
			http.StatusForbidden:             ErrorResponse{},
			http.StatusRequestEntityTooLarge: ErrorResponse{},
			http.StatusInternalServerError:   ErrorResponse{},
		},
	}

	ListNews = Endpoint{
		Name:   "listNews",
		Method: http.MethodGet,
		Path:   "/api/news",
		Responses: map[int]any{
			http.StatusOK:                  []NewsArticle{},
			http.StatusInternalServerError: ErrorResponse{},
			http.StatusBadGateway:          ErrorResponse{},
		},
	}

	Health = Endpoint{
		Name:   "health",
		Method: http.MethodGet,
		Path:   "/health",
		Responses: map[int]any{
			http.StatusOK:                  HealthResponse{},
			http.StatusInternalServerError: ErrorResponse{},
			http.StatusServiceUnavailable:  HealthResponse{},
		},
	}
)

// FallbackResponses はどのエンドポイントにも一致しないリクエストへの応答。
var FallbackResponses = map[int]any{
	http.StatusNotFound:         ErrorResponse{},
	http.StatusMethodNotAllowed: ErrorResponse{},
}

// Endpoints は全エンドポイントの宣言を返す。
func Endpoints() []Endpoint {
	return []Endpoint{Register, Login, Logout, CurrentUser, ListPosts, CreatePost, ListNews, Health}
}
