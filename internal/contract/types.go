package contract

import (
	"time"

	"github.com/hitoshi/pulse/internal/model"
)

// RegisterRequest はユーザー登録リクエストのボディ。
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Values はInputインターフェースを実装する。
func (r RegisterRequest) Values() map[string]string {
	return map[string]string{"name": r.Name, "email": r.Email, "password": r.Password}
}

// LoginRequest はログインリクエストのボディ。
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Values はInputインターフェースを実装する。
func (r LoginRequest) Values() map[string]string {
	return map[string]string{"email": r.Email, "password": r.Password}
}

// CreatePostRequest は記事投稿のmultipartフォーム。
// ImageNameは添付ファイルの元ファイル名で、添付がない場合は空文字。
type CreatePostRequest struct {
	Title     string
	Content   string
	Author    string
	ImageName string
}

// Values はInputインターフェースを実装する。
func (r CreatePostRequest) Values() map[string]string {
	return map[string]string{
		FieldTitle:   r.Title,
		FieldContent: r.Content,
		FieldAuthor:  r.Author,
		FieldImage:   r.ImageName,
	}
}

// MessageResponse はメッセージのみのレスポンス。
type MessageResponse struct {
	Msg string `json:"msg"`
}

// AuthResponse は登録・ログイン成功時のレスポンス。
type AuthResponse struct {
	Msg  string       `json:"msg"`
	User UserResponse `json:"user"`
}

// UserResponse はユーザー情報のレスポンス。パスワードハッシュは含めない。
type UserResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// PostResponse は記事のレスポンス。
type PostResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	ImageURL  *string   `json:"imageUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewsSource はニュース配信元のレスポンス。
type NewsSource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

// NewsArticle はニュース記事のレスポンス。
type NewsArticle struct {
	Source      *NewsSource `json:"source,omitempty"`
	Author      *string     `json:"author,omitempty"`
	Title       string      `json:"title"`
	Description *string     `json:"description,omitempty"`
	URL         string      `json:"url"`
	URLToImage  *string     `json:"urlToImage,omitempty"`
	PublishedAt string      `json:"publishedAt"`
	Content     *string     `json:"content,omitempty"`
}

// FieldErrorBody はフィールド単位の検証エラー。
type FieldErrorBody struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse は全エンドポイント共通のエラーレスポンス。
// msgはフロントエンドが参照するため、messageと同じ値を入れる。
type ErrorResponse struct {
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Msg      string           `json:"msg"`
	Category string           `json:"category"`
	Action   string           `json:"action"`
	Fields   []FieldErrorBody `json:"fields,omitempty"`
}

// HealthResponse はヘルスチェックのレスポンス。
type HealthResponse struct {
	Status string `json:"status"`
}

// FromUser はmodel.UserをUserResponseに変換する。
func FromUser(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// FromPost はmodel.PostをPostResponseに変換する。
func FromPost(p *model.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    p.Author,
		ImageURL:  p.ImageURL,
		CreatedAt: p.CreatedAt,
	}
}

// FromPosts は記事一覧を変換する。nilではなく空スライスを返す。
func FromPosts(posts []*model.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, FromPost(p))
	}
	return out
}

// FromNewsArticles はニュース記事一覧を変換する。nilではなく空スライスを返す。
func FromNewsArticles(articles []model.NewsArticle) []NewsArticle {
	out := make([]NewsArticle, 0, len(articles))
	for _, a := range articles {
		na := NewsArticle{
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Content:     a.Content,
		}
		if a.Source != nil {
			na.Source = &NewsSource{ID: a.Source.ID, Name: a.Source.Name}
		}
		out = append(out, na)
	}
	return out
}

// FromAPIError はmodel.APIErrorをErrorResponseに変換する。
func FromAPIError(e *model.APIError) ErrorResponse {
	resp := ErrorResponse{
		Code:     e.Code,
		Message:  e.Message,
		Msg:      e.Message,
		Category: e.Category,
		Action:   e.Action,
	}
	for _, f := range e.Fields {
		resp.Fields = append(resp.Fields, FieldErrorBody{Field: f.Field, Message: f.Message})
	}
	return resp
}
