package handler

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/hitoshi/pulse/internal/contract"
	"github.com/hitoshi/pulse/internal/model"
	"github.com/hitoshi/pulse/internal/post"
)

// multipartMemoryBytes はmultipartフォームをメモリに保持する上限。超過分は一時ファイルに書き出される。
const multipartMemoryBytes = 8 << 20

// PostService は投稿ハンドラーが必要とするサービスインターフェース。
type PostService interface {
	Create(ctx context.Context, author *model.User, in post.CreateInput) (*model.Post, error)
	List(ctx context.Context) ([]*model.Post, error)
}

var _ PostService = (*post.Service)(nil)

// PostHandler は投稿一覧・作成のHTTPハンドラー。
type PostHandler struct {
	posts    PostService
	sessions SessionService
	maxBytes int64
	logger   *slog.Logger
}

// NewPostHandler はPostHandlerを生成する。
// maxBytesはmultipartリクエストボディ全体の上限バイト数。
func NewPostHandler(posts PostService, sessions SessionService, maxBytes int64, logger *slog.Logger) *PostHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostHandler{
		posts:    posts,
		sessions: sessions,
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// ListPosts は全投稿を新しい順に返す。
// GET /api/posts
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.List(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromPosts(posts))
}

// CreatePost は認証済みユーザーの投稿を作成する。
// 認証はボディを読む前に確認し、未認証の場合は何も作成しない。
// フォームのauthorは検証のみ行い、投稿者名には認証済みユーザーの表示名を使う。
// POST /api/posts
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	user, err := resolvePrincipal(r, h.sessions)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if user == nil {
		handleServiceError(w, r, h.logger, model.NewUnauthorizedError())
		return
	}

	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}
	if err := r.ParseMultipartForm(multipartMemoryBytes); err != nil {
		handleServiceError(w, r, h.logger, h.multipartError(err))
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			h.logger.Warn("failed to remove multipart temp files", slog.String("error", err.Error()))
		}
	}()

	req := contract.CreatePostRequest{
		Title:   r.FormValue(contract.FieldTitle),
		Content: r.FormValue(contract.FieldContent),
		Author:  r.FormValue(contract.FieldAuthor),
	}

	file, header, err := r.FormFile(contract.FieldImage)
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		handleServiceError(w, r, h.logger, model.NewInvalidRequestError("unreadable image"))
		return
	default:
		defer file.Close()
		req.ImageName = header.Filename
	}

	if err := validate(contract.CreatePost, req); err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	in := post.CreateInput{
		Title:   req.Title,
		Content: req.Content,
	}
	if file != nil {
		in.Image = &post.ImageUpload{Filename: header.Filename, Body: file}
	}

	p, err := h.posts.Create(r.Context(), user, in)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, contract.FromPost(p))
}

// multipartError はmultipartフォームの解析エラーをAPIErrorに変換する。
func (h *PostHandler) multipartError(err error) *model.APIError {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) ||
		errors.Is(err, multipart.ErrMessageTooLarge) ||
		strings.Contains(err.Error(), "request body too large") {
		return model.NewPayloadTooLargeError(h.maxBytes)
	}
	if errors.Is(err, http.ErrNotMultipart) {
		return model.NewInvalidRequestError("expected multipart/form-data")
	}
	return model.NewInvalidRequestError("malformed multipart form")
}
