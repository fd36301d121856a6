// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/pulse/internal/auth"
	"github.com/hitoshi/pulse/internal/contract"
	"github.com/hitoshi/pulse/internal/metrics"
	"github.com/hitoshi/pulse/internal/model"
)

// 認証メトリクスの結果ラベル
const (
	authResultSuccess   = "success"
	authResultInvalid   = "invalid"
	authResultDuplicate = "duplicate"
	authResultRejected  = "rejected"
	authResultError     = "error"
)

// Registrar はユーザー登録のインターフェース。
type Registrar interface {
	Register(ctx context.Context, in auth.RegisterInput) (*model.User, error)
}

// Authenticator はメールアドレスとパスワードによる認証のインターフェース。
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
}

var (
	_ Registrar     = (*auth.Registrar)(nil)
	_ Authenticator = (*auth.Authenticator)(nil)
)

// AuthHandler は登録・ログイン・ログアウト・現在ユーザー取得のHTTPハンドラー。
type AuthHandler struct {
	registrar     Registrar
	authenticator Authenticator
	sessions      SessionService
	cookie        CookieConfig
	metrics       metrics.MetricsCollector
	logger        *slog.Logger
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(
	registrar Registrar,
	authenticator Authenticator,
	sessions SessionService,
	cookie CookieConfig,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *AuthHandler {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		registrar:     registrar,
		authenticator: authenticator,
		sessions:      sessions,
		cookie:        cookie,
		metrics:       collector,
		logger:        logger,
	}
}

// Register はユーザーを登録し、そのままログイン状態にする。
// POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req contract.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.metrics.RecordAuthAttempt(contract.Register.Name, authResultRejected)
		handleServiceError(w, r, h.logger, err)
		return
	}
	if err := validate(contract.Register, req); err != nil {
		h.metrics.RecordAuthAttempt(contract.Register.Name, authResultRejected)
		handleServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.registrar.Register(r.Context(), auth.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeDuplicateEmail {
			h.metrics.RecordAuthAttempt(contract.Register.Name, authResultDuplicate)
		} else {
			h.metrics.RecordAuthAttempt(contract.Register.Name, authResultError)
		}
		handleServiceError(w, r, h.logger, err)
		return
	}

	if !h.startSession(w, r, user) {
		h.metrics.RecordAuthAttempt(contract.Register.Name, authResultError)
		return
	}

	h.metrics.RecordAuthAttempt(contract.Register.Name, authResultSuccess)
	writeJSON(w, http.StatusOK, contract.AuthResponse{
		Msg:  "Registered and logged in",
		User: contract.FromUser(user),
	})
}

// Login はメールアドレスとパスワードで認証し、セッションを開始する。
// POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req contract.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.metrics.RecordAuthAttempt(contract.Login.Name, authResultRejected)
		handleServiceError(w, r, h.logger, err)
		return
	}
	if err := validate(contract.Login, req); err != nil {
		h.metrics.RecordAuthAttempt(contract.Login.Name, authResultRejected)
		handleServiceError(w, r, h.logger, err)
		return
	}

	user, err := h.authenticator.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// メールアドレスとパスワードのどちらが誤っていたかはレスポンスで区別しない
			h.metrics.RecordAuthAttempt(contract.Login.Name, authResultInvalid)
			handleServiceError(w, r, h.logger, model.NewInvalidCredentialsError())
			return
		}
		h.metrics.RecordAuthAttempt(contract.Login.Name, authResultError)
		handleServiceError(w, r, h.logger, err)
		return
	}

	if !h.startSession(w, r, user) {
		h.metrics.RecordAuthAttempt(contract.Login.Name, authResultError)
		return
	}

	h.metrics.RecordAuthAttempt(contract.Login.Name, authResultSuccess)
	writeJSON(w, http.StatusOK, contract.AuthResponse{
		Msg:  "Login success",
		User: contract.FromUser(user),
	})
}

// Logout はセッションを破棄する。未ログインでも成功を返す。
// POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(sessionCookieName)
	if err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			// 破棄に失敗してもCookieはクリアする
			h.logger.Error("failed to destroy session", slog.String("error", err.Error()))
		}
	}

	clearSessionCookie(w, h.cookie)
	writeJSON(w, http.StatusOK, contract.MessageResponse{Msg: "Logged out"})
}

// CurrentUser は現在のログインユーザー情報を返す。
// GET /api/user
func (h *AuthHandler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := resolvePrincipal(r, h.sessions)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	if user == nil {
		handleServiceError(w, r, h.logger, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, contract.FromUser(user))
}

// startSession はセッションを発行してCookieを設定する。
// リクエストが既存のセッションCookieを持つ場合は、発行前にそのセッションを破棄する。
// 失敗時はエラーレスポンスを書き込みfalseを返す。
func (h *AuthHandler) startSession(w http.ResponseWriter, r *http.Request, user *model.User) bool {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if err := h.sessions.Destroy(r.Context(), cookie.Value); err != nil {
			h.logger.Warn("failed to destroy previous session", slog.String("error", err.Error()))
		}
	}

	issued, err := h.sessions.Issue(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return false
	}
	setSessionCookie(w, h.cookie, issued.CookieValue, h.sessions.MaxAge())
	return true
}
