package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/pulse/internal/auth"
	"github.com/hitoshi/pulse/internal/model"
)

// sessionCookieName はセッションCookieの名前。
const sessionCookieName = "session_id"

// SessionService はハンドラーが必要とするセッション操作のインターフェース。
type SessionService interface {
	Issue(ctx context.Context, userID int64) (*auth.IssuedSession, error)
	Resolve(ctx context.Context, cookieValue string) (*model.User, error)
	Destroy(ctx context.Context, cookieValue string) error
	MaxAge() time.Duration
}

var _ SessionService = (*auth.SessionManager)(nil)

// CookieConfig はセッションCookieの属性。
type CookieConfig struct {
	Domain string
	Secure bool // BASE_URLがhttpsの場合true
}

// resolvePrincipal はリクエストのセッションCookieから認証済みユーザーを解決する。
// Cookieが無い、または有効なセッションが無い場合は(nil, nil)を返す。
func resolvePrincipal(r *http.Request, sessions SessionService) (*model.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}
	return sessions.Resolve(r.Context(), cookie.Value)
}

// setSessionCookie はセッションCookieを設定する。
func setSessionCookie(w http.ResponseWriter, cfg CookieConfig, value string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie はセッションCookieを削除する。
func clearSessionCookie(w http.ResponseWriter, cfg CookieConfig) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
