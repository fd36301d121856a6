package middleware

import (
	"log/slog"
	"net/http"

	"github.com/hitoshi/pulse/internal/model"
)

// NewOriginCheckMiddleware はクロスサイトからの状態変更リクエストを拒否するミドルウェアを返す。
// Originヘッダーが付いた状態変更メソッドは、自サイトまたは許可オリジンからのもののみ通す。
// Originヘッダーの無いリクエスト（ブラウザ以外のクライアント）は対象外。
func NewOriginCheckMiddleware(logger *slog.Logger, allowedOrigins ...string) func(next http.Handler) http.Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o != "" {
			allowed[o] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if isSafeMethod(r.Method) || origin == "" || allowed[origin] {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn("cross-origin request rejected",
				slog.String("request_id", RequestIDFromContext(r.Context())),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("origin", origin),
			)
			WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenOriginError())
		})
	}
}

// isSafeMethod はHTTPメソッドが安全（読み取り専用）かどうかを判定する。
func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	default:
		return false
	}
}
