package handler

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/pulse/internal/contract"
	"github.com/hitoshi/pulse/internal/metrics"
	"github.com/hitoshi/pulse/internal/middleware"
	"github.com/hitoshi/pulse/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// ミドルウェア依存
	CORSAllowedOrigin string
	BaseURL           string // 自サイトのオリジン判定に使う
	Metrics           metrics.MetricsCollector
	MetricsHandler    http.Handler // nilの場合は/metricsを公開しない

	// ヘルスチェック
	HealthChecker HealthChecker

	// 認証
	Registrar     Registrar
	Authenticator Authenticator
	Sessions      SessionService
	Cookie        CookieConfig

	// 投稿
	PostService    PostService
	UploadMaxBytes int64

	// ニュース
	NewsService NewsService

	// アップロード画像の静的配信（ローカルストレージ利用時のみ）
	UploadDir       string
	UploadURLPrefix string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Logging → Metrics → Recovery → CORS → SecurityHeaders → OriginCheck
//
// Recoveryをログとメトリクスの内側に置くことで、panic時の500も記録される。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	collector := deps.Metrics
	if collector == nil {
		collector = metrics.Nop{}
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(middleware.NewMetricsMiddleware(collector))
	r.Use(middleware.NewRecoveryMiddleware(logger))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.Cookie.Secure))
	r.Use(middleware.NewOriginCheckMiddleware(logger, deps.CORSAllowedOrigin, originOf(deps.BaseURL)))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError())
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		middleware.WriteErrorResponse(w, http.StatusMethodNotAllowed, model.NewMethodNotAllowedError())
	})

	authHandler := NewAuthHandler(deps.Registrar, deps.Authenticator, deps.Sessions, deps.Cookie, collector, logger)
	postHandler := NewPostHandler(deps.PostService, deps.Sessions, deps.UploadMaxBytes, logger)
	newsHandler := NewNewsHandler(deps.NewsService, logger)
	healthHandler := NewHealthHandler(deps.HealthChecker, logger)

	r.Method(contract.Health.Method, contract.Health.Path, http.HandlerFunc(healthHandler.Health))
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// 認証
	r.Method(contract.Register.Method, contract.Register.Path, http.HandlerFunc(authHandler.Register))
	r.Method(contract.Login.Method, contract.Login.Path, http.HandlerFunc(authHandler.Login))
	r.Method(contract.Logout.Method, contract.Logout.Path, http.HandlerFunc(authHandler.Logout))
	r.Method(contract.CurrentUser.Method, contract.CurrentUser.Path, http.HandlerFunc(authHandler.CurrentUser))

	// 投稿
	r.Method(contract.ListPosts.Method, contract.ListPosts.Path, http.HandlerFunc(postHandler.ListPosts))
	r.Method(contract.CreatePost.Method, contract.CreatePost.Path, http.HandlerFunc(postHandler.CreatePost))

	// ニュース
	r.Method(contract.ListNews.Method, contract.ListNews.Path, http.HandlerFunc(newsHandler.ListNews))

	if deps.UploadDir != "" && deps.UploadURLPrefix != "" {
		prefix := strings.TrimRight(deps.UploadURLPrefix, "/")
		r.Method(http.MethodGet, prefix+"/*", http.StripPrefix(prefix, uploadsFileServer(deps.UploadDir)))
	}

	return r
}

// uploadsFileServer はアップロードディレクトリのファイルを配信する。ディレクトリ一覧は返さない。
func uploadsFileServer(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError())
			return
		}
		fs.ServeHTTP(w, r)
	})
}

// originOf はURLからスキーム・ホスト・ポートのみのオリジンを取り出す。解析できない場合は空文字列。
func originOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host
}
