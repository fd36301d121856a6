package app

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/pulse/internal/auth"
	"github.com/hitoshi/pulse/internal/config"
	"github.com/hitoshi/pulse/internal/database"
	"github.com/hitoshi/pulse/internal/handler"
	"github.com/hitoshi/pulse/internal/logger"
	"github.com/hitoshi/pulse/internal/metrics"
	"github.com/hitoshi/pulse/internal/post"
	"github.com/hitoshi/pulse/internal/worker/cleanup"
)

// dbPingTimeout は起動時のDB疎通確認のタイムアウト。
const dbPingTimeout = 5 * time.Second

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込む。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, os.Getenv("LOG_LEVEL"))

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	switch cmd {
	case CommandHelp:
		PrintUsage(w)
		return nil
	case CommandHealthcheck:
		// 軽量サブコマンドのため、フル初期化をスキップする
		port, err := config.ServerPort()
		if err != nil {
			return err
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Ping(context.Background(), db, dbPingTimeout); err != nil {
		db.Close()
		return nil, err
	}

	slog.Info("database connection established")
	return db, nil
}

// runServe はAPIサーバーモードで起動する。
// マイグレーションを適用し、全依存関係をワイヤリングしてHTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx := context.Background()
	log := slog.Default()

	// 1. DB接続とマイグレーション
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := database.Migrate(cfg.DatabaseURL, log); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// 2. リポジトリの初期化
	repos, err := newRepositories(cfg, db)
	if err != nil {
		return err
	}
	defer repos.Close()

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 4. 認証
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	sessions, err := auth.NewSessionManager(repos.Sessions, repos.Users, auth.SessionConfig{
		Secret: []byte(cfg.SessionSecret),
		MaxAge: time.Duration(cfg.SessionMaxAge) * time.Second,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to create session manager: %w", err)
	}
	registrar := auth.NewRegistrar(repos.Users, hasher, log)
	authenticator := auth.NewAuthenticator(repos.Users, hasher, log)

	// 5. 投稿
	assets, uploadDir, err := newAssetStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	postService := post.NewService(repos.Posts, assets, collector, log)
	if _, err := postService.EnsureWelcomePost(ctx); err != nil {
		return fmt.Errorf("failed to seed welcome post: %w", err)
	}

	// 6. ニュース
	newsService, err := newNewsService(cfg, collector, log)
	if err != nil {
		return err
	}

	// 7. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		BaseURL:           cfg.BaseURL,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(registry),

		HealthChecker: db,

		Registrar:     registrar,
		Authenticator: authenticator,
		Sessions:      sessions,
		Cookie: handler.CookieConfig{
			Domain: cfg.CookieDomain,
			Secure: cfg.CookieSecure,
		},

		PostService:    postService,
		UploadMaxBytes: cfg.UploadMaxBytes,

		NewsService: newsService,

		UploadDir:       uploadDir,
		UploadURLPrefix: cfg.UploadURLPrefix,
	})

	// 8. HTTPサーバーの起動
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.String("session_store", cfg.SessionStore),
			slog.String("storage_backend", cfg.StorageBackend),
			slog.String("news_provider", newsService.ProviderName()),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-stop:
	case err := <-serverErr:
		return fmt.Errorf("server listen error: %w", err)
	}
	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションのクリーンアップを定期実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	repos, err := newRepositories(cfg, db)
	if err != nil {
		return err
	}
	defer repos.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	// メインgoroutineで実行（ブロッキング）
	cleanup.NewCleanupJob(repos.Sessions, slog.Default()).Start(ctx, cfg.SessionCleanupInterval)

	slog.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	status, err := database.Migrate(cfg.DatabaseURL, slog.Default())
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Int("version", int(status.Version)),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
