package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hitoshi/pulse/internal/config"
	"github.com/hitoshi/pulse/internal/metrics"
	"github.com/hitoshi/pulse/internal/news"
	"github.com/hitoshi/pulse/internal/repository"
	"github.com/hitoshi/pulse/internal/security"
	"github.com/hitoshi/pulse/internal/storage"
)

// repositories は起動モードで共有するリポジトリ群。
type repositories struct {
	Users    repository.UserRepository
	Posts    repository.PostRepository
	Sessions repository.SessionRepository

	closers []func() error
}

// Close はリポジトリが保持する外部接続を閉じる。DB接続は呼び出し側が閉じる。
func (r *repositories) Close() {
	for _, c := range r.closers {
		if err := c(); err != nil {
			slog.Warn("failed to close connection", slog.String("error", err.Error()))
		}
	}
}

// newRepositories は設定に応じてリポジトリを構築する。
// SESSION_STORE=redis の場合のみセッションをRedisに保存する。
func newRepositories(cfg *config.Config, db *sql.DB) (*repositories, error) {
	repos := &repositories{
		Users: repository.NewPostgresUserRepo(db),
		Posts: repository.NewPostgresPostRepo(db),
	}

	switch cfg.SessionStore {
	case config.SessionStoreRedis:
		client, err := repository.NewRedisClient(cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		repos.Sessions = repository.NewRedisSessionRepo(client)
		repos.closers = append(repos.closers, client.Close)
	default:
		repos.Sessions = repository.NewPostgresSessionRepo(db)
	}

	return repos, nil
}

// newAssetStore は設定に応じた画像保存先を構築する。
// ローカル保存の場合は静的配信するディレクトリも返す（S3の場合は空文字）。
func newAssetStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.AssetStore, string, error) {
	switch cfg.StorageBackend {
	case config.StorageBackendS3:
		client, err := storage.NewS3Client(ctx, storage.S3Config{
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, "", err
		}
		return storage.NewS3Store(client, cfg.S3Bucket, cfg.S3PublicURL, logger), "", nil
	default:
		store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadURLPrefix, logger)
		if err != nil {
			return nil, "", fmt.Errorf("failed to prepare upload directory: %w", err)
		}
		return store, store.Dir(), nil
	}
}

// newNewsService はニュース取得元を選び、Serviceを構築する。
// 設定された取得先URLが内部ネットワークを指す場合は起動を拒否する。
func newNewsService(cfg *config.Config, collector metrics.MetricsCollector, logger *slog.Logger) (*news.Service, error) {
	pcfg := news.ProviderConfig{
		Provider: cfg.NewsProvider,
		APIKey:   cfg.NewsAPIKey,
		APIURL:   cfg.NewsAPIURL,
		Country:  cfg.NewsCountry,
		RSSURL:   cfg.NewsRSSURL,
	}

	if endpoint := newsEndpoint(pcfg); endpoint != "" {
		if err := security.ValidateEndpoint(endpoint); err != nil {
			return nil, fmt.Errorf("invalid news endpoint: %w", err)
		}
	}

	provider := news.SelectProvider(pcfg, security.NewOutboundClient(cfg.NewsTimeout), logger)
	return news.NewService(provider, collector, logger), nil
}

// newsEndpoint は実際に接続する取得先URLを返す。プレースホルダーを使う場合は空文字。
func newsEndpoint(cfg news.ProviderConfig) string {
	switch cfg.Provider {
	case news.RSSProviderName:
		return cfg.RSSURL
	default:
		if cfg.APIKey == "" {
			return ""
		}
		return cfg.APIURL
	}
}
