// Package config はアプリケーション設定の読み込みを提供する。
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// insecureDefaultSecret は広く知られたセッション秘密鍵の既定値。
// この値での起動は拒否する。
const insecureDefaultSecret = "default_secret"

// minSessionSecretLength はSESSION_SECRETに要求する最小バイト数。
const minSessionSecretLength = 32

// セッションストアの種別
const (
	SessionStorePostgres = "postgres"
	SessionStoreRedis    = "redis"
)

// アセットストレージの種別
const (
	StorageBackendLocal = "local"
	StorageBackendS3    = "s3"
)

// ニュースプロバイダーの種別
const (
	NewsProviderNewsAPI = "newsapi"
	NewsProviderRSS     = "rss"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Session
	SessionSecret          string
	SessionMaxAge          int // 秒
	SessionStore           string
	RedisURL               string
	SessionCleanupInterval time.Duration

	// Password
	BcryptCost int

	// News
	NewsAPIKey   string
	NewsProvider string
	NewsAPIURL   string
	NewsCountry  string
	NewsRSSURL   string
	NewsTimeout  time.Duration

	// Upload
	StorageBackend  string
	UploadDir       string
	UploadURLPrefix string
	UploadMaxBytes  int64

	// S3
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string

	// Server
	ServerPort string
	BaseURL    string

	// Cookie
	CookieSecure bool
	CookieDomain string

	// CORS
	CORSAllowedOrigin string
}

// defaultServerPort はSERVER_PORT未設定時の待ち受けポート。
const defaultServerPort = "8080"

// ServerPort はSERVER_PORTだけを読み込む。Loadと同じく.envも参照する。
// 必須環境変数を検証しないため、healthcheckのような軽量コマンドで使う。
func ServerPort() (string, error) {
	if err := loadDotEnv(getEnvString("ENV_FILE", ".env")); err != nil {
		return "", err
	}
	return getEnvString("SERVER_PORT", defaultServerPort), nil
}

// Load は環境変数からConfigを読み込む。
// カレントディレクトリに.env（ENV_FILEで変更可）があれば先に読み込むが、
// 既に設定済みの環境変数は上書きしない。
// 必須環境変数が未設定、または値が不正な場合はエラーを返す。
func Load() (*Config, error) {
	if err := loadDotEnv(getEnvString("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		missing = append(missing, "SESSION_SECRET")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	cfg.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", 30*24*60*60)
	cfg.SessionStore = strings.ToLower(getEnvString("SESSION_STORE", SessionStorePostgres))
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.SessionCleanupInterval = getEnvDuration("SESSION_CLEANUP_INTERVAL", time.Hour)
	cfg.BcryptCost = getEnvInt("BCRYPT_COST", 10)
	cfg.NewsAPIKey = getEnvString("NEWS_API", "")
	cfg.NewsProvider = strings.ToLower(getEnvString("NEWS_PROVIDER", NewsProviderNewsAPI))
	cfg.NewsAPIURL = getEnvString("NEWS_API_URL", "https://newsapi.org")
	cfg.NewsCountry = getEnvString("NEWS_COUNTRY", "us")
	cfg.NewsRSSURL = getEnvString("NEWS_RSS_URL", "")
	cfg.NewsTimeout = getEnvDuration("NEWS_TIMEOUT", 10*time.Second)
	cfg.StorageBackend = strings.ToLower(getEnvString("STORAGE_BACKEND", StorageBackendLocal))
	cfg.UploadDir = getEnvString("UPLOAD_DIR", "public/uploads")
	cfg.UploadURLPrefix = strings.TrimRight(getEnvString("UPLOAD_URL_PREFIX", "/uploads"), "/")
	cfg.UploadMaxBytes = getEnvInt64("UPLOAD_MAX_BYTES", 10<<20)
	cfg.S3Bucket = getEnvString("S3_BUCKET", "")
	cfg.S3Region = getEnvString("S3_REGION", "")
	cfg.S3Endpoint = getEnvString("S3_ENDPOINT", "")
	cfg.S3AccessKey = getEnvString("S3_ACCESS_KEY", "")
	cfg.S3SecretKey = getEnvString("S3_SECRET_KEY", "")
	cfg.S3PublicURL = strings.TrimRight(getEnvString("S3_PUBLIC_URL", ""), "/")
	cfg.ServerPort = getEnvString("SERVER_PORT", defaultServerPort)
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")
	cfg.CookieDomain = getEnvString("COOKIE_DOMAIN", "")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:5173")

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate は値の組み合わせを検証する。
func (c *Config) validate() error {
	if c.SessionSecret == insecureDefaultSecret {
		return fmt.Errorf("SESSION_SECRET must not be the well-known default %q", insecureDefaultSecret)
	}
	if len(c.SessionSecret) < minSessionSecretLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d bytes, got %d", minSessionSecretLength, len(c.SessionSecret))
	}
	if c.SessionMaxAge <= 0 {
		return fmt.Errorf("SESSION_MAX_AGE must be positive, got %d", c.SessionMaxAge)
	}

	switch c.SessionStore {
	case SessionStorePostgres:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", SessionStoreRedis)
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE: %q", c.SessionStore)
	}

	switch c.StorageBackend {
	case StorageBackendLocal:
	case StorageBackendS3:
		var missing []string
		if c.S3Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
		if c.S3Region == "" {
			missing = append(missing, "S3_REGION")
		}
		if c.S3PublicURL == "" {
			missing = append(missing, "S3_PUBLIC_URL")
		}
		if len(missing) > 0 {
			return fmt.Errorf("required environment variables for STORAGE_BACKEND=s3 are not set: %v", missing)
		}
	default:
		return fmt.Errorf("unsupported STORAGE_BACKEND: %q", c.StorageBackend)
	}

	switch c.NewsProvider {
	case NewsProviderNewsAPI, NewsProviderRSS:
	default:
		return fmt.Errorf("unsupported NEWS_PROVIDER: %q", c.NewsProvider)
	}

	return nil
}

// loadDotEnv は.envファイルを読み込む。ファイルが存在しない場合は何もしない。
func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
