package auth

import (
	"context"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/pulse/internal/model"
	"github.com/hitoshi/pulse/internal/repository"
)

// DefaultSessionMaxAge はセッションのデフォルト有効期間（30日）。
const DefaultSessionMaxAge = 30 * 24 * time.Hour

// sessionTokenBytes はセッショントークンのランダムバイト数。
const sessionTokenBytes = 32

// SessionConfig はSessionManagerの設定。
type SessionConfig struct {
	Secret []byte        // Cookie署名用の秘密鍵
	MaxAge time.Duration // セッション有効期間
}

// IssuedSession は発行されたセッションとCookieに設定する値。
type IssuedSession struct {
	Session     *model.Session
	CookieValue string
}

// SessionManager はセッションの発行、解決、破棄を行う。
// Cookieの値は「トークン.署名」形式で、署名はトークンのHMAC-SHA256。
type SessionManager struct {
	sessions repository.SessionRepository
	users    repository.UserRepository
	secret   []byte
	maxAge   time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewSessionManager はSessionManagerを生成する。
func NewSessionManager(
	sessions repository.SessionRepository,
	users repository.UserRepository,
	cfg SessionConfig,
	logger *slog.Logger,
) (*SessionManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session secret is required")
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = DefaultSessionMaxAge
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: sessions,
		users:    users,
		secret:   cfg.Secret,
		maxAge:   cfg.MaxAge,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// MaxAge はセッション有効期間を返す。
func (m *SessionManager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue は指定ユーザーの新しいセッションを発行する。
func (m *SessionManager) Issue(ctx context.Context, userID int64) (*IssuedSession, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := m.now()
	session := &model.Session{
		ID:        token,
		UserID:    userID,
		ExpiresAt: now.Add(m.maxAge),
		CreatedAt: now,
	}
	if err := m.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return &IssuedSession{Session: session, CookieValue: m.sign(token)}, nil
}

// Resolve はCookieの値から認証済みユーザーを解決する。
// 署名不正、未知、期限切れ、ユーザー削除済みの場合は(nil, nil)を返す。
func (m *SessionManager) Resolve(ctx context.Context, cookieValue string) (*model.User, error) {
	token, ok := m.verify(cookieValue)
	if !ok {
		return nil, nil
	}

	session, err := m.sessions.FindByID(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil || session.Expired(m.now()) {
		return nil, nil
	}

	user, err := m.users.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		if err := m.sessions.DeleteByID(ctx, token); err != nil {
			m.logger.Warn("failed to delete orphaned session", slog.String("error", err.Error()))
		}
		return nil, nil
	}

	return user, nil
}

// Destroy はCookieの値が指すセッションを破棄する。
// 不正または未知の値の場合は何もせず成功を返す。
func (m *SessionManager) Destroy(ctx context.Context, cookieValue string) error {
	token, ok := m.verify(cookieValue)
	if !ok {
		return nil
	}
	if err := m.sessions.DeleteByID(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (m *SessionManager) sign(token string) string {
	return token + "." + m.signature(token)
}

func (m *SessionManager) signature(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// verify は署名を検証し、トークン部分を返す。
func (m *SessionManager) verify(cookieValue string) (string, bool) {
	token, sig, found := strings.Cut(cookieValue, ".")
	if !found || len(token) != sessionTokenBytes*2 {
		return "", false
	}
	if _, err := hex.DecodeString(token); err != nil {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(m.signature(token))) {
		return "", false
	}
	return token, true
}

// generateSessionToken は暗号的に安全なセッショントークンを生成する。
func generateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
