package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hitoshi/pulse/internal/model"
	"github.com/hitoshi/pulse/internal/repository"
)

// ErrInvalidCredentials はメールアドレスまたはパスワードが正しくないことを表す。
var ErrInvalidCredentials = errors.New("invalid email or password")

// FailureReason は認証失敗の内部的な理由。ログにのみ出力する。
type FailureReason string

const (
	ReasonUnknownEmail     FailureReason = "unknown_email"
	ReasonPasswordMismatch FailureReason = "password_mismatch"
)

// InvalidCredentialsError は認証失敗を理由付きで表す。
// errors.Is(err, ErrInvalidCredentials) で判定できる。
type InvalidCredentialsError struct {
	Reason FailureReason
}

func (e *InvalidCredentialsError) Error() string {
	return fmt.Sprintf("%s (%s)", ErrInvalidCredentials.Error(), e.Reason)
}

func (e *InvalidCredentialsError) Unwrap() error {
	return ErrInvalidCredentials
}

// NormalizeEmail はメールアドレスを比較用に正規化する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticator はメールアドレスとパスワードによる認証を行う。
type Authenticator struct {
	users  repository.UserRepository
	hasher *PasswordHasher
	logger *slog.Logger
	// dummyHash は未登録メールアドレスでも照合処理を行うためのハッシュ
	dummyHash string
}

// NewAuthenticator はAuthenticatorを生成する。
func NewAuthenticator(users repository.UserRepository, hasher *PasswordHasher, logger *slog.Logger) *Authenticator {
	if logger == nil {
		logger = slog.Default()
	}
	dummy, _ := hasher.Hash("pulse-dummy-password")
	return &Authenticator{
		users:     users,
		hasher:    hasher,
		logger:    logger,
		dummyHash: dummy,
	}
}

// Authenticate はメールアドレスとパスワードを検証し、一致したユーザーを返す。
// 失敗時は*InvalidCredentialsErrorを返す。
func (a *Authenticator) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	email = NormalizeEmail(email)

	user, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if user == nil {
		a.hasher.Matches(a.dummyHash, password)
		a.logger.Info("authentication failed",
			slog.String("reason", string(ReasonUnknownEmail)),
		)
		return nil, &InvalidCredentialsError{Reason: ReasonUnknownEmail}
	}

	if !a.hasher.Matches(user.PasswordHash, password) {
		a.logger.Info("authentication failed",
			slog.String("reason", string(ReasonPasswordMismatch)),
			slog.Int64("user_id", user.ID),
		)
		return nil, &InvalidCredentialsError{Reason: ReasonPasswordMismatch}
	}

	return user, nil
}

// LoadPrincipal はセッションに紐づくユーザーIDからユーザーを読み込む。
// ユーザーが存在しない場合はnilを返す。
func (a *Authenticator) LoadPrincipal(ctx context.Context, id int64) (*model.User, error) {
	user, err := a.users.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load principal: %w", err)
	}
	return user, nil
}
