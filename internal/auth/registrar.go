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

// RegisterInput はユーザー登録の入力値。
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Registrar は新規ユーザーの登録を行う。
type Registrar struct {
	users  repository.UserRepository
	hasher *PasswordHasher
	logger *slog.Logger
}

// NewRegistrar はRegistrarを生成する。
func NewRegistrar(users repository.UserRepository, hasher *PasswordHasher, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registrar{users: users, hasher: hasher, logger: logger}
}

// Register はユーザーを作成する。
// 同じメールアドレスが登録済みの場合は重複エラー（APIError）を返し、何も書き込まない。
func (r *Registrar) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := NormalizeEmail(in.Email)

	existing, err := r.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError()
	}

	hash, err := r.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: hash,
	}
	if err := r.users.Create(ctx, user); err != nil {
		// 事前確認と作成の間に同じメールアドレスが登録された場合
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.logger.Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}
