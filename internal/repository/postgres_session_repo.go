package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hitoshi/pulse/internal/model"
)

// expiredSessionBatchSize は1回のDELETEで削除する期限切れセッションの上限。
// 大量に溜まっている場合もロックを短く保つために分割して削除する。
const expiredSessionBatchSize = 1000

const (
	insertSessionQuery = `INSERT INTO sessions (id, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4)`

	selectActiveSessionQuery = `SELECT id, user_id, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()`

	deleteSessionQuery = `DELETE FROM sessions WHERE id = $1`

	deleteExpiredSessionsQuery = `DELETE FROM sessions
		WHERE id IN (
			SELECT id FROM sessions
			WHERE expires_at <= now()
			LIMIT $1
		)`
)

// PostgresSessionRepo はsessionsテーブルに保存するセッションストア。
// 有効期限の判定はDBの時計（now()）で行う。
type PostgresSessionRepo struct {
	db        *sql.DB
	batchSize int
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(db *sql.DB) *PostgresSessionRepo {
	return &PostgresSessionRepo{db: db, batchSize: expiredSessionBatchSize}
}

// Create はセッションを1行挿入する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	if _, err := r.db.ExecContext(ctx, insertSessionQuery,
		session.ID, session.UserID, session.ExpiresAt, session.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByID は有効なセッションを返す。存在しないか期限切れの場合は(nil, nil)。
func (r *PostgresSessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var s model.Session
	err := r.db.QueryRowContext(ctx, selectActiveSessionQuery, id).
		Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	return &s, nil
}

// DeleteByID はセッションを削除する。存在しないIDでもエラーにしない。
func (r *PostgresSessionRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, deleteSessionQuery, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired は期限切れセッションをbatchSize件ずつ削除し、削除した総数を返す。
// 途中で失敗した場合もそれまでに削除した件数を返す。
func (r *PostgresSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	var total int64
	for {
		result, err := r.db.ExecContext(ctx, deleteExpiredSessionsQuery, r.batchSize)
		if err != nil {
			return total, fmt.Errorf("failed to delete expired sessions: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("failed to get rows affected: %w", err)
		}
		total += n
		if n < int64(r.batchSize) {
			return total, nil
		}
		if err := ctx.Err(); err != nil {
			return total, err
		}
	}
}

var _ SessionRepository = (*PostgresSessionRepo)(nil)
