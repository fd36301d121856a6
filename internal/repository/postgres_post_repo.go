package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/pulse/internal/model"
)

// PostgresPostRepo はPostgreSQLを使用した投稿リポジトリ。
type PostgresPostRepo struct {
	db *sql.DB
}

// NewPostgresPostRepo はPostgresPostRepoを生成する。
func NewPostgresPostRepo(db *sql.DB) *PostgresPostRepo {
	return &PostgresPostRepo{db: db}
}

// Create は投稿を作成する。作成日時はDB側のnow()で決まる。
func (r *PostgresPostRepo) Create(ctx context.Context, post *model.Post) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO posts (title, content, author, image_url)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		post.Title, post.Content, post.Author, post.ImageURL,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	return nil
}

// ListAll は全投稿を作成日時の降順で返す。同時刻の場合はIDの降順。
func (r *PostgresPostRepo) ListAll(ctx context.Context) ([]*model.Post, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, content, author, image_url, created_at
		 FROM posts
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]*model.Post, 0)
	for rows.Next() {
		p := &model.Post{}
		var imageURL sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.Author, &imageURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		if imageURL.Valid {
			v := imageURL.String
			p.ImageURL = &v
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate posts: %w", err)
	}

	return posts, nil
}

// Count は投稿の総数を返す。
func (r *PostgresPostRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}

// compile-time interface check
var _ PostRepository = (*PostgresPostRepo)(nil)
