// Package post は投稿の作成と一覧を提供する。
package post

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/hitoshi/pulse/internal/metrics"
	"github.com/hitoshi/pulse/internal/model"
	"github.com/hitoshi/pulse/internal/repository"
	"github.com/hitoshi/pulse/internal/storage"
)

// 初回起動時に作成する投稿
const (
	welcomeTitle   = "Welcome to Pulse"
	welcomeContent = "This is the start of something new! Register to create your own posts."
	welcomeAuthor  = "Admin"
)

// ErrNoAuthor は投稿者が指定されていないことを表す。
var ErrNoAuthor = errors.New("post author is required")

// ImageUpload はアップロードされた画像。
type ImageUpload struct {
	Filename string
	Body     io.Reader
}

// CreateInput は投稿作成の入力値。
type CreateInput struct {
	Title   string
	Content string
	Image   *ImageUpload // 画像なしの場合はnil
}

// Service は投稿に関するビジネスロジックを提供する。
type Service struct {
	posts   repository.PostRepository
	assets  storage.AssetStore
	metrics metrics.MetricsCollector
	logger  *slog.Logger
}

// NewService はServiceを生成する。
func NewService(
	posts repository.PostRepository,
	assets storage.AssetStore,
	collector metrics.MetricsCollector,
	logger *slog.Logger,
) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		posts:   posts,
		assets:  assets,
		metrics: collector,
		logger:  logger,
	}
}

// Create は投稿を作成する。投稿者名は認証済みユーザーの表示名に固定される。
// 画像がある場合は保存してから投稿を作成し、投稿の作成に失敗した場合は保存した画像を削除する。
func (s *Service) Create(ctx context.Context, author *model.User, in CreateInput) (*model.Post, error) {
	if author == nil {
		return nil, ErrNoAuthor
	}

	p := &model.Post{
		Title:   in.Title,
		Content: in.Content,
		Author:  author.Name,
	}

	if in.Image != nil {
		url, err := s.assets.Save(ctx, in.Image.Filename, in.Image.Body)
		if err != nil {
			var apiErr *model.APIError
			if errors.As(err, &apiErr) {
				return nil, apiErr
			}
			return nil, fmt.Errorf("failed to store image: %w", err)
		}
		p.ImageURL = &url
	}

	if err := s.posts.Create(ctx, p); err != nil {
		if p.ImageURL != nil {
			s.discardAsset(ctx, *p.ImageURL)
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	s.metrics.RecordPostCreated()
	s.logger.Info("post created",
		slog.Int64("post_id", p.ID),
		slog.Int64("user_id", author.ID),
		slog.Bool("has_image", p.ImageURL != nil),
	)
	return p, nil
}

// discardAsset は参照されなくなった画像を削除する。失敗はログに残すのみ。
func (s *Service) discardAsset(ctx context.Context, url string) {
	// リクエストがキャンセルされていても削除は行う
	if err := s.assets.Delete(context.WithoutCancel(ctx), url); err != nil {
		s.logger.Warn("failed to remove orphaned asset",
			slog.String("url", url),
			slog.String("error", err.Error()),
		)
	}
}

// List は全投稿を新しい順に返す。
func (s *Service) List(ctx context.Context) ([]*model.Post, error) {
	posts, err := s.posts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// EnsureWelcomePost は投稿が1件も無い場合に歓迎投稿を作成する。
// 作成した場合はtrueを返す。
func (s *Service) EnsureWelcomePost(ctx context.Context) (bool, error) {
	n, err := s.posts.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to count posts: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	p := &model.Post{
		Title:   welcomeTitle,
		Content: welcomeContent,
		Author:  welcomeAuthor,
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return false, fmt.Errorf("failed to create welcome post: %w", err)
	}

	s.logger.Info("welcome post created", slog.Int64("post_id", p.ID))
	return true, nil
}
