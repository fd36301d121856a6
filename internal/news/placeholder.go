package news

import (
	"context"
	"time"

	"github.com/hitoshi/pulse/internal/model"
)

// PlaceholderProviderName はPlaceholderProviderの名前。
const PlaceholderProviderName = "placeholder"

// PlaceholderProvider はニュースソースが設定されていない場合に固定の案内記事を返す。
type PlaceholderProvider struct {
	now func() time.Time
}

// NewPlaceholderProvider はPlaceholderProviderを生成する。
func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{now: time.Now}
}

// Name は取得元の名前を返す。
func (p *PlaceholderProvider) Name() string {
	return PlaceholderProviderName
}

// TopHeadlines は2件の案内記事を返す。公開日時は現在時刻。
func (p *PlaceholderProvider) TopHeadlines(ctx context.Context) ([]model.NewsArticle, error) {
	published := p.now().UTC().Format(time.RFC3339)
	return []model.NewsArticle{
		{
			Source:      &model.NewsSource{Name: "System"},
			Title:       "News API Key Missing",
			Description: strPtr("Please add a NEWS_API key to .env or Secrets to see real news."),
			URL:         "#",
			PublishedAt: published,
		},
		{
			Source:      &model.NewsSource{Name: "Pulse Team"},
			Title:       "Welcome to Pulse",
			Description: strPtr("This is a sample news item to demonstrate the layout."),
			URL:         "#",
			PublishedAt: published,
		},
	}, nil
}

// compile-time interface check
var _ Provider = (*PlaceholderProvider)(nil)
