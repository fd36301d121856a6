package news

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/pulse/internal/model"
)

// RSSProviderName はRSSProviderの名前。
const RSSProviderName = "rss"

// maxRSSArticles はRSSから返す最大記事数。
const maxRSSArticles = 20

// RSSProvider はRSS/Atomフィードからニュースを取得する。
type RSSProvider struct {
	httpClient *http.Client
	logger     *slog.Logger
	feedURL    string
}

// NewRSSProvider はRSSProviderを生成する。
func NewRSSProvider(httpClient *http.Client, logger *slog.Logger, feedURL string) *RSSProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &RSSProvider{httpClient: httpClient, logger: logger, feedURL: feedURL}
}

// Name は取得元の名前を返す。
func (p *RSSProvider) Name() string {
	return RSSProviderName
}

// TopHeadlines はフィードを取得し、先頭から最大maxRSSArticles件の記事を返す。
func (p *RSSProvider) TopHeadlines(ctx context.Context) ([]model.NewsArticle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("feed returned error status",
			slog.String("feed_url", p.feedURL),
			slog.Int("http_status", resp.StatusCode),
		)
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	return feedToArticles(feed), nil
}

// feedToArticles はgofeedのフィードをNewsArticleに変換する。
func feedToArticles(feed *gofeed.Feed) []model.NewsArticle {
	var source *model.NewsSource
	if name := strings.TrimSpace(feed.Title); name != "" {
		source = &model.NewsSource{Name: name}
	}

	items := feed.Items
	if len(items) > maxRSSArticles {
		items = items[:maxRSSArticles]
	}

	articles := make([]model.NewsArticle, 0, len(items))
	for _, item := range items {
		articles = append(articles, model.NewsArticle{
			Source:      source,
			Author:      strPtr(itemAuthor(item)),
			Title:       item.Title,
			Description: strPtr(item.Description),
			URL:         item.Link,
			URLToImage:  strPtr(itemImage(item)),
			PublishedAt: itemPublished(item),
			Content:     strPtr(item.Content),
		})
	}
	return articles
}

func itemAuthor(item *gofeed.Item) string {
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	return ""
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return item.Image.URL
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}

// itemPublished は公開日時をRFC3339で返す。解析できない場合は元の文字列を返す。
func itemPublished(item *gofeed.Item) string {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC().Format(time.RFC3339)
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC().Format(time.RFC3339)
	}
	return item.Published
}

// compile-time interface check
var _ Provider = (*RSSProvider)(nil)
