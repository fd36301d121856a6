package news

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/pulse/internal/metrics"
	"github.com/hitoshi/pulse/internal/model"
	"github.com/hitoshi/pulse/internal/security"
)

// ProviderConfig はニュース取得元の選択に使う設定。
type ProviderConfig struct {
	Provider string // "newsapi" または "rss"
	APIKey   string
	APIURL   string
	Country  string
	RSSURL   string
}

// SelectProvider は設定から取得元を選ぶ。
// 認証情報やフィードURLが未設定の場合はPlaceholderProviderを返す。
func SelectProvider(cfg ProviderConfig, httpClient *http.Client, logger *slog.Logger) Provider {
	switch cfg.Provider {
	case RSSProviderName:
		if cfg.RSSURL != "" {
			return NewRSSProvider(httpClient, logger, cfg.RSSURL)
		}
	default:
		if cfg.APIKey != "" {
			return NewNewsAPIProvider(httpClient, logger, cfg.APIURL, cfg.APIKey, cfg.Country)
		}
	}
	return NewPlaceholderProvider()
}

// Service はトップニュースの取得と整形を行う。
// 再試行とキャッシュは行わない。
type Service struct {
	provider  Provider
	sanitizer *security.TextSanitizer
	metrics   metrics.MetricsCollector
	logger    *slog.Logger
}

// NewService はServiceを生成する。
func NewService(provider Provider, collector metrics.MetricsCollector, logger *slog.Logger) *Service {
	if collector == nil {
		collector = metrics.Nop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider:  provider,
		sanitizer: security.NewTextSanitizer(),
		metrics:   collector,
		logger:    logger,
	}
}

// ProviderName は使用中の取得元の名前を返す。
func (s *Service) ProviderName() string {
	return s.provider.Name()
}

// TopHeadlines はトップニュースを取得し、テキストからHTMLを除去して返す。
// 取得に失敗した場合はNEWS_FETCH_FAILEDのAPIErrorを返す。
func (s *Service) TopHeadlines(ctx context.Context) ([]model.NewsArticle, error) {
	articles, err := s.provider.TopHeadlines(ctx)
	if err != nil {
		s.metrics.RecordNewsFetch(s.provider.Name(), "error")
		s.logger.Error("failed to fetch news",
			slog.String("provider", s.provider.Name()),
			slog.String("error", err.Error()),
		)
		return nil, model.NewNewsFetchFailedError()
	}

	s.metrics.RecordNewsFetch(s.provider.Name(), "success")
	for i := range articles {
		s.clean(&articles[i])
	}
	return articles, nil
}

func (s *Service) clean(a *model.NewsArticle) {
	a.Title = s.sanitizer.Text(a.Title)
	a.Description = s.cleanText(a.Description)
	a.Content = s.cleanText(a.Content)
	a.Author = s.cleanText(a.Author)
	if a.Source != nil {
		a.Source.Name = s.sanitizer.Text(a.Source.Name)
	}

	if link := s.sanitizer.Link(a.URL); link != "" {
		a.URL = link
	} else {
		a.URL = "#"
	}
	if a.URLToImage != nil {
		if link := s.sanitizer.Link(*a.URLToImage); link != "" {
			a.URLToImage = &link
		} else {
			a.URLToImage = nil
		}
	}
}

func (s *Service) cleanText(v *string) *string {
	if v == nil {
		return nil
	}
	return strPtr(s.sanitizer.Text(*v))
}
