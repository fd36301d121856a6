package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/hitoshi/pulse/internal/model"
)

// NewsAPIProviderName はNewsAPIProviderの名前。
const NewsAPIProviderName = "newsapi"

// NewsAPIProvider はnewsapi.orgのtop-headlines APIからニュースを取得する。
type NewsAPIProvider struct {
	httpClient *http.Client
	logger     *slog.Logger
	baseURL    string
	apiKey     string
	country    string
}

// NewNewsAPIProvider はNewsAPIProviderを生成する。
func NewNewsAPIProvider(httpClient *http.Client, logger *slog.Logger, baseURL, apiKey, country string) *NewsAPIProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsAPIProvider{
		httpClient: httpClient,
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		country:    country,
	}
}

// Name は取得元の名前を返す。
func (p *NewsAPIProvider) Name() string {
	return NewsAPIProviderName
}

type newsAPISource struct {
	ID   *string `json:"id"`
	Name string  `json:"name"`
}

type newsAPIArticle struct {
	Source      *newsAPISource `json:"source"`
	Author      *string        `json:"author"`
	Title       string         `json:"title"`
	Description *string        `json:"description"`
	URL         string         `json:"url"`
	URLToImage  *string        `json:"urlToImage"`
	PublishedAt string         `json:"publishedAt"`
	Content     *string        `json:"content"`
}

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

// TopHeadlines は /v2/top-headlines を呼び出し、articlesを返す。
// 200以外のステータス、またはstatusが"ok"でない応答はエラーとする。
func (p *NewsAPIProvider) TopHeadlines(ctx context.Context) ([]model.NewsArticle, error) {
	reqURL, err := url.Parse(p.baseURL + "/v2/top-headlines")
	if err != nil {
		return nil, fmt.Errorf("failed to parse news api URL: %w", err)
	}
	q := reqURL.Query()
	q.Set("country", p.country)
	q.Set("apiKey", p.apiKey)
	reqURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		// URLにAPIキーが含まれるためエラー詳細にURLを出さない
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return nil, fmt.Errorf("news api request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read news api response: %w", err)
	}

	var result newsAPIResponse
	decodeErr := json.Unmarshal(body, &result)

	if resp.StatusCode != http.StatusOK {
		p.logger.Warn("news api returned error status",
			slog.Int("http_status", resp.StatusCode),
			slog.String("code", result.Code),
		)
		return nil, fmt.Errorf("news api returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("failed to decode news api response: %w", decodeErr)
	}
	if result.Status != "ok" {
		return nil, fmt.Errorf("news api returned status %q: %s", result.Status, result.Message)
	}

	articles := make([]model.NewsArticle, 0, len(result.Articles))
	for _, a := range result.Articles {
		article := model.NewsArticle{
			Author:      a.Author,
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			URLToImage:  a.URLToImage,
			PublishedAt: a.PublishedAt,
			Content:     a.Content,
		}
		if a.Source != nil {
			article.Source = &model.NewsSource{ID: a.Source.ID, Name: a.Source.Name}
		}
		articles = append(articles, article)
	}
	return articles, nil
}

// compile-time interface check
var _ Provider = (*NewsAPIProvider)(nil)
