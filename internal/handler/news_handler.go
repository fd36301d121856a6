package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/pulse/internal/contract"
	"github.com/hitoshi/pulse/internal/model"
	"github.com/hitoshi/pulse/internal/news"
)

// NewsService はニュースハンドラーが必要とするサービスインターフェース。
type NewsService interface {
	TopHeadlines(ctx context.Context) ([]model.NewsArticle, error)
}

var _ NewsService = (*news.Service)(nil)

// NewsHandler はニュース一覧のHTTPハンドラー。
type NewsHandler struct {
	news   NewsService
	logger *slog.Logger
}

// NewNewsHandler はNewsHandlerを生成する。
func NewNewsHandler(svc NewsService, logger *slog.Logger) *NewsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &NewsHandler{news: svc, logger: logger}
}

// ListNews はトップニュースを返す。プロバイダーの呼び出しに失敗した場合は502。
// GET /api/news
func (h *NewsHandler) ListNews(w http.ResponseWriter, r *http.Request) {
	articles, err := h.news.TopHeadlines(r.Context())
	if err != nil {
		handleServiceError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, contract.FromNewsArticles(articles))
}
