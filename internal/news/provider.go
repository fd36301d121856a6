// Package news は外部ニュースソースからのトップニュース取得を提供する。
package news

import (
	"context"

	"github.com/hitoshi/pulse/internal/model"
)

// userAgent は外部ニュースソースへのリクエストに付与するUser-Agent。
const userAgent = "Pulse/1.0 (+https://github.com/hitoshi/pulse)"

// maxResponseBytes は外部レスポンスとして読み込む最大バイト数。
const maxResponseBytes = 5 << 20

// Provider はトップニュースの取得元。
type Provider interface {
	// Name はメトリクスとログに使う取得元の名前を返す。
	Name() string
	// TopHeadlines はトップニュースを取得する。
	TopHeadlines(ctx context.Context) ([]model.NewsArticle, error)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
