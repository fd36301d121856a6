package model

// NewsSource はニュース記事の配信元を表す。
type NewsSource struct {
	ID   *string
	Name string
}

// NewsArticle は外部ニュースプロバイダーから取得した記事を表す。
// 任意項目はプロバイダーが返さない場合nilになる。
type NewsArticle struct {
	Source      *NewsSource
	Author      *string
	Title       string
	Description *string
	URL         string
	URLToImage  *string
	PublishedAt string // RFC3339形式
	Content     *string
}
