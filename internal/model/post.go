package model

import "time"

// Post はユーザーが投稿した記事を表す。
// 作成後は更新・削除されない。
type Post struct {
	ID        int64
	Title     string
	Content   string
	Author    string  // 表示用の著者名。usersへの外部キーではない
	ImageURL  *string // アップロード画像の公開パス。画像なしの場合はnil
	CreatedAt time.Time
}
