// Package storage はアップロード画像の保存先を提供する。
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/hitoshi/pulse/internal/model"
)

// filenamePrefix は保存ファイル名の接頭辞。
const filenamePrefix = "NEWS-"

// maxNameAttempts はファイル名衝突時に時刻をずらして再試行する上限。
const maxNameAttempts = 100

// allowedExtensions は受け付ける画像の拡張子。
var allowedExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// ErrForeignAsset はこのストアが発行していない公開URLを削除しようとしたことを表す。
var ErrForeignAsset = errors.New("asset url was not issued by this store")

// AssetStore はアップロードされた画像を保存し、公開URLを返す。
// Deleteは Save が返した公開URLを受け取り、保存済みの画像を取り除く。
type AssetStore interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, publicURL string) error
}

// Extension は元のファイル名から小文字の拡張子を取り出し、許可されているかを検証する。
func Extension(originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedExtensions[ext] {
		return "", model.NewUnsupportedImageError(ext)
	}
	return ext, nil
}

// assetName は指定時刻と拡張子から保存ファイル名を生成する。
// offsetはミリ秒単位のずらし幅で、衝突回避に使う。
func assetName(now time.Time, offset int, ext string) string {
	return fmt.Sprintf("%s%d%s", filenamePrefix, now.UnixMilli()+int64(offset), ext)
}

// assetNameFromURL は公開URLから保存名を取り出す。
// prefix配下の単一階層の名前でなければErrForeignAssetを返す。
func assetNameFromURL(publicURL, prefix string) (string, error) {
	name, ok := strings.CutPrefix(publicURL, prefix+"/")
	if !ok || name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %s", ErrForeignAsset, publicURL)
	}
	return name, nil
}
