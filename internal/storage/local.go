package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// LocalStore はローカルディレクトリに画像を保存する。
type LocalStore struct {
	dir       string
	urlPrefix string
	logger    *slog.Logger
	now       func() time.Time
}

// NewLocalStore はLocalStoreを生成する。保存先ディレクトリが無ければ作成する。
func NewLocalStore(dir, urlPrefix string, logger *slog.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalStore{dir: dir, urlPrefix: urlPrefix, logger: logger, now: time.Now}, nil
}

// Dir は保存先ディレクトリを返す。
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save は画像を保存し、公開URLを返す。既存ファイルは上書きしない。
func (s *LocalStore) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext, err := Extension(originalName)
	if err != nil {
		return "", err
	}

	now := s.now()
	for i := 0; i < maxNameAttempts; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		name := assetName(now, i, ext)
		path := filepath.Join(s.dir, name)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create asset file: %w", err)
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write asset file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", fmt.Errorf("failed to close asset file: %w", err)
		}

		s.logger.Info("asset stored", slog.String("name", name))
		return s.urlPrefix + "/" + name, nil
	}

	return "", fmt.Errorf("failed to allocate asset name after %d attempts", maxNameAttempts)
}

// Delete はSaveが返した公開URLのファイルを削除する。既に無い場合はnilを返す。
func (s *LocalStore) Delete(ctx context.Context, publicURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, err := assetNameFromURL(publicURL, s.urlPrefix)
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove asset file: %w", err)
	}
	s.logger.Info("asset removed", slog.String("name", name))
	return nil
}

// compile-time interface check
var _ AssetStore = (*LocalStore)(nil)
