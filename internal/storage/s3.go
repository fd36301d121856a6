package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3KeyPrefix はバケット内の保存先の接頭辞。
const s3KeyPrefix = "uploads/"

// objectClient はS3StoreがS3 APIに要求する操作。*s3.Clientがこれを満たす。
type objectClient interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Config はS3クライアントの接続設定。
type S3Config struct {
	Region    string
	Endpoint  string // MinIO等の互換ストレージを使う場合に指定する
	AccessKey string
	SecretKey string
}

// NewS3Client はS3Configからs3.Clientを生成する。
// AccessKeyが空の場合はAWSのデフォルト認証情報チェーンを使用する。
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// S3Store はS3バケットに画像を保存する。
type S3Store struct {
	client    objectClient
	bucket    string
	publicURL string
	logger    *slog.Logger
	now       func() time.Time
}

// NewS3Store はS3Storeを生成する。publicURLは保存したオブジェクトを公開するベースURL。
func NewS3Store(client objectClient, bucket, publicURL string, logger *slog.Logger) *S3Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{client: client, bucket: bucket, publicURL: publicURL, logger: logger, now: time.Now}
}

// Save は画像をバケットに保存し、公開URLを返す。
// 同名オブジェクトが存在する場合は時刻をずらして再試行する。
func (s *S3Store) Save(ctx context.Context, originalName string, r io.Reader) (string, error) {
	ext, err := Extension(originalName)
	if err != nil {
		return "", err
	}

	body, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read asset: %w", err)
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	now := s.now()
	for i := 0; i < maxNameAttempts; i++ {
		name := assetName(now, i, ext)
		key := s3KeyPrefix + name

		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
			IfNoneMatch: aws.String("*"),
		})
		if isPreconditionFailed(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to put object: %w", err)
		}

		s.logger.Info("asset stored", slog.String("bucket", s.bucket), slog.String("key", key))
		return s.publicURL + "/" + key, nil
	}

	return "", fmt.Errorf("failed to allocate asset key after %d attempts", maxNameAttempts)
}

// Delete はSaveが返した公開URLのオブジェクトを削除する。
func (s *S3Store) Delete(ctx context.Context, publicURL string) error {
	name, err := assetNameFromURL(publicURL, s.publicURL+"/"+strings.TrimSuffix(s3KeyPrefix, "/"))
	if err != nil {
		return err
	}
	key := s3KeyPrefix + name

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}

	s.logger.Info("asset removed", slog.String("bucket", s.bucket), slog.String("key", key))
	return nil
}

// isPreconditionFailed はIf-None-Matchによる書き込み拒否かを判定する。
func isPreconditionFailed(err error) bool {
	var statusErr interface{ HTTPStatusCode() int }
	return errors.As(err, &statusErr) && statusErr.HTTPStatusCode() == http.StatusPreconditionFailed
}

// compile-time interface check
var (
	_ AssetStore   = (*S3Store)(nil)
	_ objectClient = (*s3.Client)(nil)
)
