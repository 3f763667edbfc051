// File: /services/storage.go
package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"motoroutes-api/config"
)

// FileStorage persists uploaded files and resolves their public URL.
// A reference is the storage-relative path returned by Save.
type FileStorage interface {
	Save(ctx context.Context, dir, filename string, content io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
	URL(ref string) string
}

func NewFileStorage(ctx context.Context, cfg *config.Config) (FileStorage, error) {
	switch cfg.StorageDriver {
	case "local", "":
		return NewLocalStorage(cfg.MediaRoot, cfg.MediaURL), nil
	case "s3":
		return NewS3Storage(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3PublicURL)
	default:
		return nil, fmt.Errorf("unsupported STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// removeFiles deletes stored files whose rows are already gone. Failures are only logged.
func removeFiles(ctx context.Context, storage FileStorage, logger zerolog.Logger, refs []string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := storage.Delete(ctx, ref); err != nil {
			logger.Warn().Err(err).Str("ref", ref).Msg("could not remove stored file")
		}
	}
}

// storedName keeps the original extension behind a random name.
func storedName(dir, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(dir, uuid.NewString()+ext)
}

type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &LocalStorage{root: root, baseURL: baseURL}
}

func (s *LocalStorage) Save(_ context.Context, dir, filename string, content io.Reader, _ int64, _ string) (string, error) {
	ref := storedName(dir, filename)
	target := filepath.Join(s.root, filepath.FromSlash(ref))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}

	f, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, content); err != nil {
		_ = os.Remove(target)
		return "", fmt.Errorf("write media file: %w", err)
	}
	return ref, nil
}

func (s *LocalStorage) Delete(_ context.Context, ref string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStorage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.baseURL + ref
}

type S3Storage struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

func NewS3Storage(ctx context.Context, bucket, region, publicURL string) (*S3Storage, error) {
	if bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required for s3 storage")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}

	return &S3Storage{
		client:    s3.NewFromConfig(awsCfg),
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

func (s *S3Storage) Save(ctx context.Context, dir, filename string, content io.Reader, size int64, contentType string) (string, error) {
	key := storedName(dir, filename)

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   content,
	}
	if size > 0 {
		input.ContentLength = aws.Int64(size)
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("put s3 object: %w", err)
	}
	return key, nil
}

func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("delete s3 object: %w", err)
	}
	return nil
}

func (s *S3Storage) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return s.publicURL + "/" + ref
}
