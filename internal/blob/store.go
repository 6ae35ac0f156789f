// Package blob keeps notice attachments in an S3-compatible bucket.
package blob

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"CollegeNoticeBoard/internal/notice"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// objects is the part of *minio.Client the store calls.
type objects interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, key string, opts minio.RemoveObjectOptions) error
}

var _ objects = (*minio.Client)(nil)

// Store uploads attachments and deletes them by their public URL.
type Store struct {
	client     objects
	bucket     string
	publicBase string
	logger     *zap.Logger
	newID      func() string
}

// NewStore returns a store writing to bucket. Object URLs are publicBase/bucket/key.
func NewStore(client *minio.Client, bucket, publicBase string, logger *zap.Logger) *Store {
	return newStore(client, bucket, publicBase, logger)
}

func newStore(client objects, bucket, publicBase string, logger *zap.Logger) *Store {
	return &Store{
		client:     client,
		bucket:     bucket,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger.Named("blob"),
		newID:      uuid.NewString,
	}
}

// EnsureBucket creates the bucket when it is missing.
func (s *Store) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("bucket created", zap.String("bucket", s.bucket))
	return nil
}

// Upload writes file under pathHint and returns its public URL.
func (s *Store) Upload(ctx context.Context, pathHint string, file notice.Upload) (string, error) {
	key := path.Join(pathHint, s.newID()+"_"+sanitize(file.Name))
	size := file.Size
	if size <= 0 {
		size = -1
	}
	opts := minio.PutObjectOptions{ContentType: file.ContentType}
	if opts.ContentType == "" {
		opts.ContentType = "application/octet-stream"
	}
	if _, err := s.client.PutObject(ctx, s.bucket, key, file.Body, size, opts); err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}
	return s.URL(key), nil
}

// Delete removes the object a URL from Upload points at.
func (s *Store) Delete(ctx context.Context, rawURL string) error {
	key, err := s.Key(rawURL)
	if err != nil {
		return err
	}
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

func (s *Store) URL(key string) string {
	return s.publicBase + "/" + s.bucket + "/" + key
}

// Key recovers the object key from a public URL.
func (s *Store) Key(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse attachment url: %w", err)
	}
	prefix := "/" + s.bucket + "/"
	p, err := url.PathUnescape(u.EscapedPath())
	if err != nil {
		return "", fmt.Errorf("parse attachment url: %w", err)
	}
	if i := strings.Index(p, prefix); i >= 0 {
		if key := p[i+len(prefix):]; key != "" {
			return key, nil
		}
	}
	return "", fmt.Errorf("attachment url %q is not in bucket %s", rawURL, s.bucket)
}

// sanitize keeps a file name safe to use inside an object key.
func sanitize(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 || name == "." || name == "/" {
		return "file"
	}
	return b.String()
}
