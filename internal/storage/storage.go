package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/ndtrung/vietshop/internal/config"
)

// ErrUnknownURL is returned when a delete request carries a URL outside
// the bucket's public prefix.
var ErrUnknownURL = errors.New("storage: url does not belong to this bucket")

type Client struct {
	mc         *minio.Client
	bucket     string
	publicBase string
}

func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	mc, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessKey, cfg.MinioSecretKey, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("creating storage client: %w", err)
	}

	exists, err := mc.BucketExists(ctx, cfg.StorageBucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		if err := mc.MakeBucket(ctx, cfg.StorageBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket: %w", err)
		}
	}

	return &Client{
		mc:         mc,
		bucket:     cfg.StorageBucket,
		publicBase: strings.TrimSuffix(cfg.StoragePublic, "/"),
	}, nil
}

// Upload stores the object under a random key that keeps the original
// extension and returns its public URL.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s%s",
		time.Now().UTC().Format("2006/01"),
		uuid.NewString(),
		strings.ToLower(path.Ext(filename)),
	)

	if _, err := c.mc.PutObject(ctx, c.bucket, key, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}

	return c.publicBase + "/" + key, nil
}

// Delete removes the object behind a public URL. The URL must carry the
// known public prefix; anything else is rejected before touching storage.
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	key, ok := c.keyFromURL(publicURL)
	if !ok {
		return ErrUnknownURL
	}
	if err := c.mc.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("removing object: %w", err)
	}
	return nil
}

func (c *Client) keyFromURL(publicURL string) (string, bool) {
	if c.publicBase == "" || !strings.HasPrefix(publicURL, c.publicBase+"/") {
		return "", false
	}
	key := strings.TrimPrefix(publicURL, c.publicBase+"/")
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
