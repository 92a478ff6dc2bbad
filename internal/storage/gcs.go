package storage

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
)

// GCSProvider mirrors objects to a Google Cloud Storage bucket using
// Application Default Credentials.
type GCSProvider struct {
	client *gcs.Client
	bucket string
}

// NewGCSProvider creates the client and checks bucket access up front.
func NewGCSProvider(ctx context.Context, bucket string, logger *zap.Logger) (*GCSProvider, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create GCS client: %w", err)
	}

	if _, err := client.Bucket(bucket).Attrs(ctx); err != nil {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("close GCS client after failed bucket check", zap.Error(cerr))
		}
		return nil, fmt.Errorf("get GCS bucket %q attributes: %w", bucket, err)
	}

	return &GCSProvider{client: client, bucket: bucket}, nil
}

// Put uploads data under key. Close on the writer finalizes the upload and
// must succeed for the put to count.
func (p *GCSProvider) Put(ctx context.Context, key, contentType string, data []byte) error {
	w := p.client.Bucket(p.bucket).Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return fmt.Errorf("write gs://%s/%s: %w", p.bucket, key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finalize gs://%s/%s: %w", p.bucket, key, err)
	}
	return nil
}

// Close releases the underlying client.
func (p *GCSProvider) Close() error {
	return p.client.Close()
}
