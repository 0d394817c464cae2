package assets

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"

	"github.com/Lllllllleong/achievementflow/internal/gcp"
)

// GCSBlobStore writes assets to a single Cloud Storage bucket.
type GCSBlobStore struct {
	bucket *storage.BucketHandle
	urls   gcp.PublicURLConfig
}

// NewGCSBlobStore wraps client for the bucket named in urls.
func NewGCSBlobStore(client *storage.Client, urls gcp.PublicURLConfig) (*GCSBlobStore, error) {
	if client == nil {
		return nil, fmt.Errorf("storage client is required")
	}
	if urls.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}
	return &GCSBlobStore{bucket: client.Bucket(urls.Bucket), urls: urls}, nil
}

// Put writes r to key and returns its public URL. An existing object at key
// is a failure, never an overwrite.
func (s *GCSBlobStore) Put(ctx context.Context, key, contentType string, r io.Reader) (string, error) {
	if _, err := gcp.WriteObjectAtomically(ctx, s.bucket, key, contentType, r); err != nil {
		if errors.Is(err, gcp.ErrObjectExists) {
			return "", fmt.Errorf("key collision: %w", err)
		}
		return "", err
	}
	return s.urls.PublicURL(key), nil
}
