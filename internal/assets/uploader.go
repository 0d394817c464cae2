// Package assets stores uploaded achievement files in the blob store and
// hands back the URL the metadata record will point at.
package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/Lllllllleong/achievementflow/internal/gcp"
	"github.com/Lllllllleong/achievementflow/internal/models"
)

// DefaultBasePath is the key prefix shared by every achievement asset.
const DefaultBasePath = "achievements"

// BlobStore is the byte-storage collaborator. Put must not return until the
// object is durably stored, and the returned URL must be dereferenceable.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
}

// Asset describes one stored file.
type Asset struct {
	Key  string
	Name string
	URL  string
}

// Uploader streams files into a BlobStore under collision-resistant keys.
type Uploader struct {
	store    BlobStore
	basePath string
	now      func() time.Time
}

// Option configures an Uploader.
type Option func(*Uploader)

// WithClock overrides the time source used for key suffixes.
func WithClock(now func() time.Time) Option {
	return func(u *Uploader) { u.now = now }
}

// NewUploader returns an Uploader writing under basePath.
func NewUploader(store BlobStore, basePath string, opts ...Option) *Uploader {
	basePath = strings.Trim(strings.TrimSpace(basePath), "/")
	if basePath == "" {
		basePath = DefaultBasePath
	}
	u := &Uploader{store: store, basePath: basePath, now: time.Now}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// ObjectKey derives "<basePath>/<originalName>-<unixMillis>".
func ObjectKey(basePath, originalName string, now time.Time) string {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(originalName), "\\", "/"))
	return fmt.Sprintf("%s/%s-%d", basePath, name, now.UnixMilli())
}

// Upload stores r under a fresh key and returns once the transfer has
// completed. Every failure is an *models.UploadError; nothing is retried.
func (u *Uploader) Upload(ctx context.Context, originalName string, r io.Reader) (Asset, error) {
	key := ObjectKey(u.basePath, originalName, u.now())
	logCtx := slog.With("objectKey", key, "fileName", originalName)

	if r == nil {
		return Asset{}, &models.UploadError{Key: key, Err: fmt.Errorf("no file content")}
	}

	url, err := u.store.Put(ctx, key, gcp.ContentTypeForName(originalName), r)
	if err != nil {
		logCtx.Error("Asset upload failed", "error", err)
		return Asset{}, &models.UploadError{Key: key, Err: err}
	}

	logCtx.Info("Asset uploaded.", "fileURL", url)
	return Asset{Key: key, Name: originalName, URL: url}, nil
}

// ParseObjectKey splits a key produced by ObjectKey back into the original
// file name and upload time. ok is false for keys outside basePath or
// without a millisecond suffix.
func ParseObjectKey(basePath, key string) (name string, uploadedAt time.Time, ok bool) {
	rest, found := strings.CutPrefix(key, strings.Trim(basePath, "/")+"/")
	if !found || strings.Contains(rest, "/") {
		return "", time.Time{}, false
	}
	i := strings.LastIndex(rest, "-")
	if i <= 0 || i == len(rest)-1 {
		return "", time.Time{}, false
	}
	ms, err := strconv.ParseInt(rest[i+1:], 10, 64)
	if err != nil || ms < 0 {
		return "", time.Time{}, false
	}
	return rest[:i], time.UnixMilli(ms), true
}
