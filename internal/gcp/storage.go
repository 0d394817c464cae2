package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrObjectExists is returned by WriteObjectAtomically when the target object
// is already present. Existing objects are never overwritten.
var ErrObjectExists = errors.New("object already exists")

// GetEnv is a helper to read an environment variable or return a default value.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// NewStorageClient creates a Cloud Storage client. When STORAGE_EMULATOR_HOST is
// set the client talks to the emulator without credentials.
func NewStorageClient(ctx context.Context) (*storage.Client, error) {
	var opts []option.ClientOption
	if strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")) != "" {
		opts = append(opts, option.WithoutAuthentication())
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	return client, nil
}

// WriteObjectAtomically streams r into a GCS object only if it doesn't already exist.
// A precondition failure is reported as ErrObjectExists. If r fails mid-stream
// the upload is abandoned and no object is created.
func WriteObjectAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName, contentType string, r io.Reader) (int64, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	if contentType != "" {
		writer.ContentType = contentType
	}

	n, err := io.Copy(writer, r)
	if err != nil {
		// Canceling before Close abandons the upload instead of committing
		// the bytes copied so far.
		cancel()
		_ = writer.Close()
		if isPreconditionFailed(err) {
			return n, fmt.Errorf("%s: %w", objectName, ErrObjectExists)
		}
		slog.Error("Failed to copy content to GCS object", "object", objectName, "error", err)
		return n, fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			return n, fmt.Errorf("%s: %w", objectName, ErrObjectExists)
		}
		slog.Error("Failed to close GCS writer", "object", objectName, "error", err)
		return n, fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return n, nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// PublicURLConfig decides how stored objects are addressed from outside.
type PublicURLConfig struct {
	Bucket        string
	CDNDomain     string
	PublicBaseURL string
	EmulatorHost  string
}

// PublicURL returns a dereferenceable URL for key. Precedence: CDN domain,
// emulator media endpoint, explicit public base URL, storage.googleapis.com.
func (c PublicURLConfig) PublicURL(key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if c.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", strings.TrimRight(c.CDNDomain, "/"), escapeObjectPath(key))
	}
	if c.EmulatorHost != "" {
		base := strings.TrimRight(strings.TrimSpace(c.PublicBaseURL), "/")
		if base == "" {
			base = strings.TrimRight(strings.TrimSpace(c.EmulatorHost), "/")
		}
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(c.Bucket), url.PathEscape(key))
	}
	if c.PublicBaseURL != "" {
		return fmt.Sprintf("%s/%s/%s", strings.TrimRight(c.PublicBaseURL, "/"), c.Bucket, escapeObjectPath(key))
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.Bucket, escapeObjectPath(key))
}

func escapeObjectPath(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

// ContentTypeForName guesses the MIME type from a file name's extension.
func ContentTypeForName(name string) string {
	switch strings.ToLower(path.Ext(strings.TrimSpace(name))) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
