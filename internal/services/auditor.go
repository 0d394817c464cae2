package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Lllllllleong/achievementflow/internal/assets"
	"github.com/Lllllllleong/achievementflow/internal/gcp"
)

// GCSEvent is the payload of a GCS object-finalized event.
type GCSEvent struct {
	Bucket      string `json:"bucket"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        string `json:"size"`
}

// AuditFinding classifies a finalized object.
type AuditFinding string

const (
	FindingOK                AuditFinding = "ok"
	FindingOtherBucket       AuditFinding = "other_bucket"
	FindingOutsidePrefix     AuditFinding = "outside_prefix"
	FindingMalformedKey      AuditFinding = "malformed_key"
	FindingUnexpectedFileExt AuditFinding = "unexpected_extension"
)

// AuditorConfig holds configuration for the asset auditor.
type AuditorConfig struct {
	Bucket        string
	AssetBasePath string
}

// AuditorFunction logs every object that lands in the achievements bucket.
// It only reads event payloads; it never touches stored objects.
type AuditorFunction struct {
	config AuditorConfig
}

// NewAuditor creates an AuditorFunction from the environment.
func NewAuditor() *AuditorFunction {
	return NewAuditorWith(AuditorConfig{
		Bucket:        gcp.GetEnv("ACHIEVEMENTS_BUCKET", ""),
		AssetBasePath: gcp.GetEnv("ASSET_BASE_PATH", assets.DefaultBasePath),
	})
}

// NewAuditorWith creates an AuditorFunction from explicit settings.
func NewAuditorWith(cfg AuditorConfig) *AuditorFunction {
	cfg.AssetBasePath = strings.Trim(cfg.AssetBasePath, "/")
	if cfg.AssetBasePath == "" {
		cfg.AssetBasePath = assets.DefaultBasePath
	}
	return &AuditorFunction{config: cfg}
}

// Process classifies e and writes one audit log line for it.
func (f *AuditorFunction) Process(ctx context.Context, e GCSEvent) AuditFinding {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)

	if f.config.Bucket != "" && e.Bucket != f.config.Bucket {
		logCtx.Info("Ignoring object from another bucket.")
		return FindingOtherBucket
	}
	if !strings.HasPrefix(e.Name, f.config.AssetBasePath+"/") {
		logCtx.Info("Ignoring object outside the achievements prefix.")
		return FindingOutsidePrefix
	}

	name, uploadedAt, ok := assets.ParseObjectKey(f.config.AssetBasePath, e.Name)
	if !ok {
		logCtx.Warn("Asset key does not follow <prefix>/<name>-<unixMillis>.")
		return FindingMalformedKey
	}
	logCtx = logCtx.With("fileName", name, "uploadedAt", uploadedAt, "contentType", e.ContentType, "size", e.Size)

	if !assets.IsAcceptedExtension(name) {
		logCtx.Warn("Asset stored with an extension outside the accepted list.", "accepted", assets.AcceptedExtensions)
		return FindingUnexpectedFileExt
	}
	logCtx.Info("Asset finalized.")
	return FindingOK
}
