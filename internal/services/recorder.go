package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/Lllllllleong/achievementflow/internal/assets"
	"github.com/Lllllllleong/achievementflow/internal/gcp"
	"github.com/Lllllllleong/achievementflow/internal/models"
	"github.com/Lllllllleong/achievementflow/internal/records"
)

// RecorderConfig holds all configuration for the achievement recorder.
type RecorderConfig struct {
	ProjectID      string
	Bucket         string
	CollectionName string
	AssetBasePath  string
	CDNDomain      string
	PublicBaseURL  string
	EmulatorHost   string
	MaxUploadBytes int64
}

// LoadRecorderConfig loads and validates the recorder's environment variables.
func LoadRecorderConfig() (*RecorderConfig, error) {
	cfg := &RecorderConfig{
		ProjectID:      gcp.GetEnv("PROJECT_ID", ""),
		Bucket:         gcp.GetEnv("ACHIEVEMENTS_BUCKET", ""),
		CollectionName: gcp.GetEnv("FIRESTORE_COLLECTION", records.DefaultCollection),
		AssetBasePath:  gcp.GetEnv("ASSET_BASE_PATH", assets.DefaultBasePath),
		CDNDomain:      gcp.GetEnv("ASSET_CDN_DOMAIN", ""),
		PublicBaseURL:  gcp.GetEnv("OBJECT_STORAGE_PUBLIC_BASE_URL", ""),
		EmulatorHost:   gcp.GetEnv("STORAGE_EMULATOR_HOST", ""),
		MaxUploadBytes: DefaultMaxUploadBytes,
	}
	if raw := gcp.GetEnv("MAX_UPLOAD_BYTES", ""); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("MAX_UPLOAD_BYTES must be a positive integer, got %q", raw)
		}
		cfg.MaxUploadBytes = n
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultMaxUploadBytes bounds a multipart submission.
const DefaultMaxUploadBytes int64 = 32 << 20

// Validate reports the first missing required setting. PROJECT_ID may be
// omitted when running against the Firestore emulator.
func (c *RecorderConfig) Validate() error {
	if c.ProjectID == "" && gcp.GetEnv("FIRESTORE_EMULATOR_HOST", "") == "" {
		return fmt.Errorf("PROJECT_ID environment variable must be set")
	}
	if c.Bucket == "" {
		return fmt.Errorf("ACHIEVEMENTS_BUCKET environment variable must be set")
	}
	return nil
}

// Submission is one operator-entered achievement plus its file.
type Submission struct {
	Title       string
	StudentName string
	Description string
	Date        string
	FileName    string
	File        io.Reader
}

// SubmitResult is the outcome of a completed pipeline run. RefreshErr is set
// when the record was written but the follow-up listing failed.
type SubmitResult struct {
	SubmissionID string
	RecordID     string
	Asset        assets.Asset
	Records      []models.Achievement
	RefreshErr   error
}

// RecorderFunction runs the ingestion pipeline: upload, append, re-read.
type RecorderFunction struct {
	uploader *assets.Uploader
	repo     *records.Repository
	clients  *gcp.Clients
	config   RecorderConfig
}

// NewRecorder creates a RecorderFunction from the environment.
func NewRecorder(ctx context.Context) (*RecorderFunction, error) {
	cfg, err := LoadRecorderConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewRecorderFromConfig(ctx, *cfg)
}

// NewRecorderFromConfig dials the GCP stores described by cfg.
func NewRecorderFromConfig(ctx context.Context, cfg RecorderConfig) (*RecorderFunction, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	clients, err := gcp.NewClients(ctx, cfg.ProjectID)
	if err != nil {
		return nil, err
	}

	blobs, err := assets.NewGCSBlobStore(clients.Storage, gcp.PublicURLConfig{
		Bucket:        cfg.Bucket,
		CDNDomain:     cfg.CDNDomain,
		PublicBaseURL: cfg.PublicBaseURL,
		EmulatorHost:  cfg.EmulatorHost,
	})
	if err != nil {
		clients.Close()
		return nil, fmt.Errorf("failed to create blob store: %w", err)
	}

	f := NewRecorderWith(
		assets.NewUploader(blobs, cfg.AssetBasePath),
		records.NewRepository(records.NewFirestoreStore(clients.Firestore), cfg.CollectionName),
	)
	f.clients = clients
	f.config = cfg
	slog.Info("Achievement recorder initialized.", "bucket", cfg.Bucket, "collection", cfg.CollectionName)
	return f, nil
}

// NewRecorderWith assembles a RecorderFunction from already-built parts.
func NewRecorderWith(uploader *assets.Uploader, repo *records.Repository) *RecorderFunction {
	return &RecorderFunction{
		uploader: uploader,
		repo:     repo,
		config:   RecorderConfig{MaxUploadBytes: DefaultMaxUploadBytes},
	}
}

// Config returns the settings the recorder was built with.
func (f *RecorderFunction) Config() RecorderConfig { return f.config }

// Close releases the store clients, if the recorder owns any.
func (f *RecorderFunction) Close() error {
	if f.clients == nil {
		return nil
	}
	return f.clients.Close()
}

// Submit validates s, uploads its file, writes the record, and re-reads the
// full list. Each step starts only after the previous one has completed, so
// a failed upload never produces a document.
func (f *RecorderFunction) Submit(ctx context.Context, s Submission) (*SubmitResult, error) {
	submissionID := uuid.NewString()
	logCtx := slog.With("submissionId", submissionID, "fileName", s.FileName)

	if err := validateSubmission(s); err != nil {
		logCtx.Warn("Rejected submission.", "error", err)
		return nil, err
	}

	asset, err := f.uploader.Upload(ctx, s.FileName, s.File)
	if err != nil {
		logCtx.Error("Submission aborted; no record written.", "error", err)
		return nil, err
	}
	logCtx = logCtx.With("objectKey", asset.Key)

	recordID, err := f.repo.Append(ctx, models.AchievementInput{
		Title:       s.Title,
		StudentName: s.StudentName,
		Description: s.Description,
		Date:        s.Date,
		FileURL:     asset.URL,
		FileName:    s.FileName,
	})
	if err != nil {
		var wErr *models.WriteError
		if errors.As(err, &wErr) {
			// The blob stays behind; there is no cleanup path.
			logCtx.Error("Record write failed after upload; asset orphaned.", "fileURL", asset.URL, "error", err)
		} else {
			logCtx.Error("Record rejected after upload; asset orphaned.", "fileURL", asset.URL, "error", err)
		}
		return nil, err
	}
	logCtx = logCtx.With("recordId", recordID)

	res := &SubmitResult{SubmissionID: submissionID, RecordID: recordID, Asset: asset}
	list, err := f.repo.ListAll(ctx)
	if err != nil {
		logCtx.Warn("Record written but refresh failed.", "error", err)
		res.RefreshErr = err
		return res, nil
	}
	res.Records = list
	logCtx.Info("Submission complete.", "recordCount", len(list))
	return res, nil
}

// List returns every record, newest date first.
func (f *RecorderFunction) List(ctx context.Context) ([]models.Achievement, error) {
	return f.repo.ListAll(ctx)
}

func validateSubmission(s Submission) error {
	var missing []string
	if strings.TrimSpace(s.Title) == "" {
		missing = append(missing, "title")
	}
	if strings.TrimSpace(s.StudentName) == "" {
		missing = append(missing, "studentName")
	}
	if strings.TrimSpace(s.Date) == "" {
		missing = append(missing, "date")
	}
	if s.File == nil || strings.TrimSpace(s.FileName) == "" {
		missing = append(missing, "file")
	}
	if len(missing) > 0 {
		return &models.ValidationError{Fields: missing}
	}
	return records.ValidateDate(s.Date)
}
