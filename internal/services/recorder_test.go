package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/achievementflow/internal/assets"
	"github.com/Lllllllleong/achievementflow/internal/assets/assetstest"
	"github.com/Lllllllleong/achievementflow/internal/models"
	"github.com/Lllllllleong/achievementflow/internal/records"
	"github.com/Lllllllleong/achievementflow/internal/records/recordstest"
)

type fixture struct {
	blobs    *assetstest.BlobStore
	docs     *recordstest.MemoryStore
	repo     *records.Repository
	recorder *RecorderFunction
}

func newFixture() *fixture {
	blobs := assetstest.NewBlobStore()
	docs := recordstest.NewMemoryStore()
	ms := int64(1709251200000)
	uploader := assets.NewUploader(blobs, "achievements", assets.WithClock(func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}))
	repo := records.NewRepository(docs, "")
	return &fixture{blobs: blobs, docs: docs, repo: repo, recorder: NewRecorderWith(uploader, repo)}
}

func submission(title, student, date, file string) Submission {
	return Submission{
		Title:       title,
		StudentName: student,
		Date:        date,
		FileName:    file,
		File:        strings.NewReader("content of " + file),
	}
}

func TestSubmitEndToEnd(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.recorder.Submit(ctx, submission("Chess Open", "Meera", "2023-11-02", "chess.png"))
	require.NoError(t, err)

	res, err := fx.recorder.Submit(ctx, submission("Science Fair", "Ravi", "2024-03-01", "cert.pdf"))
	require.NoError(t, err)
	require.NoError(t, res.RefreshErr)

	assert.NotEmpty(t, res.SubmissionID)
	assert.NotEmpty(t, res.RecordID)
	assert.True(t, strings.HasPrefix(res.Asset.Key, "achievements/cert.pdf-"))
	assert.Equal(t, "https://blobs.test/"+res.Asset.Key, res.Asset.URL)

	require.Len(t, res.Records, 2)
	first := res.Records[0]
	assert.Equal(t, res.RecordID, first.ID)
	assert.Equal(t, "Science Fair", first.Title)
	assert.Equal(t, res.Asset.URL, first.FileURL)
	assert.Equal(t, "cert.pdf", first.FileName)
}

func TestSubmitUploadFailureWritesNothing(t *testing.T) {
	fx := newFixture()
	ctx := context.Background()

	_, err := fx.recorder.Submit(ctx, submission("Chess Open", "Meera", "2023-11-02", "chess.png"))
	require.NoError(t, err)
	before, err := fx.repo.ListAll(ctx)
	require.NoError(t, err)

	fx.blobs.FailNext()
	_, err = fx.recorder.Submit(ctx, submission("Science Fair", "Ravi", "2024-03-01", "cert.pdf"))

	var uErr *models.UploadError
	require.True(t, errors.As(err, &uErr))
	assert.Equal(t, 1, fx.docs.Adds())

	after, err := fx.repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestSubmitValidationHappensBeforeAnyNetworkCall(t *testing.T) {
	cases := []struct {
		name   string
		s      Submission
		fields []string
	}{
		{"no title", submission("", "Ravi", "2024-03-01", "cert.pdf"), []string{"title"}},
		{"no student", submission("Fair", "", "2024-03-01", "cert.pdf"), []string{"studentName"}},
		{"no date", submission("Fair", "Ravi", "", "cert.pdf"), []string{"date"}},
		{"no file", Submission{Title: "Fair", StudentName: "Ravi", Date: "2024-03-01"}, []string{"file"}},
		{"bad date", submission("Fair", "Ravi", "1 March 2024", "cert.pdf"), []string{"date"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fx := newFixture()
			_, err := fx.recorder.Submit(context.Background(), tc.s)

			var vErr *models.ValidationError
			require.True(t, errors.As(err, &vErr), "got %v", err)
			assert.Equal(t, tc.fields, vErr.Fields)
			assert.Empty(t, fx.blobs.Attempts())
			assert.Equal(t, 0, fx.docs.Adds())
		})
	}
}

func TestSubmitWriteFailureLeavesOrphanBlob(t *testing.T) {
	fx := newFixture()
	fx.docs.FailWrites(true)

	_, err := fx.recorder.Submit(context.Background(), submission("Science Fair", "Ravi", "2024-03-01", "cert.pdf"))

	var wErr *models.WriteError
	require.True(t, errors.As(err, &wErr))
	assert.Equal(t, 1, fx.blobs.Len())
	assert.Equal(t, 0, fx.docs.Len(records.DefaultCollection))
	assert.Equal(t, 0, fx.docs.Queries())
}

func TestSubmitRetryUploadsSecondDistinctBlob(t *testing.T) {
	fx := newFixture()
	fx.docs.FailWrites(true)
	_, err := fx.recorder.Submit(context.Background(), submission("Science Fair", "Ravi", "2024-03-01", "cert.pdf"))
	require.Error(t, err)

	fx.docs.FailWrites(false)
	res, err := fx.recorder.Submit(context.Background(), submission("Science Fair", "Ravi", "2024-03-01", "cert.pdf"))
	require.NoError(t, err)

	attempts := fx.blobs.Attempts()
	require.Len(t, attempts, 2)
	assert.NotEqual(t, attempts[0], attempts[1])
	assert.Equal(t, attempts[1], res.Asset.Key)
	assert.Len(t, res.Records, 1)
}

func TestSubmitRefreshFailureStillReportsRecord(t *testing.T) {
	fx := newFixture()
	fx.docs.FailReads(true)

	res, err := fx.recorder.Submit(context.Background(), submission("Science Fair", "Ravi", "2024-03-01", "cert.pdf"))
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.NotEmpty(t, res.RecordID)
	assert.Nil(t, res.Records)

	var rErr *models.ReadError
	assert.True(t, errors.As(res.RefreshErr, &rErr))
}

func TestLoadRecorderConfig(t *testing.T) {
	t.Setenv("PROJECT_ID", "proj")
	t.Setenv("ACHIEVEMENTS_BUCKET", "bucket")
	t.Setenv("FIRESTORE_COLLECTION", "")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")

	cfg, err := LoadRecorderConfig()
	require.NoError(t, err)
	assert.Equal(t, "proj", cfg.ProjectID)
	assert.Equal(t, "bucket", cfg.Bucket)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, assets.DefaultBasePath, cfg.AssetBasePath)
}

func TestLoadRecorderConfigRequiresBucket(t *testing.T) {
	t.Setenv("PROJECT_ID", "proj")
	t.Setenv("ACHIEVEMENTS_BUCKET", "")

	_, err := LoadRecorderConfig()
	assert.ErrorContains(t, err, "ACHIEVEMENTS_BUCKET")
}

func TestLoadRecorderConfigProjectOptionalOnEmulator(t *testing.T) {
	t.Setenv("PROJECT_ID", "")
	t.Setenv("ACHIEVEMENTS_BUCKET", "bucket")
	t.Setenv("FIRESTORE_EMULATOR_HOST", "")
	_, err := LoadRecorderConfig()
	assert.ErrorContains(t, err, "PROJECT_ID")

	t.Setenv("FIRESTORE_EMULATOR_HOST", "localhost:8081")
	cfg, err := LoadRecorderConfig()
	require.NoError(t, err)
	assert.Empty(t, cfg.ProjectID)
}

func TestLoadRecorderConfigRejectsBadUploadLimit(t *testing.T) {
	t.Setenv("PROJECT_ID", "proj")
	t.Setenv("ACHIEVEMENTS_BUCKET", "bucket")
	t.Setenv("MAX_UPLOAD_BYTES", "lots")

	_, err := LoadRecorderConfig()
	assert.ErrorContains(t, err, "MAX_UPLOAD_BYTES")
}
