package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Lllllllleong/achievementflow/internal/assets"
	"github.com/Lllllllleong/achievementflow/internal/assets/assetstest"
	"github.com/Lllllllleong/achievementflow/internal/models"
	"github.com/Lllllllleong/achievementflow/internal/records"
	"github.com/Lllllllleong/achievementflow/internal/records/recordstest"
	"github.com/Lllllllleong/achievementflow/internal/services"
	"github.com/Lllllllleong/achievementflow/internal/view"
)

type harness struct {
	blobs *assetstest.BlobStore
	docs  *recordstest.MemoryStore
	seen  []services.RecorderConfig
}

func newHarness() *harness {
	return &harness{blobs: assetstest.NewBlobStore(), docs: recordstest.NewMemoryStore()}
}

func (h *harness) factory(ctx context.Context, cfg services.RecorderConfig) (Pipeline, error) {
	h.seen = append(h.seen, cfg)
	ms := int64(1709251200000 + len(h.seen))
	uploader := assets.NewUploader(h.blobs, cfg.AssetBasePath, assets.WithClock(func() time.Time { return time.UnixMilli(ms) }))
	repo := records.NewRepository(h.docs, cfg.CollectionName)
	return services.NewRecorderWith(uploader, repo), nil
}

func (h *harness) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cmd := NewRootCmd(WithPipelineFactory(h.factory))
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o644))
	return path
}

func TestSubmitAndList(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness()
	cert := writeFile(t, "cert.pdf")

	out, stderr, err := h.run(t, "submit", "--title", "Science Fair", "--student", "Ravi", "--date", "2024-03-01", "--file", cert)
	require.NoError(t, err, stderr)
	assert.Contains(t, out, "Recorded ")
	assert.Contains(t, out, "Science Fair")
	assert.Contains(t, stderr, "Uploading...")
	assert.Equal(t, 1, h.blobs.Len())

	out, _, err = h.run(t, "list", "--search", "ravi", "--output", "json")
	require.NoError(t, err)
	var list []models.Achievement
	require.NoError(t, json.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "cert.pdf", list[0].FileName)
	assert.True(t, strings.HasPrefix(list[0].FileURL, "https://blobs.test/achievements/cert.pdf-"))
}

func TestSubmitRejectsUnlistedExtension(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness()
	gif := writeFile(t, "anim.gif")

	_, _, err := h.run(t, "submit", "--title", "Poster", "--student", "Ravi", "--date", "2024-03-01", "--file", gif)
	assert.ErrorContains(t, err, "accepted file types")
	assert.Empty(t, h.seen)
}

func TestSubmitRequiresAllFields(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness()

	_, _, err := h.run(t, "submit", "--title", "Science Fair", "--date", "2024-03-01")
	assert.ErrorContains(t, err, "please fill all fields")
}

func TestListEmptyShowsSentinel(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness()

	out, _, err := h.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, view.EmptyMessage)
}

func TestListReadFailureDegrades(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness()
	h.docs.FailReads(true)

	out, stderr, err := h.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, stderr, "showing an empty list")
	assert.Contains(t, out, view.EmptyMessage)
}

func TestListYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness()
	_, err := h.docs.Add(context.Background(), records.DefaultCollection, map[string]any{
		"title": "Math Olympiad", "studentName": "Asha", "date": "2024-02-10",
	})
	require.NoError(t, err)

	out, _, err := h.run(t, "list", "-o", "yaml")
	require.NoError(t, err)
	var list []models.Achievement
	require.NoError(t, yaml.Unmarshal([]byte(out), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Asha", list[0].StudentName)
}

func TestListUnknownOutput(t *testing.T) {
	t.Chdir(t.TempDir())
	_, _, err := newHarness().run(t, "list", "-o", "xml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestConfigFromEnvAndFlags(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROJECT_ID", "env-project")
	t.Setenv("ACHIEVEMENTS_BUCKET", "env-bucket")
	h := newHarness()

	_, _, err := h.run(t, "--bucket", "flag-bucket", "list")
	require.NoError(t, err)
	require.Len(t, h.seen, 1)
	assert.Equal(t, "env-project", h.seen[0].ProjectID)
	assert.Equal(t, "flag-bucket", h.seen[0].Bucket)
	assert.Equal(t, records.DefaultCollection, h.seen[0].CollectionName)
	assert.Equal(t, assets.DefaultBasePath, h.seen[0].AssetBasePath)
}

func TestConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PROJECT_ID", "")
	t.Setenv("ACHIEVEMENTS_BUCKET", "")
	path := filepath.Join(t.TempDir(), "achievementctl.yaml")
	require.NoError(t, os.WriteFile(path, []byte("project_id: file-project\nbucket: file-bucket\ncollection: awards\n"), 0o644))
	h := newHarness()

	cmd := NewRootCmd(WithPipelineFactory(h.factory))
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "list"})
	require.NoError(t, cmd.Execute())

	require.Len(t, h.seen, 1)
	assert.Equal(t, "file-bucket", h.seen[0].Bucket)
	assert.Equal(t, "awards", h.seen[0].CollectionName)
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	t.Chdir(t.TempDir())
	h := newHarness()

	_, _, err := h.run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "list")
	assert.ErrorContains(t, err, "read config")
	assert.Empty(t, h.seen)
}
