package assets

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lllllllleong/achievementflow/internal/assets/assetstest"
	"github.com/Lllllllleong/achievementflow/internal/models"
)

func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func TestObjectKey(t *testing.T) {
	now := time.UnixMilli(1709251200123)

	assert.Equal(t, "achievements/cert.pdf-1709251200123", ObjectKey("achievements", "cert.pdf", now))
	assert.Equal(t, "achievements/cert.pdf-1709251200123", ObjectKey("achievements", "/tmp/uploads/cert.pdf", now))
	assert.Equal(t, "achievements/cert.pdf-1709251200123", ObjectKey("achievements", `C:\Users\me\cert.pdf`, now))
}

func TestUploadStoresBlobAndReturnsURL(t *testing.T) {
	store := assetstest.NewBlobStore()
	u := NewUploader(store, "achievements", WithClock(fixedClock(1000)))

	asset, err := u.Upload(context.Background(), "cert.pdf", strings.NewReader("%PDF-1.7"))
	require.NoError(t, err)

	assert.Equal(t, "achievements/cert.pdf-1000", asset.Key)
	assert.Equal(t, "cert.pdf", asset.Name)
	assert.Equal(t, "https://blobs.test/achievements/cert.pdf-1000", asset.URL)

	data, ok := store.Object(asset.Key)
	require.True(t, ok)
	assert.Equal(t, "%PDF-1.7", string(data))
	assert.Equal(t, "application/pdf", store.ContentType(asset.Key))
}

func TestUploadSameNameDifferentMillisDoNotCollide(t *testing.T) {
	store := assetstest.NewBlobStore()
	ms := int64(1000)
	u := NewUploader(store, "achievements", WithClock(func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}))

	first, err := u.Upload(context.Background(), "cert.pdf", strings.NewReader("a"))
	require.NoError(t, err)
	second, err := u.Upload(context.Background(), "cert.pdf", strings.NewReader("b"))
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.Equal(t, 2, store.Len())
}

func TestUploadFailureIsUploadError(t *testing.T) {
	store := assetstest.NewBlobStore()
	store.FailNext()
	u := NewUploader(store, "", WithClock(fixedClock(42)))

	_, err := u.Upload(context.Background(), "photo.png", strings.NewReader("png"))
	require.Error(t, err)

	var uploadErr *models.UploadError
	require.True(t, errors.As(err, &uploadErr))
	assert.Equal(t, "achievements/photo.png-42", uploadErr.Key)
	assert.ErrorIs(t, err, assetstest.ErrInjected)
	assert.Equal(t, 0, store.Len())
}

func TestUploadNilReader(t *testing.T) {
	u := NewUploader(assetstest.NewBlobStore(), "achievements")

	_, err := u.Upload(context.Background(), "cert.pdf", nil)
	var uploadErr *models.UploadError
	assert.True(t, errors.As(err, &uploadErr))
}

func TestIsAcceptedExtension(t *testing.T) {
	for _, name := range []string{"a.pdf", "b.JPG", "c.jpeg", "d.Png"} {
		assert.True(t, IsAcceptedExtension(name), name)
	}
	for _, name := range []string{"a.gif", "b", "c.pdf.exe", ""} {
		assert.False(t, IsAcceptedExtension(name), name)
	}
}

func TestParseObjectKey(t *testing.T) {
	now := time.UnixMilli(1709251200123)
	key := ObjectKey("achievements", "science-fair cert.pdf", now)

	name, at, ok := ParseObjectKey("achievements", key)
	require.True(t, ok)
	assert.Equal(t, "science-fair cert.pdf", name)
	assert.True(t, now.Equal(at))

	for _, bad := range []string{
		"other/cert.pdf-1000",
		"achievements/cert.pdf",
		"achievements/cert.pdf-",
		"achievements/cert.pdf-abc",
		"achievements/nested/cert.pdf-1000",
		"achievements/-1000",
	} {
		_, _, ok := ParseObjectKey("achievements", bad)
		assert.False(t, ok, bad)
	}
}

func TestUploadFailureMidTransferStoresNothing(t *testing.T) {
	store := assetstest.NewBlobStore()
	store.FailNext()
	u := NewUploader(store, "", WithClock(fixedClock(7)))
	src := strings.NewReader(strings.Repeat("x", 64))

	_, err := u.Upload(context.Background(), "cert.pdf", src)
	require.Error(t, err)

	assert.Less(t, src.Len(), 64, "the failed transfer should have started reading")
	assert.Equal(t, 0, store.Len())
	_, ok := store.Object("achievements/cert.pdf-7")
	assert.False(t, ok)
}
