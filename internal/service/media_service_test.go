package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jcthewizard/Goalshare-sub000/internal/config"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestMediaService(t *testing.T) (*MediaService, string) {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.StorageConfig{
		Type:       "local",
		LocalPath:  dir,
		PublicBase: "http://localhost:8080/uploads",
	}
	storage := &StorageService{Provider: &LocalStorageProvider{Config: cfg}}
	return NewMediaService(storage, cfg, zap.NewNop()), dir
}

func TestUploadPassesThroughRemoteURL(t *testing.T) {
	svc, _ := newTestMediaService(t)

	res, err := svc.Upload(context.Background(), "me", "https://cdn/photo.jpg", "milestones")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/photo.jpg", res.URL)
	assert.Empty(t, res.ThumbnailURL)
}

func TestUploadPassesThroughEmptyValue(t *testing.T) {
	svc, _ := newTestMediaService(t)

	res, err := svc.Upload(context.Background(), "me", "", "milestones")
	require.NoError(t, err)
	assert.Empty(t, res.URL)
}

func TestUploadLocalFile(t *testing.T) {
	svc, dir := newTestMediaService(t)

	src := filepath.Join(t.TempDir(), "shot.jpg")
	require.NoError(t, os.WriteFile(src, []byte("jpeg-bytes"), 0644))

	res, err := svc.Upload(context.Background(), "me", "file://"+src, "milestones")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.URL, "http://localhost:8080/uploads/me/milestones/"), res.URL)
	assert.True(t, strings.HasSuffix(res.URL, ".jpg"), res.URL)

	// The blob landed under the storage root.
	key := strings.TrimPrefix(res.URL, "http://localhost:8080/uploads/")
	stored, err := os.ReadFile(filepath.Join(dir, key))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), stored)
}

func TestUploadMissingFile(t *testing.T) {
	svc, _ := newTestMediaService(t)

	_, err := svc.Upload(context.Background(), "me", "file:///nowhere/shot.jpg", "milestones")
	assert.ErrorIs(t, err, util.ErrEmptyImage)
}

func TestUploadEmptyFile(t *testing.T) {
	svc, _ := newTestMediaService(t)

	src := filepath.Join(t.TempDir(), "empty.jpg")
	require.NoError(t, os.WriteFile(src, nil, 0644))

	_, err := svc.Upload(context.Background(), "me", "file://"+src, "milestones")
	assert.ErrorIs(t, err, util.ErrEmptyImage)
}

func TestUploadThumbnailFailureKeepsFullImage(t *testing.T) {
	svc, _ := newTestMediaService(t)
	svc.cfg.Thumbnails = true

	src := filepath.Join(t.TempDir(), "shot.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not-a-real-jpeg"), 0644))

	// ffmpeg cannot decode the garbage input, so only the thumbnail is lost.
	res, err := svc.Upload(context.Background(), "me", "file://"+src, "milestones")
	require.NoError(t, err)
	assert.NotEmpty(t, res.URL)
	assert.Empty(t, res.ThumbnailURL)
}

func TestIsLocalURI(t *testing.T) {
	assert.True(t, IsLocalURI("file:///tmp/x.jpg"))
	assert.False(t, IsLocalURI("https://cdn/x.jpg"))
	assert.False(t, IsLocalURI(""))
}
