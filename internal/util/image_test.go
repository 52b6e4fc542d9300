package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetImageInfoMissingFile(t *testing.T) {
	info, err := GetImageInfo(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
	assert.Nil(t, info)
}

func TestGenerateImageThumbnailBadInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "garbage.jpg")
	require.NoError(t, os.WriteFile(src, []byte("not an image"), 0644))

	err := GenerateImageThumbnail(src, filepath.Join(dir, "thumb", "out.jpg"), 512)
	assert.Error(t, err)
}
