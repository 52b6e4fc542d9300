package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/config"
	"github.com/jcthewizard/Goalshare-sub000/internal/util"

	"go.uber.org/zap"
)

const localURIPrefix = "file://"

// UploadResult carries the durable URLs produced for one captured photo.
type UploadResult struct {
	URL          string
	ThumbnailURL string
}

// MediaService turns a locally captured photo into a durable blob URL.
// It sits strictly before any cache or remote mutation that references the
// image: a file:// URI must never reach the remote store.
type MediaService struct {
	storage *StorageService
	cfg     *config.StorageConfig
	log     *zap.Logger
}

func NewMediaService(storage *StorageService, cfg *config.StorageConfig, log *zap.Logger) *MediaService {
	return &MediaService{storage: storage, cfg: cfg, log: log}
}

// IsLocalURI reports whether value references a file on the device.
func IsLocalURI(value string) bool {
	return strings.HasPrefix(value, localURIPrefix)
}

// Upload uploads the image behind localURI and returns its durable URL.
// Anything that is not a local-file reference (already-remote URL, empty
// value) is passed through unchanged without touching the blob store.
func (s *MediaService) Upload(ctx context.Context, ownerID, localURI, logicalPath string) (UploadResult, error) {
	if !IsLocalURI(localURI) {
		return UploadResult{URL: localURI}, nil
	}

	localPath := strings.TrimPrefix(localURI, localURIPrefix)
	data, err := os.ReadFile(localPath)
	if err != nil {
		return UploadResult{}, fmt.Errorf("%w: %v", util.ErrEmptyImage, err)
	}
	if len(data) == 0 {
		return UploadResult{}, util.ErrEmptyImage
	}

	// Best effort: ffprobe is not guaranteed on every host, and a capture it
	// cannot inspect still uploads fine.
	if info, err := util.GetImageInfo(localPath); err == nil {
		s.log.Debug("inspected captured image",
			zap.String("uri", localURI),
			zap.Int("width", info.Width),
			zap.Int("height", info.Height),
			zap.String("format", info.Format),
			zap.Int64("size", info.Size))
	}

	// Capture timestamp disambiguates successive uploads on the same path.
	stamp := time.Now().UnixMilli()
	objectKey := fmt.Sprintf("%s/%s/%d.jpg", ownerID, logicalPath, stamp)

	url, err := s.storage.Upload(ctx, objectKey, bytes.NewReader(data), int64(len(data)), "image/jpeg")
	if err != nil {
		return UploadResult{}, err
	}

	result := UploadResult{URL: url}
	if s.cfg.Thumbnails {
		if thumbURL, err := s.uploadThumbnail(ctx, ownerID, localPath, logicalPath, stamp); err != nil {
			s.log.Warn("thumbnail generation failed, feed will use the full image",
				zap.String("uri", localURI), zap.Error(err))
		} else {
			result.ThumbnailURL = thumbURL
		}
	}
	return result, nil
}

func (s *MediaService) uploadThumbnail(ctx context.Context, ownerID, localPath, logicalPath string, stamp int64) (string, error) {
	thumbPath := filepath.Join(os.TempDir(), fmt.Sprintf("goalshare_thumb_%d.jpg", stamp))
	defer os.Remove(thumbPath)

	edge := s.cfg.ThumbnailEdge
	if edge <= 0 {
		edge = 512
	}
	if err := util.GenerateImageThumbnail(localPath, thumbPath, edge); err != nil {
		return "", err
	}

	objectKey := fmt.Sprintf("%s/%s/%d_thumb.jpg", ownerID, logicalPath, stamp)
	return s.storage.UploadFile(ctx, objectKey, thumbPath, "image/jpeg")
}
