package util

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// ImageInfo probe result for a captured photo.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	Size   int64  `json:"size"`
}

// GetImageInfo probes a local image file via ffprobe.
func GetImageInfo(imagePath string) (*ImageInfo, error) {
	fileInfo, err := os.Stat(imagePath)
	if err != nil {
		return nil, fmt.Errorf("image file not found: %v", err)
	}

	jsonOutput, err := ffmpeg.Probe(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to probe image: %v", err)
	}

	var result struct {
		Streams []struct {
			CodecType string `json:"codec_type"`
			CodecName string `json:"codec_name"`
			Width     int    `json:"width"`
			Height    int    `json:"height"`
		} `json:"streams"`
	}
	if err := json.Unmarshal([]byte(jsonOutput), &result); err != nil {
		return nil, fmt.Errorf("failed to parse probe output: %v", err)
	}

	info := &ImageInfo{Size: fileInfo.Size()}
	for _, stream := range result.Streams {
		if stream.CodecType == "video" {
			info.Width = stream.Width
			info.Height = stream.Height
			info.Format = stream.CodecName
			break
		}
	}
	return info, nil
}

// GenerateImageThumbnail scales a photo down to maxEdge pixels on its longer
// side and writes a JPEG next to the pipeline's temp area. Aspect ratio is
// preserved.
func GenerateImageThumbnail(imagePath, thumbnailPath string, maxEdge int) error {
	if err := os.MkdirAll(filepath.Dir(thumbnailPath), 0755); err != nil {
		return fmt.Errorf("failed to create thumbnail directory: %v", err)
	}

	scale := fmt.Sprintf("scale='min(%d,iw)':-2", maxEdge)
	return ffmpeg.Input(imagePath).
		Output(thumbnailPath, ffmpeg.KwArgs{
			"vframes": "1",
			"vf":      scale,
			"q:v":     "2",
		}).
		OverWriteOutput().
		Run()
}
