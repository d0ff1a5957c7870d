// Package sticker converts user media into webp stickers with ffmpeg.
// Static stickers come from images; animated ones from short videos or GIFs,
// capped at seven seconds of output.
package sticker

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"

	"anonychat/backend/internal/config"
	"anonychat/backend/internal/models"
)

// Downloader fetches a transport file onto the local disk.
type Downloader interface {
	DownloadFile(ctx context.Context, fileID, dest string) error
}

// Converter produces sticker files in TempDir. Scratch files are removed by
// the cleanup callback once the result has been sent.
type Converter struct {
	TempDir string
	Files   Downloader
}

// NewConverter creates the temp directory if needed.
func NewConverter(tempDir string, files Downloader) (*Converter, error) {
	if err := os.MkdirAll(tempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &Converter{TempDir: tempDir, Files: files}, nil
}

// scaleFilter fits media into the sticker square, padding with transparency.
var scaleFilter = fmt.Sprintf(
	"scale=%d:%d:force_original_aspect_ratio=decrease,fps=15,pad=%d:%d:-1:-1:color=white@0.0",
	config.StickerEdge, config.StickerEdge, config.StickerEdge, config.StickerEdge,
)

// Convert downloads the media and transcodes it to a webp sticker. The
// returned media carries a local path; cleanup removes the scratch files and
// must be called after sending.
func (c *Converter) Convert(ctx context.Context, in models.Media, animated bool) (models.Media, func(), error) {
	stamp := time.Now().UnixNano()
	input := filepath.Join(c.TempDir, fmt.Sprintf("input_%d", stamp))
	output := filepath.Join(c.TempDir, fmt.Sprintf("output_%d.webp", stamp))
	cleanup := func() {
		os.Remove(input)
		os.Remove(output)
	}

	if err := c.Files.DownloadFile(ctx, in.FileID, input); err != nil {
		cleanup()
		return models.Media{}, nil, fmt.Errorf("download media: %w", err)
	}

	args := []string{"-i", input, "-vcodec", "libwebp", "-vf", scaleFilter, "-an"}
	if animated {
		args = append(args,
			"-ss", "00:00:00.0",
			"-t", fmt.Sprintf("00:00:%02d.0", config.StickerMaxSeconds),
			"-loop", "0",
		)
	} else {
		args = append(args, "-frames:v", "1")
	}
	args = append(args, "-y", output)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Error().Err(err).Str("ffmpeg", string(out)).Msg("sticker transcode failed")
		cleanup()
		return models.Media{}, nil, fmt.Errorf("transcode: %w", err)
	}

	return models.Media{Kind: models.MediaSticker, LocalPath: output}, cleanup, nil
}
