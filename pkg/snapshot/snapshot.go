// Package snapshot reads source photos and writes render checkpoints and
// encoded frames to disk. The render pipeline itself never touches files.
package snapshot

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/alde/inkframe/pkg/encode"
)

// Format is a checkpoint file format
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
	JPEG Format = "jpeg"
)

// Options tunes lossy checkpoint formats
type Options struct {
	// Quality 1..100 for JPEG and lossy WebP, 90 when zero
	Quality int
	// Lossless writes WebP without loss; ignored for other formats
	Lossless bool
}

func (o Options) quality() int {
	if o.Quality <= 0 || o.Quality > 100 {
		return 90
	}
	return o.Quality
}

// FormatFromPath picks the checkpoint format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return PNG, nil
	case ".webp":
		return WebP, nil
	case ".jpg", ".jpeg":
		return JPEG, nil
	}
	return "", fmt.Errorf("unsupported snapshot extension %q (valid options: .png, .webp, .jpg)", filepath.Ext(path))
}

// Save writes img to path in the format implied by its extension and returns
// the number of bytes written. A file that could not be written completely is
// removed.
func Save(path string, img image.Image, opts Options) (int64, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Encode(file, img, format, opts); err != nil {
		file.Close()
		os.Remove(path)
		return 0, fmt.Errorf("failed to write %s snapshot: %w", format, err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return 0, err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to close snapshot: %w", err)
	}
	return info.Size(), nil
}

// Encode writes img to w in the given format
func Encode(w io.Writer, img image.Image, format Format, opts Options) error {
	switch format {
	case WebP:
		return webp.Encode(w, img, &webp.Options{
			Lossless: opts.Lossless,
			Quality:  float32(opts.quality()),
		})
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(opts.quality()))
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	}
	return fmt.Errorf("unsupported snapshot format %q", format)
}

// WriteFrame stores an encoded frame as-is. When path is a directory the
// frame's suggested file name is used inside it. It returns the final path.
func WriteFrame(path string, f *encode.Frame) (string, error) {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, f.Filename())
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write frame: %w", err)
	}
	return path, nil
}
