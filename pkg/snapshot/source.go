package snapshot

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// Source is a decoded photo ready for rendering
type Source struct {
	Path  string
	Image image.Image
	Size  int64
	// Taken is the capture time when known
	Taken time.Time
}

// Open decodes a photo. Supported formats are JPEG, PNG, GIF, WebP, BMP and
// TIFF.
func Open(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open photo: %w", err)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode photo %s: %w", path, err)
	}
	return &Source{Path: path, Image: img, Size: info.Size()}, nil
}

// takenLayouts are the accepted capture time formats, most specific first
var takenLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006:01:02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTaken reads a capture time given on the command line, in local time
// unless the value carries an offset
func ParseTaken(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range takenLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised capture time %q (use RFC 3339 or YYYY-MM-DD)", s)
}

// ModTime returns the modification time of path
func ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}
