// Package assets owns the read-only resources shared by every render: the
// blue-noise threshold mask and the timestamp font. Each resource is decoded at
// most once per Cache, on first use, and reused without locking afterwards.
package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

//go:embed data/bluenoise256.png
var blueNoisePNG []byte

// Mask is a grayscale threshold grid, row-major, one byte per cell
type Mask struct {
	Width  int
	Height int
	Pix    []byte
}

// At returns the mask value at (x, y), tiling the mask over the plane
func (m *Mask) At(x, y int) byte {
	return m.Pix[(y%m.Height)*m.Width+(x%m.Width)]
}

// Cache decodes the embedded resources lazily. The zero value is not usable;
// create one with New and share it between renders.
type Cache struct {
	blueNoise func() (*Mask, error)
	font      func() (*opentype.Font, error)
}

// Option customises a Cache, mostly for tests
type Option func(*sources)

type sources struct {
	maskPNG  []byte
	mask     *Mask
	fontData []byte
}

// WithBlueNoisePNG replaces the embedded mask with another grayscale PNG.
// The embedded 256x256 mask is built from an R2 low-discrepancy sequence, not
// a void-and-cluster blue-noise texture, so ordered_blue_256 output only
// matches other renderers when their mask is supplied here.
func WithBlueNoisePNG(data []byte) Option {
	return func(s *sources) { s.maskPNG = data }
}

// WithMask injects an already decoded mask
func WithMask(m *Mask) Option {
	return func(s *sources) { s.mask = m }
}

// WithFont replaces the embedded font with another TrueType/OpenType file
func WithFont(data []byte) Option {
	return func(s *sources) { s.fontData = data }
}

// New creates a cache over the embedded resources
func New(opts ...Option) *Cache {
	src := &sources{
		maskPNG:  blueNoisePNG,
		fontData: goregular.TTF,
	}
	for _, opt := range opts {
		opt(src)
	}

	c := &Cache{}
	if src.mask != nil {
		m := src.mask
		c.blueNoise = func() (*Mask, error) { return m, nil }
	} else {
		c.blueNoise = sync.OnceValues(func() (*Mask, error) {
			return decodeMask(src.maskPNG)
		})
	}
	c.font = sync.OnceValues(func() (*opentype.Font, error) {
		f, err := opentype.Parse(src.fontData)
		if err != nil {
			return nil, fmt.Errorf("failed to parse font: %w", err)
		}
		return f, nil
	})
	return c
}

// BlueNoise returns the decoded blue-noise mask
func (c *Cache) BlueNoise() (*Mask, error) {
	return c.blueNoise()
}

// Font returns the parsed timestamp font
func (c *Cache) Font() (*opentype.Font, error) {
	return c.font()
}

func decodeMask(data []byte) (*Mask, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode blue noise mask: %w", err)
	}

	gray, ok := img.(*image.Gray)
	if !ok {
		b := img.Bounds()
		gray = image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	}

	b := gray.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil, fmt.Errorf("blue noise mask is empty")
	}
	pix := make([]byte, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		copy(pix[y*b.Dx():(y+1)*b.Dx()], gray.Pix[y*gray.Stride:y*gray.Stride+b.Dx()])
	}
	return &Mask{Width: b.Dx(), Height: b.Dy(), Pix: pix}, nil
}
