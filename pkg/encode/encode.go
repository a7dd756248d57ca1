// Package encode turns a finished picture into the bytes a panel's firmware
// accepts: it rotates the view into native orientation, pads it onto the
// native canvas and writes either a PNG or a packed 4-bit stream.
package encode

import (
	"errors"
	"fmt"
	"image"

	"github.com/alde/inkframe/internal/log"
	"github.com/alde/inkframe/pkg/dither"
	"github.com/alde/inkframe/pkg/palette"
	"github.com/alde/inkframe/pkg/panel"
)

var (
	// ErrInvalidBuffer is returned for images whose pixel slice is shorter than their bounds
	ErrInvalidBuffer = dither.ErrInvalidBuffer
	// ErrEncodeFailure wraps errors from the underlying image encoder
	ErrEncodeFailure = errors.New("failed to encode frame")
	// ErrInvalidPalette is returned for packed output without a palette when the luma fallback is disabled
	ErrInvalidPalette = errors.New("packed output needs a palette")
)

// MultipartField is the form field name used for multipart uploads
const MultipartField = "file"

// Content types of the two output formats
const (
	ContentTypePNG    = "image/png"
	ContentTypePacked = "application/octet-stream"
)

// Frame is an encoded picture ready for upload
type Frame struct {
	Data        []byte
	ContentType string
	Format      panel.OutputFormat
	Width       int // dimensions after rotation and padding
	Height      int
	Rotation    int // degrees clockwise applied before encoding
}

// Filename suggests a file name for multipart uploads
func (f *Frame) Filename() string {
	if f.Format == panel.Packed4bpp {
		return "image.bin"
	}
	return "image.png"
}

// FormField returns the multipart field name the frame is sent under
func (f *Frame) FormField() string {
	return MultipartField
}

// Options controls device encoding
type Options struct {
	Format panel.OutputFormat

	// Native panel size; zero leaves the picture unrotated and unpadded
	NativeWidth  int
	NativeHeight int
	Flip         bool

	// Palette used for packed output, in device order
	Palette palette.Palette
	Packing panel.Packing

	// NoLumaFallback makes packed output fail instead of using 16 grey levels
	// when no palette is configured
	NoLumaFallback bool
}

// OptionsFor builds Options from a panel description
func OptionsFor(spec panel.Spec, format panel.OutputFormat, pal palette.Palette, packing panel.Packing) Options {
	return Options{
		Format:       format,
		NativeWidth:  spec.Width,
		NativeHeight: spec.Height,
		Flip:         spec.Flip,
		Palette:      pal,
		Packing:      packing,
	}
}

// Encode rotates img into native orientation, pads it to the native size and
// encodes it. img is not modified.
func Encode(img *image.NRGBA, opts Options) (*Frame, error) {
	if err := validate(img); err != nil {
		return nil, err
	}

	b := img.Bounds()
	rotation := EffectiveRotation(b.Dx(), b.Dy(), opts.NativeWidth, opts.NativeHeight, opts.Flip)
	out := FitNative(Rotate(img, rotation), opts.NativeWidth, opts.NativeHeight)
	log.Debugf("encoding frame: rotation=%d view=%dx%d native=%dx%d send=%dx%d format=%s",
		rotation, b.Dx(), b.Dy(), opts.NativeWidth, opts.NativeHeight,
		out.Bounds().Dx(), out.Bounds().Dy(), opts.Format)

	frame := &Frame{
		Format:   opts.Format,
		Width:    out.Bounds().Dx(),
		Height:   out.Bounds().Dy(),
		Rotation: rotation,
	}

	switch opts.Format {
	case panel.Packed4bpp:
		pal := opts.Palette
		if len(pal) > 16 {
			log.Warnf("palette has %d colours, only the first 16 are used for packed output", len(pal))
			pal = pal.Truncate(16)
		}
		if len(pal) == 0 && opts.NoLumaFallback {
			return nil, ErrInvalidPalette
		}
		frame.Data = PackNibbles(out, pal, opts.Packing)
		frame.ContentType = ContentTypePacked
	default:
		data, err := EncodePNG(out)
		if err != nil {
			return nil, err
		}
		frame.Data = data
		frame.ContentType = ContentTypePNG
	}
	return frame, nil
}

func validate(img *image.NRGBA) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", ErrInvalidBuffer)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	need := (b.Dy()-1)*img.Stride + b.Dx()*4
	if img.Stride < b.Dx()*4 || len(img.Pix) < need {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrInvalidBuffer, len(img.Pix), b.Dx(), b.Dy())
	}
	return nil
}
