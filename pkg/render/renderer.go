// Package render turns a decoded photo into the picture a panel shows: it
// composes the photo onto the panel view, adjusts it, stamps the capture date,
// reduces it to the panel palette and hands it to the device encoder.
package render

import (
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"

	"github.com/alde/inkframe/internal/log"
	"github.com/alde/inkframe/pkg/assets"
	"github.com/alde/inkframe/pkg/dither"
	"github.com/alde/inkframe/pkg/encode"
	"github.com/alde/inkframe/pkg/palette"
	"github.com/alde/inkframe/pkg/panel"
	"github.com/alde/inkframe/pkg/timestamp"
)

// Frame contains the render settings of one picture frame
type Frame struct {
	Name    string
	Spec    panel.Spec
	Output  panel.OutputFormat
	Packing panel.Packing

	// Palette the picture is reduced to; empty keeps full colour
	Palette palette.Palette
	// Dithering names the reduction algorithm; empty maps to the nearest colour
	Dithering string

	Adjustments *Adjustments
	Timestamp   timestamp.Config

	// Sources larger than this are shrunk before composing; zero is unbounded
	MaxSourceWidth  int
	MaxSourceHeight int
}

// NewFrame returns a frame with default settings for the given panel
func NewFrame(name string, spec panel.Spec) *Frame {
	return &Frame{
		Name:      name,
		Spec:      spec,
		Timestamp: timestamp.DefaultConfig(),
	}
}

// FromProfile returns a frame seeded from a built-in panel profile
func FromProfile(name string, p panel.Profile) *Frame {
	f := NewFrame(name, p.Spec())
	f.Output = p.Capabilities.Output
	f.Packing = p.Capabilities.Packing
	f.Palette = p.Palette()
	f.Dithering = p.Capabilities.DefaultDithering
	return f
}

// Prepared holds the checkpoints of a render
type Prepared struct {
	// Composed is the photo on the panel view before adjustments
	Composed *image.NRGBA
	// Content is the part of Composed covered by the photo
	Content image.Rectangle
	// Final is the adjusted, stamped and reduced picture before encoding
	Final *image.NRGBA
}

// Renderer runs the render pipeline. It is safe for concurrent use.
type Renderer struct {
	assets *assets.Cache
}

// NewRenderer creates a renderer sharing the given asset cache. A nil cache
// uses the embedded assets.
func NewRenderer(cache *assets.Cache) *Renderer {
	if cache == nil {
		cache = assets.New()
	}
	return &Renderer{assets: cache}
}

// Prepare composes src onto the frame's panel view and runs every stage up
// to, but not including, device encoding. A zero taken time draws no date
// and reserves no banner strip.
func (r *Renderer) Prepare(src image.Image, f *Frame, taken time.Time) (*Prepared, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", encode.ErrInvalidBuffer)
	}

	src = Downscale(src, f.MaxSourceWidth, f.MaxSourceHeight)
	banner := 0
	if !taken.IsZero() {
		banner = timestamp.BannerHeight(&f.Timestamp)
	}
	composed, content := Compose(src, f.Spec, banner)

	adjusted := ApplyAdjustments(composed, f.Adjustments, &content)
	final, err := r.finish(adjusted, composed, f, taken)
	if err != nil {
		return nil, err
	}
	return &Prepared{Composed: composed, Content: content, Final: final}, nil
}

// PrepareFromScaled runs the pipeline on a picture already at view size.
// Composition is skipped, adjustments cover the whole picture and a banner is
// added to its height.
func (r *Renderer) PrepareFromScaled(img image.Image, f *Frame, taken time.Time) (*Prepared, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil source", encode.ErrInvalidBuffer)
	}

	composed := imaging.Clone(img)
	content := composed.Bounds()

	adjusted := ApplyAdjustments(composed, f.Adjustments, nil)
	final, err := r.finish(adjusted, composed, f, taken)
	if err != nil {
		return nil, err
	}
	return &Prepared{Composed: composed, Content: content, Final: final}, nil
}

// finish stamps the date and reduces the palette. The composed checkpoint is
// never written to.
func (r *Renderer) finish(img, composed *image.NRGBA, f *Frame, taken time.Time) (*image.NRGBA, error) {
	out, err := timestamp.Render(img, &f.Timestamp, timestamp.Options{
		Taken:    taken,
		Overscan: f.Spec.Overscan,
		Fonts:    r.assets,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to draw timestamp: %w", err)
	}
	if out == composed {
		out = imaging.Clone(composed)
	}

	if len(f.Palette) > 0 {
		start := time.Now()
		b := out.Bounds()
		if err := dither.Dither(out.Pix, b.Dx(), b.Dy(), f.Palette, f.Dithering, r.assets); err != nil {
			return nil, fmt.Errorf("failed to reduce palette: %w", err)
		}
		log.Debugf("reduced %dx%d picture to %d colours with %s in %v",
			b.Dx(), b.Dy(), len(f.Palette), dither.ParseAlgorithm(f.Dithering), time.Since(start))
	}
	return out, nil
}

// Encode serialises a prepared picture for the frame's panel
func (r *Renderer) Encode(p *Prepared, f *Frame) (*encode.Frame, error) {
	return encode.Encode(p.Final, encode.OptionsFor(f.Spec, f.Output, f.Palette, f.Packing))
}

// Render runs the whole pipeline and returns the encoded picture together
// with its checkpoints
func (r *Renderer) Render(src image.Image, f *Frame, taken time.Time) (*encode.Frame, *Prepared, error) {
	p, err := r.Prepare(src, f, taken)
	if err != nil {
		return nil, nil, err
	}
	out, err := r.Encode(p, f)
	if err != nil {
		return nil, p, err
	}
	log.Debugf("rendered frame %q: %s, %d bytes", f.Name, out.ContentType, len(out.Data))
	return out, p, nil
}
