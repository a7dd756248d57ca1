// Package timestamp draws the capture date of a photo onto the composed
// frame, either over the picture or in a strip reserved above or below it.
package timestamp

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/disintegration/imaging"
	"github.com/lestrrat-go/strftime"
	"golang.org/x/image/font/opentype"

	"github.com/alde/inkframe/internal/log"
	"github.com/alde/inkframe/pkg/palette"
	"github.com/alde/inkframe/pkg/panel"
)

// ErrNoFont is returned when a label has to be drawn without a font source
var ErrNoFont = errors.New("no font available for timestamp")

// FontSource provides the face used for labels
type FontSource interface {
	Font() (*opentype.Font, error)
}

// Options carry per-frame inputs of Render
type Options struct {
	// Taken is the capture time; the zero time draws no label
	Taken time.Time
	// Overscan keeps the label out of hidden panel edges
	Overscan panel.Overscan
	// ReducedHeight is the photo height in banner mode, zero keeps it as is
	ReducedHeight int
	Fonts         FontSource
}

var (
	white = color.NRGBA{255, 255, 255, 255}
	black = color.NRGBA{0, 0, 0, 255}
)

// boxPadding surrounds the label when a background box is drawn
const boxPadding = 4

// Render returns img with the label drawn on it. When the label is disabled
// or there is no capture date img is returned unchanged. In banner mode the result is taller than img by
// the banner height.
func Render(img *image.NRGBA, cfg *Config, opts Options) (*image.NRGBA, error) {
	if img == nil || cfg == nil || !cfg.Enabled || opts.Taken.IsZero() {
		return img, nil
	}
	if cfg.Banner {
		return renderBanner(img, cfg, opts)
	}

	l, err := prepare(cfg, opts)
	if err != nil {
		return nil, err
	}

	out := imaging.Clone(img)
	b := out.Bounds()
	a := area{
		width:  b.Dx(),
		height: b.Dy(),
		inset:  opts.Overscan.Clamped(),
		padH:   cfg.PaddingHorizontal,
		padV:   cfg.PaddingVertical,
	}
	tw, th := l.size()
	x := a.left(cfg.Position, tw)
	top := a.top(cfg.Position, th)
	stroke := strokeWidth(cfg)

	var fill color.NRGBA
	switch cfg.Color {
	case WhiteBackground:
		fillRect(out, boxRect(x, top, tw, th, stroke), white)
		fill = black
	case BlackBackground:
		fillRect(out, boxRect(x, top, tw, th, stroke), black)
		fill = white
	case TransparentWhiteText:
		fill = white
	case TransparentBlackText:
		fill = black
	default:
		fill = autoColor(out, x, top, int(l.width), int(l.ascent+l.descent))
	}

	drawLine(out, l, x, a.baseline(cfg.Position, l), fill, stroke, strokeColor(cfg.StrokeColor, fill))
	return out, nil
}

// renderBanner stacks the photo and a solid strip holding the label
func renderBanner(img *image.NRGBA, cfg *Config, opts Options) (*image.NRGBA, error) {
	bh := BannerHeight(cfg)
	photo := img
	w := img.Bounds().Dx()
	if opts.ReducedHeight > 0 && opts.ReducedHeight != img.Bounds().Dy() {
		photo = imaging.Resize(img, w, opts.ReducedHeight, imaging.Linear)
	}
	photoH := photo.Bounds().Dy()

	bg := white
	if cfg.Color == BlackBackground {
		bg = black
	}
	out := imaging.New(w, photoH+bh, bg)

	onTop := cfg.Position.atTop()
	photoY, bannerY := 0, photoH
	if onTop {
		photoY, bannerY = bh, 0
	}
	out = imaging.Paste(out, photo, image.Pt(0, photoY))

	l, err := prepare(cfg, opts)
	if err != nil {
		return nil, err
	}

	inset := opts.Overscan.Clamped()
	if onTop {
		inset.Bottom = 0
	} else {
		inset.Top = 0
	}
	a := area{
		y:      bannerY,
		width:  w,
		height: bh,
		inset:  inset,
		padH:   cfg.PaddingHorizontal,
		padV:   cfg.PaddingVertical,
	}
	tw, _ := l.size()

	fill := black
	switch cfg.Color {
	case BlackBackground, TransparentWhiteText:
		fill = white
	}
	drawLine(out, l, a.left(cfg.Position, tw), a.baseline(cfg.Position, l), fill, strokeWidth(cfg), strokeColor(cfg.StrokeColor, fill))
	return out, nil
}

// prepare formats the date and lays out the label
func prepare(cfg *Config, opts Options) (line, error) {
	text, err := strftime.Format(cfg.format(), opts.Taken)
	if err != nil {
		return line{}, fmt.Errorf("invalid timestamp format %q: %w", cfg.format(), err)
	}
	if opts.Fonts == nil {
		return line{}, ErrNoFont
	}
	f, err := opts.Fonts.Font()
	if err != nil {
		return line{}, err
	}
	face, err := newFace(f, cfg.fontSize())
	if err != nil {
		return line{}, fmt.Errorf("failed to create font face: %w", err)
	}
	defer face.Close()

	log.Debugf("drawing timestamp %q at %.1fpx", text, cfg.fontSize())
	return layout(face, text), nil
}

// strokeWidth returns the outline radius in pixels, zero for none
func strokeWidth(cfg *Config) int {
	if !cfg.StrokeEnabled || cfg.StrokeWidth <= 0 {
		return 0
	}
	limit := min(max(int(math.Round(cfg.fontSize()*0.3)), 1), 16)
	return min(cfg.StrokeWidth, limit)
}

func strokeColor(sc StrokeColor, fill color.NRGBA) color.NRGBA {
	switch sc {
	case StrokeWhite:
		return white
	case StrokeBlack:
		return black
	}
	if uint8(palette.Luma(fill.R, fill.G, fill.B)) > 128 {
		return black
	}
	return white
}

// boxRect returns the background box around a label whose top-left is (x, y)
func boxRect(x, y, tw, th, stroke int) image.Rectangle {
	pad := boxPadding + stroke
	return image.Rect(x-pad, y-pad, x+tw+pad, y+th+pad)
}

func fillRect(img *image.NRGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(img.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		i := img.PixOffset(r.Min.X, y)
		for x := r.Min.X; x < r.Max.X; x, i = x+1, i+4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
		}
	}
}

// autoColor picks black text over bright backgrounds and white text over
// dark ones, judged by the average luma around the label.
func autoColor(img *image.NRGBA, x, y, tw, th int) color.NRGBA {
	const margin = 5
	r := image.Rect(x-margin, y-margin, x+tw+margin, y+th+margin).Intersect(img.Bounds())
	if r.Empty() {
		return black
	}

	var sum, n uint64
	for py := r.Min.Y; py < r.Max.Y; py++ {
		i := img.PixOffset(r.Min.X, py)
		for px := r.Min.X; px < r.Max.X; px, i = px+1, i+4 {
			sum += uint64(palette.Luma(img.Pix[i], img.Pix[i+1], img.Pix[i+2]))
			n++
		}
	}
	if sum/n > 128 {
		return black
	}
	return white
}
