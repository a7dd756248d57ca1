package timestamp

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/alde/inkframe/pkg/panel"
)

// newFace returns a face whose line height (ascent plus descent) is px
// pixels, the way the size of a label is configured.
func newFace(f *opentype.Font, px float64) (font.Face, error) {
	upem := f.UnitsPerEm()
	m, err := f.Metrics(&sfnt.Buffer{}, fixed.I(int(upem)), font.HintingNone)
	if err != nil {
		return nil, err
	}
	height := float64(m.Ascent+m.Descent) / 64
	size := px
	if height > 0 {
		size = px * float64(upem) / height
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// glyph is a rasterised glyph positioned relative to the pen origin
type glyph struct {
	rect image.Rectangle
	mask *image.Alpha // coverage, origin at rect.Min
}

// copyMask detaches a glyph mask from the face, which reuses its buffer
func copyMask(mask image.Image, at image.Point, size image.Point) *image.Alpha {
	out := image.NewAlpha(image.Rectangle{Max: size})
	for y := 0; y < size.Y; y++ {
		for x := 0; x < size.X; x++ {
			_, _, _, a := mask.At(at.X+x, at.Y+y).RGBA()
			out.Pix[y*out.Stride+x] = uint8(a >> 8)
		}
	}
	return out
}

// line is a laid out label
type line struct {
	glyphs  []glyph
	width   float64 // advance width in pixels
	ascent  float64
	descent float64
}

func layout(face font.Face, text string) line {
	var l line
	m := face.Metrics()
	l.ascent = float64(m.Ascent) / 64
	l.descent = float64(m.Descent) / 64

	dot := fixed.Point26_6{}
	prev := rune(-1)
	for _, r := range text {
		if prev >= 0 {
			dot.X += face.Kern(prev, r)
		}
		dr, mask, maskp, advance, ok := face.Glyph(dot, r)
		if ok && !dr.Empty() {
			l.glyphs = append(l.glyphs, glyph{rect: dr, mask: copyMask(mask, maskp, dr.Size())})
		}
		dot.X += advance
		prev = r
	}
	l.width = float64(dot.X) / 64
	return l
}

// size returns the box of the label rounded up to whole pixels
func (l line) size() (w, h int) {
	return int(math.Ceil(l.width)), int(math.Ceil(l.ascent + l.descent))
}

// area is the region a label is aligned in
type area struct {
	y, width, height int
	inset            panel.Overscan
	padH, padV       int
}

func (a area) effective() (w, h int) {
	return max(a.width-(a.inset.Left+a.inset.Right), 0), max(a.height-(a.inset.Top+a.inset.Bottom), 0)
}

// left returns the x of the label's left edge
func (a area) left(pos Position, textW int) int {
	effW, _ := a.effective()
	switch pos {
	case TopLeft, BottomLeft:
		return a.inset.Left + a.padH
	case TopCenter, BottomCenter:
		return a.inset.Left + max(effW-textW, 0)/2
	default:
		return a.inset.Left + max(effW-(textW+a.padH), 0)
	}
}

// top returns the y of the label box's top edge
func (a area) top(pos Position, textH int) int {
	_, effH := a.effective()
	if pos.atTop() {
		return a.y + a.inset.Top + a.padV
	}
	return a.y + a.inset.Top + max(effH-(textH+a.padV), 0)
}

// baseline returns the pen y so that glyphs sit inside the area
func (a area) baseline(pos Position, l line) int {
	_, effH := a.effective()
	ascent := int(math.Ceil(l.ascent))
	_, textH := l.size()
	if pos.atTop() {
		return a.y + a.inset.Top + a.padV + ascent
	}
	return a.y + a.inset.Top + (effH - a.padV) - (textH - ascent)
}

// drawLine stamps the label at pen position (x, y). With a stroke, the glyph
// coverage is first stamped at every offset inside a disk of the stroke
// radius.
func drawLine(img *image.NRGBA, l line, x, y int, fill color.NRGBA, stroke int, strokeColor color.NRGBA) {
	if stroke > 0 {
		for dy := -stroke; dy <= stroke; dy++ {
			for dx := -stroke; dx <= stroke; dx++ {
				if dx == 0 && dy == 0 || dx*dx+dy*dy > stroke*stroke {
					continue
				}
				for _, g := range l.glyphs {
					stamp(img, g, x+dx, y+dy, strokeColor)
				}
			}
		}
	}
	for _, g := range l.glyphs {
		stamp(img, g, x, y, fill)
	}
}

// stamp blends c into img through the glyph's coverage, skipping pixels
// outside the image
func stamp(img *image.NRGBA, g glyph, ox, oy int, c color.NRGBA) {
	b := img.Bounds()
	for y := g.rect.Min.Y; y < g.rect.Max.Y; y++ {
		py := oy + y
		if py < b.Min.Y || py >= b.Max.Y {
			continue
		}
		for x := g.rect.Min.X; x < g.rect.Max.X; x++ {
			px := ox + x
			if px < b.Min.X || px >= b.Max.X {
				continue
			}
			a := g.mask.Pix[(y-g.rect.Min.Y)*g.mask.Stride+x-g.rect.Min.X]
			if a == 0 {
				continue
			}
			i := img.PixOffset(px, py)
			img.Pix[i] = blend(c.R, img.Pix[i], a)
			img.Pix[i+1] = blend(c.G, img.Pix[i+1], a)
			img.Pix[i+2] = blend(c.B, img.Pix[i+2], a)
		}
	}
}

// blend mixes src over dst with integer weights a and 255-a
func blend(src, dst, a uint8) uint8 {
	return uint8((uint16(src)*uint16(a) + uint16(dst)*uint16(255-a)) / 255)
}
