package render

import (
	"image"

	"github.com/disintegration/imaging"

	"github.com/alde/inkframe/pkg/palette"
)

// Adjustments are tonal corrections applied before the timestamp and
// palette reduction. The zero value changes nothing.
type Adjustments struct {
	// Offset added to every channel, -255..255
	Brightness float32 `toml:"brightness" yaml:"brightness"`
	// Contrast slope around mid grey, -255..255
	Contrast float32 `toml:"contrast" yaml:"contrast"`
	// Mix toward (negative) or away from (positive) luma; scaled by 4 and clamped to -1..1
	Saturation float32 `toml:"saturation" yaml:"saturation"`
	// Unsharp mask strength (positive) or blur (negative), -5..5
	Sharpness float32 `toml:"sharpness" yaml:"sharpness"`
}

// IsZero reports whether the adjustments leave an image unchanged
func (a Adjustments) IsZero() bool {
	return a == Adjustments{}
}

// ApplyAdjustments returns a copy of img with adj applied. Colour changes are
// limited to content (the whole image when nil); sharpening and blurring
// work on the whole image. A nil adj returns img itself.
func ApplyAdjustments(img *image.NRGBA, adj *Adjustments, content *image.Rectangle) *image.NRGBA {
	if adj == nil {
		return img
	}

	out := imaging.Clone(img)
	area := out.Bounds()
	if content != nil {
		area = content.Sub(img.Bounds().Min).Intersect(area)
	}
	adjustColors(out, area, adj)

	if abs32(adj.Sharpness) >= 0.01 {
		s := min(max(adj.Sharpness, -5), 5)
		amount := min(abs32(s)/5, 1)
		sigma := float64(0.8 + amount*1.6)
		if s > 0 {
			out = imaging.Sharpen(out, sigma)
		} else {
			out = imaging.Blur(out, sigma)
		}
	}
	return out
}

func adjustColors(img *image.NRGBA, area image.Rectangle, adj *Adjustments) {
	offset := min(max(adj.Brightness, -255), 255)

	c := min(max(adj.Contrast, -255), 255)
	slope := float32(1)
	if abs32(c) >= 0.01 {
		slope = float32(259*(c+255)) / float32(255*(259-c))
	}

	sat := min(max(adj.Saturation*4, -1), 1)
	mixSat := abs32(sat) > 0.001
	gain := 1 + sat

	for y := area.Min.Y; y < area.Max.Y; y++ {
		i := img.PixOffset(area.Min.X, y)
		for x := area.Min.X; x < area.Max.X; x, i = x+1, i+4 {
			r := float32(img.Pix[i]) + offset
			g := float32(img.Pix[i+1]) + offset
			b := float32(img.Pix[i+2]) + offset

			r = float32((r-128)*slope) + 128
			g = float32((g-128)*slope) + 128
			b = float32((b-128)*slope) + 128

			if mixSat {
				l := float32(palette.WeightR*r) + float32(palette.WeightG*g) + float32(palette.WeightB*b)
				r = l + float32((r-l)*gain)
				g = l + float32((g-l)*gain)
				b = l + float32((b-l)*gain)
			}

			img.Pix[i] = clampByte(r)
			img.Pix[i+1] = clampByte(g)
			img.Pix[i+2] = clampByte(b)
		}
	}
}

// clampByte clamps to 0..255 and truncates
func clampByte(v float32) uint8 {
	return uint8(min(max(v, 0), 255))
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
