package encode

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"

	"github.com/alde/inkframe/pkg/palette"
	"github.com/alde/inkframe/pkg/panel"
)

// EncodePNG writes img as a lossless PNG
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG, imaging.PNGCompressionLevel(png.DefaultCompression)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailure, err)
	}
	return buf.Bytes(), nil
}

// deviceColor is a primary the panel controller knows by a fixed code
type deviceColor struct {
	rgb    palette.RGB
	nibble byte
}

var deviceColors = []deviceColor{
	{palette.RGB{0, 0, 0}, 0x0},       // black
	{palette.RGB{255, 255, 255}, 0x1}, // white
	{palette.RGB{255, 255, 0}, 0x2},   // yellow
	{palette.RGB{255, 0, 0}, 0x3},     // red
	{palette.RGB{0, 0, 255}, 0x5},     // blue
	{palette.RGB{0, 255, 0}, 0x6},     // green
}

// DeviceNibbles maps every palette entry to the code of the closest device
// primary.
func DeviceNibbles(pal palette.Palette) []byte {
	out := make([]byte, len(pal))
	for i, p := range pal {
		best := deviceColors[0].nibble
		bestDist := math.MaxInt
		for _, d := range deviceColors {
			if dist := sqDist(p, d.rgb); dist < bestDist {
				bestDist = dist
				best = d.nibble
			}
		}
		out[i] = best
	}
	return out
}

func sqDist(a, b palette.RGB) int {
	dr := int(a[0]) - int(b[0])
	dg := int(a[1]) - int(b[1])
	db := int(a[2]) - int(b[2])
	return dr*dr + dg*dg + db*db
}

// PackNibbles encodes img as two 4-bit codes per byte. With a palette each
// pixel becomes the device code of its palette entry; without one it becomes
// one of 16 grey levels. An odd pixel at the end of a row fills a byte on its
// own, so every row starts on a byte boundary.
func PackNibbles(img *image.NRGBA, pal palette.Palette, packing panel.Packing) []byte {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]byte, 0, h*((w+1)/2))

	var codes []byte
	if len(pal) > 0 {
		codes = DeviceNibbles(pal)
	}
	code := func(x, y int) byte {
		i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
		c := palette.RGB{img.Pix[i], img.Pix[i+1], img.Pix[i+2]}
		if len(pal) == 0 {
			l := int(math.Round(float64(palette.Luma(c[0], c[1], c[2]))))
			return byte(min(l, 255)*15/255) & 0x0F
		}
		idx := paletteIndex(c, pal)
		if idx < len(codes) {
			return codes[idx] & 0x0F
		}
		return byte(idx) & 0x0F
	}

	pack := func(first, second byte) byte {
		if packing.SwapNibbles {
			return second<<4 | first
		}
		return first<<4 | second
	}

	row := func(y int) {
		var pending byte
		have := false
		emit := func(v byte) {
			if have {
				out = append(out, pack(pending, v))
				have = false
				return
			}
			pending, have = v, true
		}
		if packing.ReverseCols {
			for x := w - 1; x >= 0; x-- {
				emit(code(x, y))
			}
		} else {
			for x := 0; x < w; x++ {
				emit(code(x, y))
			}
		}
		if have {
			out = append(out, pack(pending, 0))
		}
	}

	if packing.ReverseRows {
		for y := h - 1; y >= 0; y-- {
			row(y)
		}
	} else {
		for y := 0; y < h; y++ {
			row(y)
		}
	}
	return out
}

// paletteIndex returns the entry equal to c, or else the nearest one by plain
// RGB distance
func paletteIndex(c palette.RGB, pal palette.Palette) int {
	best := 0
	bestDist := math.MaxInt
	for i, p := range pal {
		if p == c {
			return i
		}
		if d := sqDist(c, p); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}
