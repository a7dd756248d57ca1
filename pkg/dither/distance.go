package dither

import (
	"math"

	"github.com/alde/inkframe/pkg/palette"
)

const (
	wr = palette.WeightR
	wg = palette.WeightG
	wb = palette.WeightB
)

var inf = math.Inf(1)

// Products in this package are wrapped in float32() so they are rounded
// before the following add instead of being fused into one instruction.

// values converts a palette to float32 triples once per call
func values(pal palette.Palette) [][3]float32 {
	out := make([][3]float32, len(pal))
	for i, c := range pal {
		out[i] = [3]float32{float32(c[0]), float32(c[1]), float32(c[2])}
	}
	return out
}

// lumaDist is the luma-weighted squared distance between (r,g,b) and c
func lumaDist(r, g, b float32, c [3]float32) float32 {
	dr := r - c[0]
	dg := g - c[1]
	db := b - c[2]
	return float32(float32(dr*dr)*wr) + float32(float32(dg*dg)*wg) + float32(float32(db*db)*wb)
}

// closest returns the index of the entry nearest to (r,g,b) by lumaDist.
// Ties keep the earliest entry.
func closest(r, g, b float32, vals [][3]float32) int {
	best := 0
	bestDist := float32(inf)
	for i, v := range vals {
		if d := lumaDist(r, g, b, v); d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// rgbDist is the unweighted squared RGB distance
func rgbDist(r, g, b uint8, c palette.RGB) float32 {
	dr := float32(r) - float32(c[0])
	dg := float32(g) - float32(c[1])
	db := float32(b) - float32(c[2])
	return float32(dr*dr) + float32(dg*dg) + float32(db*db)
}

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp255(v float32) float32 {
	return min(max(v, 0), 255)
}

// toU8Clamped emulates assigning a float to a Uint8ClampedArray element:
// clamp to 0..255 and round half to even.
func toU8Clamped(x float32) float32 {
	if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
		return 0
	}
	if x <= 0 {
		return 0
	}
	if x >= 255 {
		return 255
	}
	f := float32(math.Floor(float64(x)))
	frac := x - f
	n := int(f)
	switch {
	case frac > 0.5:
		n++
	case frac < 0.5 || n%2 == 0:
	default:
		n++
	}
	return float32(n)
}

// cbrt32 is the float32 cube root of n (n >= 1)
func cbrt32(n int) float32 {
	return float32(math.Cbrt(float64(max(n, 1))))
}

// writeRGB stores an exact palette colour, leaving alpha alone
func writeRGB(pix []byte, i int, c palette.RGB) {
	pix[i] = c[0]
	pix[i+1] = c[1]
	pix[i+2] = c[2]
}
