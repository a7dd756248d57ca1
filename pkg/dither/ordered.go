package dither

import (
	"github.com/alde/inkframe/pkg/assets"
	"github.com/alde/inkframe/pkg/palette"
)

// Integer Bayer index matrices
var (
	bayerIndex2 = [][]uint8{
		{0, 2},
		{3, 1},
	}
	bayerIndex4 = [][]uint8{
		{0, 8, 2, 10},
		{12, 4, 14, 6},
		{3, 11, 1, 9},
		{15, 7, 13, 5},
	}
	bayerIndex8 = [][]uint8{
		{0, 32, 8, 40, 2, 34, 10, 42},
		{48, 16, 56, 24, 50, 18, 58, 26},
		{12, 44, 4, 36, 14, 46, 6, 38},
		{60, 28, 52, 20, 62, 30, 54, 22},
		{3, 35, 11, 43, 1, 33, 9, 41},
		{51, 19, 59, 27, 49, 17, 57, 25},
		{15, 47, 7, 39, 13, 45, 5, 37},
		{63, 31, 55, 23, 61, 29, 53, 21},
	}
)

// Thresholds normalised to [-0.5, 0.5]
var (
	bayer2 = thresholds(bayerIndex2)
	bayer4 = thresholds(bayerIndex4)
	bayer8 = thresholds(bayerIndex8)
)

func thresholds(m [][]uint8) [][]float32 {
	lm1 := float32(len(m)*len(m) - 1)
	out := make([][]float32, len(m))
	for y, row := range m {
		out[y] = make([]float32, len(row))
		for x, v := range row {
			out[y][x] = float32(v)/lm1 - 0.5
		}
	}
	return out
}

func bayerAt(dim, x, y int) uint8 {
	switch dim {
	case 2:
		return bayerIndex2[y%2][x%2]
	case 4:
		return bayerIndex4[y%4][x%4]
	default:
		return bayerIndex8[y%8][x%8]
	}
}

// rangeCoefficient scales a threshold to channel units: 256 / cbrt(colours)
func rangeCoefficient(n int) float32 {
	return 256 / cbrt32(n)
}

// thresholdPixel offsets pixel i by t and maps it to the closest entry
func thresholdPixel(pix []byte, i int, t float32, pal palette.Palette, vals [][3]float32) {
	r := toU8Clamped(float32(pix[i]) + t)
	g := toU8Clamped(float32(pix[i+1]) + t)
	b := toU8Clamped(float32(pix[i+2]) + t)
	writeRGB(pix, i, pal[closest(r, g, b, vals)])
}

func orderedBayer(pix []byte, width, height int, pal palette.Palette, m [][]float32) {
	vals := values(pal)
	rc := rangeCoefficient(len(pal))
	dim := len(m)
	for y := 0; y < height; y++ {
		row := m[y%dim]
		for x := 0; x < width; x++ {
			t := float32(row[x%dim] * rc)
			thresholdPixel(pix, (y*width+x)*4, t, pal, vals)
		}
	}
}

func orderedBlueNoise(pix []byte, width, height int, pal palette.Palette, mask *assets.Mask) {
	vals := values(pal)
	rc := rangeCoefficient(len(pal))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			t := float32(mask.At(x, y))/255 - 0.5
			thresholdPixel(pix, (y*width+x)*4, float32(t*rc), pal, vals)
		}
	}
}

// orderedStark picks, among the entries whose distance scaled by the
// threshold stays under the nearest distance, the one that is furthest away.
func orderedStark(pix []byte, width, height int, pal palette.Palette, dim int) {
	vals := values(pal)
	rc := 1 / cbrt32(len(pal))
	fraction := 1 / (float32(dim*dim) - 1)

	stark := make([]float32, dim*dim)
	for y := 0; y < dim; y++ {
		for x := 0; x < dim; x++ {
			base := float32(bayerAt(dim, x, y))
			stark[y*dim+x] = 1 - float32(float32(base*fraction)*rc)
		}
	}

	dists := make([]float32, len(vals))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			r, g, b := float32(pix[i]), float32(pix[i+1]), float32(pix[i+2])
			bv := stark[(y%dim)*dim+x%dim]

			shortest := float32(inf)
			match := 0
			for j, v := range vals {
				dists[j] = lumaDist(r, g, b, v)
				if dists[j] < shortest {
					shortest = dists[j]
					match = j
				}
			}

			if bv < 1 {
				greatest := float32(-1)
				for j, d := range dists {
					if d > greatest && float32(d/shortest)*bv < 1 {
						greatest = d
						match = j
					}
				}
			}
			writeRGB(pix, i, pal[match])
		}
	}
}
