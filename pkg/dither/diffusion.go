package dither

import (
	edm "github.com/makeworld-the-better-one/dither/v2"

	"github.com/alde/inkframe/pkg/palette"
)

// reducedAtkinson spreads half of the error over the four nearest neighbours
var reducedAtkinson = edm.ErrorDiffusionMatrix{
	{0, 0, 2.0 / 16, 1.0 / 16},
	{0, 2.0 / 16, 1.0 / 16, 0},
}

type propagation struct {
	dx       int
	dy       int
	fraction float32
}

// kernel is an error diffusion matrix flattened into its non-zero targets
type kernel struct {
	entries      []propagation
	lengthOffset int
	numRows      int
}

var kernels = map[Algorithm]kernel{
	FloydSteinberg:    newKernel(edm.FloydSteinberg),
	JarvisJudiceNinke: newKernel(edm.JarvisJudiceNinke),
	Stucki:            newKernel(edm.Stucki),
	Burkes:            newKernel(edm.Burkes),
	Sierra3:           newKernel(edm.Sierra3),
	Sierra2:           newKernel(edm.Sierra2),
	Sierra1:           newKernel(edm.SierraLite),
	Atkinson:          newKernel(edm.Atkinson),
	ReducedAtkinson:   newKernel(reducedAtkinson),
}

// newKernel converts a matrix whose current pixel sits just before the first
// non-zero entry of the top row.
func newKernel(m edm.ErrorDiffusionMatrix) kernel {
	cur := 0
	for i, v := range m[0] {
		if v != 0 {
			cur = i - 1
			break
		}
	}

	k := kernel{numRows: len(m)}
	for dy, row := range m {
		for col, v := range row {
			if v == 0 {
				continue
			}
			dx := col - cur
			k.entries = append(k.entries, propagation{dx: dx, dy: dy, fraction: v})
			if dx < 0 {
				dx = -dx
			}
			k.lengthOffset = max(k.lengthOffset, dx)
		}
	}
	return k
}

// diffuse scans left to right, top to bottom. Accumulated error lives in a
// ring of padded float rows so the source pixels are never modified before
// they are visited.
func diffuse(pix []byte, width, height int, pal palette.Palette, k kernel) {
	vals := values(pal)
	stride := (width + k.lengthOffset*2) * 3
	rows := make([][]float32, k.numRows)
	for i := range rows {
		rows[i] = make([]float32, stride)
	}
	head := 0

	for y := 0; y < height; y++ {
		cur := rows[head]
		base := k.lengthOffset * 3
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			r := clamp255(float32(pix[i]) + cur[base])
			g := clamp255(float32(pix[i+1]) + cur[base+1])
			b := clamp255(float32(pix[i+2]) + cur[base+2])

			best := closest(r, g, b, vals)
			writeRGB(pix, i, pal[best])

			er := r - vals[best][0]
			eg := g - vals[best][1]
			eb := b - vals[best][2]
			if er != 0 || eg != 0 || eb != 0 {
				for _, e := range k.entries {
					nx := base + e.dx*3
					if nx < 0 || nx >= stride {
						continue
					}
					dst := rows[(head+e.dy)%k.numRows][nx : nx+3]
					dst[0] += float32(er * e.fraction)
					dst[1] += float32(eg * e.fraction)
					dst[2] += float32(eb * e.fraction)
				}
			}
			base += 3
		}

		clear(cur)
		head = (head + 1) % k.numRows
	}
}
