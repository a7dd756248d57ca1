package dither

import (
	"math"
	"slices"

	"github.com/alde/inkframe/pkg/palette"
)

// mixCandidate is one two-colour blend tried by Yliluoma's first algorithm
type mixCandidate struct {
	i1, i2  int
	ratio   float32
	mix     [3]float32
	penalty float32 // pair spread term, independent of the pixel
}

func mixCandidates(vals [][3]float32, dim int) []mixCandidate {
	matrixLen := float32(dim * dim)
	var out []mixCandidate
	for i1 := range vals {
		for i2 := i1; i2 < len(vals); i2++ {
			c1, c2 := vals[i1], vals[i2]
			pairDist := lumaDist(c1[0], c1[1], c1[2], c2)
			for ratio := 0; ratio < dim*dim; ratio++ {
				if i1 == i2 && ratio != 0 {
					break
				}
				fr := float32(ratio)
				var mix [3]float32
				for c := 0; c < 3; c++ {
					step := float32(float32(fr*(c2[c]-c1[c])) / matrixLen)
					mix[c] = clamp255(float32(math.Floor(float64(c1[c] + step))))
				}
				spread := abs32(fr/matrixLen-0.5) + 0.5
				out = append(out, mixCandidate{
					i1:      i1,
					i2:      i2,
					ratio:   fr,
					mix:     mix,
					penalty: float32(float32(pairDist*0.1) * spread),
				})
			}
		}
	}
	return out
}

// orderedYliluoma1 finds the best blend of two entries for each pixel and
// lets the Bayer threshold choose between them.
func orderedYliluoma1(pix []byte, width, height int, pal palette.Palette, dim int) {
	cands := mixCandidates(values(pal), dim)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			r, g, b := float32(pix[i]), float32(pix[i+1]), float32(pix[i+2])
			bv := float32(bayerAt(dim, x, y))

			var c1, c2 int
			var lowestRatio float32
			least := float32(inf)
			for _, cand := range cands {
				p := lumaDist(r, g, b, cand.mix) + cand.penalty
				if p < least {
					least = p
					c1, c2 = cand.i1, cand.i2
					lowestRatio = cand.ratio
				}
			}

			pick := c1
			if bv < lowestRatio {
				pick = c2
			}
			writeRGB(pix, i, pal[pick])
		}
	}
}

// orderedYliluoma2 builds a mixing plan of len(pal) entries by greedily adding
// power-of-two runs of one colour, orders the plan by luma and indexes it with
// the Bayer threshold.
func orderedYliluoma2(pix []byte, width, height int, pal palette.Palette, dim int) {
	n := len(pal)
	lumas := make([]uint32, n)
	for i, c := range pal {
		lumas[i] = uint32(c[0])*299 + uint32(c[1])*587 + uint32(c[2])*114
	}
	matrixLen := dim * dim
	plan := make([]int, n)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := (y*width + x) * 4
			r, g, b := float32(pix[i]), float32(pix[i+1]), float32(pix[i+2])
			planIndex := int(bayerAt(dim, x, y)) * n / matrixLen

			total := 0
			var soFar [3]uint32
			for total < n {
				chosen, amount := 0, 1
				maxTest := max(total, 1)
				least := float32(inf)
				for idx, c := range pal {
					sum := soFar
					add := [3]uint32{uint32(c[0]), uint32(c[1]), uint32(c[2])}
					for p := 1; p <= maxTest; p *= 2 {
						for ch := 0; ch < 3; ch++ {
							sum[ch] += add[ch]
							add[ch] += add[ch]
						}
						t := float32(total + p)
						var test [3]float32
						for ch := 0; ch < 3; ch++ {
							test[ch] = clamp255(float32(math.Floor(float64(float32(sum[ch]) / t))))
						}
						if pen := lumaDist(r, g, b, test); pen < least {
							least = pen
							chosen = idx
							amount = p
						}
					}
				}

				for k := 0; k < amount && total < n; k++ {
					plan[total] = chosen
					total++
				}
				c := pal[chosen]
				soFar[0] += uint32(c[0]) * uint32(amount)
				soFar[1] += uint32(c[1]) * uint32(amount)
				soFar[2] += uint32(c[2]) * uint32(amount)
			}

			slices.SortStableFunc(plan, func(a, b int) int {
				switch {
				case lumas[a] < lumas[b]:
					return -1
				case lumas[a] > lumas[b]:
					return 1
				}
				return 0
			})
			writeRGB(pix, i, pal[plan[planIndex]])
		}
	}
}
