// Package dither reduces an RGBA buffer to a fixed palette.
//
// Every algorithm works on the raw RGBA8 bytes in place, keeps the alpha byte of
// each pixel and only ever writes exact palette colours. Colour comparisons use
// the luma-weighted squared RGB distance 0.299*dr^2 + 0.587*dg^2 + 0.114*db^2,
// except the plain nearest mapping which ranks candidates by luma proximity
// first. The arithmetic rounds to float32 after every product so results are
// reproducible bit for bit.
package dither

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alde/inkframe/pkg/assets"
	"github.com/alde/inkframe/pkg/palette"
)

// ErrInvalidBuffer is returned when the pixel buffer does not hold width*height RGBA pixels
var ErrInvalidBuffer = errors.New("pixel buffer length does not match dimensions")

// NoiseSource supplies the blue-noise threshold mask
type NoiseSource interface {
	BlueNoise() (*assets.Mask, error)
}

// Algorithm selects one of the palette reduction methods
type Algorithm int

const (
	// Nearest maps every pixel to the closest palette entry without dithering
	Nearest Algorithm = iota

	FloydSteinberg
	JarvisJudiceNinke
	Stucki
	Burkes
	Sierra3
	Sierra2
	Sierra1
	Atkinson
	ReducedAtkinson

	Bayer2
	Bayer4
	Bayer8
	BlueNoise256
	Stark
	Yliluoma1
	Yliluoma2
)

var algorithmNames = map[string]Algorithm{
	"floyd_steinberg":     FloydSteinberg,
	"fs":                  FloydSteinberg,
	"jarvis_judice_ninke": JarvisJudiceNinke,
	"stucki":              Stucki,
	"burkes":              Burkes,
	"sierra_3":            Sierra3,
	"sierra_2":            Sierra2,
	"sierra_1":            Sierra1,
	"sierra_lite":         Sierra1,
	"atkinson":            Atkinson,
	"reduced_atkinson":    ReducedAtkinson,
	"ordered_bayer_2":     Bayer2,
	"bayer_2":             Bayer2,
	"ordered_bayer_4":     Bayer4,
	"bayer_4":             Bayer4,
	"ordered_bayer_8":     Bayer8,
	"bayer_8":             Bayer8,
	"ordered_blue_256":    BlueNoise256,
	"blue_256":            BlueNoise256,
	"blue_noise_256":      BlueNoise256,
	"stark":               Stark,
	"stark_8":             Stark,
	"yliluoma1":           Yliluoma1,
	"yliluoma1_8":         Yliluoma1,
	"yliluoma2":           Yliluoma2,
	"yliluoma2_8":         Yliluoma2,
}

// ParseAlgorithm resolves a configuration name. Matching ignores case and treats
// '-' and ' ' like '_'. Empty or unknown names resolve to Nearest.
func ParseAlgorithm(name string) Algorithm {
	if a, ok := lookup(name); ok {
		return a
	}
	return Nearest
}

// IsKnown reports whether name selects an actual dithering algorithm
func IsKnown(name string) bool {
	_, ok := lookup(name)
	return ok
}

func lookup(name string) (Algorithm, bool) {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.NewReplacer("-", "_", " ", "_").Replace(norm)
	a, ok := algorithmNames[norm]
	return a, ok
}

// Names returns every accepted algorithm name and alias, grouped by algorithm
func Names() map[Algorithm][]string {
	out := make(map[Algorithm][]string)
	for name, a := range algorithmNames {
		out[a] = append(out[a], name)
	}
	for _, names := range out {
		sort.Strings(names)
	}
	return out
}

// String returns the canonical configuration name
func (a Algorithm) String() string {
	switch a {
	case FloydSteinberg:
		return "floyd_steinberg"
	case JarvisJudiceNinke:
		return "jarvis_judice_ninke"
	case Stucki:
		return "stucki"
	case Burkes:
		return "burkes"
	case Sierra3:
		return "sierra_3"
	case Sierra2:
		return "sierra_2"
	case Sierra1:
		return "sierra_1"
	case Atkinson:
		return "atkinson"
	case ReducedAtkinson:
		return "reduced_atkinson"
	case Bayer2:
		return "ordered_bayer_2"
	case Bayer4:
		return "ordered_bayer_4"
	case Bayer8:
		return "ordered_bayer_8"
	case BlueNoise256:
		return "ordered_blue_256"
	case Stark:
		return "stark"
	case Yliluoma1:
		return "yliluoma1"
	case Yliluoma2:
		return "yliluoma2"
	default:
		return "nearest"
	}
}

// Dither reduces pix to pal using the algorithm named by name
func Dither(pix []byte, width, height int, pal palette.Palette, name string, noise NoiseSource) error {
	return Apply(pix, width, height, pal, ParseAlgorithm(name), noise)
}

// Apply reduces pix (RGBA8, row-major) to pal in place. An empty palette or
// buffer leaves pix untouched. The buffer is validated before any write.
func Apply(pix []byte, width, height int, pal palette.Palette, algo Algorithm, noise NoiseSource) error {
	if len(pal) == 0 || len(pix) == 0 {
		return nil
	}
	if width < 0 || height < 0 || len(pix) != width*height*4 {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrInvalidBuffer, len(pix), width, height)
	}

	if k, ok := kernels[algo]; ok {
		diffuse(pix, width, height, pal, k)
		return nil
	}

	switch algo {
	case Bayer2:
		orderedBayer(pix, width, height, pal, bayer2)
	case Bayer4:
		orderedBayer(pix, width, height, pal, bayer4)
	case Bayer8:
		orderedBayer(pix, width, height, pal, bayer8)
	case BlueNoise256:
		if noise == nil {
			return fmt.Errorf("blue noise dithering needs a mask source")
		}
		mask, err := noise.BlueNoise()
		if err != nil {
			return fmt.Errorf("failed to load blue noise mask: %w", err)
		}
		orderedBlueNoise(pix, width, height, pal, mask)
	case Stark:
		orderedStark(pix, width, height, pal, 8)
	case Yliluoma1:
		orderedYliluoma1(pix, width, height, pal, 8)
	case Yliluoma2:
		orderedYliluoma2(pix, width, height, pal, 8)
	default:
		nearest(pix, pal)
	}
	return nil
}

// nearest maps each pixel without diffusion. Candidates are ranked by luma
// proximity; entries whose luma lies within 0.01 of the best are compared by
// plain RGB distance instead.
func nearest(pix []byte, pal palette.Palette) {
	lumas := pal.Lumas()
	for i := 0; i+3 < len(pix); i += 4 {
		r, g, b := pix[i], pix[i+1], pix[i+2]
		lum := palette.Luma(r, g, b)

		best := 0
		bestDL := float32(inf)
		bestDist := float32(inf)
		for j, c := range pal {
			dl := abs32(lum - lumas[j])
			if dl < bestDL-0.01 {
				bestDL = dl
				bestDist = rgbDist(r, g, b, c)
				best = j
			} else if abs32(dl-bestDL) <= 0.01 {
				if d := rgbDist(r, g, b, c); d < bestDist {
					bestDist = d
					best = j
				}
			}
		}

		c := pal[best]
		pix[i], pix[i+1], pix[i+2] = c[0], c[1], c[2]
	}
}
