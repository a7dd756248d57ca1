package palette

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/colornames"
)

// Luma weights used for every perceptual comparison in the renderer.
const (
	WeightR float32 = 0.299
	WeightG float32 = 0.587
	WeightB float32 = 0.114
)

// RGB is an opaque 8-bit sRGB colour
type RGB [3]uint8

// Palette is an ordered list of colours a panel can display.
// Order matters for packed output: it defines the nibble code of each entry
// when no device colour table applies.
type Palette []RGB

// Luma returns the weighted luminance of c in the 0..255 range
func (c RGB) Luma() float32 {
	return Luma(c[0], c[1], c[2])
}

// Hex formats c as #rrggbb
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}

// Luma returns 0.299r + 0.587g + 0.114b.
func Luma(r, g, b uint8) float32 {
	// explicit conversions stop the compiler from fusing multiply-adds
	return float32(WeightR*float32(r)) + float32(WeightG*float32(g)) + float32(WeightB*float32(b))
}

// Contains reports whether the exact colour is part of the palette
func (p Palette) Contains(c RGB) bool {
	for _, pc := range p {
		if pc == c {
			return true
		}
	}
	return false
}

// Lumas returns the luma of every entry, in palette order
func (p Palette) Lumas() []float32 {
	out := make([]float32, len(p))
	for i, c := range p {
		out[i] = c.Luma()
	}
	return out
}

// Truncate returns at most n leading entries
func (p Palette) Truncate(n int) Palette {
	if len(p) <= n {
		return p
	}
	return p[:n]
}

// Strings formats every entry as a hex string
func (p Palette) Strings() []string {
	out := make([]string, len(p))
	for i, c := range p {
		out[i] = c.Hex()
	}
	return out
}

// ParseColor parses a CSS colour name ("red", "rebeccapurple") or a hex
// string ("#f00", "#ff0000", "ff0000").
func ParseColor(s string) (RGB, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "" {
		return RGB{}, fmt.Errorf("empty colour")
	}

	if c, ok := colornames.Map[name]; ok {
		return RGB{c.R, c.G, c.B}, nil
	}

	if !strings.HasPrefix(name, "#") {
		name = "#" + name
	}
	c, err := colorful.Hex(name)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid colour %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{r, g, b}, nil
}

// Parse converts a list of colour strings into a palette. Invalid entries are
// skipped; the returned error joins every failure so callers can warn about them.
// An input where every entry is invalid yields a nil palette.
func Parse(colors []string) (Palette, error) {
	var (
		out  Palette
		errs []error
	)
	for _, s := range colors {
		c, err := ParseColor(s)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out = append(out, c)
	}
	return out, errors.Join(errs...)
}

// MustParse is Parse for static tables; it panics on any invalid entry.
func MustParse(colors ...string) Palette {
	p, err := Parse(colors)
	if err != nil {
		panic(err)
	}
	return p
}
