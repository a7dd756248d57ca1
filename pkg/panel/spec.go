package panel

import (
	"fmt"
	"strings"
)

// Orientation is the logical orientation of the picture shown on a panel
type Orientation int

const (
	Landscape Orientation = iota
	Portrait
)

// ScalingMode controls how a source photo is fitted into the panel canvas
type ScalingMode int

const (
	// Contain preserves aspect ratio and letterboxes with white
	Contain ScalingMode = iota
	// Cover crops the centre of the photo to fill the canvas exactly
	Cover
	// SmartCover crops the most interesting region (content-aware) to fill the canvas
	SmartCover
)

// OutputFormat is the byte encoding the panel firmware expects
type OutputFormat int

const (
	PNG OutputFormat = iota
	Packed4bpp
)

// Overscan insets (pixels, view coordinates) hidden behind the physical bezel.
type Overscan struct {
	Left   int `toml:"left" yaml:"left"`
	Right  int `toml:"right" yaml:"right"`
	Top    int `toml:"top" yaml:"top"`
	Bottom int `toml:"bottom" yaml:"bottom"`
}

// Clamped returns the insets with negative values replaced by zero
func (o Overscan) Clamped() Overscan {
	return Overscan{
		Left:   max(o.Left, 0),
		Right:  max(o.Right, 0),
		Top:    max(o.Top, 0),
		Bottom: max(o.Bottom, 0),
	}
}

// Packing holds the packed-4bpp traversal flags
type Packing struct {
	SwapNibbles bool // low nibble holds the first pixel of each pair
	ReverseRows bool // bottom-to-top
	ReverseCols bool // right-to-left
}

// Spec describes a physical panel and how a picture is laid out on it.
// A zero Width or Height means "unknown": composition and encoding then pass
// the image through unscaled and unrotated.
type Spec struct {
	Width       int // native width in pixels
	Height      int // native height in pixels
	Orientation Orientation
	Scaling     ScalingMode
	Overscan    Overscan
	Flip        bool // turn the final picture upside down
}

// HasSize reports whether native dimensions are configured
func (s Spec) HasSize() bool {
	return s.Width > 0 && s.Height > 0
}

// ViewSize derives the canvas the picture is composed on: wide for
// landscape, tall for portrait, built from the native dimensions.
func (s Spec) ViewSize() (int, int) {
	long, short := max(s.Width, s.Height), min(s.Width, s.Height)
	if s.Orientation == Portrait {
		return short, long
	}
	return long, short
}

// ParseOrientation maps a configuration string to an Orientation.
// An empty string yields the default (Landscape).
func ParseOrientation(s string) (Orientation, error) {
	switch normalize(s) {
	case "", "landscape":
		return Landscape, nil
	case "portrait":
		return Portrait, nil
	}
	return Landscape, fmt.Errorf("unknown orientation %q (valid options: landscape, portrait)", s)
}

// ParseScaling maps a configuration string to a ScalingMode
func ParseScaling(s string) (ScalingMode, error) {
	switch normalize(s) {
	case "", "contain":
		return Contain, nil
	case "cover":
		return Cover, nil
	case "smart", "smart_cover":
		return SmartCover, nil
	}
	return Contain, fmt.Errorf("unknown scaling mode %q (valid options: contain, cover, smart)", s)
}

// ParseOutputFormat maps a configuration string to an OutputFormat
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch normalize(s) {
	case "", "png":
		return PNG, nil
	case "packed4bpp", "packed_4bpp", "4bpp":
		return Packed4bpp, nil
	}
	return PNG, fmt.Errorf("unknown output format %q (valid options: png, packed4bpp)", s)
}

func (o Orientation) String() string {
	if o == Portrait {
		return "portrait"
	}
	return "landscape"
}

func (m ScalingMode) String() string {
	switch m {
	case Cover:
		return "cover"
	case SmartCover:
		return "smart"
	default:
		return "contain"
	}
}

func (f OutputFormat) String() string {
	if f == Packed4bpp {
		return "packed4bpp"
	}
	return "png"
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
