package timestamp

import (
	"fmt"
	"strings"
)

// Position is the corner or edge the text is anchored to
type Position int

const (
	BottomRight Position = iota
	BottomCenter
	BottomLeft
	TopRight
	TopCenter
	TopLeft
)

// ColorMode selects text colour and background
type ColorMode int

const (
	// TransparentAutoText picks black or white text from the brightness under it
	TransparentAutoText ColorMode = iota
	TransparentWhiteText
	TransparentBlackText
	// WhiteBackground draws black text on a white box
	WhiteBackground
	// BlackBackground draws white text on a black box
	BlackBackground
)

// StrokeColor selects the outline colour
type StrokeColor int

const (
	// StrokeAuto contrasts with the text colour
	StrokeAuto StrokeColor = iota
	StrokeWhite
	StrokeBlack
)

// Config describes the capture date label
type Config struct {
	Enabled bool
	// strftime pattern, "%Y-%m-%d" when empty
	Format string
	// Line height in pixels, 24 when zero
	FontSize float64
	Position Position
	Color    ColorMode

	StrokeEnabled bool
	// Outline radius in pixels; capped at 16 and at 30% of the font size
	StrokeWidth int
	StrokeColor StrokeColor

	// Banner reserves a strip above or below the photo instead of drawing on it
	Banner bool
	// Strip height, font size + 16 when zero
	BannerHeight int

	PaddingHorizontal int
	PaddingVertical   int
}

// Defaults used by DefaultConfig and for unset fields
const (
	DefaultFormat   = "%Y-%m-%d"
	DefaultFontSize = 24.0
	DefaultPadding  = 16
)

// DefaultConfig returns a disabled label with the documented defaults
func DefaultConfig() Config {
	return Config{
		Format:            DefaultFormat,
		FontSize:          DefaultFontSize,
		StrokeWidth:       1,
		PaddingHorizontal: DefaultPadding,
		PaddingVertical:   DefaultPadding,
	}
}

func (c *Config) format() string {
	if c.Format == "" {
		return DefaultFormat
	}
	return c.Format
}

func (c *Config) fontSize() float64 {
	if c.FontSize <= 0 {
		return DefaultFontSize
	}
	return c.FontSize
}

// BannerHeight returns the strip height reserved in banner mode, or zero
// when the label is disabled or drawn over the photo.
func BannerHeight(cfg *Config) int {
	if cfg == nil || !cfg.Enabled || !cfg.Banner {
		return 0
	}
	if cfg.BannerHeight > 0 {
		return cfg.BannerHeight
	}
	return int(cfg.fontSize()) + 16
}

// atTop reports whether the position is on the top edge
func (p Position) atTop() bool {
	return p == TopLeft || p == TopCenter || p == TopRight
}

// ParsePosition maps names like "bottom_right" or "top-left"
func ParsePosition(s string) (Position, error) {
	switch normalize(s) {
	case "", "bottom_right":
		return BottomRight, nil
	case "bottom_center":
		return BottomCenter, nil
	case "bottom_left":
		return BottomLeft, nil
	case "top_right":
		return TopRight, nil
	case "top_center":
		return TopCenter, nil
	case "top_left":
		return TopLeft, nil
	}
	return BottomRight, fmt.Errorf("unknown timestamp position %q", s)
}

// ParseColorMode maps names like "white_background" or "transparent_auto_text"
func ParseColorMode(s string) (ColorMode, error) {
	switch normalize(s) {
	case "", "auto", "transparent_auto_text":
		return TransparentAutoText, nil
	case "white", "transparent_white_text":
		return TransparentWhiteText, nil
	case "black", "transparent_black_text":
		return TransparentBlackText, nil
	case "white_background":
		return WhiteBackground, nil
	case "black_background":
		return BlackBackground, nil
	}
	return TransparentAutoText, fmt.Errorf("unknown timestamp color %q", s)
}

// ParseStrokeColor maps "auto", "white" or "black"
func ParseStrokeColor(s string) (StrokeColor, error) {
	switch normalize(s) {
	case "", "auto":
		return StrokeAuto, nil
	case "white":
		return StrokeWhite, nil
	case "black":
		return StrokeBlack, nil
	}
	return StrokeAuto, fmt.Errorf("unknown stroke color %q", s)
}

func normalize(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
}
