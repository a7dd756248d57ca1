package panel

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alde/inkframe/pkg/palette"
)

// ErrUnknownProfile is returned by GetProfile for names not in the table
var ErrUnknownProfile = errors.New("unknown panel profile")

// Capabilities defines what a panel's firmware accepts
type Capabilities struct {
	// Native resolution
	Width  int
	Height int

	// Colours the panel can show, in device order
	Colors []string

	// Encoding the firmware expects
	Output  OutputFormat
	Packing Packing

	// Dithering that looks best on this panel
	DefaultDithering string
}

// Profile represents a known picture-frame panel
type Profile struct {
	Name         string
	Manufacturer string
	Model        string
	Capabilities Capabilities
}

// Palette returns the parsed colour list of the profile
func (p Profile) Palette() palette.Palette {
	pal, _ := palette.Parse(p.Capabilities.Colors)
	return pal
}

// Spec returns a landscape, contain-scaled Spec for the profile's native size
func (p Profile) Spec() Spec {
	return Spec{
		Width:  p.Capabilities.Width,
		Height: p.Capabilities.Height,
	}
}

var sixColor = []string{"black", "white", "yellow", "red", "blue", "green"}

// Available panel profiles
var profiles = map[string]Profile{
	"waveshare-7in3e": {
		Name:         "Waveshare 7.3\" Spectra 6",
		Manufacturer: "Waveshare",
		Model:        "7.3inch e-Paper (E)",
		Capabilities: Capabilities{
			Width:            800,
			Height:           480,
			Colors:           sixColor,
			Output:           Packed4bpp,
			DefaultDithering: "floyd_steinberg",
		},
	},
	"waveshare-7in3f": {
		Name:         "Waveshare 7.3\" ACeP 7-colour",
		Manufacturer: "Waveshare",
		Model:        "7.3inch e-Paper (F)",
		Capabilities: Capabilities{
			Width:            800,
			Height:           480,
			Colors:           []string{"black", "white", "green", "blue", "red", "yellow", "orange"},
			Output:           Packed4bpp,
			DefaultDithering: "floyd_steinberg",
		},
	},
	"gdep040e01": {
		Name:         "Good Display 4.0\" Spectra 6",
		Manufacturer: "Good Display",
		Model:        "GDEP040E01",
		Capabilities: Capabilities{
			Width:            400,
			Height:           600,
			Colors:           sixColor,
			Output:           Packed4bpp,
			DefaultDithering: "atkinson",
		},
	},
	"inky-impression-7": {
		Name:         "Pimoroni Inky Impression 7.3\"",
		Manufacturer: "Pimoroni",
		Model:        "Inky Impression 7.3",
		Capabilities: Capabilities{
			Width:            800,
			Height:           480,
			Colors:           []string{"black", "white", "green", "blue", "red", "yellow", "orange"},
			Output:           PNG,
			DefaultDithering: "ordered_bayer_4",
		},
	},
	"generic-png": {
		Name:         "Generic PNG frame",
		Manufacturer: "Generic",
		Model:        "LCD",
		Capabilities: Capabilities{
			Width:  1024,
			Height: 600,
			Output: PNG,
		},
	},
}

// GetProfile returns a panel profile by name
func GetProfile(name string) (Profile, error) {
	normalizedName := strings.ToLower(strings.TrimSpace(name))

	if profile, exists := profiles[normalizedName]; exists {
		return profile, nil
	}

	return Profile{}, fmt.Errorf("%w '%s'. Available profiles: %v", ErrUnknownProfile, name, ProfileNames())
}

// ListProfiles returns all available panel profiles
func ListProfiles() map[string]Profile {
	return profiles
}

// ProfileNames returns the profile keys in sorted order
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for key := range profiles {
		names = append(names, key)
	}
	sort.Strings(names)
	return names
}
