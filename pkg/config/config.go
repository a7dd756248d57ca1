// Package config loads the picture frames file. The file is read-only: it
// describes each frame's panel, palette and rendering settings and is turned
// into render.Frame values.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/alde/inkframe/internal/log"
	"github.com/alde/inkframe/pkg/palette"
	"github.com/alde/inkframe/pkg/panel"
	"github.com/alde/inkframe/pkg/render"
	"github.com/alde/inkframe/pkg/timestamp"
)

// ErrUnknownFrame is returned when a frame id is not in the file
var ErrUnknownFrame = errors.New("unknown photo frame")

// File is the frames file
type File struct {
	ImageLimits ImageLimits           `toml:"image_limits" yaml:"image_limits"`
	Photoframes map[string]PhotoFrame `toml:"photoframes" yaml:"photoframes"`
}

// ImageLimits bounds source photos before composing
type ImageLimits struct {
	MaxWidth  int `toml:"max_width" yaml:"max_width"`
	MaxHeight int `toml:"max_height" yaml:"max_height"`
}

// PhotoFrame holds one frame as written in the file. Unset keys keep the
// profile's (or the built-in) defaults.
type PhotoFrame struct {
	Profile string `toml:"profile" yaml:"profile"`

	PanelWidth   *int    `toml:"panel_width" yaml:"panel_width"`
	PanelHeight  *int    `toml:"panel_height" yaml:"panel_height"`
	Orientation  string  `toml:"orientation" yaml:"orientation"`
	Scaling      string  `toml:"scaling" yaml:"scaling"`
	Flip         *bool   `toml:"flip" yaml:"flip"`
	OutputFormat string  `toml:"output_format" yaml:"output_format"`
	Dithering    *string `toml:"dithering" yaml:"dithering"`

	SupportedColors []string            `toml:"supported_colors" yaml:"supported_colors"`
	Overscan        *panel.Overscan     `toml:"overscan" yaml:"overscan"`
	Adjustments     *render.Adjustments `toml:"adjustments" yaml:"adjustments"`
	Timestamp       *Timestamp          `toml:"timestamp" yaml:"timestamp"`

	SwapNibbles *bool `toml:"swap_nibbles" yaml:"swap_nibbles"`
	ReverseRows *bool `toml:"reverse_rows" yaml:"reverse_rows"`
	ReverseCols *bool `toml:"reverse_cols" yaml:"reverse_cols"`
}

// Timestamp is the [photoframes.<id>.timestamp] table
type Timestamp struct {
	Enabled           bool    `toml:"enabled" yaml:"enabled"`
	Format            string  `toml:"format" yaml:"format"`
	FontSize          float64 `toml:"font_size" yaml:"font_size"`
	Position          string  `toml:"position" yaml:"position"`
	Color             string  `toml:"color" yaml:"color"`
	Stroke            bool    `toml:"stroke" yaml:"stroke"`
	StrokeWidth       *int    `toml:"stroke_width" yaml:"stroke_width"`
	StrokeColor       string  `toml:"stroke_color" yaml:"stroke_color"`
	Banner            bool    `toml:"banner" yaml:"banner"`
	BannerHeight      int     `toml:"banner_height" yaml:"banner_height"`
	PaddingHorizontal *int    `toml:"padding_horizontal" yaml:"padding_horizontal"`
	PaddingVertical   *int    `toml:"padding_vertical" yaml:"padding_vertical"`
}

// Load reads a frames file, choosing the decoder by extension
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	f, err := Parse(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	log.Debugf("loaded %d photo frames from %s", len(f.Photoframes), path)
	return f, nil
}

// Parse decodes a frames file. ext is ".toml", ".yaml" or ".yml".
func Parse(data []byte, ext string) (*File, error) {
	var f File
	switch strings.ToLower(ext) {
	case ".toml":
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
		if err != nil {
			return nil, err
		}
		for _, key := range md.Undecoded() {
			log.Warnf("ignoring unknown config key %s", key)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q (valid options: .toml, .yaml, .yml)", ext)
	}
	return &f, nil
}

// IDs returns the frame ids in sorted order
func (f *File) IDs() []string {
	ids := make([]string, 0, len(f.Photoframes))
	for id := range f.Photoframes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Frame builds the render settings of one frame
func (f *File) Frame(id string) (*render.Frame, error) {
	pf, ok := f.Photoframes[id]
	if !ok {
		return nil, fmt.Errorf("%w %q. Available frames: %v", ErrUnknownFrame, id, f.IDs())
	}

	frame, err := pf.build(id)
	if err != nil {
		return nil, fmt.Errorf("photo frame %q: %w", id, err)
	}
	frame.MaxSourceWidth = f.ImageLimits.MaxWidth
	frame.MaxSourceHeight = f.ImageLimits.MaxHeight
	return frame, nil
}

// Frames builds every frame in id order
func (f *File) Frames() ([]*render.Frame, error) {
	out := make([]*render.Frame, 0, len(f.Photoframes))
	for _, id := range f.IDs() {
		frame, err := f.Frame(id)
		if err != nil {
			return nil, err
		}
		out = append(out, frame)
	}
	return out, nil
}

func (pf PhotoFrame) build(id string) (*render.Frame, error) {
	frame := render.NewFrame(id, panel.Spec{})
	if pf.Profile != "" {
		p, err := panel.GetProfile(pf.Profile)
		if err != nil {
			return nil, err
		}
		frame = render.FromProfile(id, p)
	}

	if pf.PanelWidth != nil {
		frame.Spec.Width = *pf.PanelWidth
	}
	if pf.PanelHeight != nil {
		frame.Spec.Height = *pf.PanelHeight
	}
	if pf.Flip != nil {
		frame.Spec.Flip = *pf.Flip
	}
	if pf.Overscan != nil {
		frame.Spec.Overscan = pf.Overscan.Clamped()
	}

	var err error
	if pf.Orientation != "" {
		if frame.Spec.Orientation, err = panel.ParseOrientation(pf.Orientation); err != nil {
			return nil, err
		}
	}
	if pf.Scaling != "" {
		if frame.Spec.Scaling, err = panel.ParseScaling(pf.Scaling); err != nil {
			return nil, err
		}
	}
	if pf.OutputFormat != "" {
		if frame.Output, err = panel.ParseOutputFormat(pf.OutputFormat); err != nil {
			return nil, err
		}
	}

	if pf.Dithering != nil {
		frame.Dithering = *pf.Dithering
	}
	if pf.SupportedColors != nil {
		pal, err := palette.Parse(pf.SupportedColors)
		if err != nil {
			log.Warnf("photo frame %q: skipping colours: %v", id, err)
		}
		frame.Palette = pal
	}
	if pf.Adjustments != nil {
		adj := *pf.Adjustments
		frame.Adjustments = &adj
	}

	if pf.SwapNibbles != nil {
		frame.Packing.SwapNibbles = *pf.SwapNibbles
	}
	if pf.ReverseRows != nil {
		frame.Packing.ReverseRows = *pf.ReverseRows
	}
	if pf.ReverseCols != nil {
		frame.Packing.ReverseCols = *pf.ReverseCols
	}

	if pf.Timestamp != nil {
		if frame.Timestamp, err = pf.Timestamp.config(); err != nil {
			return nil, err
		}
	}
	return frame, nil
}

func (t *Timestamp) config() (timestamp.Config, error) {
	cfg := timestamp.DefaultConfig()
	cfg.Enabled = t.Enabled
	cfg.StrokeEnabled = t.Stroke
	cfg.Banner = t.Banner
	cfg.BannerHeight = t.BannerHeight
	if t.Format != "" {
		cfg.Format = t.Format
	}
	if t.FontSize > 0 {
		cfg.FontSize = t.FontSize
	}
	if t.StrokeWidth != nil {
		cfg.StrokeWidth = *t.StrokeWidth
	}
	if t.PaddingHorizontal != nil {
		cfg.PaddingHorizontal = *t.PaddingHorizontal
	}
	if t.PaddingVertical != nil {
		cfg.PaddingVertical = *t.PaddingVertical
	}

	var err error
	if cfg.Position, err = timestamp.ParsePosition(t.Position); err != nil {
		return cfg, err
	}
	if cfg.Color, err = timestamp.ParseColorMode(t.Color); err != nil {
		return cfg, err
	}
	if cfg.StrokeColor, err = timestamp.ParseStrokeColor(t.StrokeColor); err != nil {
		return cfg, err
	}
	return cfg, nil
}
