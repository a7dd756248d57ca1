package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/alde/inkframe/internal/log"
	"github.com/alde/inkframe/pkg/config"
	"github.com/alde/inkframe/pkg/dither"
	"github.com/alde/inkframe/pkg/palette"
	"github.com/alde/inkframe/pkg/panel"
	"github.com/alde/inkframe/pkg/render"
	"github.com/alde/inkframe/pkg/timestamp"
)

// frameFlags are the per-frame overrides shared by render commands
type frameFlags struct {
	configPath string
	frameID    string
	profile    string

	width, height int
	orientation   string
	scaling       string
	flip          bool
	format        string
	dithering     string
	colors        []string
	overscan      []int

	swapNibbles, reverseRows, reverseCols bool

	brightness, contrast, saturation, sharpness float32

	stamp       bool
	stampFormat string
	stampSize   float64
	stampPos    string
	stampColor  string
	banner      bool
	stroke      int

	maxWidth, maxHeight int
}

func (f *frameFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.configPath, "config", "c", "", "Frames file (.toml, .yaml)")
	fs.StringVar(&f.frameID, "frame", "", "Frame id in the frames file")
	fs.StringVarP(&f.profile, "profile", "p", "", "Built-in panel profile (see 'inkframe profiles')")

	fs.IntVar(&f.width, "width", 0, "Native panel width in pixels")
	fs.IntVar(&f.height, "height", 0, "Native panel height in pixels")
	fs.StringVar(&f.orientation, "orientation", "landscape", "Picture orientation (landscape, portrait)")
	fs.StringVar(&f.scaling, "scaling", "contain", "Fit mode (contain, cover, smart)")
	fs.BoolVar(&f.flip, "flip", false, "Turn the picture upside down")
	fs.StringVar(&f.format, "format", "png", "Output encoding (png, packed4bpp)")
	fs.StringVarP(&f.dithering, "dither", "d", "", "Dithering algorithm (see 'inkframe algorithms')")
	fs.StringSliceVar(&f.colors, "colors", nil, "Panel palette as names or hex, in device order")
	fs.IntSliceVar(&f.overscan, "overscan", nil, "Overscan insets: left,right,top,bottom")

	fs.BoolVar(&f.swapNibbles, "swap-nibbles", false, "Put the first pixel of each pair in the low nibble")
	fs.BoolVar(&f.reverseRows, "reverse-rows", false, "Pack rows bottom to top")
	fs.BoolVar(&f.reverseCols, "reverse-cols", false, "Pack columns right to left")

	fs.Float32Var(&f.brightness, "brightness", 0, "Brightness offset (-255..255)")
	fs.Float32Var(&f.contrast, "contrast", 0, "Contrast (-255..255)")
	fs.Float32Var(&f.saturation, "saturation", 0, "Saturation (-0.25..0.25 spans grey to double)")
	fs.Float32Var(&f.sharpness, "sharpness", 0, "Sharpen (positive) or blur (negative), -5..5")

	fs.BoolVar(&f.stamp, "timestamp", false, "Draw the capture date")
	fs.StringVar(&f.stampFormat, "timestamp-format", timestamp.DefaultFormat, "strftime pattern for the date")
	fs.Float64Var(&f.stampSize, "timestamp-size", timestamp.DefaultFontSize, "Date line height in pixels")
	fs.StringVar(&f.stampPos, "timestamp-position", "bottom_right", "Date position, e.g. top_left, bottom_center")
	fs.StringVar(&f.stampColor, "timestamp-color", "auto", "auto, white, black, white_background, black_background")
	fs.BoolVar(&f.banner, "banner", false, "Reserve a strip for the date instead of drawing over the photo")
	fs.IntVar(&f.stroke, "stroke", 0, "Outline width around the date, 0 for none")

	fs.IntVar(&f.maxWidth, "max-width", 0, "Shrink larger sources to this width first (0 = unbounded)")
	fs.IntVar(&f.maxHeight, "max-height", 0, "Shrink larger sources to this height first (0 = unbounded)")
}

// build resolves the frame from the file or profile and applies every flag
// the user set explicitly
func (f *frameFlags) build(cmd *cobra.Command) (*render.Frame, error) {
	frame, err := f.base()
	if err != nil {
		return nil, err
	}
	if err := f.apply(cmd.Flags(), frame); err != nil {
		return nil, err
	}

	if frame.Dithering != "" && !dither.IsKnown(frame.Dithering) {
		log.Warnf("unknown dithering %q, mapping to the nearest colour", frame.Dithering)
	}
	return frame, nil
}

func (f *frameFlags) base() (*render.Frame, error) {
	switch {
	case f.configPath != "":
		file, err := config.Load(f.configPath)
		if err != nil {
			return nil, err
		}
		id := f.frameID
		if id == "" {
			ids := file.IDs()
			if len(ids) != 1 {
				return nil, fmt.Errorf("--frame is required when the frames file has %d frames: %v", len(ids), ids)
			}
			id = ids[0]
		}
		return file.Frame(id)

	case f.profile != "":
		p, err := panel.GetProfile(f.profile)
		if err != nil {
			return nil, err
		}
		return render.FromProfile(f.profile, p), nil
	}
	return render.NewFrame("cli", panel.Spec{}), nil
}

func (f *frameFlags) apply(fs *pflag.FlagSet, frame *render.Frame) error {
	var err error
	if fs.Changed("width") {
		frame.Spec.Width = f.width
	}
	if fs.Changed("height") {
		frame.Spec.Height = f.height
	}
	if fs.Changed("orientation") {
		if frame.Spec.Orientation, err = panel.ParseOrientation(f.orientation); err != nil {
			return err
		}
	}
	if fs.Changed("scaling") {
		if frame.Spec.Scaling, err = panel.ParseScaling(f.scaling); err != nil {
			return err
		}
	}
	if fs.Changed("flip") {
		frame.Spec.Flip = f.flip
	}
	if fs.Changed("overscan") {
		if len(f.overscan) != 4 {
			return fmt.Errorf("--overscan takes four values (left,right,top,bottom), got %d", len(f.overscan))
		}
		frame.Spec.Overscan = panel.Overscan{
			Left: f.overscan[0], Right: f.overscan[1], Top: f.overscan[2], Bottom: f.overscan[3],
		}.Clamped()
	}
	if fs.Changed("format") {
		if frame.Output, err = panel.ParseOutputFormat(f.format); err != nil {
			return err
		}
	}
	if fs.Changed("dither") {
		frame.Dithering = f.dithering
	}
	if fs.Changed("colors") {
		pal, err := palette.Parse(f.colors)
		if err != nil {
			log.Warnf("skipping colours: %v", err)
		}
		frame.Palette = pal
	}

	if fs.Changed("swap-nibbles") {
		frame.Packing.SwapNibbles = f.swapNibbles
	}
	if fs.Changed("reverse-rows") {
		frame.Packing.ReverseRows = f.reverseRows
	}
	if fs.Changed("reverse-cols") {
		frame.Packing.ReverseCols = f.reverseCols
	}

	if fs.Changed("brightness") || fs.Changed("contrast") || fs.Changed("saturation") || fs.Changed("sharpness") {
		adj := render.Adjustments{}
		if frame.Adjustments != nil {
			adj = *frame.Adjustments
		}
		setIfChanged(fs, "brightness", &adj.Brightness, f.brightness)
		setIfChanged(fs, "contrast", &adj.Contrast, f.contrast)
		setIfChanged(fs, "saturation", &adj.Saturation, f.saturation)
		setIfChanged(fs, "sharpness", &adj.Sharpness, f.sharpness)
		frame.Adjustments = &adj
	}

	ts := &frame.Timestamp
	if fs.Changed("timestamp") {
		ts.Enabled = f.stamp
	}
	if fs.Changed("timestamp-format") {
		ts.Format = f.stampFormat
	}
	if fs.Changed("timestamp-size") {
		ts.FontSize = f.stampSize
	}
	if fs.Changed("timestamp-position") {
		if ts.Position, err = timestamp.ParsePosition(f.stampPos); err != nil {
			return err
		}
	}
	if fs.Changed("timestamp-color") {
		if ts.Color, err = timestamp.ParseColorMode(f.stampColor); err != nil {
			return err
		}
	}
	if fs.Changed("banner") {
		ts.Banner = f.banner
	}
	if fs.Changed("stroke") {
		ts.StrokeEnabled = f.stroke > 0
		ts.StrokeWidth = f.stroke
	}

	if fs.Changed("max-width") {
		frame.MaxSourceWidth = f.maxWidth
	}
	if fs.Changed("max-height") {
		frame.MaxSourceHeight = f.maxHeight
	}
	return nil
}

func setIfChanged(fs *pflag.FlagSet, name string, dst *float32, v float32) {
	if fs.Changed(name) {
		*dst = v
	}
}
