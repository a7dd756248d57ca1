package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/alde/inkframe/pkg/assets"
	"github.com/alde/inkframe/pkg/render"
	"github.com/alde/inkframe/pkg/snapshot"
)

var (
	renderFlags      frameFlags
	outputPath       string
	previewPath      string
	intermediatePath string
	takenValue       string
	prescaled        bool
)

var renderCmd = &cobra.Command{
	Use:   "render [photo]",
	Short: "Render a photo for one picture frame",
	Long: `Render a photo into the bytes a picture-frame panel expects.

The frame comes from a frames file (--config/--frame), a built-in profile
(--profile) or plain flags; explicit flags override the file and profile.

Examples:
  inkframe render photo.jpg -p waveshare-7in3e -o frame.bin
  inkframe render photo.jpg --width 800 --height 480 --scaling cover \
      --colors black,white,red --dither atkinson --format packed4bpp -o out/
  inkframe render photo.jpg -c frames.toml --frame kitchen -o kitchen.bin \
      --preview kitchen.webp --timestamp --taken 2024-06-01`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)

	renderFlags.register(renderCmd.Flags())
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Encoded frame file or directory (required)")
	renderCmd.Flags().StringVar(&previewPath, "preview", "", "Write the final picture before encoding (.png, .webp, .jpg)")
	renderCmd.Flags().StringVar(&intermediatePath, "intermediate", "", "Write the composed picture before adjustments (.png, .webp, .jpg)")
	renderCmd.Flags().StringVar(&takenValue, "taken", "", "Capture time for the date label (YYYY-MM-DD, RFC 3339 or 'mtime')")
	renderCmd.Flags().BoolVar(&prescaled, "prescaled", false, "The photo is already at view size; skip fitting")

	renderCmd.MarkFlagRequired("output")
}

func runRender(cmd *cobra.Command, args []string) error {
	frame, err := renderFlags.build(cmd)
	if err != nil {
		return fmt.Errorf("frame configuration error: %w", err)
	}

	src, err := snapshot.Open(args[0])
	if err != nil {
		return err
	}
	if src.Taken, err = resolveTaken(takenValue, src.Path); err != nil {
		return err
	}

	start := time.Now()
	r := render.NewRenderer(assets.New())

	prepare := r.Prepare
	if prescaled {
		prepare = r.PrepareFromScaled
	}
	p, err := prepare(src.Image, frame, src.Taken)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if err := writeCheckpoints(p, intermediatePath, previewPath); err != nil {
		return err
	}

	out, err := r.Encode(p, frame)
	if err != nil {
		return fmt.Errorf("encoding failed: %w", err)
	}
	path, err := snapshot.WriteFrame(outputPath, out)
	if err != nil {
		return err
	}

	b := src.Image.Bounds()
	fmt.Printf("Rendered %s (%dx%d, %s) -> %s\n", src.Path, b.Dx(), b.Dy(), humanize.Bytes(uint64(src.Size)), path)
	fmt.Printf("  Panel:  %dx%d %s, rotation %d\n", out.Width, out.Height, out.ContentType, out.Rotation)
	fmt.Printf("  Size:   %s\n", humanize.Bytes(uint64(len(out.Data))))
	if verbose {
		fmt.Printf("  Time:   %v\n", time.Since(start).Round(time.Millisecond))
	}
	return nil
}

// resolveTaken reads --taken; "mtime" uses the photo's modification time
func resolveTaken(value, path string) (time.Time, error) {
	switch value {
	case "":
		return time.Time{}, nil
	case "mtime":
		return snapshot.ModTime(path)
	}
	return snapshot.ParseTaken(value)
}

func writeCheckpoints(p *render.Prepared, intermediate, preview string) error {
	if intermediate != "" {
		n, err := snapshot.Save(intermediate, p.Composed, snapshot.Options{Lossless: true})
		if err != nil {
			return err
		}
		fmt.Printf("  Intermediate: %s (%s)\n", intermediate, humanize.Bytes(uint64(n)))
	}
	if preview != "" {
		n, err := snapshot.Save(preview, p.Final, snapshot.Options{Lossless: true})
		if err != nil {
			return err
		}
		fmt.Printf("  Preview: %s (%s)\n", preview, humanize.Bytes(uint64(n)))
	}
	return nil
}
