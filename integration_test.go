package main

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/inkframe/pkg/assets"
	"github.com/alde/inkframe/pkg/config"
	"github.com/alde/inkframe/pkg/encode"
	"github.com/alde/inkframe/pkg/render"
	"github.com/alde/inkframe/pkg/snapshot"
)

const integrationFrames = `
[photoframes.spectra]
profile = "waveshare-7in3e"
orientation = "portrait"
scaling = "cover"
dithering = "ordered_blue_256"

[photoframes.spectra.timestamp]
enabled = true
banner = true
color = "black_background"

[photoframes.lcd]
panel_width = 1024
panel_height = 600
output_format = "png"

[photoframes.lcd.adjustments]
contrast = 15
sharpness = 1.5
`

func writePhoto(t *testing.T, dir string) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 1200, 900))
	for y := 0; y < 900; y++ {
		for x := 0; x < 1200; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x / 5), uint8(y / 4), uint8((x + y) / 9), 255})
		}
	}
	path := filepath.Join(dir, "holiday.png")
	_, err := snapshot.Save(path, img, snapshot.Options{})
	require.NoError(t, err)
	return path
}

func TestIntegrationFramesFile(t *testing.T) {
	dir := t.TempDir()
	photoPath := writePhoto(t, dir)
	cfgPath := filepath.Join(dir, "frames.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(integrationFrames), 0o644))

	file, err := config.Load(cfgPath)
	require.NoError(t, err)
	frames, err := file.Frames()
	require.NoError(t, err)
	require.Len(t, frames, 2)

	src, err := snapshot.Open(photoPath)
	require.NoError(t, err)
	taken := time.Date(2022, time.August, 14, 9, 0, 0, 0, time.UTC)

	r := render.NewRenderer(assets.New())
	for _, frame := range frames {
		t.Run(frame.Name, func(t *testing.T) {
			out, p, err := r.Render(src.Image, frame, taken)
			require.NoError(t, err)

			path, err := snapshot.WriteFrame(filepath.Join(dir, "out", frame.Name+filepath.Ext(out.Filename())), out)
			require.NoError(t, err)
			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Equal(t, int64(len(out.Data)), info.Size())

			_, err = snapshot.Save(filepath.Join(dir, "out", frame.Name+"_preview.webp"), p.Final, snapshot.Options{Lossless: true})
			require.NoError(t, err)

			switch frame.Name {
			case "spectra":
				assert.Equal(t, encode.ContentTypePacked, out.ContentType)
				assert.Equal(t, 270, out.Rotation)
				assert.Len(t, out.Data, 800*480/2)
				assert.Equal(t, image.Rect(0, 0, 480, 760), p.Composed.Bounds())
				assert.Equal(t, image.Rect(0, 0, 480, 800), p.Final.Bounds())
				for i := 0; i < len(p.Final.Pix); i += 4 {
					c := [3]uint8{p.Final.Pix[i], p.Final.Pix[i+1], p.Final.Pix[i+2]}
					if !frame.Palette.Contains(c) {
						t.Fatalf("pixel %d (%v) outside the panel palette", i/4, c)
					}
				}
			case "lcd":
				assert.Equal(t, encode.ContentTypePNG, out.ContentType)
				assert.Equal(t, 1024, out.Width)
				assert.Equal(t, 600, out.Height)
				assert.Equal(t, image.Rect(112, 0, 912, 600), p.Content)
			}
		})
	}
}
