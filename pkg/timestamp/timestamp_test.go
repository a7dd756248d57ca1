package timestamp

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/inkframe/pkg/assets"
	"github.com/alde/inkframe/pkg/panel"
)

var taken = time.Date(2024, time.March, 9, 14, 30, 0, 0, time.UTC)

func enabled() *Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	return &cfg
}

func changed(a, b *image.NRGBA, r image.Rectangle) int {
	n := 0
	r = r.Intersect(a.Bounds())
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			if a.NRGBAAt(x, y) != b.NRGBAAt(x, y) {
				n++
			}
		}
	}
	return n
}

func TestBannerHeight(t *testing.T) {
	cfg := enabled()
	assert.Zero(t, BannerHeight(cfg))
	assert.Zero(t, BannerHeight(nil))

	cfg.Banner = true
	assert.Equal(t, 40, BannerHeight(cfg))

	cfg.BannerHeight = 60
	assert.Equal(t, 60, BannerHeight(cfg))

	cfg.Enabled = false
	assert.Zero(t, BannerHeight(cfg))
}

func TestParse(t *testing.T) {
	p, err := ParsePosition("Top-Left")
	require.NoError(t, err)
	assert.Equal(t, TopLeft, p)

	_, err = ParsePosition("middle")
	assert.Error(t, err)

	c, err := ParseColorMode("white_background")
	require.NoError(t, err)
	assert.Equal(t, WhiteBackground, c)

	c, err = ParseColorMode("auto")
	require.NoError(t, err)
	assert.Equal(t, TransparentAutoText, c)

	s, err := ParseStrokeColor("BLACK")
	require.NoError(t, err)
	assert.Equal(t, StrokeBlack, s)
}

func TestRenderDisabled(t *testing.T) {
	img := imaging.New(100, 50, color.White)

	out, err := Render(img, &Config{}, Options{Taken: taken})
	require.NoError(t, err)
	assert.Same(t, img, out)

	out, err = Render(img, enabled(), Options{Fonts: assets.New()})
	require.NoError(t, err)
	assert.Same(t, img, out)
}

func TestRenderNeedsFont(t *testing.T) {
	img := imaging.New(100, 50, color.White)
	_, err := Render(img, enabled(), Options{Taken: taken})
	assert.ErrorIs(t, err, ErrNoFont)
}

func TestRenderOverlay(t *testing.T) {
	img := imaging.New(320, 200, color.White)
	out, err := Render(img, enabled(), Options{Taken: taken, Fonts: assets.New()})
	require.NoError(t, err)
	require.Equal(t, img.Bounds(), out.Bounds())

	// bottom right by default, auto colour gives dark text on white
	assert.Positive(t, changed(img, out, image.Rect(160, 120, 320, 200)))
	assert.Zero(t, changed(img, out, image.Rect(0, 0, 320, 100)))
	assert.Zero(t, changed(img, out, image.Rect(0, 0, 100, 200)))

	dark := 0
	for y := 120; y < 200; y++ {
		for x := 160; x < 320; x++ {
			if out.NRGBAAt(x, y).R < 128 {
				dark++
			}
		}
	}
	assert.Positive(t, dark)
	// the source is left alone
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(300, 180))
}

func TestAutoColor(t *testing.T) {
	bright := imaging.New(40, 20, color.NRGBA{200, 200, 200, 255})
	assert.Equal(t, black, autoColor(bright, 5, 5, 20, 10))

	dark := imaging.New(40, 20, color.NRGBA{40, 40, 40, 255})
	assert.Equal(t, white, autoColor(dark, 5, 5, 20, 10))

	assert.Equal(t, black, autoColor(dark, 100, 100, 5, 5))
}

func TestRenderBackgroundBox(t *testing.T) {
	img := imaging.New(320, 200, color.NRGBA{200, 0, 0, 255})
	cfg := enabled()
	cfg.Color = BlackBackground
	cfg.Position = TopLeft

	out, err := Render(img, cfg, Options{Taken: taken, Fonts: assets.New()})
	require.NoError(t, err)

	// the box starts 4px above and left of the text at (16, 16)
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(12, 12))
	assert.Equal(t, color.NRGBA{200, 0, 0, 255}, out.NRGBAAt(11, 11))
	assert.Equal(t, color.NRGBA{200, 0, 0, 255}, out.NRGBAAt(300, 190))
}

func TestRenderBanner(t *testing.T) {
	img := imaging.New(200, 100, color.NRGBA{0, 0, 255, 255})
	cfg := enabled()
	cfg.Banner = true
	cfg.Color = BlackBackground

	out, err := Render(img, cfg, Options{Taken: taken, Fonts: assets.New(), ReducedHeight: 80})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 200, 120), out.Bounds())

	// photo on top, resized to the reduced height, strip below
	assert.Equal(t, color.NRGBA{0, 0, 255, 255}, out.NRGBAAt(100, 40))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, out.NRGBAAt(0, 119))

	light := 0
	for y := 80; y < 120; y++ {
		for x := 0; x < 200; x++ {
			if out.NRGBAAt(x, y).G > 128 {
				light++
			}
		}
	}
	assert.Positive(t, light)
}

func TestRenderBannerWithoutDate(t *testing.T) {
	img := imaging.New(50, 30, color.NRGBA{0, 255, 0, 255})
	cfg := enabled()
	cfg.Banner = true
	cfg.BannerHeight = 10
	cfg.Position = TopCenter

	out, err := Render(img, cfg, Options{Fonts: assets.New(), ReducedHeight: 20})
	require.NoError(t, err)
	assert.Same(t, img, out)
}

func inkRows(img *image.NRGBA, from, to int) int {
	n := 0
	for y := from; y < to; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.NRGBAAt(x, y).R > 64 {
				n++
				break
			}
		}
	}
	return n
}

func TestRenderBannerPaddingVertical(t *testing.T) {
	img := imaging.New(300, 100, color.NRGBA{0, 0, 0, 255})
	cfg := enabled()
	cfg.Banner = true
	cfg.BannerHeight = 80
	cfg.Position = TopLeft
	cfg.Color = BlackBackground
	cfg.StrokeEnabled = false

	cfg.PaddingVertical = 0
	out, err := Render(img, cfg, Options{Taken: taken, Fonts: assets.New()})
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 300, 180), out.Bounds())
	assert.Positive(t, inkRows(out, 0, 20), "label hugs the top of the strip")

	cfg.PaddingVertical = 30
	out, err = Render(img, cfg, Options{Taken: taken, Fonts: assets.New()})
	require.NoError(t, err)
	assert.Zero(t, inkRows(out, 0, 30))
	assert.Positive(t, inkRows(out, 30, 80))
}

func TestRenderClipsAtEdges(t *testing.T) {
	img := imaging.New(30, 10, color.White)
	cfg := enabled()
	cfg.FontSize = 64
	cfg.StrokeEnabled = true
	cfg.StrokeWidth = 40
	for _, pos := range []Position{TopLeft, TopCenter, TopRight, BottomLeft, BottomCenter, BottomRight} {
		cfg.Position = pos
		assert.NotPanics(t, func() {
			_, err := Render(img, cfg, Options{Taken: taken, Fonts: assets.New(), Overscan: panel.Overscan{Left: 20, Top: 20}})
			assert.NoError(t, err)
		})
	}
}

func TestStrokeWidth(t *testing.T) {
	cfg := enabled()
	assert.Zero(t, strokeWidth(cfg))

	cfg.StrokeEnabled = true
	cfg.StrokeWidth = 3
	assert.Equal(t, 3, strokeWidth(cfg))

	cfg.StrokeWidth = 100
	assert.Equal(t, 7, strokeWidth(cfg))

	cfg.FontSize = 200
	assert.Equal(t, 16, strokeWidth(cfg))

	cfg.FontSize = 1
	assert.Equal(t, 1, strokeWidth(cfg))

	cfg.StrokeWidth = 0
	assert.Zero(t, strokeWidth(cfg))

	assert.Equal(t, black, strokeColor(StrokeAuto, white))
	assert.Equal(t, white, strokeColor(StrokeAuto, black))
	assert.Equal(t, white, strokeColor(StrokeWhite, white))
}

func TestAreaAlignment(t *testing.T) {
	a := area{width: 200, height: 100, padH: 10, padV: 5, inset: panel.Overscan{Left: 4, Right: 6}}
	assert.Equal(t, 14, a.left(TopLeft, 50))
	assert.Equal(t, 4+(190-50)/2, a.left(BottomCenter, 50))
	assert.Equal(t, 4+190-60, a.left(BottomRight, 50))
	assert.Equal(t, 5, a.top(TopRight, 20))
	assert.Equal(t, 75, a.top(BottomRight, 20))
}
