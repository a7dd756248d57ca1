package render

import (
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alde/inkframe/pkg/panel"
)

var opaqueWhite = color.NRGBA{255, 255, 255, 255}

// photo builds a gradient test picture
func photo(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{uint8(x * 255 / max(w-1, 1)), uint8(y * 255 / max(h-1, 1)), 90, 255})
		}
	}
	return img
}

func TestViewSize(t *testing.T) {
	spec := panel.Spec{Width: 800, Height: 480}
	w, h, ok := ViewSize(spec, 0)
	require.True(t, ok)
	assert.Equal(t, []int{800, 480}, []int{w, h})

	w, h, _ = ViewSize(spec, 40)
	assert.Equal(t, []int{800, 440}, []int{w, h})

	spec.Orientation = panel.Portrait
	w, h, _ = ViewSize(spec, 0)
	assert.Equal(t, []int{480, 800}, []int{w, h})

	_, _, ok = ViewSize(panel.Spec{Width: 800}, 0)
	assert.False(t, ok)
}

func TestComposeContainLetterbox(t *testing.T) {
	canvas, content := Compose(photo(2000, 1000), panel.Spec{Width: 800, Height: 480}, 0)

	require.Equal(t, image.Rect(0, 0, 800, 480), canvas.Bounds())
	assert.Equal(t, image.Rect(0, 40, 800, 440), content)
	assert.Equal(t, opaqueWhite, canvas.NRGBAAt(400, 39))
	assert.Equal(t, opaqueWhite, canvas.NRGBAAt(400, 440))
	assert.NotEqual(t, opaqueWhite, canvas.NRGBAAt(400, 40))
}

func TestComposeOverscan(t *testing.T) {
	spec := panel.Spec{
		Width:    800,
		Height:   480,
		Overscan: panel.Overscan{Left: 10, Right: 10, Top: 20, Bottom: 20},
	}
	canvas, content := Compose(photo(100, 100), spec, 0)

	require.Equal(t, image.Rect(0, 0, 800, 480), canvas.Bounds())
	assert.Equal(t, image.Rect(180, 20, 620, 460), content)
	assert.Equal(t, opaqueWhite, canvas.NRGBAAt(179, 240))
	assert.Equal(t, opaqueWhite, canvas.NRGBAAt(400, 19))
}

func TestComposeCover(t *testing.T) {
	for _, scaling := range []panel.ScalingMode{panel.Cover, panel.SmartCover} {
		t.Run(scaling.String(), func(t *testing.T) {
			spec := panel.Spec{Width: 800, Height: 480, Scaling: scaling}
			canvas, content := Compose(photo(1024, 768), spec, 0)

			require.Equal(t, image.Rect(0, 0, 800, 480), canvas.Bounds())
			assert.Equal(t, canvas.Bounds(), content)
			for _, p := range []image.Point{{0, 0}, {799, 0}, {0, 479}, {799, 479}} {
				assert.Equal(t, uint8(90), canvas.NRGBAAt(p.X, p.Y).B)
			}
		})
	}
}

func TestComposeCoverCentres(t *testing.T) {
	// a 4:3 source loses equal bands at the top and bottom
	canvas, _ := Compose(photo(2048, 1536), panel.Spec{Width: 800, Height: 480, Scaling: panel.Cover}, 0)
	top := canvas.NRGBAAt(400, 0).G
	bottom := canvas.NRGBAAt(400, 479).G
	assert.InDelta(t, 255-int(bottom), int(top), 3)
	assert.Greater(t, top, uint8(20))
}

func TestComposeWithoutSize(t *testing.T) {
	src := photo(30, 20)
	canvas, content := Compose(src, panel.Spec{}, 0)
	assert.Equal(t, src.Bounds(), canvas.Bounds())
	assert.Equal(t, src.Bounds(), content)
	assert.Equal(t, src.Pix, canvas.Pix)
}

func TestComposeGeometry(t *testing.T) {
	specs := []panel.Spec{
		{Width: 800, Height: 480},
		{Width: 800, Height: 480, Orientation: panel.Portrait},
		{Width: 600, Height: 448, Overscan: panel.Overscan{Left: 7, Right: 3, Top: 11, Bottom: 1}},
		{Width: 400, Height: 600, Overscan: panel.Overscan{Left: 500, Right: 500}},
		{Width: 800, Height: 480, Scaling: panel.Cover, Overscan: panel.Overscan{Top: 13}},
	}
	sources := []image.Point{{1, 1}, {3000, 200}, {200, 3000}, {640, 480}, {801, 479}}

	for _, spec := range specs {
		for _, size := range sources {
			canvas, content := Compose(photo(size.X, size.Y), spec, 0)
			cb := canvas.Bounds()
			assert.True(t, content.In(cb), "content %v outside canvas %v", content, cb)

			if spec.Scaling != panel.Contain {
				continue
			}
			inset := spec.Overscan.Clamped()
			innerW := max(cb.Dx()-(inset.Left+inset.Right), 1)
			innerH := max(cb.Dy()-(inset.Top+inset.Bottom), 1)
			rw, rh := content.Dx(), content.Dy()
			if innerW <= cb.Dx() && innerH <= cb.Dy() {
				assert.LessOrEqual(t, rw, innerW)
				assert.LessOrEqual(t, rh, innerH)
				assert.True(t, rw == innerW || rh == innerH, "%v in %dx%d", content, innerW, innerH)
			}
		}
	}
}

func TestFitSize(t *testing.T) {
	w, h := fitSize(2048, 1536, 800, 480, false)
	assert.Equal(t, []int{640, 480}, []int{w, h})

	w, h = fitSize(2048, 1536, 800, 480, true)
	assert.Equal(t, []int{800, 600}, []int{w, h})

	w, h = fitSize(1000, 1, 10, 10, false)
	assert.Equal(t, []int{10, 1}, []int{w, h})
}

func TestDownscale(t *testing.T) {
	src := photo(400, 300)
	out := Downscale(src, 200, 200)
	assert.Equal(t, image.Rect(0, 0, 200, 150), out.Bounds())

	assert.Equal(t, image.Image(src), Downscale(src, 0, 0))
	assert.Equal(t, image.Image(src), Downscale(src, 400, 0))

	tall := Downscale(src, 0, 100)
	assert.Equal(t, 100, tall.Bounds().Dy())
	assert.Equal(t, 133, tall.Bounds().Dx())
}

func TestResizerSatisfiesSmartcrop(t *testing.T) {
	out := resizer{}.Resize(imaging.New(10, 10, opaqueWhite), 5, 4)
	assert.Equal(t, image.Rect(0, 0, 5, 4), out.Bounds())
}
