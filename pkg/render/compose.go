package render

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
	"github.com/muesli/smartcrop"

	"github.com/alde/inkframe/internal/log"
	"github.com/alde/inkframe/pkg/panel"
)

// resampler is the filter used to fit photos into the panel
var resampler = imaging.Linear

// ViewSize returns the canvas a picture is composed on. bannerHeight is
// reserved for a timestamp strip and taken off the view height. Without
// native dimensions ok is false.
func ViewSize(spec panel.Spec, bannerHeight int) (w, h int, ok bool) {
	if !spec.HasSize() {
		return 0, 0, false
	}
	w, h = spec.ViewSize()
	if bannerHeight > 0 {
		h = max(h-bannerHeight, 1)
	}
	return w, h, true
}

// Compose scales src into the panel view inside the overscan insets and
// centres it on an opaque white canvas. It returns the canvas and the area
// covered by the photo. Without native dimensions src is returned as is.
func Compose(src image.Image, spec panel.Spec, bannerHeight int) (*image.NRGBA, image.Rectangle) {
	viewW, viewH, ok := ViewSize(spec, bannerHeight)
	if !ok {
		img := imaging.Clone(src)
		return img, img.Bounds()
	}

	inset := spec.Overscan.Clamped()
	innerW := max(viewW-(inset.Left+inset.Right), 1)
	innerH := max(viewH-(inset.Top+inset.Bottom), 1)

	var resized *image.NRGBA
	switch spec.Scaling {
	case panel.Cover:
		resized = fill(src, innerW, innerH)
	case panel.SmartCover:
		resized = smartFill(src, innerW, innerH)
	default:
		resized = contain(src, innerW, innerH)
	}

	rw, rh := resized.Bounds().Dx(), resized.Bounds().Dy()
	offX := max((innerW-rw)/2, 0)
	offY := max((innerH-rh)/2, 0)
	at := image.Pt(inset.Left+offX, inset.Top+offY)

	canvas := imaging.New(viewW, viewH, color.White)
	canvas = imaging.Overlay(canvas, resized, at, 1.0)

	content := image.Rectangle{Min: at, Max: at.Add(image.Pt(rw, rh))}.Intersect(canvas.Bounds())
	log.Debugf("composed %dx%d source into %dx%d view, content %v",
		src.Bounds().Dx(), src.Bounds().Dy(), viewW, viewH, content)
	return canvas, content
}

// fitSize scales w x h by the smaller (or, to cover, the larger) of the two
// ratios to the target, rounding to the nearest pixel.
func fitSize(w, h, targetW, targetH int, cover bool) (int, int) {
	wr := float64(targetW) / float64(w)
	hr := float64(targetH) / float64(h)
	ratio := math.Min(wr, hr)
	if cover {
		ratio = math.Max(wr, hr)
	}
	nw := max(int(math.Round(float64(w)*ratio)), 1)
	nh := max(int(math.Round(float64(h)*ratio)), 1)
	return nw, nh
}

func contain(src image.Image, w, h int) *image.NRGBA {
	b := src.Bounds()
	if b.Empty() {
		return imaging.New(0, 0, color.White)
	}
	nw, nh := fitSize(b.Dx(), b.Dy(), w, h, false)
	return imaging.Resize(src, nw, nh, resampler)
}

// fill scales src to cover w x h and crops the centre
func fill(src image.Image, w, h int) *image.NRGBA {
	b := src.Bounds()
	if b.Empty() {
		return imaging.New(0, 0, color.White)
	}
	nw, nh := fitSize(b.Dx(), b.Dy(), w, h, true)
	resized := imaging.Resize(src, nw, nh, resampler)
	x := (nw - w) / 2
	y := (nh - h) / 2
	return imaging.Crop(resized, image.Rect(x, y, x+w, y+h))
}

// smartFill crops the region smartcrop rates highest at the target aspect
// and scales it to w x h. It falls back to a centre crop when the analysis
// fails.
func smartFill(src image.Image, w, h int) *image.NRGBA {
	analyzer := smartcrop.NewAnalyzer(resizer{})
	crop, err := analyzer.FindBestCrop(src, w, h)
	if err != nil || crop.Empty() {
		log.Warnf("smart crop failed, using centre crop: %v", err)
		return fill(src, w, h)
	}
	return imaging.Resize(imaging.Crop(src, crop), w, h, resampler)
}

// resizer lets smartcrop scale its analysis image with imaging
type resizer struct{}

func (resizer) Resize(img image.Image, width, height uint) image.Image {
	return imaging.Resize(img, int(width), int(height), resampler)
}

// Downscale shrinks src to fit within maxW x maxH, keeping its aspect ratio.
// A zero limit is unbounded; sources already inside the limits are returned
// unchanged.
func Downscale(src image.Image, maxW, maxH int) image.Image {
	b := src.Bounds()
	if b.Empty() {
		return src
	}
	limitW, limitH := maxW, maxH
	if limitW <= 0 {
		limitW = b.Dx()
	}
	if limitH <= 0 {
		limitH = b.Dy()
	}
	if b.Dx() <= limitW && b.Dy() <= limitH {
		return src
	}
	nw, nh := fitSize(b.Dx(), b.Dy(), limitW, limitH, false)
	log.Debugf("downscaling source %dx%d to %dx%d", b.Dx(), b.Dy(), nw, nh)
	return imaging.Resize(src, nw, nh, imaging.CatmullRom)
}
