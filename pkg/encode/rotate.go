package encode

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/alde/inkframe/internal/log"
)

// EffectiveRotation returns the clockwise rotation in degrees that turns a
// view of viewW x viewH into the native panel orientation. A view that only
// matches the panel with its sides swapped is turned 270 degrees; flip adds
// another 180. Unknown native dimensions (zero) only honour flip.
func EffectiveRotation(viewW, viewH, nativeW, nativeH int, flip bool) int {
	rotation := 0
	if nativeW > 0 && nativeH > 0 {
		if (viewW != nativeW || viewH != nativeH) && viewH == nativeW && viewW == nativeH {
			rotation = 270
		}
	}
	if flip {
		rotation = (rotation + 180) % 360
	}
	return rotation
}

// Rotate turns img clockwise by degrees (0, 90, 180 or 270). Other values
// are logged and leave the picture unrotated.
func Rotate(img image.Image, degrees int) *image.NRGBA {
	switch degrees {
	case 0:
		return imaging.Clone(img)
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		log.Warnf("unsupported rotation %d degrees, skipping", degrees)
		return imaging.Clone(img)
	}
}

// FitNative centres img on an opaque white canvas of the native size. The
// picture is never scaled; an oversized picture is clipped on its right and
// bottom edges. Zero native dimensions return img unchanged.
func FitNative(img *image.NRGBA, nativeW, nativeH int) *image.NRGBA {
	b := img.Bounds()
	if nativeW <= 0 || nativeH <= 0 || (b.Dx() == nativeW && b.Dy() == nativeH) {
		return img
	}

	canvas := imaging.New(nativeW, nativeH, color.White)
	dx := max((nativeW-b.Dx())/2, 0)
	dy := max((nativeH-b.Dy())/2, 0)
	return imaging.Overlay(canvas, img, image.Pt(dx, dy), 1.0)
}
