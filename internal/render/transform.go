package render

import (
	"image"
	"image/draw"
)

// QuarterTurns maps a free-running angle to 0..3 counterclockwise quarter
// turns. Angles that are not multiples of 90 are truncated toward zero.
func QuarterTurns(angleDegrees int) int {
	return ((angleDegrees/90)%4 + 4) % 4
}

// RotateQuarter rotates img counterclockwise by angleDegrees in quarter turns.
// The result always has its origin at (0, 0).
func RotateQuarter(img image.Image, angleDegrees int) image.Image {
	turns := QuarterTurns(angleDegrees)
	src := toRGBA(img)
	if turns == 0 {
		return src
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	var dst *image.RGBA
	if turns == 2 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}

	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			var dx, dy int
			switch turns {
			case 1:
				dx, dy = sy, w-1-sx
			case 2:
				dx, dy = w-1-sx, h-1-sy
			case 3:
				dx, dy = h-1-sy, sx
			}
			si := sy*src.Stride + sx*4
			di := dy*dst.Stride + dx*4
			copy(dst.Pix[di:di+4], src.Pix[si:si+4])
		}
	}
	return dst
}

// toRGBA returns img as an *image.RGBA anchored at (0, 0), copying only when needed.
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
