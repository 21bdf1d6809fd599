package layout

import "image"

// Inset shrinks rect by paddingPx on all sides.
func Inset(rect image.Rectangle, paddingPx int) image.Rectangle {
	if paddingPx <= 0 {
		return rect
	}
	out := image.Rect(rect.Min.X+paddingPx, rect.Min.Y+paddingPx, rect.Max.X-paddingPx, rect.Max.Y-paddingPx)
	return Normalize(out)
}

// Normalize ensures Min is <= Max on both axes.
func Normalize(rect image.Rectangle) image.Rectangle {
	if rect.Min.X > rect.Max.X {
		rect.Min.X, rect.Max.X = rect.Max.X, rect.Min.X
	}
	if rect.Min.Y > rect.Max.Y {
		rect.Min.Y, rect.Max.Y = rect.Max.Y, rect.Min.Y
	}
	return rect
}

// SplitHorizontal splits rect into top and bottom parts.
// topHeightPx is clamped to [0, rect.Dy()].
func SplitHorizontal(rect image.Rectangle, topHeightPx int) (top image.Rectangle, bottom image.Rectangle) {
	rect = Normalize(rect)
	topHeightPx = clamp(topHeightPx, 0, rect.Dy())
	top = image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+topHeightPx)
	bottom = image.Rect(rect.Min.X, rect.Min.Y+topHeightPx, rect.Max.X, rect.Max.Y)
	return top, bottom
}

// AnchorTopRight places a widthPx x heightPx rectangle in the top-right
// corner of rect, shrunk to fit when rect is smaller.
func AnchorTopRight(rect image.Rectangle, widthPx, heightPx int) image.Rectangle {
	rect = Normalize(rect)
	widthPx = clamp(widthPx, 0, rect.Dx())
	heightPx = clamp(heightPx, 0, rect.Dy())
	return image.Rect(rect.Max.X-widthPx, rect.Min.Y, rect.Max.X, rect.Min.Y+heightPx)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SplitColumns splits rect into n equal-width columns. The last column
// absorbs any remainder.
func SplitColumns(rect image.Rectangle, n int) []image.Rectangle {
	rect = Normalize(rect)
	if n <= 0 {
		return nil
	}
	out := make([]image.Rectangle, n)
	step := rect.Dx() / n
	for i := 0; i < n; i++ {
		minX := rect.Min.X + i*step
		maxX := minX + step
		if i == n-1 {
			maxX = rect.Max.X
		}
		out[i] = image.Rect(minX, rect.Min.Y, maxX, rect.Max.Y)
	}
	return out
}

// SplitFraction splits rect horizontally so the top part takes fraction of
// the height. fraction is clamped to [0, 1].
func SplitFraction(rect image.Rectangle, fraction float64) (top image.Rectangle, bottom image.Rectangle) {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return SplitHorizontal(rect, int(float64(Normalize(rect).Dy())*fraction))
}
