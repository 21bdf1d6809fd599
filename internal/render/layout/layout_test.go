package layout

import (
	"image"
	"testing"
)

func TestSplitColumns(t *testing.T) {
	cols := SplitColumns(image.Rect(0, 10, 103, 50), 4)
	if len(cols) != 4 {
		t.Fatalf("len = %d", len(cols))
	}
	if cols[0] != image.Rect(0, 10, 25, 50) {
		t.Errorf("first = %v", cols[0])
	}
	if cols[3] != image.Rect(75, 10, 103, 50) {
		t.Errorf("last = %v", cols[3])
	}
	if SplitColumns(image.Rect(0, 0, 10, 10), 0) != nil {
		t.Error("zero columns should be nil")
	}
}

func TestSplitFraction(t *testing.T) {
	top, bottom := SplitFraction(image.Rect(0, 0, 100, 200), 0.75)
	if top != image.Rect(0, 0, 100, 150) || bottom != image.Rect(0, 150, 100, 200) {
		t.Errorf("top=%v bottom=%v", top, bottom)
	}
	top, _ = SplitFraction(image.Rect(0, 0, 100, 200), 2)
	if top.Dy() != 200 {
		t.Errorf("clamped top height = %d", top.Dy())
	}
}

func TestInset(t *testing.T) {
	if got := Inset(image.Rect(0, 0, 10, 10), 2); got != image.Rect(2, 2, 8, 8) {
		t.Errorf("Inset = %v", got)
	}
}

func TestAnchorTopRight(t *testing.T) {
	tests := []struct {
		name string
		rect image.Rectangle
		w, h int
		want image.Rectangle
	}{
		{"fits", image.Rect(16, 16, 624, 320), 160, 160, image.Rect(464, 16, 624, 176)},
		{"shrinks", image.Rect(0, 0, 100, 50), 160, 160, image.Rect(0, 0, 100, 50)},
		{"negative", image.Rect(0, 0, 100, 50), -5, 10, image.Rect(100, 0, 100, 10)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnchorTopRight(tt.rect, tt.w, tt.h); got != tt.want {
				t.Errorf("AnchorTopRight = %v, want %v", got, tt.want)
			}
		})
	}
}
