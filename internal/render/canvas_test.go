package render

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/rook-computer/snapscreen/internal/state"
)

func solid(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestCanvasFillAndStroke(t *testing.T) {
	c := NewCanvas(20, 20, nil)
	c.FillBackground()
	if got := c.Image().RGBAAt(5, 5); got != Background {
		t.Errorf("background = %v", got)
	}
	c.StrokeRect(image.Rect(0, 0, 20, 20), ButtonBorder, 2)
	if got := c.Image().RGBAAt(1, 10); got != ButtonBorder {
		t.Errorf("border = %v", got)
	}
	if got := c.Image().RGBAAt(10, 10); got != Background {
		t.Errorf("interior = %v, want background", got)
	}
}

func TestCanvasDrawTextMarksPixels(t *testing.T) {
	c := NewCanvas(200, 60, nil)
	c.FillBackground()
	metrics := c.DrawText("Photo", 10, 10, TextStyle{Color: color.RGBA{R: 255, G: 255, B: 255, A: 255}, Size: 24})
	if metrics.Width <= 0 || metrics.Height <= 0 {
		t.Fatalf("metrics = %+v", metrics)
	}
	changed := false
	img := c.Image()
	for y := 10; y < 10+metrics.Height && !changed; y++ {
		for x := 10; x < 10+metrics.Width; x++ {
			if img.RGBAAt(x, y) != Background {
				changed = true
				break
			}
		}
	}
	if !changed {
		t.Error("DrawText left the canvas untouched")
	}
}

func TestCanvasDrawPreviewClipsToRect(t *testing.T) {
	c := NewCanvas(100, 100, nil)
	c.FillBackground()
	green := color.RGBA{G: 255, A: 255}
	rect := image.Rect(25, 25, 75, 75)

	c.DrawPreview(solid(40, 20, green), rect, 90, 3)

	img := c.Image()
	if got := img.RGBAAt(50, 50); got != green {
		t.Errorf("centre = %v, want green", got)
	}
	if got := img.RGBAAt(10, 50); got != Background {
		t.Errorf("outside rect = %v, want background", got)
	}
	if got := img.RGBAAt(50, 80); got != Background {
		t.Errorf("below rect = %v, want background", got)
	}
}

func TestCanvasDrawPreviewRotatesAspect(t *testing.T) {
	c := NewCanvas(100, 100, nil)
	c.FillBackground()
	green := color.RGBA{G: 255, A: 255}

	// A wide frame turned a quarter becomes tall, leaving the sides empty.
	c.DrawPreview(solid(100, 50, green), c.Image().Bounds(), 90, 1)

	img := c.Image()
	if got := img.RGBAAt(50, 5); got != green {
		t.Errorf("top centre = %v, want green", got)
	}
	if got := img.RGBAAt(5, 50); got != Background {
		t.Errorf("left edge = %v, want background", got)
	}
}

func TestCanvasNilImageIsNoop(t *testing.T) {
	c := NewCanvas(10, 10, nil)
	c.FillBackground()
	c.DrawPreview(nil, c.Image().Bounds(), 0, 1)
	c.DrawImageInRect(nil, c.Image().Bounds())
	if got := c.Image().RGBAAt(5, 5); got != Background {
		t.Errorf("pixel = %v", got)
	}
}

type fillScreen struct{ fill color.RGBA }

func (s fillScreen) Start(ctx context.Context) error { return nil }
func (s fillScreen) Stop() error                     { return nil }
func (s fillScreen) Draw(d Drawer, _ state.State) {
	w, h := d.Size()
	d.FillRect(image.Rect(0, 0, w, h), s.fill)
}

func TestOffscreenRendererSnapshot(t *testing.T) {
	r := NewOffscreenRenderer(32, 16)
	if err := r.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if r.Snapshot() != nil {
		t.Fatal("snapshot before first redraw")
	}

	red := color.RGBA{R: 255, A: 255}
	r.SetScreen(fillScreen{fill: red})
	r.RedrawWithState(state.State{})

	snap, ok := r.Snapshot().(*image.RGBA)
	if !ok {
		t.Fatalf("snapshot type %T", r.Snapshot())
	}
	if snap.Bounds() != image.Rect(0, 0, 32, 16) {
		t.Errorf("bounds = %v", snap.Bounds())
	}
	if got := snap.RGBAAt(3, 3); got != red {
		t.Errorf("pixel = %v, want red", got)
	}

	// Later redraws must not bleed into an earlier snapshot.
	r.SetScreen(fillScreen{fill: color.RGBA{B: 255, A: 255}})
	r.RedrawWithState(state.State{})
	if got := snap.RGBAAt(3, 3); got != red {
		t.Errorf("snapshot mutated to %v", got)
	}
}
