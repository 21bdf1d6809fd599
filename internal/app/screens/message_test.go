package screens

import (
	"image"
	"image/color"
	"testing"

	"github.com/rook-computer/snapscreen/internal/render"
	"github.com/rook-computer/snapscreen/internal/state"
)

// reddish reports whether rect holds a pixel tinted by render.ErrorText.
func reddish(img *image.RGBA, rect image.Rectangle) bool {
	rect = rect.Intersect(img.Bounds())
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			c := img.RGBAAt(x, y)
			if int(c.R) > int(c.G)+40 {
				return true
			}
		}
	}
	return false
}

func TestMessageScreenDraw(t *testing.T) {
	tests := []struct {
		name       string
		screen     MessageScreen
		wantDetail bool
	}{
		{"text only", MessageScreen{Text: "camera permission denied"}, false},
		{"with detail", MessageScreen{Text: "camera permission denied", Detail: "grant access"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canvas := render.NewCanvas(480, 270, nil)
			tt.screen.Draw(canvas, state.State{Phase: state.DENIED})

			img := canvas.Image()
			if !hasColor(img, render.Foreground) {
				t.Error("message text not drawn")
			}
			bottom := image.Rect(0, img.Bounds().Dy()/2+20, img.Bounds().Dx(), img.Bounds().Dy())
			if got := reddish(img, bottom); got != tt.wantDetail {
				t.Errorf("detail drawn = %t, want %t", got, tt.wantDetail)
			}
		})
	}
}

func TestDrawShowsRemoteQRCode(t *testing.T) {
	screen, _, _, _ := newScreen(t, state.State{})
	white := color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

	canvas := render.NewCanvas(400, 200, nil)
	screen.Draw(canvas, state.State{PreviewScale: 1})
	if hasColor(canvas.Image(), white) {
		t.Fatal("QR code drawn without a remote URL")
	}

	screen.SetRemoteURL("http://192.168.1.20:8080/")
	canvas = render.NewCanvas(400, 200, nil)
	screen.Draw(canvas, state.State{PreviewScale: 1})
	img := canvas.Image()
	if !hasColor(img, white) {
		t.Fatal("QR code not drawn")
	}
	if img.RGBAAt(20, 20) == white {
		t.Error("QR code drawn outside the top-right corner")
	}
}
