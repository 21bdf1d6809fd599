//go:build linux

package render

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"

	fb "github.com/gonutz/framebuffer"
)

const DefaultFramebufferDevice = "/dev/fb0"

// FBRenderer renders to the Linux framebuffer using an offscreen logical canvas.
type FBRenderer struct {
	screenHost

	Device string
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
	Debug bool

	fbDev   *fb.Device
	running atomic.Bool
}

func NewFBRenderer() *FBRenderer { return &FBRenderer{Device: DefaultFramebufferDevice} }

func (r *FBRenderer) Start(ctx context.Context) error {
	device := r.Device
	if device == "" {
		device = DefaultFramebufferDevice
	}
	dev, err := fb.Open(device)
	if err != nil {
		return err
	}
	r.fbDev = dev
	if r.Logger != nil {
		bounds := dev.Bounds()
		r.Logger.Infof("fb", "framebuffer %s open, bounds=%dx%d", device, bounds.Dx(), bounds.Dy())
	}

	r.debug = r.Debug
	r.setup(CanvasWidth, CanvasHeight, r.Logger, func(canvas *image.RGBA) {
		if r.running.Load() {
			blitToFB(r.fbDev, canvas)
		}
	})
	r.running.Store(true)
	return nil
}

func (r *FBRenderer) Stop() error {
	if !r.running.Swap(false) {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fbDev != nil {
		r.fbDev.Close()
		r.fbDev = nil
	}
	return nil
}

// blitToFB writes canvas to the framebuffer via nearest-neighbor scaling.
func blitToFB(dev *fb.Device, canvas *image.RGBA) {
	if dev == nil {
		return
	}
	bounds := dev.Bounds()
	fbWidth := bounds.Dx()
	fbHeight := bounds.Dy()
	canvasWidth := canvas.Bounds().Dx()
	canvasHeight := canvas.Bounds().Dy()
	for y := 0; y < fbHeight; y++ {
		sy := (y * canvasHeight) / fbHeight
		for x := 0; x < fbWidth; x++ {
			sx := (x * canvasWidth) / fbWidth
			pixel := canvas.RGBAAt(sx, sy)
			dev.Set(bounds.Min.X+x, bounds.Min.Y+y, color.RGBA{R: pixel.R, G: pixel.G, B: pixel.B, A: 0xFF})
		}
	}
}
