package render

import (
	"context"
	"image"
)

// OffscreenRenderer composes screens into memory only. It backs headless
// runs where the web UI and Snapshot are the only way to see the screen.
type OffscreenRenderer struct {
	screenHost

	Width  int
	Height int
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
	Debug bool

	// OnFrame, when set, is called with each composed frame while the
	// renderer lock is held. It must not retain the image.
	OnFrame func(*image.RGBA)
}

func NewOffscreenRenderer(width, height int) *OffscreenRenderer {
	return &OffscreenRenderer{Width: width, Height: height}
}

func (r *OffscreenRenderer) Start(ctx context.Context) error {
	width, height := r.Width, r.Height
	if width <= 0 || height <= 0 {
		width, height = CanvasWidth, CanvasHeight
	}
	r.debug = r.Debug
	r.setup(width, height, r.Logger, r.OnFrame)
	if r.Logger != nil {
		r.Logger.Infof("render", "offscreen canvas %dx%d", width, height)
	}
	return nil
}

func (r *OffscreenRenderer) Stop() error { return nil }
