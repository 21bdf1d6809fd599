package render

import (
	"context"
	"image"
	"sync"
	"time"

	"github.com/rook-computer/snapscreen/internal/state"
)

type hostLogger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// screenHost composes the current screen onto a Canvas and keeps a copy of
// the last composed frame. Both renderers embed it.
type screenHost struct {
	mu      sync.Mutex
	canvas  *Canvas
	current Screen
	last    *image.RGBA
	present func(*image.RGBA)
	logger  hostLogger
	debug   bool
}

func (h *screenHost) setup(width, height int, logger hostLogger, present func(*image.RGBA)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.logger = logger
	h.present = present
	if h.canvas == nil {
		h.canvas = NewCanvas(width, height, logger)
	}
}

// SetScreen sets the current logical screen to be drawn.
func (h *screenHost) SetScreen(screen Screen) {
	h.mu.Lock()
	h.current = screen
	h.mu.Unlock()
}

func (h *screenHost) RedrawWithState(snap state.State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.canvas == nil || h.current == nil {
		return
	}
	h.canvas.FillBackground()
	h.current.Draw(h.canvas, snap)

	frame := h.canvas.Image()
	if h.last == nil || h.last.Bounds() != frame.Bounds() {
		h.last = image.NewRGBA(frame.Bounds())
	}
	copy(h.last.Pix, frame.Pix)
	if h.present != nil {
		h.present(frame)
	}
}

func (h *screenHost) Snapshot() image.Image {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last == nil {
		return nil
	}
	out := image.NewRGBA(h.last.Bounds())
	copy(out.Pix, h.last.Pix)
	return out
}

// RunLoop continuously redraws at FramesPerSecond until the context is done.
func (h *screenHost) RunLoop(ctx context.Context, store *state.Store) {
	ticker := time.NewTicker(time.Second / time.Duration(FramesPerSecond))
	defer ticker.Stop()
	lastLog := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := store.Snapshot()
			h.RedrawWithState(snap)
			if h.debug && h.logger != nil && time.Since(lastLog) > time.Second {
				h.logger.Infof("render", "heartbeat frame, phase=%s preview=%t angle=%d", snap.Phase, snap.PreviewEnabled, snap.RotationAngle)
				lastLog = time.Now()
			}
		}
	}
}
