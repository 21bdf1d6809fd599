package render

import (
	"context"
	"image"
	"image/color"

	"github.com/rook-computer/snapscreen/internal/state"
)

type Renderer interface {
	Start(ctx context.Context) error
	Stop() error
	SetScreen(screen Screen)
	RunLoop(ctx context.Context, store *state.Store)
	RedrawWithState(snap state.State)

	// Snapshot returns a copy of the last composed canvas, or nil before the first redraw.
	Snapshot() image.Image
}

type Screen interface {
	Start(ctx context.Context) error
	Stop() error
	Draw(r Drawer, s state.State)
}

// NoopRenderer draws nothing. App falls back to it when no renderer is set.
type NoopRenderer struct{}

func (n *NoopRenderer) Start(ctx context.Context) error                 { return nil }
func (n *NoopRenderer) Stop() error                                     { return nil }
func (n *NoopRenderer) SetScreen(screen Screen)                         {}
func (n *NoopRenderer) RunLoop(ctx context.Context, store *state.Store) {}
func (n *NoopRenderer) RedrawWithState(snap state.State)                {}
func (n *NoopRenderer) Snapshot() image.Image                           { return nil }

// Drawer is an abstraction the renderer provides to screens to draw primitives
// without exposing low-level framebuffer details.
type Drawer interface {
	// Size returns the logical canvas size (in pixels) that screens draw into.
	Size() (width int, height int)

	FillBackground()
	FillRect(rect image.Rectangle, c color.Color)
	StrokeRect(rect image.Rectangle, c color.Color, thicknessPx int)

	// Generic text primitives.
	MeasureText(text string, style TextStyle) TextMetrics
	DrawText(text string, x, y int, style TextStyle) TextMetrics
	DrawTextInRect(text string, rect image.Rectangle, style TextStyle)

	// DrawImageInRect scales img to the largest rectangle of the same aspect
	// that fits rect, centred.
	DrawImageInRect(img image.Image, rect image.Rectangle)

	// DrawPreview fits img into rect after rotating it counterclockwise by
	// angleDegrees (quarter turns), then scales it by scale about the centre of
	// rect. Anything outside rect is clipped.
	DrawPreview(img image.Image, rect image.Rectangle, angleDegrees int, scale float64)

	// Convenience helpers (implemented using the generic primitives).
	DrawTextCentered(text string)
}

type TextAlign int

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// TextStyle describes how to render text.
// Coordinates for DrawText use a top-left anchor for Y.
// For X, Align controls how x is interpreted.
type TextStyle struct {
	Color color.Color
	Size  int // font size in points; 0 means renderer default
	Align TextAlign
}

type TextMetrics struct {
	Width      int
	Height     int
	Ascent     int
	Descent    int
	LineHeight int
}
