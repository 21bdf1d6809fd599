package web

import (
	"context"
	"errors"
	"image"

	"github.com/rook-computer/snapscreen/internal/buttons"
	"github.com/rook-computer/snapscreen/internal/platform"
	"github.com/rook-computer/snapscreen/internal/state"
)

// ErrNotRunning is returned by a DispatchFunc once the UI loop has exited.
var ErrNotRunning = errors.New("app not running")

// DispatchFunc performs ev on the UI loop and returns the resulting state.
// path is the written file for a successful capture.
type DispatchFunc func(ctx context.Context, ev buttons.Event) (snap state.State, path string, err error)

// APIV1Deps are the collaborators the /api/v1 handlers use.
type APIV1Deps struct {
	Store    *state.Store
	Dispatch DispatchFunc

	// Screen returns the last composed screen, or nil before the first frame.
	Screen func() image.Image

	// Usage reports capacity of the storage directory.
	Usage func(ctx context.Context, path string) (platform.Usage, error)

	// StreamFPS caps the MJPEG stream frame rate.
	StreamFPS int

	// DevMode accepts websocket connections from any origin.
	DevMode bool

	Logger logger
}

func (deps APIV1Deps) withDefaults() APIV1Deps {
	if deps.Store == nil {
		deps.Store = state.NewStore()
	}
	if deps.Dispatch == nil {
		deps.Dispatch = func(ctx context.Context, ev buttons.Event) (state.State, string, error) {
			return state.State{}, "", ErrNotRunning
		}
	}
	if deps.Screen == nil {
		deps.Screen = func() image.Image { return nil }
	}
	if deps.Usage == nil {
		deps.Usage = platform.StorageUsage
	}
	if deps.StreamFPS <= 0 {
		deps.StreamFPS = 10
	}
	return deps
}
