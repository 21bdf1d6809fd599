//go:build !linux

package render

import (
	"context"
	"errors"
)

const DefaultFramebufferDevice = ""

var errNoFramebuffer = errors.New("framebuffer output is only available on linux")

// FBRenderer is unavailable off linux; Start always fails so callers fall
// back to the offscreen renderer.
type FBRenderer struct {
	screenHost

	Device string
	Logger interface {
		Infof(string, string, ...interface{})
		Errorf(string, string, ...interface{})
	}
	Debug bool
}

func NewFBRenderer() *FBRenderer { return &FBRenderer{} }

func (r *FBRenderer) Start(ctx context.Context) error { return errNoFramebuffer }
func (r *FBRenderer) Stop() error                     { return nil }
