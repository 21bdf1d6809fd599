//go:build !linux

package camera

import (
	"context"
	"errors"
	"image"
)

var errNoV4L2 = errors.New("V4L2 webcam capture is only available on linux")

// WebcamSource is a placeholder on platforms without V4L2.
type WebcamSource struct {
	Device string
	Width  int
	Height int
	Logger Logger

	frames latestFrame
}

func NewWebcamSource(device string, width, height int, logger Logger) *WebcamSource {
	return &WebcamSource{Device: device, Width: width, Height: height, Logger: logger}
}

func (s *WebcamSource) Start(ctx context.Context) error { return errNoV4L2 }
func (s *WebcamSource) Stop() error                     { return nil }
func (s *WebcamSource) Status() Status                  { return StatusInactive }
func (s *WebcamSource) Info() Info                      { return Info{Device: s.Device, Name: s.Device} }

func (s *WebcamSource) LatestFrame() (image.Image, bool) { return s.frames.get() }
