//go:build linux

package camera

import (
	"context"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/blackjack/webcam"
)

// WebcamSource streams frames from a V4L2 device.
type WebcamSource struct {
	Device string
	Width  int
	Height int
	Logger Logger

	mu     sync.Mutex
	cam    *webcam.Webcam
	info   Info
	format uint32
	status Status
	stopCh chan struct{}
	wg     sync.WaitGroup

	// failed is set by the frame goroutine, which must not take mu.
	failed atomic.Bool
	frames latestFrame
}

func NewWebcamSource(device string, width, height int, logger Logger) *WebcamSource {
	return &WebcamSource{
		Device: device,
		Width:  width,
		Height: height,
		Logger: logger,
		status: StatusInactive,
		info:   Info{Device: device, Name: device},
	}
}

// Start opens the device and begins streaming. The device is reopened on
// every Start so a replugged camera recovers on the next preview toggle.
func (s *WebcamSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusActive {
		return nil
	}

	cam, err := webcam.Open(s.Device)
	if err != nil {
		s.status = StatusError
		return fmt.Errorf("open %s: %w", s.Device, err)
	}

	format, err := pickFormat(cam.GetSupportedFormats())
	if err != nil {
		_ = cam.Close()
		s.status = StatusError
		return fmt.Errorf("%s: %w", s.Device, err)
	}

	actual, width, height, err := cam.SetImageFormat(webcam.PixelFormat(format), uint32(s.Width), uint32(s.Height))
	if err != nil {
		_ = cam.Close()
		s.status = StatusError
		return fmt.Errorf("set format on %s: %w", s.Device, err)
	}
	if err := cam.StartStreaming(); err != nil {
		_ = cam.Close()
		s.status = StatusError
		return fmt.Errorf("start streaming on %s: %w", s.Device, err)
	}

	s.cam = cam
	s.format = uint32(actual)
	s.info = Info{Device: s.Device, Name: s.Device, Format: formatName(uint32(actual)), Width: int(width), Height: int(height)}
	if s.Logger != nil {
		s.Logger.Infof("camera", "streaming %s %s %dx%d", s.Device, s.info.Format, width, height)
	}

	s.failed.Store(false)
	s.stopCh = make(chan struct{})
	s.wg.Add(1)
	go s.readFrames(ctx, cam, s.stopCh, s.format, int(width), int(height))

	s.status = StatusActive
	return nil
}

func (s *WebcamSource) readFrames(ctx context.Context, cam *webcam.Webcam, stopCh chan struct{}, format uint32, width, height int) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		default:
		}

		err := cam.WaitForFrame(1)
		switch err.(type) {
		case nil:
		case *webcam.Timeout:
			continue
		default:
			if s.Logger != nil {
				s.Logger.Errorf("camera", "wait for frame on %s: %v", s.Device, err)
			}
			s.failed.Store(true)
			return
		}

		data, err := cam.ReadFrame()
		if err != nil {
			if s.Logger != nil {
				s.Logger.Errorf("camera", "read frame on %s: %v", s.Device, err)
			}
			continue
		}
		if len(data) == 0 {
			continue
		}

		img, err := decodeFrame(format, data, width, height)
		if err != nil {
			if s.Logger != nil {
				s.Logger.Errorf("camera", "%v", err)
			}
			continue
		}
		s.frames.publish(img)
	}
}

func (s *WebcamSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cam == nil {
		s.status = StatusInactive
		return nil
	}

	close(s.stopCh)
	s.wg.Wait()

	stopErr := s.cam.StopStreaming()
	closeErr := s.cam.Close()
	s.cam = nil
	s.status = StatusInactive

	if stopErr != nil {
		return fmt.Errorf("stop streaming on %s: %w", s.Device, stopErr)
	}
	if closeErr != nil {
		return fmt.Errorf("close %s: %w", s.Device, closeErr)
	}
	return nil
}

func (s *WebcamSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == StatusActive && s.failed.Load() {
		return StatusError
	}
	return s.status
}

func (s *WebcamSource) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.info
}

func (s *WebcamSource) LatestFrame() (image.Image, bool) { return s.frames.get() }

func pickFormat(supported map[webcam.PixelFormat]string) (uint32, error) {
	for _, preferred := range []uint32{pixFmtMJPEG, pixFmtYUYV} {
		if _, ok := supported[webcam.PixelFormat(preferred)]; ok {
			return preferred, nil
		}
	}
	return 0, fmt.Errorf("no MJPEG or YUYV format among %d supported formats", len(supported))
}
