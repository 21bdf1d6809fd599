package camera

import (
	"context"
	"image"
	"image/color"
	"sync"
	"sync/atomic"
	"time"
)

var barColors = []color.RGBA{
	{R: 0xC0, G: 0xC0, B: 0xC0, A: 0xFF},
	{R: 0xC0, G: 0xC0, B: 0x00, A: 0xFF},
	{R: 0x00, G: 0xC0, B: 0xC0, A: 0xFF},
	{R: 0x00, G: 0xC0, B: 0x00, A: 0xFF},
	{R: 0xC0, G: 0x00, B: 0xC0, A: 0xFF},
	{R: 0xC0, G: 0x00, B: 0x00, A: 0xFF},
	{R: 0x00, G: 0x00, B: 0xC0, A: 0xFF},
}

// PatternSource produces SMPTE-like colour bars with a moving marker square.
type PatternSource struct {
	Width  int
	Height int
	FPS    int

	mu     sync.Mutex
	status Status
	stopCh chan struct{}
	wg     sync.WaitGroup

	paused atomic.Bool
	frames latestFrame
	tick   atomic.Uint64
}

func NewPatternSource(width, height, fps int) *PatternSource {
	if width <= 0 {
		width = 640
	}
	if height <= 0 {
		height = 480
	}
	if fps <= 0 {
		fps = 15
	}
	return &PatternSource{Width: width, Height: height, FPS: fps, status: StatusInactive}
}

func (s *PatternSource) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusActive {
		return nil
	}
	s.stopCh = make(chan struct{})
	if !s.paused.Load() {
		s.emit()
	}

	s.wg.Add(1)
	go s.run(ctx, s.stopCh)

	s.status = StatusActive
	return nil
}

func (s *PatternSource) run(ctx context.Context, stopCh chan struct{}) {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Second / time.Duration(s.FPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if !s.paused.Load() {
				s.emit()
			}
		}
	}
}

func (s *PatternSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusActive {
		return nil
	}
	close(s.stopCh)
	s.wg.Wait()
	s.status = StatusInactive
	return nil
}

func (s *PatternSource) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *PatternSource) Info() Info {
	return Info{Device: "pattern", Name: "Test pattern", Format: "RGBA", Width: s.Width, Height: s.Height}
}

func (s *PatternSource) LatestFrame() (image.Image, bool) { return s.frames.get() }

// SetPaused stops frame production without stopping the source.
func (s *PatternSource) SetPaused(paused bool) { s.paused.Store(paused) }

// Reset drops the retained frame, as if the device never delivered one.
func (s *PatternSource) Reset() { s.frames.clear() }

// Frames returns how many frames were published since creation.
func (s *PatternSource) Frames() uint64 { return s.frames.frames() }

func (s *PatternSource) emit() {
	tick := s.tick.Add(1)
	s.frames.publish(renderPattern(s.Width, s.Height, tick))
}

func renderPattern(width, height int, tick uint64) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	barWidth := (width + len(barColors) - 1) / len(barColors)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, barColors[x/barWidth])
		}
	}

	// The marker walks the top edge so consecutive frames differ.
	size := height / 8
	if size < 1 {
		size = 1
	}
	travel := width - size
	offset := 0
	if travel > 0 {
		offset = int(tick*8) % travel
	}
	marker := color.RGBA{A: 0xFF}
	for y := 0; y < size; y++ {
		for x := offset; x < offset+size; x++ {
			img.SetRGBA(x, y, marker)
		}
	}
	return img
}
