package camera

import (
	"context"
	"image"
	"sync"
	"time"
)

// Status is the running state of a Source.
type Status string

const (
	StatusInactive Status = "inactive"
	StatusActive   Status = "active"
	StatusError    Status = "error"
)

// Info describes the device behind a Source.
type Info struct {
	Device string
	Name   string
	Format string
	Width  int
	Height int
}

type Source interface {
	Start(ctx context.Context) error
	Stop() error
	Status() Status
	Info() Info

	// LatestFrame returns the most recent frame and false if none arrived yet.
	LatestFrame() (image.Image, bool)
}

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// latestFrame holds the newest frame published by a source goroutine.
type latestFrame struct {
	mu    sync.RWMutex
	frame image.Image
	at    time.Time
	count uint64
}

func (l *latestFrame) publish(frame image.Image) {
	l.mu.Lock()
	l.frame = frame
	l.at = time.Now()
	l.count++
	l.mu.Unlock()
}

func (l *latestFrame) get() (image.Image, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.frame, l.frame != nil
}

func (l *latestFrame) clear() {
	l.mu.Lock()
	l.frame = nil
	l.mu.Unlock()
}

func (l *latestFrame) frames() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.count
}
