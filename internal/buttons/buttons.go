package buttons

import (
	"context"
	"sync"
)

type Event string

const (
	Toggle  Event = "toggle"
	Capture Event = "capture"
	Rotate  Event = "rotate"
	Quit    Event = "quit"
)

// ParseEvent maps an action name to an Event. Unknown names report false.
func ParseEvent(name string) (Event, bool) {
	switch Event(name) {
	case Toggle, Capture, Rotate, Quit:
		return Event(name), true
	case "preview":
		return Toggle, true
	}
	return "", false
}

type Buttons interface {
	Start(ctx context.Context) error
	Stop() error
	Events() <-chan Event
}

type NoopButtons struct {
	ch   chan Event
	once sync.Once
}

func NewNoopButtons() *NoopButtons { return &NoopButtons{ch: make(chan Event)} }

func (n *NoopButtons) Start(ctx context.Context) error { return nil }
func (n *NoopButtons) Stop() error                     { n.once.Do(func() { close(n.ch) }); return nil }
func (n *NoopButtons) Events() <-chan Event            { return n.ch }

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// Multi fans several button sources into one event stream. A source that
// fails to start is logged and skipped; the others keep working.
type Multi struct {
	Sources []Buttons
	Logger  logger

	ch      chan Event
	wg      sync.WaitGroup
	started []Buttons
	stop    context.CancelFunc
}

func NewMulti(logger logger, sources ...Buttons) *Multi {
	return &Multi{Sources: sources, Logger: logger, ch: make(chan Event, 8)}
}

func (m *Multi) Start(ctx context.Context) error {
	ctx, m.stop = context.WithCancel(ctx)
	for _, source := range m.Sources {
		if source == nil {
			continue
		}
		if err := source.Start(ctx); err != nil {
			if m.Logger != nil {
				m.Logger.Errorf("buttons", "input source %T unavailable: %v", source, err)
			}
			continue
		}
		m.started = append(m.started, source)
		m.wg.Add(1)
		go m.forward(ctx, source.Events())
	}
	return nil
}

func (m *Multi) forward(ctx context.Context, events <-chan Event) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			select {
			case m.ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (m *Multi) Stop() error {
	if m.stop != nil {
		m.stop()
	}
	for _, source := range m.started {
		_ = source.Stop()
	}
	m.wg.Wait()
	m.started = nil
	return nil
}

func (m *Multi) Events() <-chan Event { return m.ch }

// Chan is a button source fed programmatically. The simulator and tests use it.
type Chan struct {
	ch chan Event
}

func NewChan() *Chan { return &Chan{ch: make(chan Event, 8)} }

func (c *Chan) Start(ctx context.Context) error { return nil }
func (c *Chan) Stop() error                     { return nil }
func (c *Chan) Events() <-chan Event            { return c.ch }

// Press queues ev, dropping it if the buffer is full.
func (c *Chan) Press(ev Event) bool {
	select {
	case c.ch <- ev:
		return true
	default:
		return false
	}
}
