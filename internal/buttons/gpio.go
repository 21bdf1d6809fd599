package buttons

import (
	"context"
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

const gpioDebounce = 200 * time.Millisecond

var (
	hostOnce sync.Once
	hostErr  error
)

func initHost() error {
	hostOnce.Do(func() {
		_, hostErr = host.Init()
	})
	return hostErr
}

// GPIO reads active-low push buttons wired between a pin and ground. Pins
// are named the way periph names them (e.g. "GPIO17").
type GPIO struct {
	Pins   map[Event]string
	Logger logger

	ch   chan Event
	wg   sync.WaitGroup
	stop context.CancelFunc
	open []gpio.PinIO
}

func NewGPIO(pins map[Event]string, logger logger) *GPIO {
	return &GPIO{Pins: pins, Logger: logger, ch: make(chan Event, 8)}
}

func (g *GPIO) Events() <-chan Event { return g.ch }

func (g *GPIO) Start(ctx context.Context) error {
	configured := 0
	for _, name := range g.Pins {
		if name != "" {
			configured++
		}
	}
	if configured == 0 {
		return fmt.Errorf("no GPIO pins configured")
	}
	if err := initHost(); err != nil {
		return fmt.Errorf("periph host init: %w", err)
	}

	ctx, g.stop = context.WithCancel(ctx)
	for ev, name := range g.Pins {
		if name == "" {
			continue
		}
		pin := gpioreg.ByName(name)
		if pin == nil {
			g.stop()
			return fmt.Errorf("gpio pin %q not found", name)
		}
		if err := pin.In(gpio.PullUp, gpio.FallingEdge); err != nil {
			g.stop()
			return fmt.Errorf("gpio pin %s: %w", name, err)
		}
		g.open = append(g.open, pin)
		g.wg.Add(1)
		go g.watch(ctx, pin, ev)
		if g.Logger != nil {
			g.Logger.Infof("gpio", "%s bound to %s", name, ev)
		}
	}
	return nil
}

func (g *GPIO) watch(ctx context.Context, pin gpio.PinIO, ev Event) {
	defer g.wg.Done()
	var last time.Time
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if !pin.WaitForEdge(250 * time.Millisecond) {
			continue
		}
		if pin.Read() != gpio.Low || time.Since(last) < gpioDebounce {
			continue
		}
		last = time.Now()
		select {
		case g.ch <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (g *GPIO) Stop() error {
	if g.stop != nil {
		g.stop()
	}
	g.wg.Wait()
	for _, pin := range g.open {
		_ = pin.In(gpio.PullUp, gpio.NoEdge)
	}
	g.open = nil
	return nil
}
