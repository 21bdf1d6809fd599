//go:build !linux

package buttons

import (
	"context"
	"errors"
)

// Keyboard is unavailable without evdev.
type Keyboard struct {
	Glob   string
	KeyMap map[uint16]Event
	Logger logger

	ch chan Event
}

func NewKeyboard(logger logger) *Keyboard {
	return &Keyboard{KeyMap: DefaultKeyMap, Logger: logger, ch: make(chan Event)}
}

func (k *Keyboard) Start(ctx context.Context) error {
	return errors.New("evdev keyboard input is only available on linux")
}
func (k *Keyboard) Stop() error          { return nil }
func (k *Keyboard) Events() <-chan Event { return k.ch }
