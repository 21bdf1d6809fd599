//go:build linux

package buttons

import (
	"context"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

const defaultInputGlob = "/dev/input/event*"

var errNoInputDevices = errors.New("no evdev devices found")

// Keyboard watches Linux evdev devices and turns key presses into events.
type Keyboard struct {
	Glob   string
	KeyMap map[uint16]Event
	Logger logger

	ch   chan Event
	wg   sync.WaitGroup
	stop context.CancelFunc
}

func NewKeyboard(logger logger) *Keyboard {
	return &Keyboard{Glob: defaultInputGlob, KeyMap: DefaultKeyMap, Logger: logger, ch: make(chan Event, 8)}
}

func (k *Keyboard) Events() <-chan Event { return k.ch }

// Start opens every matching device and reads it in its own goroutine.
func (k *Keyboard) Start(ctx context.Context) error {
	glob := k.Glob
	if glob == "" {
		glob = defaultInputGlob
	}
	paths, err := filepath.Glob(glob)
	if err != nil || len(paths) == 0 {
		return errNoInputDevices
	}
	if k.KeyMap == nil {
		k.KeyMap = DefaultKeyMap
	}

	ctx, k.stop = context.WithCancel(ctx)
	opened := 0
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			continue
		}
		opened++
		k.wg.Add(1)
		go k.read(ctx, path, fd)
	}
	if opened == 0 {
		k.stop()
		return errNoInputDevices
	}
	if k.Logger != nil {
		k.Logger.Infof("input", "watching %d evdev devices", opened)
	}
	return nil
}

func (k *Keyboard) read(ctx context.Context, path string, fd int) {
	defer k.wg.Done()
	f := os.NewFile(uintptr(fd), path)
	defer func() {
		_ = f.Close()
	}()

	// input_event = timeval + u16 type + u16 code + s32 value.
	tvSize := binary.Size(unix.Timeval{})
	buf := make([]byte, 4096)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		pollFds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pollFds, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			// Device might have gone away.
			return
		}
		if pollFds[0].Revents&unix.POLLIN == 0 {
			continue
		}

		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for _, ev := range decodeKeyEvents(buf[:n], tvSize, k.KeyMap) {
			select {
			case k.ch <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (k *Keyboard) Stop() error {
	if k.stop != nil {
		k.stop()
	}
	k.wg.Wait()
	return nil
}
