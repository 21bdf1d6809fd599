package capture

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	FilePrefix = "IMG_"
	FileSuffix = ".png"

	// TimestampLayout renders as YYYYMMDD_HHMMSS.
	TimestampLayout = "20060102_150405"
)

var (
	ErrNoFrame     = errors.New("no frame available")
	ErrStorageFull = errors.New("not enough free space")
)

// Error is a failed capture. Path is empty when no file name was chosen yet.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return "capture failed: " + e.Err.Error()
	}
	return "capture " + e.Path + " failed: " + e.Err.Error()
}

func (e *Error) Unwrap() error { return e.Err }

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// FileName returns IMG_<YYYYMMDD_HHMMSS>.png for t.
// Two times within the same second map to the same name.
func FileName(t time.Time) string {
	return FilePrefix + t.Format(TimestampLayout) + FileSuffix
}

// IsCaptureName reports whether name looks like a file produced by FileName.
func IsCaptureName(name string) bool {
	if !strings.HasPrefix(name, FilePrefix) || !strings.HasSuffix(name, FileSuffix) {
		return false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, FilePrefix), FileSuffix)
	_, err := time.Parse(TimestampLayout, stamp)
	return err == nil
}

// Writer stores frames as PNG files flat in Dir.
type Writer struct {
	Dir    string
	Now    func() time.Time
	Logger Logger

	// MinFreeBytes, when non-zero, refuses captures once FreeBytes reports less.
	MinFreeBytes uint64
	FreeBytes    func(dir string) (uint64, error)
}

func NewWriter(dir string, logger Logger) *Writer {
	return &Writer{Dir: dir, Now: time.Now, Logger: logger}
}

// Save writes frame to Dir/IMG_<now>.png and returns the path.
// An existing file with the same name is overwritten.
func (w *Writer) Save(frame image.Image) (string, error) {
	if frame == nil || frame.Bounds().Empty() {
		return "", w.fail(&Error{Err: ErrNoFrame})
	}

	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	path := filepath.Join(w.Dir, FileName(now()))

	if w.MinFreeBytes > 0 && w.FreeBytes != nil {
		free, err := w.FreeBytes(w.Dir)
		if err == nil && free < w.MinFreeBytes {
			return "", w.fail(&Error{Path: path, Err: fmt.Errorf("%w: %d bytes left", ErrStorageFull, free)})
		}
	}

	if err := writePNG(path, frame); err != nil {
		return "", w.fail(&Error{Path: path, Err: err})
	}
	if w.Logger != nil {
		w.Logger.Infof("capture", "Captured and saved to %s", path)
	}
	return path, nil
}

func (w *Writer) fail(err *Error) error {
	if w.Logger != nil {
		w.Logger.Errorf("capture", "%v", err)
	}
	return err
}

// writePNG encodes into a temporary file next to path and renames it into
// place, so a failed encode leaves any earlier file at path untouched.
func writePNG(path string, img image.Image) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// List returns the capture file names in dir, oldest first.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !IsCaptureName(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	// ReadDir sorts by name and the timestamp layout sorts chronologically.
	return names, nil
}
