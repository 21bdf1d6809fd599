package capture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type recordingLogger struct {
	infos  []string
	errors []string
}

func (l *recordingLogger) Infof(component, format string, args ...interface{}) {
	l.infos = append(l.infos, format)
}

func (l *recordingLogger) Errorf(component, format string, args ...interface{}) {
	l.errors = append(l.errors, format)
}

func solidFrame(c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestFileName(t *testing.T) {
	testCases := []struct {
		at   time.Time
		want string
	}{
		{time.Date(2024, 3, 7, 9, 5, 2, 0, time.UTC), "IMG_20240307_090502.png"},
		{time.Date(1999, 12, 31, 23, 59, 59, 999_000_000, time.UTC), "IMG_19991231_235959.png"},
	}
	for _, tc := range testCases {
		if got := FileName(tc.at); got != tc.want {
			t.Errorf("FileName(%v) = %q, want %q", tc.at, got, tc.want)
		}
	}
}

func TestIsCaptureName(t *testing.T) {
	testCases := map[string]bool{
		"IMG_20240307_090502.png": true,
		"IMG_20240307_090502.jpg": false,
		"IMG_2024.png":            false,
		"my_kivy_app.log":         false,
		"IMG_20241307_090502.png": false,
	}
	for name, want := range testCases {
		if got := IsCaptureName(name); got != want {
			t.Errorf("IsCaptureName(%q) = %v, want %v", name, got, want)
		}
	}
}

func TestSaveWritesTimestampedPNG(t *testing.T) {
	dir := t.TempDir()
	logger := &recordingLogger{}
	at := time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)

	writer := &Writer{Dir: dir, Now: fixedClock(at), Logger: logger}
	path, err := writer.Save(solidFrame(color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if want := filepath.Join(dir, "IMG_20240307_090502.png"); path != want {
		t.Errorf("path = %q, want %q", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds = %v", img.Bounds())
	}

	if len(logger.infos) != 1 || !strings.Contains(logger.infos[0], "Captured and saved to") {
		t.Errorf("info log lines = %v", logger.infos)
	}
}

func TestSaveSameSecondOverwrites(t *testing.T) {
	dir := t.TempDir()
	base := time.Date(2024, 3, 7, 9, 5, 2, 100_000_000, time.Local)
	clock := base
	writer := &Writer{Dir: dir, Now: func() time.Time { return clock }}

	first, err := writer.Save(solidFrame(color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	clock = base.Add(500 * time.Millisecond)
	second, err := writer.Save(solidFrame(color.RGBA{B: 255, A: 255}))
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if first != second {
		t.Fatalf("paths differ: %q vs %q", first, second)
	}

	names, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("files = %v, want exactly one", names)
	}

	f, err := os.Open(second)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	r, _, b, _ := img.At(0, 0).RGBA()
	if r != 0 || b == 0 {
		t.Errorf("file holds first frame, want last write to win")
	}
}

// unencodable has bounds png.Encode rejects before writing any pixels.
type unencodable struct{}

func (unencodable) ColorModel() color.Model { return color.RGBAModel }
func (unencodable) Bounds() image.Rectangle { return image.Rect(0, 0, 1<<32, 1) }
func (unencodable) At(x, y int) color.Color { return color.Black }

func TestFailedEncodeKeepsEarlierCapture(t *testing.T) {
	dir := t.TempDir()
	writer := &Writer{Dir: dir, Now: fixedClock(time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local))}

	path, err := writer.Save(solidFrame(color.RGBA{G: 255, A: 255}))
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if _, err := writer.Save(unencodable{}); err == nil {
		t.Fatal("Save of unencodable image succeeded")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("earlier capture damaged: %v", err)
	}
	if _, g, _, _ := img.At(0, 0).RGBA(); g == 0 {
		t.Error("earlier capture content changed")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		var names []string
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Errorf("dir = %v, want only the earlier capture", names)
	}
}

func TestSaveWithoutFrame(t *testing.T) {
	logger := &recordingLogger{}
	writer := &Writer{Dir: t.TempDir(), Logger: logger}

	for _, frame := range []image.Image{nil, image.NewRGBA(image.Rectangle{})} {
		_, err := writer.Save(frame)
		if !errors.Is(err, ErrNoFrame) {
			t.Errorf("err = %v, want ErrNoFrame", err)
		}
	}
	if len(logger.errors) != 2 {
		t.Errorf("error log lines = %d, want 2", len(logger.errors))
	}
}

func TestSaveUnwritableDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does", "not", "exist")
	writer := &Writer{Dir: dir, Now: fixedClock(time.Now())}

	_, err := writer.Save(solidFrame(color.White))
	var captureErr *Error
	if !errors.As(err, &captureErr) {
		t.Fatalf("err = %v, want *Error", err)
	}
	if !strings.HasPrefix(captureErr.Path, dir) {
		t.Errorf("Path = %q", captureErr.Path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want to wrap ErrNotExist", err)
	}
}

func TestSaveRefusesWhenStorageFull(t *testing.T) {
	writer := &Writer{
		Dir:          t.TempDir(),
		MinFreeBytes: 1 << 20,
		FreeBytes:    func(string) (uint64, error) { return 1024, nil },
	}
	_, err := writer.Save(solidFrame(color.White))
	if !errors.Is(err, ErrStorageFull) {
		t.Errorf("err = %v, want ErrStorageFull", err)
	}
}

func TestListSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"IMG_20240102_000000.png", "IMG_20240101_000000.png", "my_kivy_app.log", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "IMG_20240103_000000.png"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"IMG_20240101_000000.png", "IMG_20240102_000000.png"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}
