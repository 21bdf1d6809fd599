package web

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rook-computer/snapscreen/internal/buttons"
	"github.com/rook-computer/snapscreen/internal/platform"
	"github.com/rook-computer/snapscreen/internal/state"
)

type fixture struct {
	store  *state.Store
	dir    string
	screen image.Image
	events []buttons.Event
	err    error
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()
	return &fixture{
		store: state.NewStoreWith(state.State{Phase: state.READY, StoragePath: dir, Platform: "desktop", PreviewScale: 1}),
		dir:   dir,
	}
}

func (f *fixture) deps() APIV1Deps {
	return APIV1Deps{
		Store: f.store,
		Dispatch: func(ctx context.Context, ev buttons.Event) (state.State, string, error) {
			f.events = append(f.events, ev)
			if f.err != nil {
				return f.store.Snapshot(), "", f.err
			}
			switch ev {
			case buttons.Rotate:
				f.store.Rotate()
			case buttons.Toggle:
				f.store.TogglePreview()
			case buttons.Capture:
				path := filepath.Join(f.dir, "IMG_20240102_030405.png")
				f.store.RecordCapture(path)
				return f.store.Snapshot(), path, nil
			}
			return f.store.Snapshot(), "", nil
		},
		Screen: func() image.Image { return f.screen },
		Usage: func(ctx context.Context, path string) (platform.Usage, error) {
			return platform.Usage{Free: 100, Total: 1000}, nil
		},
		StreamFPS: 50,
	}
}

func (f *fixture) handler() http.Handler {
	s := NewHTTPServer("", f.deps())
	return s.Handler()
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("unmarshal %q: %v", rec.Body.String(), err)
	}
}

func TestStateIncludesStorageUsage(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp stateResponse
	decode(t, rec, &resp)
	if resp.Phase != "ready" || resp.Platform != "desktop" {
		t.Errorf("resp = %+v", resp)
	}
	if resp.FreeBytes == nil || *resp.FreeBytes != 100 || resp.TotalBytes == nil || *resp.TotalBytes != 1000 {
		t.Errorf("usage = %v / %v", resp.FreeBytes, resp.TotalBytes)
	}
}

func TestActionsDispatch(t *testing.T) {
	f := newFixture(t)
	h := f.handler()

	cases := []struct {
		path string
		want buttons.Event
	}{
		{"/api/v1/preview", buttons.Toggle},
		{"/api/v1/rotate", buttons.Rotate},
		{"/api/v1/capture", buttons.Capture},
		{"/api/v1/quit", buttons.Quit},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, tc.path, nil))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d body=%s", rec.Code, rec.Body.String())
			}
			if got := f.events[len(f.events)-1]; got != tc.want {
				t.Errorf("dispatched %s, want %s", got, tc.want)
			}
		})
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/capture", nil))
	var resp actionResponse
	decode(t, rec, &resp)
	if !strings.HasSuffix(resp.Path, "IMG_20240102_030405.png") || resp.State.RotationAngle != 90 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestActionErrors(t *testing.T) {
	f := newFixture(t)
	h := f.handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/rotate", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET rotate status = %d", rec.Code)
	}

	f.err = errors.New("capture IMG_x.png: no frame available")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/capture", nil))
	var apiErr apiError
	decode(t, rec, &apiErr)
	if rec.Code != http.StatusInternalServerError || apiErr.Error != "capture_failed" {
		t.Errorf("capture failure = %d %+v", rec.Code, apiErr)
	}

	f.err = ErrNotRunning
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/rotate", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("not running status = %d", rec.Code)
	}
}

func TestScreenPNG(t *testing.T) {
	f := newFixture(t)
	h := f.handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/screen.png", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status before first frame = %d", rec.Code)
	}

	f.screen = image.NewRGBA(image.Rect(0, 0, 12, 8))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/screen.png", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 12 {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}

func TestCapturesListAndDownload(t *testing.T) {
	f := newFixture(t)
	h := f.handler()
	name := "IMG_20240102_030405.png"
	if err := os.WriteFile(filepath.Join(f.dir, name), []byte("png-bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.dir, "my_kivy_app.log"), []byte("log"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/captures", nil))
	var list capturesResponse
	decode(t, rec, &list)
	if len(list.Captures) != 1 || list.Captures[0] != name {
		t.Fatalf("captures = %v", list.Captures)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/captures/"+name, nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "png-bytes" {
		t.Errorf("download = %d %q", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), name) {
		t.Errorf("Content-Disposition = %q", rec.Header().Get("Content-Disposition"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/captures/my_kivy_app.log", nil))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-capture name status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/captures/IMG_20990101_000000.png", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing capture status = %d", rec.Code)
	}
}

func TestEventsPushesStateChanges(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var first stateResponse
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("first message: %v", err)
	}
	if first.RotationAngle != 0 {
		t.Errorf("initial angle = %d", first.RotationAngle)
	}

	f.store.Rotate()
	var next stateResponse
	if err := conn.ReadJSON(&next); err != nil {
		t.Fatalf("second message: %v", err)
	}
	if next.RotationAngle != 90 {
		t.Errorf("pushed angle = %d, want 90", next.RotationAngle)
	}
}

func TestStreamWritesJPEGParts(t *testing.T) {
	f := newFixture(t)
	f.screen = image.NewRGBA(image.Rect(0, 0, 16, 16))
	srv := httptest.NewServer(f.handler())
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/stream", nil)
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	defer res.Body.Close()

	if ct := res.Header.Get("Content-Type"); ct != "multipart/x-mixed-replace; boundary=frame" {
		t.Errorf("Content-Type = %q", ct)
	}
	reader := bufio.NewReader(res.Body)
	sawBoundary := false
	for i := 0; i < 4; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if strings.TrimSpace(line) == "--frame" {
			sawBoundary = true
			continue
		}
		if sawBoundary {
			if strings.TrimSpace(line) != "Content-Type: image/jpeg" {
				t.Errorf("part header = %q", line)
			}
			return
		}
	}
	t.Error("no stream part received")
}

func TestIndexServed(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "api/v1/stream") {
		t.Errorf("index = %d", rec.Code)
	}
}

func TestDevCORS(t *testing.T) {
	f := newFixture(t)
	s := NewHTTPServer("", f.deps())
	s.DevMode = true

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("allow origin = %q", rec.Header().Get("Access-Control-Allow-Origin"))
	}
	if !strings.Contains(rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost) {
		t.Errorf("allow methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
	}

	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("CORS headers set without Origin")
	}
}

func TestServerConfigFromEnv(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    ServerConfig
		wantErr bool
	}{
		{name: "defaults", want: ServerConfig{ListenAddr: ":8080", StreamFPS: defaultStreamFPS}},
		{
			name: "overrides",
			env:  map[string]string{EnvListenAddr: "127.0.0.1:9000", EnvDevMode: "true", EnvStreamFPS: "5"},
			want: ServerConfig{ListenAddr: "127.0.0.1:9000", DevMode: true, StreamFPS: 5},
		},
		{name: "bad dev flag", env: map[string]string{EnvDevMode: "maybe"}, wantErr: true},
		{name: "fps out of range", env: map[string]string{EnvStreamFPS: "120"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{EnvListenAddr, EnvDevMode, EnvStreamFPS} {
				t.Setenv(key, tt.env[key])
			}
			got, err := DefaultServerConfigFromEnv(":8080")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("config = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestServerStartStop(t *testing.T) {
	f := newFixture(t)
	s := NewHTTPServer("127.0.0.1:0", f.deps())
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	res, err := http.Get("http://" + s.ListenAddr() + "/api/v1/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Errorf("status = %d", res.StatusCode)
	}
	if err := s.Stop(); err != nil {
		t.Errorf("Stop: %v", err)
	}
	if err := s.Start(context.Background()); err == nil {
		t.Error("restart after Stop succeeded")
	}
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := httptest.NewRecorder()
	f.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}

	f.store.SetPhase(state.STOPPING)
	rec = httptest.NewRecorder()
	f.handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "stopping" || resp.Phase != state.STOPPING.String() {
		t.Errorf("health = %+v", resp)
	}
}
