package web

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rook-computer/snapscreen/internal/assets"
)

type HTTPServer struct {
	Addr string

	// StaticDir, when set to an existing directory, is served at "/".
	// The API remains available under /api/v1/.
	StaticDir string

	// DevMode wraps the handler with permissive CORS.
	DevMode bool

	Deps   APIV1Deps
	Logger logger

	// Extra, when set, registers additional routes (e.g. simulator controls).
	Extra func(mux *http.ServeMux)

	mu       sync.Mutex
	srv      *http.Server
	ln       net.Listener
	cancelFn context.CancelFunc
	closed   bool
}

func NewHTTPServer(addr string, deps APIV1Deps) *HTTPServer {
	return &HTTPServer{Addr: addr, Deps: deps}
}

// Handler builds the full handler without starting a listener.
func (s *HTTPServer) Handler() http.Handler {
	deps := s.Deps
	deps.DevMode = deps.DevMode || s.DevMode
	if deps.Logger == nil {
		deps.Logger = s.Logger
	}
	mux := NewDefaultMux(s.StaticDir, deps)
	if s.Extra != nil {
		s.Extra(mux)
	}
	if s.DevMode {
		return WithDevCORS(mux)
	}
	return mux
}

// ListenAddr returns the bound address once started, e.g. with port 0.
func (s *HTTPServer) ListenAddr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

func (s *HTTPServer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errors.New("web server already stopped")
	}
	if s.srv != nil {
		return nil
	}

	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}

	// Long-lived handlers (stream, events) watch this context so Shutdown
	// does not wait on them.
	baseCtx, cancel := context.WithCancel(context.Background())
	s.cancelFn = cancel
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		cancel()
		s.srv = nil
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.ln = ln
	if s.Logger != nil {
		s.Logger.Infof("web", "listening on %s", ln.Addr())
	}

	go func() {
		<-ctx.Done()
		_ = s.Stop()
	}()

	srv := s.srv
	go func() {
		err := srv.Serve(ln)
		if err == nil || errors.Is(err, http.ErrServerClosed) {
			return
		}
		if s.Logger != nil {
			s.Logger.Errorf("web", "serve: %v", err)
		}
	}()

	return nil
}

func (s *HTTPServer) Stop() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	srv := s.srv
	cancel := s.cancelFn
	s.srv = nil
	s.ln = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if srv == nil {
		return nil
	}

	ctx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	return srv.Shutdown(ctx)
}

// StaticUIHandler serves staticDir when it is an existing directory and the
// embedded UI otherwise.
func StaticUIHandler(staticDir string) http.Handler {
	var files http.FileSystem = http.FS(assets.WebUI)
	if staticDir != "" {
		if st, err := os.Stat(staticDir); err == nil && st.IsDir() {
			files = http.Dir(staticDir)
		} else {
			return http.NotFoundHandler()
		}
	}
	fileServer := http.FileServer(files)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Clean path to avoid oddities.
		r.URL.Path = filepath.ToSlash(filepath.Clean("/" + r.URL.Path))
		fileServer.ServeHTTP(w, r)
	})
}
