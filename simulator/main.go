package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rook-computer/snapscreen/internal/app"
	"github.com/rook-computer/snapscreen/internal/buttons"
	"github.com/rook-computer/snapscreen/internal/camera"
	"github.com/rook-computer/snapscreen/internal/capture"
	"github.com/rook-computer/snapscreen/internal/platform"
	"github.com/rook-computer/snapscreen/internal/render"
	"github.com/rook-computer/snapscreen/internal/state"
	"github.com/rook-computer/snapscreen/internal/web"
)

func main() {
	defaults, err := web.DefaultServerConfigFromEnv(":8080")
	if err != nil {
		fmt.Println("server config error:", err)
		os.Exit(2)
	}

	listenAddr := flag.String("listen", defaults.ListenAddr, "http listen address; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", defaults.DevMode, "enable dev mode; also configurable via "+web.EnvDevMode)
	staticDir := flag.String("static-dir", "", "serve static UI from this directory (optional); when empty, embedded web UI assets are served")
	storageDir := flag.String("storage", filepath.Join(os.TempDir(), "snapscreen-sim"), "simulated storage directory for captures and the log file")
	platformName := flag.String("platform", platform.Desktop, "platform profile to emulate (rotation and preview scale only)")
	width := flag.Int("width", 640, "synthetic camera width")
	height := flag.Int("height", 480, "synthetic camera height")
	locale := flag.String("lang", "", "label language (cs for Czech)")
	debug := flag.Bool("debug", false, "log per-action timings and render heartbeats")
	minFree := flag.Uint64("min-free", 0, "refuse captures when the storage has fewer free bytes than this")
	flag.Parse()

	processCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := app.NewSinkLogger(os.Stdout)
	defer func() { _ = logger.Close() }()

	profile, err := platform.ByName(*platformName, platform.AndroidOptions{})
	if err != nil {
		fmt.Println("platform error:", err)
		os.Exit(2)
	}

	root, err := filepath.Abs(filepath.Clean(*storageDir))
	if err == nil {
		err = os.MkdirAll(root, 0o755)
	}
	if err != nil {
		fmt.Println("storage dir error:", err)
		os.Exit(2)
	}
	if err := logger.Attach(filepath.Join(root, app.DefaultLogName)); err != nil {
		logger.Errorf("sim", "log file: %v", err)
	}

	store := state.NewStoreWith(state.State{
		Phase:         state.BOOTING,
		RotationAngle: profile.DefaultRotation,
		StoragePath:   root,
		Platform:      profile.Name,
		PreviewScale:  profile.PreviewScale,
	})

	source := camera.NewPatternSource(*width, *height, 15)
	writer := capture.NewWriter(root, logger)
	writer.MinFreeBytes = *minFree
	writer.FreeBytes = platform.FreeBytes
	control := NewSimControl(source, writer)

	renderer := render.NewOffscreenRenderer(render.CanvasWidth, render.CanvasHeight)
	renderer.Logger = logger
	renderer.Debug = *debug

	a := app.New(store, renderer, nil, source, control, buttons.NewNoopButtons())
	a.Logger = logger
	a.Debug = *debug
	a.Locale = *locale

	server := web.NewHTTPServer(*listenAddr, web.APIV1Deps{
		Store:     store,
		Dispatch:  a.Dispatch,
		Screen:    renderer.Snapshot,
		Usage:     platform.StorageUsage,
		StreamFPS: defaults.StreamFPS,
	})
	server.StaticDir = *staticDir
	server.DevMode = *devMode
	server.Logger = logger
	server.Extra = func(mux *http.ServeMux) { registerSimEndpoints(mux, control) }
	a.Web = server

	fmt.Println("snapscreen simulator listening on", *listenAddr)
	fmt.Println("Storage:", root)
	fmt.Println("API: http://" + displayAddr(*listenAddr) + "/api/v1/")

	if err := a.Start(processCtx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("sim", "app error: %v", err)
		os.Exit(1)
	}
}

func displayAddr(addr string) string {
	// Best-effort for display; don't attempt full URL parsing here.
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	if addr == "" {
		return "127.0.0.1:8080"
	}
	// If it's already a host:port, keep it.
	return addr
}
