package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/rook-computer/snapscreen/internal/app"
	"github.com/rook-computer/snapscreen/internal/buttons"
	"github.com/rook-computer/snapscreen/internal/camera"
	"github.com/rook-computer/snapscreen/internal/capture"
	"github.com/rook-computer/snapscreen/internal/platform"
	"github.com/rook-computer/snapscreen/internal/render"
	"github.com/rook-computer/snapscreen/internal/state"
	"github.com/rook-computer/snapscreen/internal/system"
	"github.com/rook-computer/snapscreen/internal/web"
)

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	os.Exit(run())
}

func run() int {
	serverDefaults, err := web.DefaultServerConfigFromEnv("")
	if err != nil {
		fmt.Println("server config error:", err)
		return 2
	}

	// Flags
	debug := flag.Bool("debug", false, "log per-action timings and render heartbeats")
	stdioLog := flag.String("stdio-log", os.Getenv("SNAPSCREEN_STDIO_LOG"), "redirect stdout+stderr (including panics) to this file; also configurable via SNAPSCREEN_STDIO_LOG")
	platformName := flag.String("platform", os.Getenv("SNAPSCREEN_PLATFORM"), "platform profile: desktop | windows | android (default: detected)")
	cameraDevice := flag.String("camera", envOr("SNAPSCREEN_CAMERA", "/dev/video0"), "V4L2 camera device; also configurable via SNAPSCREEN_CAMERA")
	width := flag.Int("width", 640, "requested camera width")
	height := flag.Int("height", 480, "requested camera height")
	rotation := flag.String("rotation", "", "initial preview rotation in degrees (default: platform profile)")
	grantTimeout := flag.Duration("grant-timeout", 2*time.Minute, "how long to wait for camera and storage permissions; 0 waits forever")
	logName := flag.String("log-name", app.DefaultLogName, "log file name inside the storage directory")
	minFree := flag.Uint64("min-free", 16<<20, "refuse captures when the storage directory has fewer free bytes; 0 disables")
	locale := flag.String("lang", envOr("LANG", ""), "label language (cs for Czech)")
	fbDevice := flag.String("fb", render.DefaultFramebufferDevice, "framebuffer device")
	headless := flag.Bool("headless", runtime.GOOS != "linux", "render offscreen only (use the web remote to see the screen)")
	listenAddr := flag.String("listen", serverDefaults.ListenAddr, "web remote listen address, empty disables; also configurable via "+web.EnvListenAddr)
	devMode := flag.Bool("dev", serverDefaults.DevMode, "enable permissive CORS for the web remote; also configurable via "+web.EnvDevMode)
	gpioToggle := flag.String("gpio-toggle", "", "GPIO pin for Start")
	gpioCapture := flag.String("gpio-capture", "", "GPIO pin for Photo")
	gpioRotate := flag.String("gpio-rotate", "", "GPIO pin for Rotate")
	gpioQuit := flag.String("gpio-quit", "", "GPIO pin for End")
	flag.Parse()

	// Panics must stay readable when the console is left in graphics mode.
	flushStdIO, err := redirectStdIO(*stdioLog)
	if err != nil {
		fmt.Println("stdio log redirect error:", err)
	}
	defer flushStdIO()

	logger := app.NewSinkLogger(os.Stdout)
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Println("log close error:", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	profile, err := platform.ByName(*platformName, platform.AndroidOptions{CameraDevice: *cameraDevice})
	if err != nil {
		logger.Errorf("main", "%v", err)
		return 2
	}
	logger.Infof("main", "snapscreen starting: platform=%s", profile.Name)

	var renderer render.Renderer
	if *headless {
		offscreen := render.NewOffscreenRenderer(render.CanvasWidth, render.CanvasHeight)
		offscreen.Logger = logger
		offscreen.Debug = *debug
		renderer = offscreen
	} else {
		fb := render.NewFBRenderer()
		fb.Device = *fbDevice
		fb.Logger = logger
		fb.Debug = *debug
		renderer = fb
	}

	initialAngle := profile.DefaultRotation
	if *rotation != "" {
		angle, err := strconv.Atoi(*rotation)
		if err != nil {
			logger.Errorf("main", "invalid -rotation %q: %v", *rotation, err)
			return 2
		}
		initialAngle = angle
	}

	store := state.NewStoreWith(state.State{
		Phase:         state.BOOTING,
		RotationAngle: initialAngle,
		Platform:      profile.Name,
		PreviewScale:  profile.PreviewScale,
	})

	a := app.New(store, renderer, nil, nil, nil, nil)
	a.Logger = logger
	a.Debug = *debug
	a.Console = !*headless
	a.Locale = *locale

	if err := a.AwaitPermissions(ctx, app.PermissionGate{
		Profile: profile,
		Timeout: *grantTimeout,
		Sink:    logger,
		LogName: *logName,
	}); err != nil {
		return 1
	}

	storagePath, err := platform.ResolveStorage(profile, logger)
	if err != nil {
		logger.Errorf("main", "%v", err)
		return 1
	}
	if err := logger.Attach(filepath.Join(storagePath, *logName)); err != nil {
		logger.Errorf("main", "log file: %v", err)
	}
	store.SetStoragePath(storagePath)

	writer := capture.NewWriter(storagePath, logger)
	writer.MinFreeBytes = *minFree
	writer.FreeBytes = platform.FreeBytes

	source := camera.NewWebcamSource(*cameraDevice, *width, *height, logger)

	inputs := []buttons.Buttons{buttons.NewKeyboard(logger)}
	pins := map[buttons.Event]string{
		buttons.Toggle:  *gpioToggle,
		buttons.Capture: *gpioCapture,
		buttons.Rotate:  *gpioRotate,
		buttons.Quit:    *gpioQuit,
	}
	for _, pin := range pins {
		if pin != "" {
			inputs = append(inputs, buttons.NewGPIO(pins, logger))
			break
		}
	}
	input := buttons.NewMulti(logger, inputs...)

	a.Camera = source
	a.Saver = writer
	a.Buttons = input

	if *listenAddr != "" {
		server := web.NewHTTPServer(*listenAddr, web.APIV1Deps{
			Store:     store,
			Dispatch:  a.Dispatch,
			Screen:    renderer.Snapshot,
			Usage:     platform.StorageUsage,
			StreamFPS: serverDefaults.StreamFPS,
		})
		server.DevMode = *devMode
		server.Logger = logger
		a.Web = server
		if url, err := system.RemoteURL(ctx, *listenAddr); err == nil {
			a.RemoteURL = url
			logger.Infof("main", "web remote at %s", url)
		} else {
			logger.Errorf("main", "web remote url: %v", err)
		}
	}

	if err := a.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("main", "app error: %v", err)
		return 1
	}
	logger.Infof("main", "bye")
	return 0
}
