package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rook-computer/snapscreen/internal/app/screens"
	"github.com/rook-computer/snapscreen/internal/buttons"
	"github.com/rook-computer/snapscreen/internal/camera"
	"github.com/rook-computer/snapscreen/internal/render"
	"github.com/rook-computer/snapscreen/internal/state"
	"github.com/rook-computer/snapscreen/internal/system"
	"github.com/rook-computer/snapscreen/internal/web"
)

type actionResult struct {
	state state.State
	path  string
	err   error
}

type actionRequest struct {
	ev    buttons.Event
	reply chan actionResult
}

type App struct {
	Store   *state.Store
	Render  render.Renderer
	Web     web.Server
	Buttons buttons.Buttons
	Camera  camera.Source
	Saver   screens.Saver
	Logger  Logger
	Debug   bool

	// Console switches the VT to graphics mode while running. Only useful
	// with the framebuffer renderer.
	Console bool

	Locale    string
	RemoteURL string

	screen *screens.CameraScreen

	actions  chan actionRequest
	done     chan struct{}
	running  atomic.Bool
	exitOnce atomic.Bool
	exitCh   chan error
}

// New wires an App. A nil webServer leaves the web remote disabled.
func New(store *state.Store, renderer render.Renderer, webServer web.Server, source camera.Source, saver screens.Saver, buttonDriver buttons.Buttons) *App {
	if webServer == nil {
		webServer = &web.NoopServer{}
	}
	return &App{
		Store:   store,
		Render:  renderer,
		Web:     webServer,
		Camera:  source,
		Saver:   saver,
		Buttons: buttonDriver,
		Logger:  NoopLogger{},
		actions: make(chan actionRequest),
		done:    make(chan struct{}),
		exitCh:  make(chan error, 1),
	}
}

// Exit requests the app to stop running.
// Any screen can call this to terminate the process via the generic codepath.
func (app *App) Exit(err error) {
	if app.exitCh == nil {
		return
	}
	if !app.exitOnce.CompareAndSwap(false, true) {
		return
	}
	select {
	case app.exitCh <- err:
	default:
	}
}

// Dispatch runs ev on the UI loop and waits for its outcome. It is safe to
// call from any goroutine; HTTP handlers use it.
func (app *App) Dispatch(ctx context.Context, ev buttons.Event) (state.State, string, error) {
	req := actionRequest{ev: ev, reply: make(chan actionResult, 1)}
	select {
	case app.actions <- req:
	case <-app.done:
		return app.Store.Snapshot(), "", web.ErrNotRunning
	case <-ctx.Done():
		return app.Store.Snapshot(), "", ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res.state, res.path, res.err
	case <-ctx.Done():
		return app.Store.Snapshot(), "", ctx.Err()
	}
}

// Start runs the camera screen until quit is requested or ctx ends. Every
// state mutation happens on the goroutine that called Start.
func (app *App) Start(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return errors.New("app already running")
	}
	if app.exitCh == nil {
		app.exitCh = make(chan error, 1)
	}
	if app.actions == nil {
		app.actions = make(chan actionRequest)
	}
	if app.done == nil {
		app.done = make(chan struct{})
	}
	app.exitOnce.Store(false)
	var doneOnce sync.Once
	closeDone := func() { doneOnce.Do(func() { close(app.done) }) }
	defer closeDone()

	if app.Render == nil {
		app.Render = &render.NoopRenderer{}
	}
	if err := app.Render.Start(ctx); err != nil {
		app.Logger.Errorf("app", "renderer start error: %v", err)
		return err
	}
	defer app.Render.Stop()

	if app.Console {
		restore := system.EnterGraphicsConsole(app.Logger)
		defer restore()
	}

	app.screen = screens.NewCameraScreen(app.Store, app.Camera, app.Saver, app.Logger, app)
	app.screen.Labels = screens.LabelsFor(app.Locale)
	if app.RemoteURL != "" {
		app.screen.SetRemoteURL(app.RemoteURL)
	}
	if err := app.screen.Start(ctx); err != nil {
		return err
	}
	app.Render.SetScreen(app.screen)
	app.Store.SetPhase(state.READY)

	// Force immediate first redraw to ensure text shows without waiting for loop.
	app.Render.RedrawWithState(app.Store.Snapshot())

	loopCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		app.Render.RunLoop(loopCtx, app.Store)
	}()

	var buttonEvents <-chan buttons.Event
	if app.Buttons != nil {
		if err := app.Buttons.Start(loopCtx); err != nil {
			app.Logger.Errorf("buttons", "start failed: %v", err)
		} else {
			buttonEvents = app.Buttons.Events()
		}
	}
	if app.Web == nil {
		app.Web = &web.NoopServer{}
	}
	if err := app.Web.Start(loopCtx); err != nil {
		app.Logger.Errorf("web", "start failed: %v", err)
	}
	app.Logger.Infof("app", "ready: platform=%s storage=%s rotation=%d", app.Store.Snapshot().Platform, app.Store.Snapshot().StoragePath, app.Store.Snapshot().RotationAngle)

	var err error
loop:
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break loop
		case err = <-app.exitCh:
			break loop
		case ev, ok := <-buttonEvents:
			if !ok {
				buttonEvents = nil
				continue
			}
			_ = app.handle(ev)
		case req := <-app.actions:
			req.reply <- app.handle(req.ev)
		}
	}

	// Release callers blocked in Dispatch before waiting on the web server.
	closeDone()
	app.Store.SetPhase(state.STOPPING)
	app.Logger.Infof("app", "stopping")
	if stopErr := app.screen.Stop(); stopErr != nil {
		app.Logger.Errorf("camera", "stop failed: %v", stopErr)
	}
	if app.Buttons != nil {
		_ = app.Buttons.Stop()
	}
	if stopErr := app.Web.Stop(); stopErr != nil {
		app.Logger.Errorf("web", "stop failed: %v", stopErr)
	}
	cancel()
	wg.Wait()
	return err
}

// handle performs one control action. It runs on the UI loop only.
func (app *App) handle(ev buttons.Event) actionResult {
	started := time.Now()
	var res actionResult
	switch ev {
	case buttons.Toggle:
		enabled := app.screen.TogglePreview()
		app.Logger.Infof("app", "preview %s", onOff(enabled))
	case buttons.Capture:
		res.path, res.err = app.screen.Capture()
	case buttons.Rotate:
		angle := app.screen.Rotate()
		app.Logger.Infof("app", "rotation now %d", angle)
	case buttons.Quit:
		app.screen.Quit()
	default:
		res.err = fmt.Errorf("unknown action %q", ev)
	}
	res.state = app.Store.Snapshot()
	if app.Debug {
		app.Logger.Infof("app", "%s handled in %s", ev, time.Since(started))
	}
	return res
}

func onOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}

// ShowMessage renders a MessageScreen for grace and returns. It is used
// before the camera screen exists, e.g. when permissions were denied.
func (app *App) ShowMessage(ctx context.Context, text, detail string, grace time.Duration) error {
	if app.Render == nil {
		return nil
	}
	if err := app.Render.Start(ctx); err != nil {
		return err
	}
	defer app.Render.Stop()
	if app.Console {
		restore := system.EnterGraphicsConsole(app.Logger)
		defer restore()
	}
	app.Render.SetScreen(screens.MessageScreen{Text: text, Detail: detail})
	app.Render.RedrawWithState(app.Store.Snapshot())
	select {
	case <-ctx.Done():
	case <-time.After(grace):
	}
	return nil
}
