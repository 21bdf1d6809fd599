package screens

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"sync"

	"github.com/rook-computer/snapscreen/internal/camera"
	"github.com/rook-computer/snapscreen/internal/render"
	"github.com/rook-computer/snapscreen/internal/render/layout"
	"github.com/rook-computer/snapscreen/internal/state"
)

// Saver persists a captured frame and returns where it went.
type Saver interface {
	Save(frame image.Image) (string, error)
}

const (
	previewFraction = 0.7
	qrCodeSizePx    = 160
	qrMarginPx      = 16
)

// CameraScreen is the live preview with its four controls. The operations
// must be called from the app's event loop; Draw runs on the render loop
// and only reads the snapshot it is given and the source's latest frame.
type CameraScreen struct {
	Store  *state.Store
	Source camera.Source
	Saver  Saver
	Logger Logger
	Exiter AppExiter
	Labels Labels

	ctx    context.Context
	cancel context.CancelFunc

	qrMu sync.RWMutex
	qr   image.Image
}

func NewCameraScreen(store *state.Store, source camera.Source, saver Saver, logger Logger, exiter AppExiter) *CameraScreen {
	return &CameraScreen{
		Store:  store,
		Source: source,
		Saver:  saver,
		Logger: logger,
		Exiter: exiter,
		Labels: LabelsFor(""),
	}
}

// SetRemoteURL shows a QR code for url in the preview's corner; "" hides it.
func (s *CameraScreen) SetRemoteURL(url string) {
	img, err := render.RemoteQRCode(url, qrCodeSizePx)
	if err != nil && s.Logger != nil {
		s.Logger.Errorf("screen", "qr code for %s: %v", url, err)
	}
	s.qrMu.Lock()
	s.qr = img
	s.qrMu.Unlock()
}

func (s *CameraScreen) Start(ctx context.Context) error {
	if s.Store == nil {
		return errors.New("no state store configured")
	}
	if s.Source == nil {
		return errors.New("no camera source configured")
	}
	if s.Saver == nil {
		return errors.New("no capture saver configured")
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	if s.Store.Snapshot().PreviewEnabled {
		s.startSource()
	}
	return nil
}

func (s *CameraScreen) Stop() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.Source == nil {
		return nil
	}
	return s.Source.Stop()
}

// TogglePreview flips the preview flag and starts or stops the camera.
// A camera that fails to start is logged; the flag flips regardless.
func (s *CameraScreen) TogglePreview() bool {
	enabled := s.Store.TogglePreview()
	if enabled {
		s.startSource()
	} else {
		if err := s.Source.Stop(); err != nil && s.Logger != nil {
			s.Logger.Errorf("camera", "stop failed: %v", err)
		}
		if s.Logger != nil {
			s.Logger.Infof("camera", "preview stopped")
		}
	}
	return enabled
}

func (s *CameraScreen) startSource() {
	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if err := s.Source.Start(ctx); err != nil {
		if s.Logger != nil {
			s.Logger.Errorf("camera", "start %s failed: %v", s.Source.Info().Device, err)
		}
		return
	}
	if s.Logger != nil {
		info := s.Source.Info()
		s.Logger.Infof("camera", "preview started: %s %s %dx%d", info.Name, info.Format, info.Width, info.Height)
	}
}

// Capture writes the latest camera frame. Failures are recorded in the
// state and returned; they never stop the app.
func (s *CameraScreen) Capture() (string, error) {
	frame, ok := s.Source.LatestFrame()
	if !ok {
		frame = nil
	}
	path, err := s.Saver.Save(frame)
	if err != nil {
		s.Store.RecordError(err.Error())
		return "", err
	}
	s.Store.RecordCapture(path)
	return path, nil
}

func (s *CameraScreen) Rotate() int {
	return s.Store.Rotate()
}

func (s *CameraScreen) Quit() {
	if s.Logger != nil {
		s.Logger.Infof("app", "quit requested")
	}
	if s.Exiter != nil {
		s.Exiter.Exit(nil)
	}
}

func (s *CameraScreen) Draw(r render.Drawer, st state.State) {
	r.FillBackground()
	w, h := r.Size()
	preview, controls := layout.SplitFraction(image.Rect(0, 0, w, h), previewFraction)

	if frame, ok := s.Source.LatestFrame(); ok {
		r.DrawPreview(frame, preview, st.RotationAngle, st.PreviewScale)
	} else {
		msg := "camera off"
		if st.PreviewEnabled {
			msg = "waiting for camera"
		}
		r.DrawTextInRect(msg, preview, render.TextStyle{Size: 36})
	}

	s.drawStatus(r, preview, st)

	s.qrMu.RLock()
	qr := s.qr
	s.qrMu.RUnlock()
	if qr != nil {
		corner := layout.AnchorTopRight(layout.Inset(preview, qrMarginPx), qrCodeSizePx, qrCodeSizePx)
		r.DrawImageInRect(qr, corner)
	}

	labels := []string{s.Labels.Start, s.Labels.Photo, s.Labels.Rotate, s.Labels.End}
	for i, rect := range layout.SplitColumns(layout.Inset(controls, 12), len(labels)) {
		button := layout.Inset(rect, 8)
		face := render.ButtonFace
		if i == 0 && st.PreviewEnabled {
			face = render.ButtonPressed
		}
		r.FillRect(button, face)
		r.StrokeRect(button, render.ButtonBorder, 3)
		r.DrawTextInRect(labels[i], button, render.TextStyle{Size: 40})
	}
}

func (s *CameraScreen) drawStatus(r render.Drawer, preview image.Rectangle, st state.State) {
	style := render.TextStyle{Size: 22}
	var line string
	switch {
	case st.LastError != "":
		line = st.LastError
		style.Color = render.ErrorText
	case st.LastCapture != "":
		line = filepath.Base(st.LastCapture)
	default:
		return
	}
	r.DrawText(line, preview.Min.X+16, preview.Min.Y+12, style)
}
