package app

import (
	"context"
	"path/filepath"
	"time"

	"github.com/rook-computer/snapscreen/internal/platform"
	"github.com/rook-computer/snapscreen/internal/state"
)

// DeniedGrace is how long the permission-denied message stays up.
const DeniedGrace = 5 * time.Second

// PermissionGate configures AwaitPermissions.
type PermissionGate struct {
	Profile  platform.Profile
	Interval time.Duration
	Timeout  time.Duration
	Grace    time.Duration

	// Sink is attached to LogName in the profile's storage root when the
	// grants are denied, so the gate's own lines reach the log file.
	Sink    *SinkLogger
	LogName string
}

// AwaitPermissions holds the store in WAITING_PERMISSION until the profile's
// grants are held. On denial the store moves to DENIED, the denied message
// is shown for the grace period, and the returned error wraps
// platform.ErrPermissionDenied.
func (app *App) AwaitPermissions(ctx context.Context, gate PermissionGate) error {
	if !gate.Profile.RequiresGrants {
		return nil
	}
	app.Store.SetPhase(state.WAITING_PERMISSION)
	if _, err := platform.WaitForGrants(ctx, gate.Profile, gate.Interval, gate.Timeout, app.Logger); err != nil {
		app.Store.SetPhase(state.DENIED)
		app.Logger.Errorf("app", "%v", err)
		app.attachDeniedLog(gate)

		grace := gate.Grace
		if grace <= 0 {
			grace = DeniedGrace
		}
		if showErr := app.ShowMessage(ctx, "camera permission denied", "grant camera and storage access, then restart", grace); showErr != nil {
			app.Logger.Errorf("app", "denied message: %v", showErr)
		}
		return err
	}
	app.Store.SetPhase(state.BOOTING)
	return nil
}

func (app *App) attachDeniedLog(gate PermissionGate) {
	if gate.Sink == nil {
		return
	}
	name := gate.LogName
	if name == "" {
		name = DefaultLogName
	}
	dir, err := platform.ResolveStorage(gate.Profile, app.Logger)
	if err != nil {
		app.Logger.Errorf("app", "log file: %v", err)
		return
	}
	if err := gate.Sink.Attach(filepath.Join(dir, name)); err != nil {
		app.Logger.Errorf("app", "log file: %v", err)
	}
}
