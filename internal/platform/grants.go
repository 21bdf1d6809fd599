package platform

import (
	"context"
	"fmt"
	"time"
)

const DefaultGrantPollInterval = time.Second

// WaitForGrants polls profile.CheckGrants until every grant is held.
//
// A zero timeout waits until ctx is done. When the wait ends without the
// grants, the returned error wraps ErrPermissionDenied.
func WaitForGrants(ctx context.Context, profile Profile, interval, timeout time.Duration, logger Logger) (Grants, error) {
	if !profile.RequiresGrants || profile.CheckGrants == nil {
		return Grants{Camera: true, StorageWrite: true}, nil
	}
	if interval <= 0 {
		interval = DefaultGrantPollInterval
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last Grants
	logged := false
	for {
		grants, err := profile.CheckGrants(ctx)
		if err != nil {
			if logger != nil {
				logger.Errorf("platform", "grant check failed: %v", err)
			}
		} else {
			last = grants
			if grants.All() {
				if logger != nil {
					logger.Infof("platform", "camera and storage grants held")
				}
				return grants, nil
			}
		}
		if !logged && logger != nil {
			logger.Infof("platform", "waiting for grants (camera=%t storage=%t)", last.Camera, last.StorageWrite)
			logged = true
		}

		select {
		case <-ctx.Done():
			return last, fmt.Errorf("%w: camera=%t storage=%t: %v", ErrPermissionDenied, last.Camera, last.StorageWrite, ctx.Err())
		case <-ticker.C:
		}
	}
}
