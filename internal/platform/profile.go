// Package platform isolates everything that differs between the targets the
// camera screen runs on: default rotation, preview scale, where captures are
// stored, and whether OS grants must be awaited before the UI starts.
package platform

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	Desktop = "desktop"
	Windows = "windows"
	Android = "android"
)

var (
	ErrPermissionDenied   = errors.New("permission denied")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

// Grants reports which OS capabilities the process currently holds.
type Grants struct {
	Camera       bool
	StorageWrite bool
}

func (grants Grants) All() bool { return grants.Camera && grants.StorageWrite }

// Profile is the single injected value describing a target platform.
type Profile struct {
	Name            string
	DefaultRotation int
	PreviewScale    float64

	// RequiresGrants gates UI startup on CheckGrants reporting All().
	RequiresGrants bool
	CheckGrants    func(ctx context.Context) (Grants, error)

	// StorageRoot resolves the directory captures and the log file go to.
	StorageRoot func() (string, error)
}

// AndroidOptions locates the app's storage and camera on an Android device.
type AndroidOptions struct {
	Package         string
	CameraDevice    string
	ExternalStorage string
	PrivateRoot     string
}

func (opts AndroidOptions) withDefaults() AndroidOptions {
	out := opts
	if out.Package == "" {
		out.Package = "org.rookcomputer.snapscreen"
	}
	if out.CameraDevice == "" {
		out.CameraDevice = "/dev/video0"
	}
	if out.ExternalStorage == "" {
		out.ExternalStorage = os.Getenv("EXTERNAL_STORAGE")
	}
	if out.ExternalStorage == "" {
		out.ExternalStorage = "/sdcard"
	}
	if out.PrivateRoot == "" {
		out.PrivateRoot = "/data/data"
	}
	return out
}

func DesktopProfile() Profile {
	return Profile{
		Name:            Desktop,
		DefaultRotation: 0,
		PreviewScale:    1,
		StorageRoot:     workingDirectory,
	}
}

func WindowsProfile() Profile {
	return Profile{
		Name:            Windows,
		DefaultRotation: 0,
		PreviewScale:    1.5,
		StorageRoot:     workingDirectory,
	}
}

// AndroidProfile compensates for the sideways-mounted sensor with a 270 degree
// default rotation. Verify this per device class.
func AndroidProfile(opts AndroidOptions) Profile {
	opts = opts.withDefaults()
	return Profile{
		Name:            Android,
		DefaultRotation: 270,
		PreviewScale:    2,
		RequiresGrants:  true,
		CheckGrants: func(ctx context.Context) (Grants, error) {
			return Grants{
				Camera:       canReadWrite(opts.CameraDevice),
				StorageWrite: canWrite(opts.ExternalStorage),
			}, nil
		},
		StorageRoot: func() (string, error) { return androidStorageRoot(opts) },
	}
}

// Detect picks the profile for goos (usually runtime.GOOS).
func Detect(goos string, android AndroidOptions) Profile {
	switch goos {
	case "android":
		return AndroidProfile(android)
	case "windows":
		return WindowsProfile()
	default:
		return DesktopProfile()
	}
}

// ByName resolves an explicit -platform choice; empty means Detect(runtime.GOOS).
func ByName(name string, android AndroidOptions) (Profile, error) {
	switch name {
	case "":
		return Detect(runtime.GOOS, android), nil
	case Desktop:
		return DesktopProfile(), nil
	case Windows:
		return WindowsProfile(), nil
	case Android:
		return AndroidProfile(android), nil
	default:
		return Profile{}, fmt.Errorf("unknown platform %q", name)
	}
}

func workingDirectory() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return ".", nil
	}
	return wd, nil
}

// androidStorageRoot prefers the app's directory on external storage and falls
// back to the app-private files directory.
func androidStorageRoot(opts AndroidOptions) (string, error) {
	external := filepath.Join(opts.ExternalStorage, "Android", "data", opts.Package, "files")
	externalErr := os.MkdirAll(external, 0o755)
	if externalErr == nil {
		return external, nil
	}

	private := filepath.Join(opts.PrivateRoot, opts.Package, "files")
	privateErr := os.MkdirAll(private, 0o700)
	if privateErr == nil {
		return private, nil
	}
	return "", fmt.Errorf("%w: external %s: %v; private %s: %v", ErrStorageUnavailable, external, externalErr, private, privateErr)
}

// ResolveStorage runs the profile's StorageRoot and returns an absolute path.
func ResolveStorage(profile Profile, logger Logger) (string, error) {
	if profile.StorageRoot == nil {
		profile.StorageRoot = workingDirectory
	}
	root, err := profile.StorageRoot()
	if err != nil {
		if logger != nil {
			logger.Errorf("platform", "storage resolution failed: %v", err)
		}
		return "", err
	}
	if abs, absErr := filepath.Abs(root); absErr == nil {
		root = abs
	}
	if logger != nil {
		logger.Infof("platform", "storage path %s (%s)", root, profile.Name)
	}
	return root, nil
}
