//go:build unix

package platform

import "golang.org/x/sys/unix"

func canReadWrite(path string) bool {
	return path != "" && unix.Access(path, unix.R_OK|unix.W_OK) == nil
}

func canWrite(path string) bool {
	return path != "" && unix.Access(path, unix.W_OK) == nil
}
