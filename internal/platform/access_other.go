//go:build !unix

package platform

import "os"

// Best-effort: without access(2), existence is all that can be checked cheaply.
func canReadWrite(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

func canWrite(path string) bool {
	return canReadWrite(path)
}
