//go:build !unix

package main

import (
	"fmt"
	"os"
	"time"
)

// redirectStdIO swaps os.Stdout/os.Stderr for path. Runtime panics still go to
// the original stderr on these platforms.
func redirectStdIO(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return func() {}, err
	}
	os.Stdout = f
	os.Stderr = f
	fmt.Fprintf(f, "--- snapscreen pid %d started %s ---\n", os.Getpid(), time.Now().Format(time.RFC3339))
	return func() {
		_ = f.Sync()
		_ = f.Close()
	}, nil
}
