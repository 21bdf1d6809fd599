//go:build unix

package main

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// redirectStdIO points fd 1 and 2 at path so panics from any goroutine land in
// the file. The returned func syncs the file and is safe to call when path is empty.
func redirectStdIO(path string) (func(), error) {
	if path == "" {
		return func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return func() {}, err
	}
	defer f.Close()

	if err := unix.Dup2(int(f.Fd()), int(os.Stdout.Fd())); err != nil {
		return func() {}, err
	}
	if err := unix.Dup2(int(f.Fd()), int(os.Stderr.Fd())); err != nil {
		return func() {}, err
	}
	fmt.Fprintf(os.Stdout, "--- snapscreen pid %d started %s ---\n", os.Getpid(), time.Now().Format(time.RFC3339))
	return func() { _ = os.Stdout.Sync() }, nil
}
