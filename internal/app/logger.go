package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// LogTimeLayout matches the "asctime" style used in the log file.
const LogTimeLayout = "2006-01-02 15:04:05,000"

// DefaultLogName is the log file created inside the storage directory.
const DefaultLogName = "my_kivy_app.log"

// maxHistory bounds the lines kept before a file is attached.
const maxHistory = 4096

// Logger is the component logger shared by every package.
type Logger interface {
	Infof(component string, format string, args ...interface{})
	Errorf(component string, format string, args ...interface{})
}

type NoopLogger struct{}

func (NoopLogger) Infof(component, format string, args ...interface{})  {}
func (NoopLogger) Errorf(component, format string, args ...interface{}) {}

func formatLine(at time.Time, level, component, format string, args ...interface{}) string {
	msg := fmt.Sprintf(format, args...)
	return at.Format(LogTimeLayout) + " - " + level + " - " + component + ": " + strings.TrimRight(msg, "\n") + "\n"
}

// SinkLogger is the process-wide logger. Lines logged before a file is
// attached are kept in memory and written out by Attach, so the log file
// holds the whole run including the permission gate.
type SinkLogger struct {
	// Echo receives every line as it is logged; nil disables echoing.
	Echo io.Writer
	Now  func() time.Time

	mu      sync.Mutex
	history []string
	dropped int
	file    *os.File
	path    string
	closed  bool
}

func NewSinkLogger(echo io.Writer) *SinkLogger {
	return &SinkLogger{Echo: echo, Now: time.Now}
}

func (l *SinkLogger) Infof(component string, format string, args ...interface{}) {
	l.log("INFO", component, format, args...)
}

func (l *SinkLogger) Errorf(component string, format string, args ...interface{}) {
	l.log("ERROR", component, format, args...)
}

func (l *SinkLogger) log(level, component, format string, args ...interface{}) {
	now := time.Now
	if l.Now != nil {
		now = l.Now
	}
	line := formatLine(now(), level, component, format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Echo != nil {
		_, _ = io.WriteString(l.Echo, line)
	}
	if l.closed {
		return
	}
	if l.file != nil {
		_, _ = l.file.WriteString(line)
		return
	}
	if len(l.history) >= maxHistory {
		l.history = l.history[1:]
		l.dropped++
	}
	l.history = append(l.history, line)
}

// Attach opens path for appending and flushes the buffered history into it.
// Only the first successful call takes effect.
func (l *SinkLogger) Attach(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return fmt.Errorf("log sink closed")
	}
	if l.file != nil {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	if l.dropped > 0 {
		_, _ = f.WriteString(formatLine(time.Now(), "INFO", "log", "%d early lines dropped", l.dropped))
	}
	for _, line := range l.history {
		if _, err := f.WriteString(line); err != nil {
			_ = f.Close()
			return fmt.Errorf("flush log history: %w", err)
		}
	}
	l.history = nil
	l.dropped = 0
	l.file = f
	l.path = path
	return nil
}

// Path returns the attached file path, or "" before Attach.
func (l *SinkLogger) Path() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.path
}

// Close syncs and closes the attached file. Later lines still echo.
func (l *SinkLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if l.file == nil {
		return nil
	}
	syncErr := l.file.Sync()
	closeErr := l.file.Close()
	l.file = nil
	if syncErr != nil {
		return syncErr
	}
	return closeErr
}
