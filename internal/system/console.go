package system

type logger interface {
	Infof(string, string, ...interface{})
	Errorf(string, string, ...interface{})
}

// EnterGraphicsConsole puts the VT into graphics mode and hides the cursor.
// The returned func undoes both; it is safe to call when entering failed.
func EnterGraphicsConsole(l logger) (restore func()) {
	if err := SetGraphicsMode(); err != nil {
		logf(l, true, "KD_GRAPHICS failed: %v", err)
	} else {
		logf(l, false, "KD_GRAPHICS set")
	}
	if err := HideCursor(); err != nil {
		logf(l, true, "hide cursor failed: %v", err)
	}
	return func() {
		if err := ShowCursor(); err != nil {
			logf(l, true, "show cursor failed: %v", err)
		}
		if err := RestoreTextMode(); err != nil {
			logf(l, true, "KD_TEXT failed: %v", err)
		} else {
			logf(l, false, "KD_TEXT set")
		}
	}
}

func logf(l logger, isErr bool, format string, args ...interface{}) {
	if l == nil {
		return
	}
	if isErr {
		l.Errorf("tty", format, args...)
		return
	}
	l.Infof("tty", format, args...)
}
