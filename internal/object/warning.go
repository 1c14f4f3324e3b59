package object

import "sync/atomic"

// globalWarningDisplay gates every warning and debug message emitted through
// this package. It starts enabled; cmd/image-pad-mcp sets it once at startup
// from configuration.
var globalWarningDisplay = func() *atomic.Bool {
	b := &atomic.Bool{}
	b.Store(true)
	return b
}()

// SetGlobalWarningDisplay enables or disables diagnostic output process-wide.
func SetGlobalWarningDisplay(flag bool) {
	globalWarningDisplay.Store(flag)
}

// GlobalWarningDisplay reports whether diagnostic output is enabled.
func GlobalWarningDisplay() bool {
	return globalWarningDisplay.Load()
}

// GlobalWarningDisplayOn enables diagnostic output process-wide.
func GlobalWarningDisplayOn() { SetGlobalWarningDisplay(true) }

// GlobalWarningDisplayOff disables diagnostic output process-wide.
func GlobalWarningDisplayOff() { SetGlobalWarningDisplay(false) }
