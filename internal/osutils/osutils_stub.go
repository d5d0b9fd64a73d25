//go:build !windows

package osutils

import (
	"joybind/internal/syserr"
	"joybind/internal/window"
)

// IsElevated is a stub for non-Windows platforms
func IsElevated() bool {
	return false
}

// ForegroundWindow is a stub for non-Windows platforms
func ForegroundWindow() (window.Handle, error) {
	return 0, syserr.ErrUnsupportedPlatform
}

// SetForegroundWindow is a stub for non-Windows platforms
func SetForegroundWindow(h window.Handle) error {
	return syserr.ErrUnsupportedPlatform
}
