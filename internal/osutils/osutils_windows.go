//go:build windows

package osutils

import (
	"golang.org/x/sys/windows"

	"joybind/internal/syserr"
	"joybind/internal/window"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow = user32.NewProc("SetForegroundWindow")
)

// IsElevated reports whether the process runs with an elevated token.
// Low-level keyboard hooks do not see input sent to elevated windows unless
// the hooking process is elevated too.
func IsElevated() bool {
	return windows.GetCurrentProcessToken().IsElevated()
}

// ForegroundWindow returns the window that currently receives input.
func ForegroundWindow() (window.Handle, error) {
	r, _, err := procGetForegroundWindow.Call()
	if r == 0 {
		return 0, syserr.New("GetForegroundWindow", err)
	}
	return window.Handle(r), nil
}

// SetForegroundWindow brings h to the front so that it receives the replayed input.
func SetForegroundWindow(h window.Handle) error {
	r, _, err := procSetForegroundWindow.Call(uintptr(h))
	return syserr.Check("SetForegroundWindow", r != 0, err)
}
