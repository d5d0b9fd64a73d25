//go:build !windows

package capture

import "joybind/internal/syserr"

// NewGraphics is not available on this platform.
func NewGraphics(fullContent bool) (Graphics, error) {
	return nil, syserr.ErrUnsupportedPlatform
}

// NewDisplay returns a display that cannot be opened on this platform.
func NewDisplay() Display { return unsupportedDisplay{} }

type unsupportedDisplay struct{}

func (unsupportedDisplay) Open() (DisplaySession, error) {
	return nil, syserr.ErrUnsupportedPlatform
}
