//go:build !windows

package window

import "joybind/internal/syserr"

// NewSystem is not available on this platform.
func NewSystem() (System, error) {
	return nil, syserr.ErrUnsupportedPlatform
}
