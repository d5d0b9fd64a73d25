//go:build !windows

package vjoy

import "joybind/internal/syserr"

// Load is not available on this platform.
func Load(path string) (Driver, error) {
	return nil, syserr.ErrUnsupportedPlatform
}
