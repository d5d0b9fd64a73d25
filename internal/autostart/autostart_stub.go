//go:build !windows

package autostart

import "joybind/internal/syserr"

// NewStore is only available on Windows.
func NewStore() (Store, error) {
	return nil, syserr.ErrUnsupportedPlatform
}
