//go:build !windows

package hotkey

import "joybind/internal/syserr"

func (m *Manager) startPlatform() (func(), error) {
	return nil, syserr.ErrUnsupportedPlatform
}
