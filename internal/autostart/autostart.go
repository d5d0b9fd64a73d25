// Package autostart starts joybind's tray mode when the user logs in.
package autostart

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ValueName is the name joybind registers itself under.
const ValueName = "joybind"

// Store holds per-user login commands keyed by name.
type Store interface {
	Get(name string) (string, error)
	Set(name, command string) error
	Delete(name string) error
}

// ErrNotRegistered is returned by Store.Get when name has no entry.
var ErrNotRegistered = errors.New("autostart entry not registered")

// Command quotes exe and appends args the way the Windows shell expects.
func Command(exe string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{exe}, args...) {
		if a == "" || strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Entry manages the login command for one executable.
type Entry struct {
	store   Store
	command string
}

// NewEntry describes running the current executable with args at login.
func NewEntry(store Store, args ...string) (*Entry, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	return &Entry{store: store, command: Command(exe, args...)}, nil
}

// Command returns the command line that is registered on Enable.
func (e *Entry) Command() string { return e.command }

// Enable registers the command, replacing a stale one.
func (e *Entry) Enable() error {
	return e.store.Set(ValueName, e.command)
}

// Disable removes the command. Disabling an absent entry is not an error.
func (e *Entry) Disable() error {
	if err := e.store.Delete(ValueName); err != nil && !errors.Is(err, ErrNotRegistered) {
		return err
	}
	return nil
}

// IsEnabled reports whether this exact command is registered.
func (e *Entry) IsEnabled() bool {
	cmd, err := e.store.Get(ValueName)
	return err == nil && cmd == e.command
}

// Toggle flips the entry and returns the new state.
func (e *Entry) Toggle() (bool, error) {
	if e.IsEnabled() {
		return false, e.Disable()
	}
	return true, e.Enable()
}
