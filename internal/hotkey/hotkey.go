// Package hotkey watches global key and mouse button state and fires
// callbacks when a registered combination is pressed.
package hotkey

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"joybind/internal/binding"
)

// Manager handles global hotkey registration and matching
type Manager struct {
	mu      sync.Mutex
	hotkeys []*registeredHotkey
	// pressed holds, per key name, the physical keys currently down that
	// report that name; left and right modifiers share one name.
	pressed map[string]map[uint32]bool
	stop    func()
}

type registeredHotkey struct {
	parts    []string // e.g. ["CTRL", "ALT", "MOUSE4"]
	original string
	callback func()
}

// NewManager creates a new hotkey manager
func NewManager() *Manager {
	return &Manager{pressed: make(map[string]map[uint32]bool)}
}

// ParseCombo splits a combination such as "Ctrl+Alt+F1" into upper-case key names.
func ParseCombo(combo string) ([]string, error) {
	if strings.TrimSpace(combo) == "" {
		return nil, fmt.Errorf("empty hotkey")
	}
	parts := strings.Split(strings.ToUpper(combo), "+")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !IsKeyName(p) {
			return nil, fmt.Errorf("hotkey %q: unknown key %q", combo, p)
		}
		parts[i] = p
	}
	return parts, nil
}

// Register adds a combination and the callback it triggers.
func (m *Manager) Register(combo string, callback func()) error {
	parts, err := ParseCombo(combo)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = append(m.hotkeys, &registeredHotkey{parts: parts, original: combo, callback: callback})
	return nil
}

// BindAll registers the hotkey of every binding that has one. Bindings with
// invalid hotkeys are logged and skipped. It returns how many were registered.
func (m *Manager) BindAll(bindings []binding.Binding, replay func(binding.Binding)) int {
	n := 0
	for _, b := range bindings {
		if b.Hotkey == "" {
			continue
		}
		b := b
		if err := m.Register(b.Hotkey, func() { replay(b) }); err != nil {
			log.Printf("Hotkey: binding %q: %v", b.Name, err)
			continue
		}
		n++
	}
	return n
}

// Clear removes all registered hotkeys
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hotkeys = nil
}

// UpdateState records a transition of the key or button called key. A
// combination fires once when the key that completes it goes down; auto-repeat
// does not fire it again.
func (m *Manager) UpdateState(key string, isDown bool) {
	m.update(strings.ToUpper(key), 0, isDown)
}

// UpdateKey records a transition of the virtual-key code vk. A name stays held
// while any physical key reporting it is down.
func (m *Manager) UpdateKey(vk uint32, isDown bool) {
	if name := vkCodeToName(vk); name != "" {
		m.update(name, vk, isDown)
	}
}

func (m *Manager) update(key string, source uint32, isDown bool) {
	m.mu.Lock()
	wasDown := m.isDown(key)
	if isDown {
		if m.pressed[key] == nil {
			m.pressed[key] = make(map[uint32]bool)
		}
		m.pressed[key][source] = true
	} else {
		delete(m.pressed[key], source)
		if len(m.pressed[key]) == 0 {
			delete(m.pressed, key)
		}
	}
	var fire []*registeredHotkey
	if isDown && !wasDown {
		fire = m.matches(key)
	}
	m.mu.Unlock()

	for _, hk := range fire {
		log.Printf("Hotkey triggered: %s", hk.original)
		go hk.callback()
	}
}

// isDown reports whether any source of key is held. m.mu must be held.
func (m *Manager) isDown(key string) bool {
	return len(m.pressed[key]) > 0
}

// matches returns the hotkeys that contain key and are fully held. m.mu must be held.
func (m *Manager) matches(key string) []*registeredHotkey {
	var out []*registeredHotkey
	for _, hk := range m.hotkeys {
		contains, all := false, true
		for _, part := range hk.parts {
			if part == key {
				contains = true
			}
			if !m.isDown(part) {
				all = false
				break
			}
		}
		if contains && all {
			out = append(out, hk)
		}
	}
	return out
}

// Start installs the platform's global hooks. It returns once they are running.
func (m *Manager) Start() error {
	stop, err := m.startPlatform()
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.stop = stop
	m.mu.Unlock()
	return nil
}

// Stop removes the hooks installed by Start.
func (m *Manager) Stop() {
	m.mu.Lock()
	stop := m.stop
	m.stop = nil
	m.mu.Unlock()
	if stop != nil {
		stop()
	}
}
