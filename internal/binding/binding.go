// Package binding records named control writes and replays them on a device.
package binding

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"joybind/internal/vjoy"
)

// Control is the kind of control a binding writes.
type Control string

const (
	ControlAxis          Control = "axis"
	ControlButton        Control = "button"
	ControlDiscreteHat   Control = "dhat"
	ControlContinuousHat Control = "chat"
)

// Controls lists the control kinds in the order they are offered to the operator.
var Controls = []Control{ControlAxis, ControlButton, ControlDiscreteHat, ControlContinuousHat}

var (
	ErrUnknownControl = errors.New("unknown control")
	ErrNoName         = errors.New("binding has no name")
	ErrNotFound       = errors.New("binding not found")
)

// Setter is the part of a device session a binding writes through.
// *vjoy.Device implements it.
type Setter interface {
	SetAxis(axis vjoy.Axis, value int) error
	SetButton(n int, pressed bool) error
	SetDiscreteHat(n int, dir vjoy.HatDirection) error
	SetContinuousHat(n int, value int) error
}

// Binding is one recorded write: Target is an axis name for axis bindings and
// a 1-based control number otherwise. Value is the axis value, 1/0 for a
// pressed/released button, a HatDirection, or hundredths of a degree.
type Binding struct {
	Name    string  `yaml:"name"`
	Control Control `yaml:"control"`
	Target  string  `yaml:"target"`
	Value   int     `yaml:"value"`
	Hotkey  string  `yaml:"hotkey,omitempty"`
}

// Axis binds an axis write.
func Axis(name string, axis vjoy.Axis, value int) Binding {
	return Binding{Name: name, Control: ControlAxis, Target: axis.String(), Value: value}
}

// Button binds a button write.
func Button(name string, n int, pressed bool) Binding {
	v := 0
	if pressed {
		v = 1
	}
	return Binding{Name: name, Control: ControlButton, Target: strconv.Itoa(n), Value: v}
}

// DiscreteHat binds a discrete hat write.
func DiscreteHat(name string, n int, dir vjoy.HatDirection) Binding {
	return Binding{Name: name, Control: ControlDiscreteHat, Target: strconv.Itoa(n), Value: int(dir)}
}

// ContinuousHat binds a continuous hat write.
func ContinuousHat(name string, n int, value int) Binding {
	return Binding{Name: name, Control: ControlContinuousHat, Target: strconv.Itoa(n), Value: value}
}

func (b Binding) number() (int, error) {
	n, err := strconv.Atoi(b.Target)
	if err != nil {
		return 0, fmt.Errorf("binding %q: %s target %q is not a number", b.Name, b.Control, b.Target)
	}
	return n, nil
}

// Validate checks that the binding is named and well formed. Ranges are
// checked by the device when the binding is applied.
func (b Binding) Validate() error {
	if b.Name == "" {
		return ErrNoName
	}
	return b.checkTarget()
}

func (b Binding) checkTarget() error {
	switch b.Control {
	case ControlAxis:
		if _, err := vjoy.ParseAxis(b.Target); err != nil {
			return fmt.Errorf("binding %q: %w", b.Name, err)
		}
	case ControlButton, ControlDiscreteHat, ControlContinuousHat:
		if _, err := b.number(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("binding %q: %w %q", b.Name, ErrUnknownControl, b.Control)
	}
	return nil
}

// Apply performs the recorded write on dev. Unnamed bindings can be applied.
func (b Binding) Apply(dev Setter) error {
	if err := b.checkTarget(); err != nil {
		return err
	}
	if b.Control == ControlAxis {
		axis, _ := vjoy.ParseAxis(b.Target)
		return dev.SetAxis(axis, b.Value)
	}
	n, _ := b.number()
	switch b.Control {
	case ControlButton:
		return dev.SetButton(n, b.Value != 0)
	case ControlDiscreteHat:
		return dev.SetDiscreteHat(n, vjoy.HatDirection(b.Value))
	default:
		return dev.SetContinuousHat(n, b.Value)
	}
}

// String renders the binding as the call it replays, e.g. "set_button(3, true)".
func (b Binding) String() string {
	switch b.Control {
	case ControlAxis:
		return fmt.Sprintf("set_axis(%s, %d)", b.Target, b.Value)
	case ControlButton:
		return fmt.Sprintf("set_button(%s, %t)", b.Target, b.Value != 0)
	case ControlDiscreteHat:
		return fmt.Sprintf("set_discrete_hat(%s, %s)", b.Target, vjoy.HatDirection(b.Value))
	case ControlContinuousHat:
		return fmt.Sprintf("set_continuous_hat(%s, %d)", b.Target, b.Value)
	}
	return fmt.Sprintf("%s(%s, %d)", b.Control, b.Target, b.Value)
}

// Set maps binding names to bindings. It is safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	items map[string]Binding
}

// NewSet creates an empty set.
func NewSet() *Set {
	return &Set{items: make(map[string]Binding)}
}

// Put validates b and stores it under its name, replacing any previous binding.
func (s *Set) Put(b Binding) error {
	if err := b.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[b.Name] = b
	return nil
}

// Get returns the binding called name.
func (s *Set) Get(name string) (Binding, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[name]
	return b, ok
}

// Remove deletes the binding called name.
func (s *Set) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, name)
}

// Len returns the number of bindings.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// All returns the bindings sorted by name.
func (s *Set) All() []Binding {
	s.mu.RLock()
	out := make([]Binding, 0, len(s.items))
	for _, b := range s.items {
		out = append(out, b)
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Replace swaps in the contents of other, e.g. after the file was reloaded.
func (s *Set) Replace(other *Set) {
	items := make(map[string]Binding)
	for _, b := range other.All() {
		items[b.Name] = b
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Replay applies the binding called name to dev.
func (s *Set) Replay(name string, dev Setter) error {
	b, ok := s.Get(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return b.Apply(dev)
}
