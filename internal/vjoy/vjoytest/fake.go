// Package vjoytest provides an in-memory vJoy driver for tests.
package vjoytest

import (
	"fmt"

	"joybind/internal/vjoy"
)

// State is the observable control state of one fake device.
type State struct {
	Axes           map[vjoy.Axis]int32
	Buttons        map[uint8]bool
	DiscreteHats   map[uint8]int32
	ContinuousHats map[uint8]int32
}

// FakeDevice is one configured device of a Driver.
type FakeDevice struct {
	Status   vjoy.Status
	OwnerPID int
	Caps     vjoy.Capabilities
	State    State
	// StatusAfterRelinquish overrides the status reported after Relinquish.
	StatusAfterRelinquish *vjoy.Status
}

// Driver is a vjoy.Driver backed by maps. Calls records every driver call by name.
type Driver struct {
	Disabled      bool
	Mismatch      bool
	RefuseAcquire bool
	RefuseWrites  bool
	Max           int
	Devices       map[uint]*FakeDevice
	Calls         []string
}

// New returns an enabled driver with one free device at id exposing caps.
func New(id uint, caps vjoy.Capabilities) *Driver {
	d := &Driver{Max: 16, Devices: make(map[uint]*FakeDevice)}
	d.Add(id, caps)
	return d
}

// Add configures a free device.
func (d *Driver) Add(id uint, caps vjoy.Capabilities) *FakeDevice {
	dev := &FakeDevice{Status: vjoy.StatusFree, Caps: caps}
	dev.State = newState()
	d.Devices[id] = dev
	return dev
}

func newState() State {
	return State{
		Axes:           make(map[vjoy.Axis]int32),
		Buttons:        make(map[uint8]bool),
		DiscreteHats:   make(map[uint8]int32),
		ContinuousHats: make(map[uint8]int32),
	}
}

// Called reports whether the named call was made.
func (d *Driver) Called(name string) bool {
	for _, c := range d.Calls {
		if c == name {
			return true
		}
	}
	return false
}

func (d *Driver) record(format string, args ...any) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

func (d *Driver) Enabled() bool {
	d.record("Enabled")
	return !d.Disabled
}

func (d *Driver) DriverMatch() (bool, uint16, uint16) {
	d.record("DriverMatch")
	if d.Mismatch {
		return false, 0x218, 0x219
	}
	return true, 0x219, 0x219
}

func (d *Driver) Version() uint16         { return 0x219 }
func (d *Driver) Manufacturer() string    { return "Shaul Eizikovich" }
func (d *Driver) Product() string         { return "vJoy - Virtual Joystick" }
func (d *Driver) SerialNumber() string    { return "2.1.9" }
func (d *Driver) MaxDevices() (int, bool) { return d.Max, true }

func (d *Driver) ExistingDevices() (int, bool) { return len(d.Devices), true }

func (d *Driver) Exists(id uint) bool {
	_, ok := d.Devices[id]
	return ok
}

func (d *Driver) Status(id uint) vjoy.Status {
	if dev, ok := d.Devices[id]; ok {
		return dev.Status
	}
	return vjoy.StatusMissing
}

func (d *Driver) OwnerPID(id uint) int {
	if dev, ok := d.Devices[id]; ok {
		return dev.OwnerPID
	}
	return 0
}

func (d *Driver) Acquire(id uint) bool {
	d.record("Acquire")
	dev, ok := d.Devices[id]
	if !ok || d.RefuseAcquire || dev.Status != vjoy.StatusFree {
		return false
	}
	dev.Status = vjoy.StatusOwn
	return true
}

func (d *Driver) Relinquish(id uint) {
	d.record("Relinquish")
	dev, ok := d.Devices[id]
	if !ok {
		return
	}
	if dev.StatusAfterRelinquish != nil {
		dev.Status = *dev.StatusAfterRelinquish
		return
	}
	if dev.Status == vjoy.StatusOwn {
		dev.Status = vjoy.StatusFree
	}
}

func (d *Driver) AxisExists(id uint, axis vjoy.Axis) bool {
	return d.Devices[id].Caps.HasAxis(axis)
}

func (d *Driver) ButtonCount(id uint) int        { return d.Devices[id].Caps.Buttons }
func (d *Driver) DiscreteHatCount(id uint) int   { return d.Devices[id].Caps.DiscreteHats }
func (d *Driver) ContinuousHatCount(id uint) int { return d.Devices[id].Caps.ContinuousHats }

func (d *Driver) write(name string) bool {
	d.record(name)
	return !d.RefuseWrites
}

func (d *Driver) Reset(id uint) bool {
	if !d.write("Reset") {
		return false
	}
	d.Devices[id].State = newState()
	return true
}

func (d *Driver) ResetButtons(id uint) bool {
	if !d.write("ResetButtons") {
		return false
	}
	d.Devices[id].State.Buttons = make(map[uint8]bool)
	return true
}

func (d *Driver) ResetHats(id uint) bool {
	if !d.write("ResetHats") {
		return false
	}
	s := &d.Devices[id].State
	s.DiscreteHats = make(map[uint8]int32)
	s.ContinuousHats = make(map[uint8]int32)
	return true
}

func (d *Driver) SetAxis(value int32, id uint, axis vjoy.Axis) bool {
	if !d.write("SetAxis") {
		return false
	}
	d.Devices[id].State.Axes[axis] = value
	return true
}

func (d *Driver) SetButton(pressed bool, id uint, button uint8) bool {
	if !d.write("SetButton") {
		return false
	}
	d.Devices[id].State.Buttons[button] = pressed
	return true
}

func (d *Driver) SetDiscreteHat(value int32, id uint, hat uint8) bool {
	if !d.write("SetDiscreteHat") {
		return false
	}
	d.Devices[id].State.DiscreteHats[hat] = value
	return true
}

func (d *Driver) SetContinuousHat(value int32, id uint, hat uint8) bool {
	if !d.write("SetContinuousHat") {
		return false
	}
	d.Devices[id].State.ContinuousHats[hat] = value
	return true
}

// Writes counts the calls that change control state.
func (d *Driver) Writes() int {
	n := 0
	for _, c := range d.Calls {
		switch c {
		case "SetAxis", "SetButton", "SetDiscreteHat", "SetContinuousHat", "Reset", "ResetButtons", "ResetHats":
			n++
		}
	}
	return n
}

var _ vjoy.Driver = (*Driver)(nil)
