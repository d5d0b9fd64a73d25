package vjoy

import (
	"fmt"
	"log"

	"joybind/internal/logging"
)

// Device is an owned vJoy device. Open acquires it; Close relinquishes it.
type Device struct {
	drv    Driver
	id     uint
	caps   Capabilities
	closed bool
}

// Open acquires device id through drv and caches its capabilities.
// Opening a device this process already owns succeeds without re-acquiring it.
func Open(drv Driver, id uint) (*Device, error) {
	if !drv.Enabled() {
		return nil, ErrDriverUnavailable
	}
	log.Printf("vJoy: version %#x, vendor %q, product %q, serial %q",
		drv.Version(), drv.Manufacturer(), drv.Product(), drv.SerialNumber())

	if ok, libVer, drvVer := drv.DriverMatch(); !ok {
		return nil, &VersionMismatchError{LibraryVersion: libVer, DriverVersion: drvVer}
	}
	if !drv.Exists(id) {
		return nil, fmt.Errorf("%w: device %d", ErrDeviceNotConfigured, id)
	}

	status := drv.Status(id)
	owner := drv.OwnerPID(id)
	logging.Debugf("vJoy: device %d status=%s pid=%d", id, status, owner)
	switch status {
	case StatusOwn:
	case StatusFree:
		if !drv.Acquire(id) {
			return nil, fmt.Errorf("%w: device %d", ErrAcquireFailed, id)
		}
	case StatusBusy:
		return nil, &BusyError{ID: id, OwnerPID: owner}
	default:
		return nil, &UnknownStatusError{ID: id, Status: status}
	}

	d := &Device{drv: drv, id: id, caps: queryCapabilities(drv, id)}
	log.Printf("vJoy: device %d acquired: axes %v, %d buttons, %d discrete hats, %d continuous hats",
		id, d.caps.Axes, d.caps.Buttons, d.caps.DiscreteHats, d.caps.ContinuousHats)
	return d, nil
}

func queryCapabilities(drv Driver, id uint) Capabilities {
	var caps Capabilities
	for _, a := range Axes {
		if drv.AxisExists(id, a) {
			caps.Axes = append(caps.Axes, a)
		}
	}
	caps.Buttons = drv.ButtonCount(id)
	caps.DiscreteHats = drv.DiscreteHatCount(id)
	caps.ContinuousHats = drv.ContinuousHatCount(id)
	return caps
}

// ID returns the device number.
func (d *Device) ID() uint { return d.id }

// Capabilities returns the controls cached when the device was opened.
func (d *Device) Capabilities() Capabilities {
	caps := d.caps
	caps.Axes = append([]Axis(nil), d.caps.Axes...)
	return caps
}

// Close relinquishes the device. It always asks the driver to relinquish, even
// when called twice, and returns a *StillOwnedError if the device is not free
// afterwards.
func (d *Device) Close() error {
	d.closed = true
	d.drv.Relinquish(d.id)
	if status := d.drv.Status(d.id); status != StatusFree {
		return &StillOwnedError{ID: d.id, Status: status}
	}
	log.Printf("vJoy: device %d relinquished", d.id)
	return nil
}

func (d *Device) check(ok bool, op string) error {
	if !ok {
		return fmt.Errorf("%w: %s on device %d", ErrWriteFailed, op, d.id)
	}
	return nil
}

// Reset returns every control to its default value.
func (d *Device) Reset() error {
	if d.closed {
		return ErrSessionClosed
	}
	return d.check(d.drv.Reset(d.id), "reset")
}

// ResetButtons releases every button.
func (d *Device) ResetButtons() error {
	if d.closed {
		return ErrSessionClosed
	}
	return d.check(d.drv.ResetButtons(d.id), "reset buttons")
}

// ResetHats centers every hat.
func (d *Device) ResetHats() error {
	if d.closed {
		return ErrSessionClosed
	}
	return d.check(d.drv.ResetHats(d.id), "reset hats")
}

// SetAxis writes value (AxisMin..AxisMax) to axis.
func (d *Device) SetAxis(axis Axis, value int) error {
	if d.closed {
		return ErrSessionClosed
	}
	if !d.caps.HasAxis(axis) {
		return fmt.Errorf("%w: %s", ErrUnsupportedAxis, axis)
	}
	if value < AxisMin || value > AxisMax {
		return fmt.Errorf("%w: axis value %d not in [%d, %d]", ErrOutOfRange, value, AxisMin, AxisMax)
	}
	return d.check(d.drv.SetAxis(int32(value), d.id, axis), "set axis "+axis.String())
}

// SetButton presses or releases button n, counted from 1.
func (d *Device) SetButton(n int, pressed bool) error {
	if d.closed {
		return ErrSessionClosed
	}
	if n < 1 || n > d.caps.Buttons {
		return fmt.Errorf("%w: button %d not in [1, %d]", ErrOutOfRange, n, d.caps.Buttons)
	}
	return d.check(d.drv.SetButton(pressed, d.id, uint8(n)), fmt.Sprintf("set button %d", n))
}

// SetDiscreteHat points discrete hat n, counted from 1, in direction dir.
func (d *Device) SetDiscreteHat(n int, dir HatDirection) error {
	if d.closed {
		return ErrSessionClosed
	}
	if n < 1 || n > d.caps.DiscreteHats {
		return fmt.Errorf("%w: discrete hat %d not in [1, %d]", ErrOutOfRange, n, d.caps.DiscreteHats)
	}
	if !dir.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}
	return d.check(d.drv.SetDiscreteHat(int32(dir), d.id, uint8(n)), fmt.Sprintf("set discrete hat %d", n))
}

// SetContinuousHat sets continuous hat n, counted from 1, to value hundredths
// of a degree. ContinuousHatNeutral centers it.
func (d *Device) SetContinuousHat(n int, value int) error {
	if d.closed {
		return ErrSessionClosed
	}
	if n < 1 || n > d.caps.ContinuousHats {
		return fmt.Errorf("%w: continuous hat %d not in [1, %d]", ErrOutOfRange, n, d.caps.ContinuousHats)
	}
	if value < ContinuousHatNeutral || value > ContinuousHatMax {
		return fmt.Errorf("%w: continuous hat value %d not in [%d, %d]", ErrOutOfRange, value, ContinuousHatNeutral, ContinuousHatMax)
	}
	return d.check(d.drv.SetContinuousHat(int32(value), d.id, uint8(n)), fmt.Sprintf("set continuous hat %d", n))
}
