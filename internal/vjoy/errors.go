package vjoy

import (
	"errors"
	"fmt"
)

var (
	ErrDriverUnavailable   = errors.New("vJoy driver is not enabled")
	ErrVersionMismatch     = errors.New("vJoyInterface library does not match the vJoy driver")
	ErrDeviceNotConfigured = errors.New("vJoy device is not configured and enabled")
	ErrDeviceBusy          = errors.New("vJoy device is owned by another process")
	ErrAcquireFailed       = errors.New("failed to acquire vJoy device")
	ErrUnknownStatus       = errors.New("vJoy device has an unexpected status")
	ErrStillOwned          = errors.New("vJoy device still owned after relinquish")

	ErrOutOfRange       = errors.New("value out of range")
	ErrUnsupportedAxis  = errors.New("axis not available on device")
	ErrInvalidDirection = errors.New("invalid hat direction")
	ErrWriteFailed      = errors.New("driver rejected write")
	ErrSessionClosed    = errors.New("device session is closed")
)

// VersionMismatchError carries the library and driver versions that disagree.
type VersionMismatchError struct {
	LibraryVersion uint16
	DriverVersion  uint16
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("vJoyInterface library (version %#x) does not match vJoy driver (version %#x)", e.LibraryVersion, e.DriverVersion)
}

func (e *VersionMismatchError) Is(target error) bool { return target == ErrVersionMismatch }

// BusyError is returned when another process owns the device.
type BusyError struct {
	ID       uint
	OwnerPID int
}

func (e *BusyError) Error() string {
	return fmt.Sprintf("vJoy device %d is owned by process %d", e.ID, e.OwnerPID)
}

func (e *BusyError) Is(target error) bool { return target == ErrDeviceBusy }

// UnknownStatusError is returned for statuses that are neither own, free nor busy.
type UnknownStatusError struct {
	ID     uint
	Status Status
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("vJoy device %d has status %s", e.ID, e.Status)
}

func (e *UnknownStatusError) Is(target error) bool { return target == ErrUnknownStatus }

// StillOwnedError is returned by Close when the device is not free after relinquishing it.
type StillOwnedError struct {
	ID     uint
	Status Status
}

func (e *StillOwnedError) Error() string {
	return fmt.Sprintf("vJoy device %d has status %s after relinquish", e.ID, e.Status)
}

func (e *StillOwnedError) Is(target error) bool { return target == ErrStillOwned }
