package vjoy

import "fmt"

// DeviceInfo describes one configured device.
type DeviceInfo struct {
	ID       uint
	Status   Status
	OwnerPID int
}

// Summary is a snapshot of the driver and its devices.
type Summary struct {
	Version      uint16
	Manufacturer string
	Product      string
	SerialNumber string
	MaxDevices   int
	Existing     int
	Devices      []DeviceInfo
}

// Inventory lists the devices drv knows about without acquiring any of them.
func Inventory(drv Driver) (*Summary, error) {
	if !drv.Enabled() {
		return nil, ErrDriverUnavailable
	}
	s := &Summary{
		Version:      drv.Version(),
		Manufacturer: drv.Manufacturer(),
		Product:      drv.Product(),
		SerialNumber: drv.SerialNumber(),
	}
	maxDevices, ok := drv.MaxDevices()
	if !ok {
		return nil, fmt.Errorf("query maximum device count: %w", ErrDriverUnavailable)
	}
	s.MaxDevices = maxDevices
	if s.Existing, ok = drv.ExistingDevices(); !ok {
		return nil, fmt.Errorf("query existing device count: %w", ErrDriverUnavailable)
	}
	for id := uint(1); id <= uint(maxDevices); id++ {
		if !drv.Exists(id) {
			continue
		}
		s.Devices = append(s.Devices, DeviceInfo{ID: id, Status: drv.Status(id), OwnerPID: drv.OwnerPID(id)})
	}
	return s, nil
}
