//go:build windows

package vjoy

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"joybind/internal/logging"
)

type dll struct {
	lib *windows.LazyDLL
	// procs are looked up once and cached by name.
	procs map[string]*windows.LazyProc
}

// Load binds vJoyInterface.dll at path. An empty path uses DefaultLibraryPath.
func Load(path string) (Driver, error) {
	if path == "" {
		path = DefaultLibraryPath
	}
	lib := windows.NewLazyDLL(path)
	if err := lib.Load(); err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if err := lib.NewProc("vJoyEnabled").Find(); err != nil {
		return nil, fmt.Errorf("%s is not a vJoy interface library: %w", path, err)
	}
	return &dll{lib: lib, procs: make(map[string]*windows.LazyProc)}, nil
}

func (d *dll) call(name string, args ...uintptr) uintptr {
	p, ok := d.procs[name]
	if !ok {
		p = d.lib.NewProc(name)
		d.procs[name] = p
	}
	r, _, _ := p.Call(args...)
	logging.Debugf("vJoy: %s%v = %d", name, args, r)
	return r
}

func (d *dll) callBool(name string, args ...uintptr) bool {
	// BOOL is 32 bits; the upper half of the return register is undefined.
	return uint32(d.call(name, args...)) != 0
}

func (d *dll) callInt(name string, args ...uintptr) int {
	return int(int32(d.call(name, args...)))
}

func (d *dll) callString(name string) string {
	r := d.call(name)
	if r == 0 {
		return ""
	}
	return windows.UTF16PtrToString((*uint16)(unsafe.Pointer(r)))
}

func boolArg(b bool) uintptr {
	if b {
		return 1
	}
	return 0
}

func (d *dll) Enabled() bool { return d.callBool("vJoyEnabled") }

func (d *dll) DriverMatch() (bool, uint16, uint16) {
	var libVer, drvVer uint16
	ok := d.callBool("DriverMatch", uintptr(unsafe.Pointer(&libVer)), uintptr(unsafe.Pointer(&drvVer)))
	return ok, libVer, drvVer
}

func (d *dll) Version() uint16 { return uint16(d.call("GetvJoyVersion")) }

func (d *dll) Manufacturer() string { return d.callString("GetvJoyManufacturerString") }

func (d *dll) Product() string { return d.callString("GetvJoyProductString") }

func (d *dll) SerialNumber() string { return d.callString("GetvJoySerialNumberString") }

func (d *dll) MaxDevices() (int, bool) {
	var n int32
	ok := d.callBool("GetvJoyMaxDevices", uintptr(unsafe.Pointer(&n)))
	return int(n), ok
}

func (d *dll) ExistingDevices() (int, bool) {
	var n int32
	ok := d.callBool("GetNumberExistingVJD", uintptr(unsafe.Pointer(&n)))
	return int(n), ok
}

func (d *dll) Exists(id uint) bool { return d.callBool("isVJDExists", uintptr(id)) }

func (d *dll) Status(id uint) Status { return Status(d.callInt("GetVJDStatus", uintptr(id))) }

func (d *dll) OwnerPID(id uint) int { return d.callInt("GetOwnerPid", uintptr(id)) }

func (d *dll) Acquire(id uint) bool { return d.callBool("AcquireVJD", uintptr(id)) }

func (d *dll) Relinquish(id uint) { d.call("RelinquishVJD", uintptr(id)) }

func (d *dll) AxisExists(id uint, axis Axis) bool {
	return d.callBool("GetVJDAxisExist", uintptr(id), uintptr(axis))
}

func (d *dll) ButtonCount(id uint) int { return d.callInt("GetVJDButtonNumber", uintptr(id)) }

func (d *dll) DiscreteHatCount(id uint) int { return d.callInt("GetVJDDiscPovNumber", uintptr(id)) }

func (d *dll) ContinuousHatCount(id uint) int { return d.callInt("GetVJDContPovNumber", uintptr(id)) }

func (d *dll) Reset(id uint) bool { return d.callBool("ResetVJD", uintptr(id)) }

func (d *dll) ResetButtons(id uint) bool { return d.callBool("ResetButtons", uintptr(id)) }

func (d *dll) ResetHats(id uint) bool { return d.callBool("ResetPovs", uintptr(id)) }

func (d *dll) SetAxis(value int32, id uint, axis Axis) bool {
	return d.callBool("SetAxis", uintptr(value), uintptr(id), uintptr(axis))
}

func (d *dll) SetButton(pressed bool, id uint, button uint8) bool {
	return d.callBool("SetBtn", boolArg(pressed), uintptr(id), uintptr(button))
}

func (d *dll) SetDiscreteHat(value int32, id uint, hat uint8) bool {
	return d.callBool("SetDiscPov", uintptr(uint32(value)), uintptr(id), uintptr(hat))
}

func (d *dll) SetContinuousHat(value int32, id uint, hat uint8) bool {
	// DWORD parameter: neutral (-1) goes over as 0xFFFFFFFF.
	return d.callBool("SetContPov", uintptr(uint32(value)), uintptr(id), uintptr(hat))
}
