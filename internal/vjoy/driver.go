package vjoy

// DefaultLibraryPath is where the vJoy installer puts the 64-bit interface library.
const DefaultLibraryPath = `C:\Program Files\vJoy\x64\vJoyInterface.dll`

// Driver is the vJoyInterface API. Boolean results are the driver's own
// success flags; interpreting them is left to Device.
type Driver interface {
	Enabled() bool
	// DriverMatch reports whether the library and driver versions agree.
	DriverMatch() (ok bool, libraryVersion, driverVersion uint16)
	Version() uint16
	Manufacturer() string
	Product() string
	SerialNumber() string
	MaxDevices() (int, bool)
	ExistingDevices() (int, bool)

	Exists(id uint) bool
	Status(id uint) Status
	OwnerPID(id uint) int
	Acquire(id uint) bool
	Relinquish(id uint)

	AxisExists(id uint, axis Axis) bool
	ButtonCount(id uint) int
	DiscreteHatCount(id uint) int
	ContinuousHatCount(id uint) int

	Reset(id uint) bool
	ResetButtons(id uint) bool
	ResetHats(id uint) bool
	SetAxis(value int32, id uint, axis Axis) bool
	SetButton(pressed bool, id uint, button uint8) bool
	SetDiscreteHat(value int32, id uint, hat uint8) bool
	SetContinuousHat(value int32, id uint, hat uint8) bool
}
