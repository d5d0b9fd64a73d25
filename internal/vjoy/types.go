// Package vjoy drives vJoy virtual joystick devices through vJoyInterface.dll.
package vjoy

import (
	"fmt"
	"strings"
)

// Axis is the HID usage of a joystick axis.
type Axis uint32

const (
	AxisX       Axis = 0x30
	AxisY       Axis = 0x31
	AxisZ       Axis = 0x32
	AxisRX      Axis = 0x33
	AxisRY      Axis = 0x34
	AxisRZ      Axis = 0x35
	AxisSlider0 Axis = 0x36
	AxisSlider1 Axis = 0x37
	AxisWheel   Axis = 0x38
	AxisPOV     Axis = 0x39
)

// Axes lists every axis usage a device may expose, in usage order.
var Axes = []Axis{AxisX, AxisY, AxisZ, AxisRX, AxisRY, AxisRZ, AxisSlider0, AxisSlider1, AxisWheel, AxisPOV}

var axisNames = map[Axis]string{
	AxisX:       "X",
	AxisY:       "Y",
	AxisZ:       "Z",
	AxisRX:      "RX",
	AxisRY:      "RY",
	AxisRZ:      "RZ",
	AxisSlider0: "SL0",
	AxisSlider1: "SL1",
	AxisWheel:   "WHL",
	AxisPOV:     "POV",
}

func (a Axis) String() string {
	if name, ok := axisNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Axis(%#x)", uint32(a))
}

// ParseAxis accepts an axis name such as "RX" (case-insensitive).
func ParseAxis(s string) (Axis, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, a := range Axes {
		if axisNames[a] == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("unknown axis %q", s)
}

// Axis value limits.
const (
	AxisMin = 1
	AxisMax = 0x8000
)

// Continuous hat limits, in hundredths of a degree. -1 is neutral.
const (
	ContinuousHatNeutral = -1
	ContinuousHatMax     = 35999
)

// HatDirection is the position of a discrete (4-way) hat.
type HatDirection int

const (
	HatNeutral HatDirection = -1
	HatNorth   HatDirection = 0
	HatEast    HatDirection = 1
	HatSouth   HatDirection = 2
	HatWest    HatDirection = 3
)

// HatDirections lists the valid discrete hat values.
var HatDirections = []HatDirection{HatNeutral, HatNorth, HatEast, HatSouth, HatWest}

func (d HatDirection) String() string {
	switch d {
	case HatNeutral:
		return "Neutral"
	case HatNorth:
		return "North"
	case HatEast:
		return "East"
	case HatSouth:
		return "South"
	case HatWest:
		return "West"
	}
	return fmt.Sprintf("HatDirection(%d)", int(d))
}

// Valid reports whether d is one of the five discrete hat positions.
func (d HatDirection) Valid() bool {
	return d >= HatNeutral && d <= HatWest
}

// ParseHatDirection accepts a direction name such as "south" (case-insensitive).
func ParseHatDirection(s string) (HatDirection, error) {
	for _, d := range HatDirections {
		if strings.EqualFold(d.String(), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown hat direction %q", s)
}

// Status is the ownership state of a device as reported by the driver.
type Status int

const (
	StatusOwn     Status = 0 // owned by this process
	StatusFree    Status = 1
	StatusBusy    Status = 2 // owned by another process
	StatusMissing Status = 3
	StatusUnknown Status = 4
)

func (s Status) String() string {
	switch s {
	case StatusOwn:
		return "own"
	case StatusFree:
		return "free"
	case StatusBusy:
		return "busy"
	case StatusMissing:
		return "missing"
	case StatusUnknown:
		return "unknown"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Capabilities is what a device declares. It does not change while a session is open.
type Capabilities struct {
	Axes           []Axis
	Buttons        int
	DiscreteHats   int
	ContinuousHats int
}

// HasAxis reports whether a is among the device's axes.
func (c Capabilities) HasAxis(a Axis) bool {
	for _, x := range c.Axes {
		if x == a {
			return true
		}
	}
	return false
}
