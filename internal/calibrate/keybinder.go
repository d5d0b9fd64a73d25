package calibrate

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"joybind/internal/binding"
	"joybind/internal/vjoy"
)

// Device is the session a KeyBinder exercises. *vjoy.Device implements it.
type Device interface {
	binding.Setter
	Capabilities() vjoy.Capabilities
	Reset() error
	ResetButtons() error
	ResetHats() error
}

// KeyBinder walks the operator through recording bindings.
type KeyBinder struct {
	prompt   *Prompter
	bindings *binding.Set
	repeat   int
	delay    time.Duration
	sleep    func(time.Duration)
}

// NewKeyBinder records into bindings. Every candidate write is repeated
// repeat times, delay apart, so the operator can bind it in the target program.
func NewKeyBinder(p *Prompter, bindings *binding.Set, repeat int, delay time.Duration) *KeyBinder {
	if repeat < 1 {
		repeat = 1
	}
	return &KeyBinder{prompt: p, bindings: bindings, repeat: repeat, delay: delay, sleep: time.Sleep}
}

// Bindings returns the set being recorded into.
func (k *KeyBinder) Bindings() *binding.Set { return k.bindings }

// Setup runs until the operator declines to continue. Device failures are
// logged and the operator is asked again; only input errors end the loop.
func (k *KeyBinder) Setup(dev Device) error {
	caps := dev.Capabilities()
	for {
		more, err := k.prompt.Confirm("continue to setup?")
		if err != nil || !more {
			return err
		}
		control, ok, err := Choose(k.prompt, controlOptions())
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := resetAll(dev); err != nil {
			log.Printf("Calibrate: reset failed: %v", err)
			continue
		}
		b, ok, err := k.pick(control, caps)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := k.record(dev, b); err != nil {
			return err
		}
	}
}

func resetAll(dev Device) error {
	if err := dev.ResetButtons(); err != nil {
		return err
	}
	if err := dev.ResetHats(); err != nil {
		return err
	}
	return dev.Reset()
}

func controlOptions() []Option[binding.Control] {
	out := make([]Option[binding.Control], len(binding.Controls))
	for i, c := range binding.Controls {
		out[i] = Option[binding.Control]{Label: string(c), Value: c}
	}
	return out
}

func axisOptions(axes []vjoy.Axis) []Option[vjoy.Axis] {
	out := make([]Option[vjoy.Axis], len(axes))
	for i, a := range axes {
		out[i] = Option[vjoy.Axis]{Label: a.String(), Keys: []string{strconv.Itoa(int(a)), fmt.Sprintf("%#x", uint32(a))}, Value: a}
	}
	return out
}

func directionOptions() []Option[vjoy.HatDirection] {
	out := make([]Option[vjoy.HatDirection], len(vjoy.HatDirections))
	for i, d := range vjoy.HatDirections {
		out[i] = Option[vjoy.HatDirection]{Label: d.String(), Keys: []string{strconv.Itoa(int(d))}, Value: d}
	}
	return out
}

func boolOptions() []Option[bool] {
	return []Option[bool]{
		{Label: "true", Keys: []string{"1", "pressed"}, Value: true},
		{Label: "false", Keys: []string{"0", "released"}, Value: false},
	}
}

// pick asks for the target and value of a binding of the given control kind.
func (k *KeyBinder) pick(control binding.Control, caps vjoy.Capabilities) (binding.Binding, bool, error) {
	var b binding.Binding
	switch control {
	case binding.ControlAxis:
		axis, ok, err := Choose(k.prompt, axisOptions(caps.Axes))
		if err != nil || !ok {
			return b, false, err
		}
		value, ok, err := Choose(k.prompt, IntRange(vjoy.AxisMin, vjoy.AxisMax))
		if err != nil || !ok {
			return b, false, err
		}
		return binding.Axis("", axis, value), true, nil

	case binding.ControlButton:
		n, ok, err := Choose(k.prompt, IntRange(1, caps.Buttons))
		if err != nil || !ok {
			return b, false, err
		}
		pressed, ok, err := Choose(k.prompt, boolOptions())
		if err != nil || !ok {
			return b, false, err
		}
		return binding.Button("", n, pressed), true, nil

	case binding.ControlDiscreteHat:
		n, ok, err := Choose(k.prompt, IntRange(1, caps.DiscreteHats))
		if err != nil || !ok {
			return b, false, err
		}
		dir, ok, err := Choose(k.prompt, directionOptions())
		if err != nil || !ok {
			return b, false, err
		}
		return binding.DiscreteHat("", n, dir), true, nil

	case binding.ControlContinuousHat:
		n, ok, err := Choose(k.prompt, IntRange(1, caps.ContinuousHats))
		if err != nil || !ok {
			return b, false, err
		}
		value, ok, err := Choose(k.prompt, IntRange(vjoy.ContinuousHatNeutral, vjoy.ContinuousHatMax))
		if err != nil || !ok {
			return b, false, err
		}
		return binding.ContinuousHat("", n, value), true, nil
	}
	return b, false, fmt.Errorf("%w %q", binding.ErrUnknownControl, control)
}

// record presses b until the operator names it.
func (k *KeyBinder) record(dev Device, b binding.Binding) error {
	for {
		if err := k.press(dev, b); err != nil {
			log.Printf("Calibrate: %s failed: %v", b, err)
			return nil
		}
		name, err := k.prompt.Ask("name of keybinding (empty to retry keypressing)")
		if err != nil {
			return err
		}
		if name == "" {
			continue
		}
		b.Name = name
		if err := k.bindings.Put(b); err != nil {
			return err
		}
		log.Printf("Calibrate: recorded %q as %s (%d bindings)", name, b, k.bindings.Len())
		return nil
	}
}

func (k *KeyBinder) press(dev Device, b binding.Binding) error {
	for i := 0; i < k.repeat; i++ {
		log.Printf("Calibrate: pressing %s [%d/%d]", b, i+1, k.repeat)
		if err := b.Apply(dev); err != nil {
			return err
		}
		k.sleep(k.delay)
	}
	return nil
}
