package vjoy_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joybind/internal/vjoy"
	"joybind/internal/vjoy/vjoytest"
)

func gamepad() vjoy.Capabilities {
	return vjoy.Capabilities{
		Axes:           []vjoy.Axis{vjoy.AxisX, vjoy.AxisY, vjoy.AxisRZ},
		Buttons:        8,
		DiscreteHats:   2,
		ContinuousHats: 1,
	}
}

func openGamepad(t *testing.T) (*vjoy.Device, *vjoytest.Driver) {
	t.Helper()
	drv := vjoytest.New(1, gamepad())
	dev, err := vjoy.Open(drv, 1)
	require.NoError(t, err)
	return dev, drv
}

func TestOpen(t *testing.T) {
	dev, drv := openGamepad(t)

	assert.Equal(t, uint(1), dev.ID())
	assert.Equal(t, gamepad(), dev.Capabilities())
	assert.Equal(t, vjoy.StatusOwn, drv.Devices[1].Status)
	assert.True(t, drv.Called("Acquire"))
}

func TestOpenFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(d *vjoytest.Driver)
		id    uint
		want  error
	}{
		{"driver disabled", func(d *vjoytest.Driver) { d.Disabled = true }, 1, vjoy.ErrDriverUnavailable},
		{"version mismatch", func(d *vjoytest.Driver) { d.Mismatch = true }, 1, vjoy.ErrVersionMismatch},
		{"missing device", func(d *vjoytest.Driver) {}, 5, vjoy.ErrDeviceNotConfigured},
		{"acquire refused", func(d *vjoytest.Driver) { d.RefuseAcquire = true }, 1, vjoy.ErrAcquireFailed},
		{"busy", func(d *vjoytest.Driver) {
			d.Devices[1].Status = vjoy.StatusBusy
			d.Devices[1].OwnerPID = 4242
		}, 1, vjoy.ErrDeviceBusy},
		{"unknown status", func(d *vjoytest.Driver) { d.Devices[1].Status = vjoy.StatusUnknown }, 1, vjoy.ErrUnknownStatus},
		{"missing status", func(d *vjoytest.Driver) { d.Devices[1].Status = vjoy.StatusMissing }, 1, vjoy.ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drv := vjoytest.New(1, gamepad())
			tt.setup(drv)
			dev, err := vjoy.Open(drv, tt.id)
			assert.Nil(t, dev)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpenDisabledChecksNothingElse(t *testing.T) {
	drv := vjoytest.New(1, gamepad())
	drv.Disabled = true
	_, err := vjoy.Open(drv, 1)
	require.ErrorIs(t, err, vjoy.ErrDriverUnavailable)
	assert.Equal(t, []string{"Enabled"}, drv.Calls)
}

func TestOpenVersionMismatchCarriesVersions(t *testing.T) {
	drv := vjoytest.New(1, gamepad())
	drv.Mismatch = true
	_, err := vjoy.Open(drv, 1)

	var mismatch *vjoy.VersionMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, uint16(0x218), mismatch.LibraryVersion)
	assert.Equal(t, uint16(0x219), mismatch.DriverVersion)
}

func TestOpenBusyCarriesOwner(t *testing.T) {
	drv := vjoytest.New(1, gamepad())
	drv.Devices[1].Status = vjoy.StatusBusy
	drv.Devices[1].OwnerPID = 4242

	_, err := vjoy.Open(drv, 1)
	var busy *vjoy.BusyError
	require.True(t, errors.As(err, &busy))
	assert.Equal(t, 4242, busy.OwnerPID)
	assert.False(t, drv.Called("Acquire"))
}

func TestOpenAlreadyOwnedIsIdempotent(t *testing.T) {
	first, drv := openGamepad(t)
	drv.Calls = nil

	second, err := vjoy.Open(drv, 1)
	require.NoError(t, err)
	assert.False(t, drv.Called("Acquire"))
	assert.Equal(t, first.Capabilities(), second.Capabilities())
	assert.Equal(t, vjoy.StatusOwn, drv.Devices[1].Status)
}

func TestClose(t *testing.T) {
	dev, drv := openGamepad(t)

	require.NoError(t, dev.Close())
	assert.Equal(t, vjoy.StatusFree, drv.Devices[1].Status)

	// A second close still relinquishes.
	drv.Calls = nil
	require.NoError(t, dev.Close())
	assert.True(t, drv.Called("Relinquish"))
}

func TestCloseStillOwned(t *testing.T) {
	dev, drv := openGamepad(t)
	busy := vjoy.StatusBusy
	drv.Devices[1].StatusAfterRelinquish = &busy

	err := dev.Close()
	require.ErrorIs(t, err, vjoy.ErrStillOwned)
	var still *vjoy.StillOwnedError
	require.True(t, errors.As(err, &still))
	assert.Equal(t, vjoy.StatusBusy, still.Status)
}

func TestWritesAfterCloseFail(t *testing.T) {
	dev, drv := openGamepad(t)
	require.NoError(t, dev.Close())
	before := drv.Writes()

	assert.ErrorIs(t, dev.SetAxis(vjoy.AxisX, 100), vjoy.ErrSessionClosed)
	assert.ErrorIs(t, dev.SetButton(1, true), vjoy.ErrSessionClosed)
	assert.ErrorIs(t, dev.SetDiscreteHat(1, vjoy.HatNorth), vjoy.ErrSessionClosed)
	assert.ErrorIs(t, dev.SetContinuousHat(1, 0), vjoy.ErrSessionClosed)
	assert.ErrorIs(t, dev.Reset(), vjoy.ErrSessionClosed)
	assert.Equal(t, before, drv.Writes())
}

func TestSetAxis(t *testing.T) {
	dev, drv := openGamepad(t)

	for _, v := range []int{vjoy.AxisMin, 2, 0x4000, vjoy.AxisMax} {
		require.NoError(t, dev.SetAxis(vjoy.AxisY, v))
		assert.Equal(t, int32(v), drv.Devices[1].State.Axes[vjoy.AxisY])
	}

	// Setting the same value twice leaves the same state.
	require.NoError(t, dev.SetAxis(vjoy.AxisX, 1234))
	first := drv.Devices[1].State.Axes[vjoy.AxisX]
	require.NoError(t, dev.SetAxis(vjoy.AxisX, 1234))
	assert.Equal(t, first, drv.Devices[1].State.Axes[vjoy.AxisX])
}

func TestSetAxisOutOfRange(t *testing.T) {
	dev, drv := openGamepad(t)
	before := drv.Writes()

	for _, v := range []int{-1, 0, vjoy.AxisMax + 1, 1 << 20} {
		assert.ErrorIs(t, dev.SetAxis(vjoy.AxisX, v), vjoy.ErrOutOfRange, "value %d", v)
	}
	assert.Equal(t, before, drv.Writes())
	assert.Empty(t, drv.Devices[1].State.Axes)
}

func TestSetAxisUnsupported(t *testing.T) {
	dev, drv := openGamepad(t)
	assert.ErrorIs(t, dev.SetAxis(vjoy.AxisSlider0, 100), vjoy.ErrUnsupportedAxis)
	assert.Empty(t, drv.Devices[1].State.Axes)
}

func TestSetButton(t *testing.T) {
	dev, drv := openGamepad(t)

	require.NoError(t, dev.SetButton(1, true))
	require.NoError(t, dev.SetButton(8, true))
	require.NoError(t, dev.SetButton(1, false))
	assert.Equal(t, map[uint8]bool{1: false, 8: true}, drv.Devices[1].State.Buttons)

	for _, n := range []int{0, -3, 9, 300} {
		assert.ErrorIs(t, dev.SetButton(n, true), vjoy.ErrOutOfRange, "button %d", n)
	}
}

func TestSetDiscreteHat(t *testing.T) {
	dev, drv := openGamepad(t)

	require.NoError(t, dev.SetDiscreteHat(1, vjoy.HatSouth))
	assert.Equal(t, int32(2), drv.Devices[1].State.DiscreteHats[1])

	err := dev.SetDiscreteHat(3, vjoy.HatSouth)
	assert.ErrorIs(t, err, vjoy.ErrOutOfRange)
	assert.ErrorIs(t, dev.SetDiscreteHat(0, vjoy.HatNorth), vjoy.ErrOutOfRange)

	for _, dir := range []vjoy.HatDirection{-2, 4, 90} {
		assert.ErrorIs(t, dev.SetDiscreteHat(2, dir), vjoy.ErrInvalidDirection)
	}
	require.NoError(t, dev.SetDiscreteHat(2, vjoy.HatNeutral))
	assert.Equal(t, int32(-1), drv.Devices[1].State.DiscreteHats[2])
}

func TestSetContinuousHat(t *testing.T) {
	dev, drv := openGamepad(t)

	require.NoError(t, dev.SetContinuousHat(1, vjoy.ContinuousHatNeutral))
	assert.Equal(t, int32(-1), drv.Devices[1].State.ContinuousHats[1])
	require.NoError(t, dev.SetContinuousHat(1, 0))
	require.NoError(t, dev.SetContinuousHat(1, vjoy.ContinuousHatMax))
	assert.Equal(t, int32(35999), drv.Devices[1].State.ContinuousHats[1])

	for _, v := range []int{-2, 36000, 99999} {
		assert.ErrorIs(t, dev.SetContinuousHat(1, v), vjoy.ErrOutOfRange, "value %d", v)
	}
	assert.ErrorIs(t, dev.SetContinuousHat(2, 100), vjoy.ErrOutOfRange)
}

func TestWriteRefused(t *testing.T) {
	dev, drv := openGamepad(t)
	drv.RefuseWrites = true

	assert.ErrorIs(t, dev.SetAxis(vjoy.AxisX, 1), vjoy.ErrWriteFailed)
	assert.ErrorIs(t, dev.SetButton(1, true), vjoy.ErrWriteFailed)
	assert.ErrorIs(t, dev.ResetButtons(), vjoy.ErrWriteFailed)
}

func TestResets(t *testing.T) {
	dev, drv := openGamepad(t)
	require.NoError(t, dev.SetButton(2, true))
	require.NoError(t, dev.SetDiscreteHat(1, vjoy.HatEast))
	require.NoError(t, dev.SetAxis(vjoy.AxisX, 10))

	require.NoError(t, dev.ResetButtons())
	assert.Empty(t, drv.Devices[1].State.Buttons)
	require.NoError(t, dev.ResetHats())
	assert.Empty(t, drv.Devices[1].State.DiscreteHats)
	require.NoError(t, dev.Reset())
	assert.Empty(t, drv.Devices[1].State.Axes)
}

func TestDiscreteHatScenario(t *testing.T) {
	drv := vjoytest.New(1, vjoy.Capabilities{DiscreteHats: 2})
	dev, err := vjoy.Open(drv, 1)
	require.NoError(t, err)
	defer dev.Close()

	assert.NoError(t, dev.SetDiscreteHat(1, vjoy.HatSouth))
	assert.ErrorIs(t, dev.SetDiscreteHat(3, vjoy.HatSouth), vjoy.ErrOutOfRange)
}

func TestInventory(t *testing.T) {
	drv := vjoytest.New(1, gamepad())
	drv.Add(3, vjoy.Capabilities{Buttons: 4})
	drv.Devices[3].Status = vjoy.StatusBusy
	drv.Devices[3].OwnerPID = 77

	s, err := vjoy.Inventory(drv)
	require.NoError(t, err)
	assert.Equal(t, 16, s.MaxDevices)
	assert.Equal(t, 2, s.Existing)
	assert.Equal(t, []vjoy.DeviceInfo{
		{ID: 1, Status: vjoy.StatusFree},
		{ID: 3, Status: vjoy.StatusBusy, OwnerPID: 77},
	}, s.Devices)
	assert.False(t, drv.Called("Acquire"))

	drv.Disabled = true
	_, err = vjoy.Inventory(drv)
	assert.ErrorIs(t, err, vjoy.ErrDriverUnavailable)
}
