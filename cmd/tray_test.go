package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joybind/internal/binding"
	"joybind/internal/vjoy"
	"joybind/internal/vjoy/vjoytest"
)

func newReplayer(t *testing.T) (*replayer, *vjoytest.Driver) {
	t.Helper()
	drv := vjoytest.New(1, vjoy.Capabilities{Axes: []vjoy.Axis{vjoy.AxisX}, Buttons: 4})
	dev, err := vjoy.Open(drv, 1)
	require.NoError(t, err)

	set := binding.NewSet()
	fire := binding.Button("fire", 2, true)
	fire.Hotkey = "Ctrl+F"
	require.NoError(t, set.Put(fire))
	require.NoError(t, set.Put(binding.Button("jump", 3, true)))
	return &replayer{dev: dev, set: set}, drv
}

func TestReplayerCloseWaitsForReplay(t *testing.T) {
	r, drv := newReplayer(t)

	r.mu.Lock()
	done := make(chan struct{})
	go func() {
		r.close()
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("close did not wait for the replay in progress")
	case <-time.After(50 * time.Millisecond):
	}
	r.mu.Unlock()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("close did not finish")
	}
	assert.True(t, drv.Called("Relinquish"))
	assert.ErrorIs(t, r.replay("fire"), vjoy.ErrSessionClosed)
}

func TestReplayerReplay(t *testing.T) {
	r, drv := newReplayer(t)
	require.NoError(t, r.replay("fire"))
	assert.True(t, drv.Devices[1].State.Buttons[2])
	assert.ErrorIs(t, r.replay("missing"), binding.ErrNotFound)
}

func TestMenuEntriesFollowBindings(t *testing.T) {
	r, drv := newReplayer(t)

	entries := r.menuEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "fire (Ctrl+F)", entries[0].Title)
	assert.Equal(t, "jump", entries[1].Title)

	fresh := binding.NewSet()
	require.NoError(t, fresh.Put(binding.Button("duck", 4, true)))
	r.set.Replace(fresh)

	entries = r.menuEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "duck", entries[0].Title)
	entries[0].Callback()
	assert.True(t, drv.Devices[1].State.Buttons[4])
}
