package capture

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joybind/internal/syserr"
	"joybind/internal/window"
)

// fakeGraphics records every acquire and release so tests can check ordering.
type fakeGraphics struct {
	rect     Rect
	pixels   []byte
	failAt   string
	failFree string
	calls    []string
}

func (g *fakeGraphics) step(name string) error {
	g.calls = append(g.calls, name)
	if g.failAt == name || g.failFree == name {
		return syserr.New(name, nil)
	}
	return nil
}

func (g *fakeGraphics) WindowDC(h window.Handle) (DC, error) {
	return 1, g.step("WindowDC")
}

func (g *fakeGraphics) ReleaseDC(h window.Handle, dc DC) error { return g.step("ReleaseDC") }

func (g *fakeGraphics) CompatibleDC(dc DC) (DC, error) { return 2, g.step("CompatibleDC") }

func (g *fakeGraphics) DeleteDC(dc DC) error { return g.step("DeleteDC") }

func (g *fakeGraphics) WindowRect(h window.Handle) (Rect, error) {
	return g.rect, g.step("WindowRect")
}

func (g *fakeGraphics) CompatibleBitmap(dc DC, width, height int) (Bitmap, error) {
	return 3, g.step("CompatibleBitmap")
}

func (g *fakeGraphics) DeleteBitmap(b Bitmap) error { return g.step("DeleteBitmap") }

func (g *fakeGraphics) Select(dc DC, b Bitmap) (Object, error) { return 4, g.step("Select") }

func (g *fakeGraphics) Restore(dc DC, prev Object) error { return g.step("Restore") }

func (g *fakeGraphics) PrintWindow(h window.Handle, dc DC) error { return g.step("PrintWindow") }

func (g *fakeGraphics) ReadBits(dc DC, b Bitmap, width, height int) ([]byte, error) {
	if err := g.step("ReadBits"); err != nil {
		return nil, err
	}
	return g.pixels, nil
}

// 2x1 window: a red pixel then a blue one, stored as BGRX.
func twoPixelGraphics() *fakeGraphics {
	return &fakeGraphics{
		rect:   Rect{Left: 10, Top: 10, Right: 12, Bottom: 11},
		pixels: []byte{0x00, 0x00, 0xFF, 0x00, 0xFF, 0x00, 0x00, 0x00},
	}
}

func TestWindowCapture(t *testing.T) {
	g := twoPixelGraphics()
	c := New(g, nil)

	buf, err := c.Window(0x10)
	require.NoError(t, err)
	assert.Equal(t, 2, buf.Width)
	assert.Equal(t, 1, buf.Height)
	assert.Equal(t, []byte{0xFF, 0x00, 0x00, 0x00, 0x00, 0xFF}, buf.Pix)

	assert.Equal(t, []string{
		"WindowDC", "CompatibleDC", "WindowRect", "CompatibleBitmap", "Select", "PrintWindow", "ReadBits",
		"Restore", "DeleteBitmap", "DeleteDC", "ReleaseDC",
	}, g.calls)
}

func TestWindowCaptureZeroArea(t *testing.T) {
	for _, rect := range []Rect{
		{Left: 0, Top: 0, Right: 0, Bottom: 100},
		{Left: 0, Top: 0, Right: 100, Bottom: 0},
		{Left: 50, Top: 50, Right: 10, Bottom: 60},
	} {
		g := &fakeGraphics{rect: rect}
		_, err := New(g, nil).Window(0x10)
		require.ErrorIs(t, err, ErrEmptyWindow)
		assert.NotContains(t, g.calls, "CompatibleBitmap")
		assert.Equal(t, []string{"WindowDC", "CompatibleDC", "WindowRect", "DeleteDC", "ReleaseDC"}, g.calls)
	}
}

func TestWindowCaptureReleasesOnFailure(t *testing.T) {
	g := twoPixelGraphics()
	g.failAt = "PrintWindow"

	buf, err := New(g, nil).Window(0x10)
	assert.Nil(t, buf)
	require.Error(t, err)
	assert.True(t, syserr.IsOSError(err))
	assert.Equal(t, []string{
		"WindowDC", "CompatibleDC", "WindowRect", "CompatibleBitmap", "Select", "PrintWindow",
		"Restore", "DeleteBitmap", "DeleteDC", "ReleaseDC",
	}, g.calls)
}

func TestWindowCaptureFailsBeforeAnyAcquisition(t *testing.T) {
	g := twoPixelGraphics()
	g.failAt = "WindowDC"

	_, err := New(g, nil).Window(0x10)
	require.Error(t, err)
	assert.Equal(t, []string{"WindowDC"}, g.calls)
}

func TestWindowCaptureReleaseFailureDropsImage(t *testing.T) {
	g := twoPixelGraphics()
	g.failFree = "DeleteBitmap"

	buf, err := New(g, nil).Window(0x10)
	assert.Nil(t, buf)
	require.Error(t, err)
	// The remaining resources are still released.
	assert.Equal(t, []string{"DeleteBitmap", "DeleteDC", "ReleaseDC"}, g.calls[len(g.calls)-3:])
}

func TestWindowCaptureShortBitmap(t *testing.T) {
	g := twoPixelGraphics()
	g.pixels = g.pixels[:4]

	_, err := New(g, nil).Window(0x10)
	require.Error(t, err)
}

type fakeDisplay struct {
	monitors []Rect
	openErr  error
	grabErr  error
	opened   int
	closed   int
	grabbed  int
}

func (d *fakeDisplay) Open() (DisplaySession, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	d.opened++
	return &fakeSession{d: d}, nil
}

type fakeSession struct{ d *fakeDisplay }

func (s *fakeSession) Monitors() ([]Rect, error) { return s.d.monitors, nil }

func (s *fakeSession) Grab(r Rect) (*PixelBuffer, error) {
	if s.d.grabErr != nil {
		return nil, s.d.grabErr
	}
	s.d.grabbed++
	return &PixelBuffer{Width: r.Dx(), Height: r.Dy(), Pix: make([]byte, r.Dx()*r.Dy()*3)}, nil
}

func (s *fakeSession) Close() error {
	s.d.closed++
	return nil
}

func threeMonitors() *fakeDisplay {
	return &fakeDisplay{monitors: []Rect{
		{Left: 0, Top: 0, Right: 6, Bottom: 2},
		{Left: 0, Top: 0, Right: 4, Bottom: 2},
		{Left: 4, Top: 0, Right: 6, Bottom: 1},
	}}
}

func TestMonitorSequence(t *testing.T) {
	d := threeMonitors()
	seq := New(nil, d).Monitors()
	assert.Equal(t, 0, d.opened, "session opens lazily")

	bufs, err := seq.Collect()
	require.NoError(t, err)
	require.Len(t, bufs, 3)
	assert.Equal(t, 6, bufs[0].Width)
	assert.Equal(t, 2, bufs[2].Width)
	assert.Equal(t, 1, bufs[2].Height)

	assert.Equal(t, 1, d.opened)
	assert.Equal(t, 1, d.closed)

	assert.False(t, seq.Next())
	assert.False(t, seq.Next())
	assert.Equal(t, 3, d.grabbed)
	assert.NoError(t, seq.Close())
	assert.Equal(t, 1, d.closed)
}

func TestMonitorSequenceEarlyClose(t *testing.T) {
	d := threeMonitors()
	seq := New(nil, d).Monitors()

	require.True(t, seq.Next())
	require.NoError(t, seq.Close())
	assert.Equal(t, 1, d.closed)
	assert.False(t, seq.Next())
	assert.Equal(t, 1, d.grabbed)
}

func TestMonitorSequenceOpenFailure(t *testing.T) {
	d := threeMonitors()
	d.openErr = syserr.ErrUnsupportedPlatform
	seq := New(nil, d).Monitors()

	assert.False(t, seq.Next())
	assert.ErrorIs(t, seq.Err(), syserr.ErrUnsupportedPlatform)
	assert.Equal(t, 0, d.closed)
}

func TestMonitorSequenceGrabFailureCloses(t *testing.T) {
	d := threeMonitors()
	d.grabErr = errors.New("blt failed")
	seq := New(nil, d).Monitors()

	assert.False(t, seq.Next())
	assert.EqualError(t, seq.Err(), "blt failed")
	assert.Equal(t, 1, d.closed)
}

func TestShots(t *testing.T) {
	t.Run("windows in order", func(t *testing.T) {
		g := twoPixelGraphics()
		d := threeMonitors()
		bufs, err := New(g, d).Shots([]window.Handle{0x10, 0x20}).Collect()
		require.NoError(t, err)
		assert.Len(t, bufs, 2)
		assert.Equal(t, 0, d.opened)
	})

	t.Run("monitors when no handles", func(t *testing.T) {
		d := threeMonitors()
		bufs, err := New(&fakeGraphics{}, d).Shots(nil).Collect()
		require.NoError(t, err)
		assert.Len(t, bufs, 3)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		g := twoPixelGraphics()
		g.failAt = "PrintWindow"
		bufs, err := New(g, nil).Shots([]window.Handle{0x10, 0x20}).Collect()
		require.Error(t, err)
		assert.Empty(t, bufs)
	})
}

func TestPNGRoundTrip(t *testing.T) {
	buf := &PixelBuffer{Width: 2, Height: 1, Pix: []byte{0xFF, 0x00, 0x00, 0x10, 0x20, 0x30}}

	var out bytes.Buffer
	require.NoError(t, EncodePNG(&out, buf))
	got, err := DecodePNG(&out)
	require.NoError(t, err)
	assert.Equal(t, buf, got)
}

func TestPreview(t *testing.T) {
	var opened string
	orig := openFile
	openFile = func(path string) error {
		opened = path
		return nil
	}
	defer func() { openFile = orig }()

	dir := t.TempDir()
	buf := &PixelBuffer{Width: 1, Height: 1, Pix: []byte{1, 2, 3}}
	path, err := Preview(buf, filepath.Join(dir, "shots"))
	require.NoError(t, err)
	assert.Equal(t, path, opened)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	got, err := DecodePNG(f)
	require.NoError(t, err)
	assert.Equal(t, buf.Pix, got.Pix)
}

func TestShowOpensSavedShotsUnchanged(t *testing.T) {
	var opened []string
	orig := openFile
	openFile = func(path string) error {
		opened = append(opened, path)
		return nil
	}
	defer func() { openFile = orig }()

	dir := t.TempDir()
	now := time.Now()
	red := &PixelBuffer{Width: 1, Height: 1, Pix: []byte{255, 0, 0}}
	blue := &PixelBuffer{Width: 1, Height: 1, Pix: []byte{0, 0, 255}}

	var paths []string
	for i, buf := range []*PixelBuffer{red, blue} {
		path := ShotName(dir, now, i)
		require.NoError(t, SavePNG(path, buf))
		require.NoError(t, Show(path))
		paths = append(paths, path)
	}
	assert.Equal(t, paths, opened)

	for i, want := range []*PixelBuffer{red, blue} {
		f, err := os.Open(paths[i])
		require.NoError(t, err)
		got, err := DecodePNG(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, want.Pix, got.Pix, paths[i])
	}
}

func TestPreviewDoesNotReuseNames(t *testing.T) {
	orig := openFile
	openFile = func(string) error { return nil }
	defer func() { openFile = orig }()

	dir := t.TempDir()
	shot := ShotName(dir, time.Now(), 0)
	red := &PixelBuffer{Width: 1, Height: 1, Pix: []byte{255, 0, 0}}
	require.NoError(t, SavePNG(shot, red))

	first, err := Preview(&PixelBuffer{Width: 1, Height: 1, Pix: []byte{0, 255, 0}}, dir)
	require.NoError(t, err)
	second, err := Preview(&PixelBuffer{Width: 1, Height: 1, Pix: []byte{0, 0, 255}}, dir)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
	assert.NotEqual(t, shot, first)
	assert.NotEqual(t, shot, second)

	f, err := os.Open(shot)
	require.NoError(t, err)
	defer f.Close()
	got, err := DecodePNG(f)
	require.NoError(t, err)
	assert.Equal(t, red.Pix, got.Pix)
}
