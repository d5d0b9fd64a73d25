package capture

import (
	"errors"
	"fmt"
	"log"

	"joybind/internal/window"
)

// ErrEmptyWindow is returned for windows whose bounding rectangle has no area.
var ErrEmptyWindow = errors.New("window has zero width or height")

// DC is a graphics device context.
type DC uintptr

// Bitmap is a GDI bitmap.
type Bitmap uintptr

// Object is whatever was selected into a device context before a bitmap replaced it.
type Object uintptr

// Rect is a rectangle in virtual desktop coordinates.
type Rect struct {
	Left   int32
	Top    int32
	Right  int32
	Bottom int32
}

// Dx returns the width.
func (r Rect) Dx() int { return int(r.Right - r.Left) }

// Dy returns the height.
func (r Rect) Dy() int { return int(r.Bottom - r.Top) }

// Graphics is the part of the graphics subsystem needed to capture a window.
// Every acquiring call has a matching release call.
type Graphics interface {
	WindowDC(h window.Handle) (DC, error)
	ReleaseDC(h window.Handle, dc DC) error
	CompatibleDC(dc DC) (DC, error)
	DeleteDC(dc DC) error
	WindowRect(h window.Handle) (Rect, error)
	CompatibleBitmap(dc DC, width, height int) (Bitmap, error)
	DeleteBitmap(b Bitmap) error
	Select(dc DC, b Bitmap) (Object, error)
	Restore(dc DC, prev Object) error
	// PrintWindow asks the compositor to render h into dc, even if occluded.
	PrintWindow(h window.Handle, dc DC) error
	// ReadBits returns the bitmap as top-down 32 bpp BGRX scanlines.
	ReadBits(dc DC, b Bitmap, width, height int) ([]byte, error)
}

// Display enumerates and grabs monitors.
type Display interface {
	Open() (DisplaySession, error)
}

// DisplaySession holds the screen resources used while monitors are grabbed.
type DisplaySession interface {
	Monitors() ([]Rect, error)
	Grab(r Rect) (*PixelBuffer, error)
	Close() error
}

// Capturer captures windows and monitors.
type Capturer struct {
	gfx     Graphics
	display Display
}

// New creates a Capturer from explicit backends.
func New(gfx Graphics, display Display) *Capturer {
	return &Capturer{gfx: gfx, display: display}
}

// Window renders h into an off-screen bitmap and reads it back as RGB.
// All acquired resources are released before returning, on success or failure.
func (c *Capturer) Window(h window.Handle) (buf *PixelBuffer, err error) {
	var s scope
	defer func() {
		if cerr := s.Close(); cerr != nil {
			buf = nil
			err = errors.Join(err, cerr)
		}
	}()

	windowDC, err := c.gfx.WindowDC(h)
	if err != nil {
		return nil, err
	}
	s.push("window DC", func() error { return c.gfx.ReleaseDC(h, windowDC) })

	memDC, err := c.gfx.CompatibleDC(windowDC)
	if err != nil {
		return nil, err
	}
	s.push("memory DC", func() error { return c.gfx.DeleteDC(memDC) })

	rect, err := c.gfx.WindowRect(h)
	if err != nil {
		return nil, err
	}
	width, height := rect.Dx(), rect.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrEmptyWindow, h, width, height)
	}

	bmp, err := c.gfx.CompatibleBitmap(windowDC, width, height)
	if err != nil {
		return nil, err
	}
	s.push("bitmap", func() error { return c.gfx.DeleteBitmap(bmp) })

	prev, err := c.gfx.Select(memDC, bmp)
	if err != nil {
		return nil, err
	}
	s.push("selection", func() error { return c.gfx.Restore(memDC, prev) })

	if err := c.gfx.PrintWindow(h, memDC); err != nil {
		return nil, err
	}

	bits, err := c.gfx.ReadBits(memDC, bmp, width, height)
	if err != nil {
		return nil, err
	}
	log.Printf("Capture: window %s captured (%dx%d)", h, width, height)
	return fromBGRX(width, height, bits)
}

// Monitors returns a single-pass sequence with one buffer per monitor. The
// display session is opened on the first Next and closed when the sequence is
// exhausted or closed.
func (c *Capturer) Monitors() *Sequence {
	var (
		session DisplaySession
		rects   []Rect
		idx     int
	)
	next := func() (*PixelBuffer, bool, error) {
		if session == nil {
			s, err := c.display.Open()
			if err != nil {
				return nil, false, err
			}
			session = s
			if rects, err = session.Monitors(); err != nil {
				return nil, false, err
			}
			log.Printf("Capture: display reports %d monitors", len(rects))
		}
		if idx >= len(rects) {
			return nil, false, nil
		}
		r := rects[idx]
		idx++
		buf, err := session.Grab(r)
		if err != nil {
			return nil, false, err
		}
		return buf, true, nil
	}
	closeFn := func() error {
		if session == nil {
			return nil
		}
		err := session.Close()
		session = nil
		return err
	}
	return newSequence(next, closeFn)
}

// Shots captures the given windows in order, or every monitor when handles is empty.
func (c *Capturer) Shots(handles []window.Handle) *Sequence {
	if len(handles) == 0 {
		return c.Monitors()
	}
	idx := 0
	next := func() (*PixelBuffer, bool, error) {
		if idx >= len(handles) {
			return nil, false, nil
		}
		h := handles[idx]
		idx++
		buf, err := c.Window(h)
		if err != nil {
			return nil, false, err
		}
		return buf, true, nil
	}
	return newSequence(next, nil)
}
