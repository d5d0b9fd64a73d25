//go:build windows

package capture

import (
	"errors"
	"sync"
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"joybind/internal/syserr"
	"joybind/internal/window"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procGetWindowDC         = user32.NewProc("GetWindowDC")
	procReleaseDC           = user32.NewProc("ReleaseDC")
	procPrintWindow         = user32.NewProc("PrintWindow")
	procEnumDisplayMonitors = user32.NewProc("EnumDisplayMonitors")
)

const (
	pwRenderFullContent = 0x00000002

	smXVirtualScreen  = 76
	smYVirtualScreen  = 77
	smCXVirtualScreen = 78
	smCYVirtualScreen = 79
)

func lastErr(op string) error {
	return syserr.New(op, syscall.Errno(win.GetLastError()))
}

type gdi struct {
	printFlags uintptr
}

// NewGraphics returns the GDI-backed Graphics. fullContent asks PrintWindow to
// render DirectComposition content as well.
func NewGraphics(fullContent bool) (Graphics, error) {
	if err := user32.Load(); err != nil {
		return nil, syserr.New("load user32.dll", err)
	}
	g := &gdi{}
	if fullContent {
		g.printFlags = pwRenderFullContent
	}
	return g, nil
}

func (g *gdi) WindowDC(h window.Handle) (DC, error) {
	r, _, err := procGetWindowDC.Call(uintptr(h))
	if r == 0 {
		return 0, syserr.New("GetWindowDC", err)
	}
	return DC(r), nil
}

func (g *gdi) ReleaseDC(h window.Handle, dc DC) error {
	return releaseDC(uintptr(h), win.HDC(dc))
}

func releaseDC(hwnd uintptr, dc win.HDC) error {
	r, _, err := procReleaseDC.Call(hwnd, uintptr(dc))
	return syserr.Check("ReleaseDC", r != 0, err)
}

func (g *gdi) CompatibleDC(dc DC) (DC, error) {
	mem := win.CreateCompatibleDC(win.HDC(dc))
	if mem == 0 {
		return 0, lastErr("CreateCompatibleDC")
	}
	return DC(mem), nil
}

func (g *gdi) DeleteDC(dc DC) error {
	if !win.DeleteDC(win.HDC(dc)) {
		return lastErr("DeleteDC")
	}
	return nil
}

func (g *gdi) WindowRect(h window.Handle) (Rect, error) {
	var r win.RECT
	if !win.GetWindowRect(win.HWND(h), &r) {
		return Rect{}, lastErr("GetWindowRect")
	}
	return Rect{Left: r.Left, Top: r.Top, Right: r.Right, Bottom: r.Bottom}, nil
}

func (g *gdi) CompatibleBitmap(dc DC, width, height int) (Bitmap, error) {
	bmp := win.CreateCompatibleBitmap(win.HDC(dc), int32(width), int32(height))
	if bmp == 0 {
		return 0, lastErr("CreateCompatibleBitmap")
	}
	return Bitmap(bmp), nil
}

func (g *gdi) DeleteBitmap(b Bitmap) error {
	if !win.DeleteObject(win.HGDIOBJ(b)) {
		return lastErr("DeleteObject")
	}
	return nil
}

func (g *gdi) Select(dc DC, b Bitmap) (Object, error) {
	prev := win.SelectObject(win.HDC(dc), win.HGDIOBJ(b))
	// HGDI_ERROR is (HGDIOBJ)-1.
	if prev == 0 || prev == win.HGDIOBJ(^uintptr(0)) {
		return 0, lastErr("SelectObject")
	}
	return Object(prev), nil
}

func (g *gdi) Restore(dc DC, prev Object) error {
	if win.SelectObject(win.HDC(dc), win.HGDIOBJ(prev)) == 0 {
		return lastErr("SelectObject")
	}
	return nil
}

func (g *gdi) PrintWindow(h window.Handle, dc DC) error {
	r, _, err := procPrintWindow.Call(uintptr(h), uintptr(dc), g.printFlags)
	return syserr.Check("PrintWindow", r != 0, err)
}

func (g *gdi) ReadBits(dc DC, b Bitmap, width, height int) ([]byte, error) {
	return readBits(win.HDC(dc), win.HBITMAP(b), width, height)
}

// readBits copies a bitmap out as top-down BGRX. GetDIBits is given
// GlobalAlloc'd memory rather than a Go slice.
func readBits(dc win.HDC, bmp win.HBITMAP, width, height int) ([]byte, error) {
	var header win.BITMAPINFOHEADER
	header.BiSize = uint32(unsafe.Sizeof(header))
	header.BiWidth = int32(width)
	header.BiHeight = -int32(height)
	header.BiPlanes = 1
	header.BiBitCount = 32
	header.BiCompression = win.BI_RGB

	size := uintptr(width) * uintptr(height) * 4
	hmem := win.GlobalAlloc(win.GMEM_MOVEABLE, size)
	if hmem == 0 {
		return nil, lastErr("GlobalAlloc")
	}
	defer win.GlobalFree(hmem)
	ptr := win.GlobalLock(hmem)
	if ptr == nil {
		return nil, lastErr("GlobalLock")
	}
	defer win.GlobalUnlock(hmem)

	lines := win.GetDIBits(dc, bmp, 0, uint32(height), (*uint8)(ptr), (*win.BITMAPINFO)(unsafe.Pointer(&header)), win.DIB_RGB_COLORS)
	if int(lines) != height {
		return nil, lastErr("GetDIBits")
	}
	out := make([]byte, size)
	copy(out, unsafe.Slice((*byte)(ptr), size))
	return out, nil
}

type screen struct{}

// NewDisplay returns the GDI-backed monitor grabber.
func NewDisplay() Display { return screen{} }

func (screen) Open() (DisplaySession, error) {
	screenDC := win.GetDC(0)
	if screenDC == 0 {
		return nil, lastErr("GetDC")
	}
	memDC := win.CreateCompatibleDC(screenDC)
	if memDC == 0 {
		err := lastErr("CreateCompatibleDC")
		_ = releaseDC(0, screenDC)
		return nil, err
	}
	return &screenSession{screenDC: screenDC, memDC: memDC}, nil
}

type screenSession struct {
	screenDC win.HDC
	memDC    win.HDC
}

var (
	monitorMu   sync.Mutex
	monitorBuf  []Rect
	monitorProc = windows.NewCallback(func(hMonitor, hdc uintptr, rect *win.RECT, data uintptr) uintptr {
		monitorBuf = append(monitorBuf, Rect{Left: rect.Left, Top: rect.Top, Right: rect.Right, Bottom: rect.Bottom})
		return 1
	})
)

// Monitors reports the whole virtual desktop followed by every monitor.
func (s *screenSession) Monitors() ([]Rect, error) {
	x := win.GetSystemMetrics(smXVirtualScreen)
	y := win.GetSystemMetrics(smYVirtualScreen)
	rects := []Rect{{
		Left:   x,
		Top:    y,
		Right:  x + win.GetSystemMetrics(smCXVirtualScreen),
		Bottom: y + win.GetSystemMetrics(smCYVirtualScreen),
	}}

	monitorMu.Lock()
	defer monitorMu.Unlock()
	monitorBuf = nil
	r, _, err := procEnumDisplayMonitors.Call(0, 0, monitorProc, 0)
	found := monitorBuf
	monitorBuf = nil
	if r == 0 {
		return nil, syserr.New("EnumDisplayMonitors", err)
	}
	return append(rects, found...), nil
}

func (s *screenSession) Grab(r Rect) (buf *PixelBuffer, err error) {
	width, height := r.Dx(), r.Dy()
	if width <= 0 || height <= 0 {
		return nil, ErrEmptyWindow
	}

	var sc scope
	defer func() {
		if cerr := sc.Close(); cerr != nil {
			buf = nil
			err = cerr
		}
	}()

	bmp := win.CreateCompatibleBitmap(s.screenDC, int32(width), int32(height))
	if bmp == 0 {
		return nil, lastErr("CreateCompatibleBitmap")
	}
	sc.push("bitmap", func() error {
		if !win.DeleteObject(win.HGDIOBJ(bmp)) {
			return lastErr("DeleteObject")
		}
		return nil
	})

	prev := win.SelectObject(s.memDC, win.HGDIOBJ(bmp))
	if prev == 0 {
		return nil, lastErr("SelectObject")
	}
	sc.push("selection", func() error {
		if win.SelectObject(s.memDC, prev) == 0 {
			return lastErr("SelectObject")
		}
		return nil
	})

	if !win.BitBlt(s.memDC, 0, 0, int32(width), int32(height), s.screenDC, r.Left, r.Top, win.SRCCOPY|win.CAPTUREBLT) {
		return nil, lastErr("BitBlt")
	}
	bits, err := readBits(s.memDC, bmp, width, height)
	if err != nil {
		return nil, err
	}
	return fromBGRX(width, height, bits)
}

func (s *screenSession) Close() error {
	var errs []error
	if !win.DeleteDC(s.memDC) {
		errs = append(errs, lastErr("DeleteDC"))
	}
	if err := releaseDC(0, s.screenDC); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
