//go:build windows

package window

import (
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"joybind/internal/syserr"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procFindWindowW              = user32.NewProc("FindWindowW")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procGetWindowTextW           = user32.NewProc("GetWindowTextW")
	procGetClassNameW            = user32.NewProc("GetClassNameW")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procGetCursorPos             = user32.NewProc("GetCursorPos")
	procWindowFromPoint          = user32.NewProc("WindowFromPoint")
)

// maxClassName is the documented upper bound for lpszClassName.
const maxClassName = 256

// Callbacks made by NewCallback are never released, so a single one is shared
// and the collected handles are buffered under enumMu.
var (
	enumMu   sync.Mutex
	enumBuf  []Handle
	enumProc = windows.NewCallback(func(hwnd uintptr, _ uintptr) uintptr {
		enumBuf = append(enumBuf, Handle(hwnd))
		return 1 // continue enumeration
	})
)

type win32 struct{}

// NewSystem returns the user32-backed windowing system.
func NewSystem() (System, error) {
	if err := user32.Load(); err != nil {
		return nil, syserr.New("load user32.dll", err)
	}
	return win32{}, nil
}

func (win32) Windows() ([]Handle, error) {
	enumMu.Lock()
	defer enumMu.Unlock()

	enumBuf = nil
	r, _, err := procEnumWindows.Call(enumProc, 0)
	if r == 0 {
		enumBuf = nil
		return nil, syserr.New("EnumWindows", err)
	}
	handles := enumBuf
	enumBuf = nil
	return handles, nil
}

func (win32) Find(title, class string) (Handle, error) {
	var titlePtr, classPtr *uint16
	var err error
	if title != "" {
		if titlePtr, err = windows.UTF16PtrFromString(title); err != nil {
			return 0, err
		}
	}
	if class != "" {
		if classPtr, err = windows.UTF16PtrFromString(class); err != nil {
			return 0, err
		}
	}
	r, _, callErr := procFindWindowW.Call(uintptr(unsafe.Pointer(classPtr)), uintptr(unsafe.Pointer(titlePtr)))
	if r == 0 {
		return 0, syserr.New("FindWindowW", callErr)
	}
	return Handle(r), nil
}

func (win32) Title(h Handle) (string, error) {
	n, _, _ := procGetWindowTextLengthW.Call(uintptr(h))
	if n == 0 {
		return "", nil
	}
	buf := make([]uint16, n+1)
	procGetWindowTextW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	return windows.UTF16ToString(buf), nil
}

func (win32) Class(h Handle) (string, error) {
	buf := make([]uint16, maxClassName)
	r, _, err := procGetClassNameW.Call(uintptr(h), uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return "", syserr.New("GetClassNameW", err)
	}
	return windows.UTF16ToString(buf[:r]), nil
}

func (win32) Owner(h Handle) (uint32, uint32, error) {
	var pid uint32
	tid, _, err := procGetWindowThreadProcessId.Call(uintptr(h), uintptr(unsafe.Pointer(&pid)))
	if tid == 0 {
		return 0, 0, syserr.New("GetWindowThreadProcessId", err)
	}
	return uint32(tid), pid, nil
}

func (win32) CursorPos() (Point, error) {
	var p Point
	r, _, err := procGetCursorPos.Call(uintptr(unsafe.Pointer(&p)))
	if r == 0 {
		return Point{}, syserr.New("GetCursorPos", err)
	}
	return p, nil
}

func (win32) FromPoint(p Point) (Handle, error) {
	r, _, err := procWindowFromPoint.Call(pointArgs(p, unsafe.Sizeof(uintptr(0)))...)
	if r == 0 {
		return 0, syserr.New("WindowFromPoint", err)
	}
	return Handle(r), nil
}
