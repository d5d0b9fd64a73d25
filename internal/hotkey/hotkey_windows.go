//go:build windows

package hotkey

import (
	"log"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"

	"joybind/internal/syserr"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandle     = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit        = 0x0012
	wmKeyDown     = 0x0100
	wmSysKeyDown  = 0x0104
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msllHookStruct struct {
	Point       struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    syscall.Handle
	Message uint32
	Wparam  uintptr
	Lparam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Hook procedures cannot carry state, so the active manager and hook handles
// live here. Only one manager can be started at a time.
var (
	hookMu       sync.Mutex
	hookManager  *Manager
	keyboardHook uintptr
	mouseHook    uintptr
)

var (
	keyboardCallback = syscall.NewCallback(keyboardProc)
	mouseCallback    = syscall.NewCallback(mouseProc)
)

func (m *Manager) startPlatform() (func(), error) {
	hookMu.Lock()
	hookManager = m
	hookMu.Unlock()

	ready := make(chan error, 1)
	var threadID uint32

	// Hooks must be installed on the thread that pumps messages.
	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()

		threadID = windows.GetCurrentThreadId()
		hMod, _, _ := procGetModuleHandle.Call(0)

		kb, _, err := procSetWindowsHookEx.Call(whKeyboardLL, keyboardCallback, hMod, 0)
		if kb == 0 {
			ready <- syserr.New("SetWindowsHookExW(keyboard)", err)
			return
		}
		ms, _, err := procSetWindowsHookEx.Call(whMouseLL, mouseCallback, hMod, 0)
		if ms == 0 {
			procUnhookWindowsHookEx.Call(kb)
			ready <- syserr.New("SetWindowsHookExW(mouse)", err)
			return
		}
		keyboardHook, mouseHook = kb, ms
		ready <- nil
		log.Println("Hotkey: global hooks installed")

		var m msg
		for {
			r, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				break
			}
		}

		procUnhookWindowsHookEx.Call(kb)
		procUnhookWindowsHookEx.Call(ms)
		log.Println("Hotkey: global hooks removed")
	}()

	if err := <-ready; err != nil {
		return nil, err
	}
	stop := func() {
		procPostThreadMessage.Call(uintptr(threadID), wmQuit, 0, 0)
	}
	return stop, nil
}

func activeManager() *Manager {
	hookMu.Lock()
	defer hookMu.Unlock()
	return hookManager
}

func keyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		kbd := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		if m := activeManager(); m != nil {
			m.UpdateKey(kbd.VkCode, wParam == wmKeyDown || wParam == wmSysKeyDown)
		}
	}
	r, _, _ := procCallNextHookEx.Call(keyboardHook, uintptr(nCode), wParam, lParam)
	return r
}

func mouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode == 0 {
		ms := (*msllHookStruct)(unsafe.Pointer(lParam))
		if name, isDown := mouseButton(wParam, ms.MouseData); name != "" {
			if m := activeManager(); m != nil {
				m.UpdateState(name, isDown)
			}
		}
	}
	r, _, _ := procCallNextHookEx.Call(mouseHook, uintptr(nCode), wParam, lParam)
	return r
}

func mouseButton(wParam uintptr, mouseData uint32) (string, bool) {
	xButton := "MOUSE5"
	if mouseData>>16 == 1 {
		xButton = "MOUSE4"
	}
	switch wParam {
	case wmLButtonDown:
		return "MOUSE1", true
	case wmLButtonUp:
		return "MOUSE1", false
	case wmRButtonDown:
		return "MOUSE2", true
	case wmRButtonUp:
		return "MOUSE2", false
	case wmMButtonDown:
		return "MOUSE3", true
	case wmMButtonUp:
		return "MOUSE3", false
	case wmXButtonDown:
		return xButton, true
	case wmXButtonUp:
		return xButton, false
	}
	return "", false
}
