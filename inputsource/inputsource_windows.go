//go:build windows

package inputsource

import (
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"kafji.net/tetikus/inputevent"
)

const (
	whMouseLL = 14

	wmQuit = 0x0012

	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C
	wmMouseHWheel = 0x020E

	xButton2 = 2

	// https://learn.microsoft.com/en-us/windows/win32/inputdev/wm-mousewheel
	wheelDelta = 120
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
)

type point struct {
	x, y int32
}

// https://learn.microsoft.com/en-us/windows/win32/api/winuser/ns-winuser-msllhookstruct
type msllHookStruct struct {
	pt          point
	mouseData   uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

type message struct {
	hwnd     windows.Handle
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// Handle owns the hook thread.
type Handle struct {
	mu       sync.Mutex
	threadID uint32
	stopped  bool
	err      error

	inputs chan inputevent.Event
}

var (
	hookMu     sync.Mutex
	activeHook *Handle
)

// Start installs a low-level mouse hook on a dedicated OS thread and begins
// delivering events. Stop posts WM_QUIT to that thread to tear it down.
func Start() *Handle {
	h := &Handle{inputs: make(chan inputevent.Event, 1_000)}
	h.mu.Lock() // lock 'a
	go func() {
		runtime.LockOSThread()
		h.threadID = windows.GetCurrentThreadId()
		hookMu.Lock()
		activeHook = h
		hookMu.Unlock()
		h.mu.Unlock() // unlock 'a

		err := run()
		runtime.UnlockOSThread()

		hookMu.Lock()
		activeHook = nil
		hookMu.Unlock()

		h.mu.Lock()
		defer h.mu.Unlock()
		h.stopped = true
		h.err = err
		close(h.inputs)
	}()
	return h
}

func (h *Handle) Inputs() <-chan inputevent.Event {
	return h.inputs
}

func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	procPostThreadMessageW.Call(uintptr(h.threadID), wmQuit, 0, 0)
}

var mouseHookProc = windows.NewCallback(func(code, wParam, lParam uintptr) uintptr {
	// Achtung!
	//
	// This hook procedure must never block. When it does, every pointer
	// movement on the machine gets choppy.
	if int32(code) >= 0 {
		hookMu.Lock()
		h := activeHook
		hookMu.Unlock()
		if h != nil {
			data := (*msllHookStruct)(unsafe.Pointer(lParam))
			if ev, ok := decode(uint32(wParam), data); ok {
				select {
				case h.inputs <- ev:
				default:
					slog.Debug("input channel full, event dropped")
				}
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, code, wParam, lParam)
	return ret
})

func decode(code uint32, data *msllHookStruct) (inputevent.Event, bool) {
	click := func(b inputevent.MouseButton, a inputevent.ButtonAction) (inputevent.Event, bool) {
		return inputevent.MouseClick{Button: b, Action: a, X: data.pt.x, Y: data.pt.y}, true
	}
	switch code {
	case wmLButtonDown:
		return click(inputevent.ButtonLeft, inputevent.ActionDown)
	case wmLButtonUp:
		return click(inputevent.ButtonLeft, inputevent.ActionUp)
	case wmRButtonDown:
		return click(inputevent.ButtonRight, inputevent.ActionDown)
	case wmRButtonUp:
		return click(inputevent.ButtonRight, inputevent.ActionUp)
	case wmMButtonDown:
		return click(inputevent.ButtonMiddle, inputevent.ActionDown)
	case wmMButtonUp:
		return click(inputevent.ButtonMiddle, inputevent.ActionUp)
	case wmXButtonDown, wmXButtonUp:
		button := inputevent.ButtonX1
		if data.mouseData>>16 == xButton2 {
			button = inputevent.ButtonX2
		}
		action := inputevent.ActionDown
		if code == wmXButtonUp {
			action = inputevent.ActionUp
		}
		return click(button, action)
	case wmMouseWheel:
		delta := int32(int16(data.mouseData>>16)) / wheelDelta
		return inputevent.MouseScroll{X: data.pt.x, Y: data.pt.y, DY: delta}, true
	case wmMouseHWheel:
		delta := int32(int16(data.mouseData>>16)) / wheelDelta
		return inputevent.MouseScroll{X: data.pt.x, Y: data.pt.y, DX: delta}, true
	}
	return nil, false
}

func run() error {
	// https://learn.microsoft.com/en-us/windows/win32/winmsg/lowlevelmouseproc
	hook, _, err := procSetWindowsHookExW.Call(whMouseLL, mouseHookProc, 0, 0)
	if hook == 0 {
		return err
	}
	defer procUnhookWindowsHookEx.Call(hook)

	// Low-level hooks deliver through the hook procedure; this loop only
	// keeps the thread's message queue pumping until WM_QUIT arrives.
	for {
		var msg message
		ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0)
		switch {
		case int32(ret) == 0:
			return nil
		case int32(ret) < 0:
			return err
		}
	}
}
