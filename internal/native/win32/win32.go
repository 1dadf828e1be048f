//go:build windows

// Package win32 implements native.Backend on top of user32, shell32, gdi32,
// uxtheme and dwmapi. Every method except PostMessage must be called from
// the goroutine that created the backend, locked to its OS thread.
package win32

import (
	"fmt"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/username/ruwps/internal/native"
)

const (
	userTimerMinimum = 10
	idcArrow         = 32512
)

var (
	user32  = windows.NewLazySystemDLL("user32.dll")
	shell32 = windows.NewLazySystemDLL("shell32.dll")
	gdi32   = windows.NewLazySystemDLL("gdi32.dll")
	dwmapi  = windows.NewLazySystemDLL("dwmapi.dll")

	procAppendMenuW                = user32.NewProc("AppendMenuW")
	procCreateAcceleratorTableW    = user32.NewProc("CreateAcceleratorTableW")
	procDestroyAcceleratorTable    = user32.NewProc("DestroyAcceleratorTable")
	procCreateDialogIndirectParamW = user32.NewProc("CreateDialogIndirectParamW")
	procMBGetString                = user32.NewProc("MB_GetString")
	procCopyIcon                   = user32.NewProc("CopyIcon")
	procDrawTextW                  = user32.NewProc("DrawTextW")
	procFillRect                   = user32.NewProc("FillRect")
	procGetWindowDC                = user32.NewProc("GetWindowDC")
	procGetMenuBarInfo             = user32.NewProc("GetMenuBarInfo")
	procGetMenuStringW             = user32.NewProc("GetMenuStringW")
	procMapWindowPoints            = user32.NewProc("MapWindowPoints")
	procSetClassLongPtrW           = user32.NewProc("SetClassLongPtrW")
	procInvalidateRect             = user32.NewProc("InvalidateRect")
	procTranslateAcceleratorW      = user32.NewProc("TranslateAcceleratorW")
	procShellNotifyIconW           = shell32.NewProc("Shell_NotifyIconW")
	procCreateFontW                = gdi32.NewProc("CreateFontW")
	procGetTextMetricsW            = gdi32.NewProc("GetTextMetricsW")
	procGetTextExtentPoint32W      = gdi32.NewProc("GetTextExtentPoint32W")
	procCreateSolidBrush           = gdi32.NewProc("CreateSolidBrush")
	procCreateDIBSection           = gdi32.NewProc("CreateDIBSection")
	procDwmSetWindowAttribute      = dwmapi.NewProc("DwmSetWindowAttribute")
)

var (
	wndProcCallback = syscall.NewCallback(wndProc)
	dlgProcCallback = syscall.NewCallback(dlgProc)

	// Window procedures are process-wide callbacks. They find the owning
	// backend through this table; pending covers the messages a window
	// receives before CreateWindowEx or CreateDialogIndirectParam returns.
	handlesMu sync.Mutex
	handles   = make(map[win.HWND]*Backend)
	pending   *Backend
)

// Backend is the Win32 implementation of native.Backend.
type Backend struct {
	logger   *zap.Logger
	instance win.HINSTANCE

	classes map[string]native.WndProc
	windows map[win.HWND]native.WndProc
	dialogs map[win.HWND]native.DialogProc

	creating    native.WndProc
	creatingDlg native.DialogProc

	theme themeState
}

var _ native.Backend = (*Backend)(nil)

// New returns a backend bound to the calling OS thread.
func New(logger *zap.Logger) (*Backend, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, dll := range []*windows.LazyDLL{user32, shell32, gdi32} {
		if err := dll.Load(); err != nil {
			return nil, native.Fail("LoadLibrary("+dll.Name+")", err)
		}
	}
	b := &Backend{
		logger:   logger.With(zap.String("backend", "win32")),
		instance: win.GetModuleHandle(nil),
		classes:  make(map[string]native.WndProc),
		windows:  make(map[win.HWND]native.WndProc),
		dialogs:  make(map[win.HWND]native.DialogProc),
	}
	b.theme.init(b.logger)
	return b, nil
}

// lastError wraps the error of the failed call. Lazy procs already capture
// it; the lxn/win wrappers do not, so fall back to GetLastError.
func lastError(op string, errs ...error) error {
	for _, err := range errs {
		if errno, ok := err.(syscall.Errno); ok && errno != 0 {
			return native.Fail(op, errno)
		}
	}
	if errno := windows.GetLastError(); errno != nil {
		return native.Fail(op, errno)
	}
	return native.Fail(op, nil)
}

// utf16 converts s, truncating at an embedded NUL.
func utf16(s string) *uint16 {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 {
			s = s[:i]
			break
		}
	}
	p, _ := windows.UTF16PtrFromString(s)
	return p
}

func backendFor(hwnd win.HWND) *Backend {
	handlesMu.Lock()
	defer handlesMu.Unlock()
	if b, ok := handles[hwnd]; ok {
		return b
	}
	if pending != nil {
		handles[hwnd] = pending
		return pending
	}
	return nil
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	b := backendFor(hwnd)
	if b == nil {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	proc, ok := b.windows[hwnd]
	if !ok {
		if b.creating == nil {
			return win.DefWindowProc(hwnd, msg, wParam, lParam)
		}
		proc = b.creating
		b.windows[hwnd] = proc
	}
	return proc(native.HWND(hwnd), msg, wParam, lParam)
}

func (b *Backend) track(hwnd win.HWND) {
	handlesMu.Lock()
	handles[hwnd] = b
	handlesMu.Unlock()
}

func (b *Backend) forget(hwnd win.HWND) {
	handlesMu.Lock()
	delete(handles, hwnd)
	handlesMu.Unlock()
	delete(b.windows, hwnd)
	delete(b.dialogs, hwnd)
	b.theme.forget(hwnd)
}

func (b *Backend) setPending(on bool) {
	handlesMu.Lock()
	if on {
		pending = b
	} else {
		pending = nil
	}
	handlesMu.Unlock()
}

func (b *Backend) RegisterClass(name string, proc native.WndProc, icon native.HICON) error {
	if _, ok := b.classes[name]; ok {
		return native.Fail("RegisterClassEx", fmt.Errorf("class %q already registered", name))
	}
	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   wndProcCallback,
		HInstance:     b.instance,
		HIcon:         win.HICON(icon),
		HIconSm:       win.HICON(icon),
		HCursor:       win.LoadCursor(0, win.MAKEINTRESOURCE(idcArrow)),
		HbrBackground: win.HBRUSH(win.COLOR_WINDOW + 1),
		LpszClassName: utf16(name),
	}
	if win.RegisterClassEx(&wc) == 0 {
		return lastError("RegisterClassEx")
	}
	b.classes[name] = proc
	return nil
}

func (b *Backend) UnregisterClass(name string) {
	if _, ok := b.classes[name]; !ok {
		return
	}
	delete(b.classes, name)
	win.UnregisterClass(utf16(name))
}

func (b *Backend) CreateWindow(className, title string) (native.HWND, error) {
	proc, ok := b.classes[className]
	if !ok {
		return 0, native.Fail("CreateWindowEx", fmt.Errorf("class %q not registered", className))
	}
	b.creating = proc
	b.setPending(true)
	hwnd := win.CreateWindowEx(0, utf16(className), utf16(title),
		win.WS_OVERLAPPEDWINDOW, win.CW_USEDEFAULT, win.CW_USEDEFAULT, 480, 320,
		0, 0, b.instance, nil)
	b.setPending(false)
	b.creating = nil
	if hwnd == 0 {
		return 0, lastError("CreateWindowEx")
	}
	b.track(hwnd)
	b.windows[hwnd] = proc
	return native.HWND(hwnd), nil
}

func (b *Backend) DestroyWindow(hwnd native.HWND) {
	h := win.HWND(hwnd)
	if !win.DestroyWindow(h) {
		b.logger.Debug("DestroyWindow failed", zap.Uintptr("hwnd", uintptr(hwnd)), zap.Error(lastError("DestroyWindow")))
	}
	b.forget(h)
}

func (b *Backend) ShowWindow(hwnd native.HWND, show bool) {
	var cmd int32 = win.SW_HIDE
	if show {
		cmd = win.SW_SHOW
	}
	win.ShowWindow(win.HWND(hwnd), cmd)
}

func (b *Backend) SetForegroundWindow(hwnd native.HWND) {
	win.SetForegroundWindow(win.HWND(hwnd))
}

func (b *Backend) SetActiveWindow(hwnd native.HWND) {
	win.SetActiveWindow(win.HWND(hwnd))
}

func (b *Backend) EnableWindow(hwnd native.HWND, enable bool) {
	win.EnableWindow(win.HWND(hwnd), enable)
}

func (b *Backend) DefWindowProc(hwnd native.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	return win.DefWindowProc(win.HWND(hwnd), msg, wParam, lParam)
}

func fromMsg(msg *native.Msg) win.MSG {
	return win.MSG{HWnd: win.HWND(msg.Hwnd), Message: msg.Message, WParam: msg.WParam, LParam: msg.LParam}
}

func (b *Backend) GetMessage(msg *native.Msg) bool {
	var m win.MSG
	switch win.GetMessage(&m, 0, 0, 0) {
	case -1:
		b.logger.Error("GetMessage failed", zap.Error(lastError("GetMessage")))
		return false
	case 0:
		return false
	}
	*msg = native.Msg{Hwnd: native.HWND(m.HWnd), Message: m.Message, WParam: m.WParam, LParam: m.LParam}
	return true
}

func (b *Backend) PostMessage(hwnd native.HWND, msg uint32, wParam, lParam uintptr) error {
	if win.PostMessage(win.HWND(hwnd), msg, wParam, lParam) == 0 {
		return lastError("PostMessage")
	}
	return nil
}

func (b *Backend) PostQuitMessage(code int) {
	win.PostQuitMessage(int32(code))
}

func (b *Backend) TranslateMessage(msg *native.Msg) {
	m := fromMsg(msg)
	win.TranslateMessage(&m)
}

func (b *Backend) DispatchMessage(msg *native.Msg) uintptr {
	m := fromMsg(msg)
	return win.DispatchMessage(&m)
}

func (b *Backend) TranslateAccelerator(hwnd native.HWND, accel native.HACCEL, msg *native.Msg) bool {
	if accel == 0 {
		return false
	}
	m := fromMsg(msg)
	r, _, _ := procTranslateAcceleratorW.Call(uintptr(hwnd), uintptr(accel), uintptr(unsafe.Pointer(&m)))
	return r != 0
}

func (b *Backend) SetTimer(hwnd native.HWND, id uintptr, interval time.Duration) error {
	ms := interval.Milliseconds()
	if ms < userTimerMinimum {
		ms = userTimerMinimum
	}
	if win.SetTimer(win.HWND(hwnd), id, uint32(ms), 0) == 0 {
		return lastError("SetTimer")
	}
	return nil
}

func (b *Backend) KillTimer(hwnd native.HWND, id uintptr) {
	win.KillTimer(win.HWND(hwnd), id)
}
