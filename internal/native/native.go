// Package native is the boundary between the tray runtime and the host
// windowing system. The runtime only talks to the OS through Backend, so the
// same message loop, menu compiler and dialog engine run on top of the real
// Win32 implementation (package win32) and the in-memory one used by tests
// (package headless).
package native

import "time"

// Opaque native handles.
type (
	HWND    uintptr
	HMENU   uintptr
	HICON   uintptr
	HBITMAP uintptr
	HACCEL  uintptr
)

// Msg is one message taken from the thread queue.
type Msg struct {
	Hwnd    HWND
	Message uint32
	WParam  uintptr
	LParam  uintptr
}

// Point is a screen position in pixels.
type Point struct {
	X, Y int32
}

// WndProc handles a message sent to a window created by the runtime.
type WndProc func(hwnd HWND, msg uint32, wParam, lParam uintptr) uintptr

// DialogProc handles a message sent to a dialog. It returns true when the
// message was processed.
type DialogProc func(hwnd HWND, msg uint32, wParam, lParam uintptr) bool

// MenuItem describes one entry appended to a native menu.
type MenuItem struct {
	Flags   uint32
	ID      uint32
	Submenu HMENU
	Caption string
	Bitmap  HBITMAP
}

// Accel is one accelerator table entry.
type Accel struct {
	Virt uint8
	Key  uint16
	Cmd  uint16
}

// NotifyIconData carries the fields of a Shell_NotifyIcon call. Only the
// fields selected by Flags are read for NIM_MODIFY.
type NotifyIconData struct {
	Hwnd            HWND
	ID              uint32
	Flags           uint32
	CallbackMessage uint32
	Icon            HICON
	Tip             string
	State           uint32
	StateMask       uint32
	Info            string
	InfoTitle       string
	Timeout         uint32
	Version         uint32
	InfoFlags       uint32
	GUID            [16]byte
}

// Messenger owns windows and the thread message queue.
type Messenger interface {
	RegisterClass(name string, proc WndProc, icon HICON) error
	UnregisterClass(name string)
	CreateWindow(className, title string) (HWND, error)
	DestroyWindow(hwnd HWND)
	ShowWindow(hwnd HWND, show bool)
	SetForegroundWindow(hwnd HWND)
	SetActiveWindow(hwnd HWND)
	EnableWindow(hwnd HWND, enable bool)
	DefWindowProc(hwnd HWND, msg uint32, wParam, lParam uintptr) uintptr

	// GetMessage blocks until a message is available. It returns false when
	// WM_QUIT was retrieved.
	GetMessage(msg *Msg) bool
	// PostMessage may be called from any goroutine.
	PostMessage(hwnd HWND, msg uint32, wParam, lParam uintptr) error
	PostQuitMessage(code int)
	TranslateMessage(msg *Msg)
	DispatchMessage(msg *Msg) uintptr
	TranslateAccelerator(hwnd HWND, accel HACCEL, msg *Msg) bool

	SetTimer(hwnd HWND, id uintptr, interval time.Duration) error
	KillTimer(hwnd HWND, id uintptr)
}

// MenuFactory creates and destroys native menu resources.
type MenuFactory interface {
	CreateMenu() (HMENU, error)
	CreatePopupMenu() (HMENU, error)
	AppendMenu(menu HMENU, item MenuItem) error
	// DestroyMenu destroys the menu and every submenu attached to it.
	DestroyMenu(menu HMENU)
	SetMenuBar(hwnd HWND, menu HMENU) error
	// TrackPopupMenu shows the popup and returns the selected command id or
	// zero once the popup has closed.
	TrackPopupMenu(menu HMENU, hwnd HWND, pt Point) uint32
	CreateAcceleratorTable(accels []Accel) (HACCEL, error)
	DestroyAcceleratorTable(accel HACCEL)
	LoadBitmap(path string, size int) (HBITMAP, error)
	DeleteBitmap(bmp HBITMAP)
}

// Shell covers the notification area and icon resources.
type Shell interface {
	// LoadIcon loads an icon file; an empty path loads the default
	// application icon.
	LoadIcon(path string, size int) (HICON, error)
	DestroyIcon(icon HICON)
	NotifyIcon(op uint32, data *NotifyIconData) error
	// TrayAnchor converts the wParam of a tray callback message into the
	// point a popup menu is anchored at.
	TrayAnchor(wParam uintptr) Point
}

// Dialogs creates modeless dialogs from in-memory templates.
type Dialogs interface {
	CreateDialog(owner HWND, tpl *DialogTemplate, proc DialogProc) (HWND, error)
	IsDialogMessage(dlg HWND, msg *Msg) bool
	GetDlgItemText(dlg HWND, id int) string
	SetDlgItemText(dlg HWND, id int, text string)
	// MeasureText returns the height in dialog units of text wrapped at
	// width dialog units.
	MeasureText(text string, font Font, width int) int
	// ButtonLabel returns the localized caption of a standard button.
	ButtonLabel(id int) string
}

// Themer switches native chrome between light and dark.
type Themer interface {
	SystemUsesDarkTheme() bool
	// ApplyTheme repaints the window background, updates the title bar and
	// flushes the preferred app mode used by popup menus.
	ApplyTheme(hwnd HWND, dark bool)
	PaintMenuBar(hwnd HWND, lParam uintptr) uintptr
	PaintMenuBarItem(hwnd HWND, lParam uintptr) uintptr
	PaintMenuBarLine(hwnd HWND)
}

// Backend is everything the runtime needs from the host OS.
type Backend interface {
	Messenger
	MenuFactory
	Shell
	Dialogs
	Themer
}
