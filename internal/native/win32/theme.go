//go:build windows

package win32

import (
	"syscall"
	"unsafe"

	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"

	"github.com/username/ruwps/internal/native"
)

const (
	personalizeKey = `Software\Microsoft\Windows\CurrentVersion\Themes\Personalize`

	// uxtheme exports these only by ordinal.
	ordSetPreferredAppMode = 135
	ordFlushMenuThemes     = 136
	appModeForceDark       = 2
	appModeForceLight      = 3

	dwmwaUseImmersiveDarkMode = 20
	gclpHbrBackground         = ^uintptr(9) // -10
	objidMenu                 = ^uintptr(2) // -3
	mfByPosition              = 0x0400
	transparent               = 1

	odsSelected = 0x0001
	odsGrayed   = 0x0002
	odsDisabled = 0x0004
	odsHotLight = 0x0040
	odsNoAccel  = 0x0100

	dtCenter     = 0x0001
	dtVCenter    = 0x0004
	dtSingleLine = 0x0020
	dtHidePrefix = 0x00100000
)

var (
	colorBackground = rgb(0x20, 0x20, 0x20)
	colorBar        = rgb(0x2B, 0x2B, 0x2B)
	colorHot        = rgb(0x3E, 0x3E, 0x3E)
	colorText       = rgb(0xFF, 0xFF, 0xFF)
	colorGrayText   = rgb(0x6D, 0x6D, 0x6D)

	procSetBkMode    = gdi32.NewProc("SetBkMode")
	procSetTextColor = gdi32.NewProc("SetTextColor")
)

func rgb(r, g, b byte) uint32 { return uint32(r) | uint32(g)<<8 | uint32(b)<<16 }

type menuBarInfo struct {
	CbSize   uint32
	RcBar    win.RECT
	HMenu    uintptr
	HwndMenu uintptr
	Flags    uint32
}

type uahMenu struct {
	HMenu   uintptr
	HDC     uintptr
	DwFlags uint32
}

type drawItemStruct struct {
	CtlType    uint32
	CtlID      uint32
	ItemID     uint32
	ItemAction uint32
	ItemState  uint32
	HwndItem   uintptr
	HDC        uintptr
	RcItem     win.RECT
	ItemData   uintptr
}

type uahDrawMenuItem struct {
	Dis       drawItemStruct
	Um        uahMenu
	IPosition int32
}

// themeState holds the GDI brushes used while dark and the uxtheme entry
// points, which are missing before Windows 10 1809.
type themeState struct {
	logger *zap.Logger

	setPreferredAppMode uintptr
	flushMenuThemes     uintptr

	dark       map[win.HWND]bool
	background uintptr
	bar        uintptr
	hot        uintptr
}

func (t *themeState) init(logger *zap.Logger) {
	t.logger = logger
	t.dark = make(map[win.HWND]bool)
	dll, err := windows.LoadDLL("uxtheme.dll")
	if err != nil {
		logger.Debug("uxtheme unavailable", zap.Error(err))
		return
	}
	if p, err := windows.GetProcAddressByOrdinal(dll.Handle, ordSetPreferredAppMode); err == nil {
		t.setPreferredAppMode = p
	}
	if p, err := windows.GetProcAddressByOrdinal(dll.Handle, ordFlushMenuThemes); err == nil {
		t.flushMenuThemes = p
	}
}

func (t *themeState) brushes() {
	if t.background != 0 {
		return
	}
	t.background, _, _ = procCreateSolidBrush.Call(uintptr(colorBackground))
	t.bar, _, _ = procCreateSolidBrush.Call(uintptr(colorBar))
	t.hot, _, _ = procCreateSolidBrush.Call(uintptr(colorHot))
}

func (t *themeState) forget(hwnd win.HWND) {
	delete(t.dark, hwnd)
	if len(t.dark) > 0 || t.background == 0 {
		return
	}
	for _, br := range []uintptr{t.background, t.bar, t.hot} {
		win.DeleteObject(win.HGDIOBJ(br))
	}
	t.background, t.bar, t.hot = 0, 0, 0
}

// SystemUsesDarkTheme reads the "apps use light theme" personalization
// setting. Older systems without the value are light.
func (b *Backend) SystemUsesDarkTheme() bool {
	k, err := registry.OpenKey(registry.CURRENT_USER, personalizeKey, registry.QUERY_VALUE)
	if err != nil {
		return false
	}
	defer k.Close()
	v, _, err := k.GetIntegerValue("AppsUseLightTheme")
	if err != nil {
		return false
	}
	return v == 0
}

func (b *Backend) ApplyTheme(hwnd native.HWND, dark bool) {
	t := &b.theme
	h := win.HWND(hwnd)

	if t.setPreferredAppMode != 0 {
		mode := uintptr(appModeForceLight)
		if dark {
			mode = appModeForceDark
		}
		syscall.SyscallN(t.setPreferredAppMode, mode)
		if t.flushMenuThemes != 0 {
			syscall.SyscallN(t.flushMenuThemes)
		}
	}

	var useDark int32
	if dark {
		useDark = 1
	}
	if err := procDwmSetWindowAttribute.Find(); err == nil {
		procDwmSetWindowAttribute.Call(uintptr(h), dwmwaUseImmersiveDarkMode,
			uintptr(unsafe.Pointer(&useDark)), unsafe.Sizeof(useDark))
	}

	brush := uintptr(win.COLOR_WINDOW + 1)
	if dark {
		t.brushes()
		brush = t.background
		t.dark[h] = true
	} else {
		delete(t.dark, h)
	}
	procSetClassLongPtrW.Call(uintptr(h), gclpHbrBackground, brush)
	procInvalidateRect.Call(uintptr(h), 0, 1)
	procDrawMenuBar.Call(uintptr(h))
	t.logger.Debug("Theme applied", zap.Bool("dark", dark))
}

// barRect returns the menu bar rectangle relative to the window origin.
func barRect(hwnd win.HWND) (win.RECT, bool) {
	mbi := menuBarInfo{}
	mbi.CbSize = uint32(unsafe.Sizeof(mbi))
	if r, _, _ := procGetMenuBarInfo.Call(uintptr(hwnd), objidMenu, 0, uintptr(unsafe.Pointer(&mbi))); r == 0 {
		return win.RECT{}, false
	}
	var wr win.RECT
	win.GetWindowRect(hwnd, &wr)
	rc := mbi.RcBar
	rc.Left -= wr.Left
	rc.Right -= wr.Left
	rc.Top -= wr.Top
	rc.Bottom -= wr.Top
	return rc, true
}

func (b *Backend) PaintMenuBar(hwnd native.HWND, lParam uintptr) uintptr {
	b.theme.brushes()
	um := (*uahMenu)(unsafe.Pointer(lParam))
	rc, ok := barRect(win.HWND(hwnd))
	if !ok {
		return 0
	}
	procFillRect.Call(um.HDC, uintptr(unsafe.Pointer(&rc)), b.theme.bar)
	return 1
}

func (b *Backend) PaintMenuBarItem(hwnd native.HWND, lParam uintptr) uintptr {
	b.theme.brushes()
	item := (*uahDrawMenuItem)(unsafe.Pointer(lParam))
	hdc := item.Um.HDC

	var buf [256]uint16
	procGetMenuStringW.Call(item.Um.HMenu, uintptr(item.IPosition),
		uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)), mfByPosition)

	state := item.Dis.ItemState
	brush := b.theme.bar
	if state&(odsHotLight|odsSelected) != 0 {
		brush = b.theme.hot
	}
	color := colorText
	if state&(odsGrayed|odsDisabled) != 0 {
		color = colorGrayText
	}
	format := uintptr(dtCenter | dtVCenter | dtSingleLine)
	if state&odsNoAccel != 0 {
		format |= dtHidePrefix
	}

	rc := item.Dis.RcItem
	procFillRect.Call(hdc, uintptr(unsafe.Pointer(&rc)), brush)
	procSetBkMode.Call(hdc, transparent)
	procSetTextColor.Call(hdc, uintptr(color))
	procDrawTextW.Call(hdc, uintptr(unsafe.Pointer(&buf[0])), ^uintptr(0),
		uintptr(unsafe.Pointer(&rc)), format)
	return 1
}

// PaintMenuBarLine covers the one pixel line between the menu bar and the
// client area.
func (b *Backend) PaintMenuBarLine(hwnd native.HWND) {
	h := win.HWND(hwnd)
	b.theme.brushes()

	var client, wr win.RECT
	win.GetClientRect(h, &client)
	procMapWindowPoints.Call(uintptr(h), 0, uintptr(unsafe.Pointer(&client)), 2)
	win.GetWindowRect(h, &wr)
	line := win.RECT{
		Left:   client.Left - wr.Left,
		Top:    client.Top - wr.Top - 1,
		Right:  client.Right - wr.Left,
		Bottom: client.Top - wr.Top,
	}

	hdc, _, _ := procGetWindowDC.Call(uintptr(h))
	if hdc == 0 {
		return
	}
	procFillRect.Call(hdc, uintptr(unsafe.Pointer(&line)), b.theme.bar)
	win.ReleaseDC(h, win.HDC(hdc))
}
