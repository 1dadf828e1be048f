//go:build windows

package win32

import (
	"encoding/binary"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"github.com/username/ruwps/internal/native"
)

const (
	imageIcon      = 1
	idiApplication = 32512
	spiGetWorkArea = 0x0030
)

var procSystemParametersInfoW = user32.NewProc("SystemParametersInfoW")

// notifyIconData is NOTIFYICONDATAW as of Vista, including guidItem.
type notifyIconData struct {
	CbSize           uint32
	HWnd             uintptr
	UID              uint32
	UFlags           uint32
	UCallbackMessage uint32
	HIcon            uintptr
	SzTip            [128]uint16
	DwState          uint32
	DwStateMask      uint32
	SzInfo           [256]uint16
	UVersion         uint32
	SzInfoTitle      [64]uint16
	DwInfoFlags      uint32
	GuidItem         windows.GUID
	HBalloonIcon     uintptr
}

func copyUTF16(dst []uint16, s string) {
	u, err := windows.UTF16FromString(s)
	if err != nil {
		return
	}
	n := copy(dst[:len(dst)-1], u)
	dst[n] = 0
}

// shellGUID lays out RFC 4122 bytes the way GUID stores them.
func shellGUID(b [16]byte) windows.GUID {
	g := windows.GUID{
		Data1: binary.BigEndian.Uint32(b[0:4]),
		Data2: binary.BigEndian.Uint16(b[4:6]),
		Data3: binary.BigEndian.Uint16(b[6:8]),
	}
	copy(g.Data4[:], b[8:])
	return g
}

// LoadIcon loads an .ico file at size pixels. The default icon is the first
// icon resource of the executable, or a copy of the stock application icon
// when the executable has none, so every handle can be destroyed.
func (b *Backend) LoadIcon(path string, size int) (native.HICON, error) {
	if path == "" {
		h := win.LoadImage(b.instance, win.MAKEINTRESOURCE(1), imageIcon, int32(size), int32(size), 0)
		if h != 0 {
			return native.HICON(h), nil
		}
		stock := win.LoadIcon(0, win.MAKEINTRESOURCE(idiApplication))
		r, _, err := procCopyIcon.Call(uintptr(stock))
		if r == 0 {
			return 0, lastError("CopyIcon", err)
		}
		return native.HICON(r), nil
	}
	h := win.LoadImage(0, utf16(path), imageIcon, int32(size), int32(size), lrLoadFromFile)
	if h == 0 {
		return 0, lastError("LoadImage(" + path + ")")
	}
	return native.HICON(h), nil
}

func (b *Backend) DestroyIcon(icon native.HICON) {
	if icon != 0 {
		win.DestroyIcon(win.HICON(icon))
	}
}

func (b *Backend) NotifyIcon(op uint32, data *native.NotifyIconData) error {
	nid := notifyIconData{
		HWnd:             uintptr(data.Hwnd),
		UID:              data.ID,
		UFlags:           data.Flags,
		UCallbackMessage: data.CallbackMessage,
		HIcon:            uintptr(data.Icon),
		DwState:          data.State,
		DwStateMask:      data.StateMask,
		DwInfoFlags:      data.InfoFlags,
		GuidItem:         shellGUID(data.GUID),
		UVersion:         data.Timeout,
	}
	nid.CbSize = uint32(unsafe.Sizeof(nid))
	if op == native.NIM_SETVERSION {
		nid.UVersion = data.Version
	}
	copyUTF16(nid.SzTip[:], data.Tip)
	copyUTF16(nid.SzInfo[:], data.Info)
	copyUTF16(nid.SzInfoTitle[:], data.InfoTitle)

	r, _, err := procShellNotifyIconW.Call(uintptr(op), uintptr(unsafe.Pointer(&nid)))
	if r == 0 {
		return lastError("Shell_NotifyIcon", err)
	}
	return nil
}

// TrayAnchor places popups at the icon horizontally and at the bottom of the
// work area, so the menu opens just above the taskbar.
func (b *Backend) TrayAnchor(wParam uintptr) native.Point {
	pt := native.Point{X: int32(int16(native.LOWORD(wParam)))}
	var area win.RECT
	if r, _, _ := procSystemParametersInfoW.Call(spiGetWorkArea, 0, uintptr(unsafe.Pointer(&area)), 0); r != 0 {
		pt.Y = area.Bottom
		return pt
	}
	var cursor win.POINT
	win.GetCursorPos(&cursor)
	pt.Y = cursor.Y
	return pt
}
