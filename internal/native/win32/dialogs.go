//go:build windows

package win32

import (
	"strings"
	"unsafe"

	"github.com/lxn/win"
	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/username/ruwps/internal/native"
)

const (
	wmSetText       = 0x000C
	wmGetText       = 0x000D
	wmGetTextLength = 0x000E
	logPixelsY      = 90
	dtWordBreak     = 0x0010
	dtCalcRect      = 0x0400
	dtNoPrefix      = 0x0800
	defaultCharset  = 1
	measureAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
)

var procGetDeviceCaps = gdi32.NewProc("GetDeviceCaps")

type textMetric struct {
	TmHeight           int32
	TmAscent           int32
	TmDescent          int32
	TmInternalLeading  int32
	TmExternalLeading  int32
	TmAveCharWidth     int32
	TmMaxCharWidth     int32
	TmWeight           int32
	TmOverhang         int32
	TmDigitizedAspectX int32
	TmDigitizedAspectY int32
	TmFirstChar        uint16
	TmLastChar         uint16
	TmDefaultChar      uint16
	TmBreakChar        uint16
	TmItalic           byte
	TmUnderlined       byte
	TmStruckOut        byte
	TmPitchAndFamily   byte
	TmCharSet          byte
}

type textSize struct {
	CX, CY int32
}

func dlgProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	b := backendFor(hwnd)
	if b == nil {
		return 0
	}
	proc, ok := b.dialogs[hwnd]
	if !ok {
		if b.creatingDlg == nil {
			return 0
		}
		proc = b.creatingDlg
		b.dialogs[hwnd] = proc
	}
	if proc(native.HWND(hwnd), msg, wParam, lParam) {
		return 1
	}
	return 0
}

func (b *Backend) CreateDialog(owner native.HWND, tpl *native.DialogTemplate, proc native.DialogProc) (native.HWND, error) {
	data, err := tpl.MarshalBinary()
	if err != nil {
		return 0, native.Fail("CreateDialogIndirectParam", err)
	}
	b.creatingDlg = proc
	b.setPending(true)
	r, _, callErr := procCreateDialogIndirectParamW.Call(uintptr(b.instance),
		uintptr(unsafe.Pointer(&data[0])), uintptr(owner), dlgProcCallback, 0)
	b.setPending(false)
	b.creatingDlg = nil
	if r == 0 {
		return 0, lastError("CreateDialogIndirectParam", callErr)
	}
	hwnd := win.HWND(r)
	b.track(hwnd)
	b.dialogs[hwnd] = proc
	win.ShowWindow(hwnd, win.SW_SHOW)
	win.SetForegroundWindow(hwnd)
	return native.HWND(hwnd), nil
}

func (b *Backend) IsDialogMessage(dlg native.HWND, msg *native.Msg) bool {
	m := fromMsg(msg)
	return win.IsDialogMessage(win.HWND(dlg), &m)
}

func (b *Backend) GetDlgItemText(dlg native.HWND, id int) string {
	item := win.GetDlgItem(win.HWND(dlg), int32(id))
	if item == 0 {
		return ""
	}
	n := win.SendMessage(item, wmGetTextLength, 0, 0)
	buf := make([]uint16, n+1)
	win.SendMessage(item, wmGetText, uintptr(len(buf)), uintptr(unsafe.Pointer(&buf[0])))
	return windows.UTF16ToString(buf)
}

func (b *Backend) SetDlgItemText(dlg native.HWND, id int, text string) {
	item := win.GetDlgItem(win.HWND(dlg), int32(id))
	if item == 0 {
		return
	}
	win.SendMessage(item, wmSetText, 0, uintptr(unsafe.Pointer(utf16(text))))
}

// MeasureText lays text out with DrawText in the dialog font and converts
// the result back to dialog units using the font's base units.
func (b *Backend) MeasureText(text string, font native.Font, width int) int {
	hdc := win.GetDC(0)
	if hdc == 0 {
		return 8
	}
	defer win.ReleaseDC(0, hdc)

	dpi, _, _ := procGetDeviceCaps.Call(uintptr(hdc), logPixelsY)
	height := -int32(font.PointSize) * int32(dpi) / 72
	hfont, _, _ := procCreateFontW.Call(uintptr(height), 0, 0, 0, 400, 0, 0, 0,
		defaultCharset, 0, 0, 0, 0, uintptr(unsafe.Pointer(utf16(font.Face))))
	if hfont != 0 {
		old := win.SelectObject(hdc, win.HGDIOBJ(hfont))
		defer func() {
			win.SelectObject(hdc, old)
			win.DeleteObject(win.HGDIOBJ(hfont))
		}()
	}

	var tm textMetric
	procGetTextMetricsW.Call(uintptr(hdc), uintptr(unsafe.Pointer(&tm)))
	var ext textSize
	alphabet := utf16(measureAlphabet)
	procGetTextExtentPoint32W.Call(uintptr(hdc), uintptr(unsafe.Pointer(alphabet)),
		uintptr(len(measureAlphabet)), uintptr(unsafe.Pointer(&ext)))
	baseX := (ext.CX/26 + 1) / 2
	baseY := tm.TmHeight
	if baseX <= 0 || baseY <= 0 {
		b.logger.Debug("Font metrics unavailable, using defaults", zap.String("face", font.Face))
		baseX, baseY = 6, 13
	}

	rc := win.RECT{Right: int32(width) * baseX / 4}
	procDrawTextW.Call(uintptr(hdc), uintptr(unsafe.Pointer(utf16(text))), ^uintptr(0),
		uintptr(unsafe.Pointer(&rc)), dtCalcRect|dtWordBreak|dtNoPrefix)
	px := rc.Bottom - rc.Top
	return int((px*8 + baseY - 1) / baseY)
}

// ButtonLabel returns the caption the system uses in message boxes,
// without the mnemonic marker.
func (b *Backend) ButtonLabel(id int) string {
	if id >= 1 {
		if r, _, _ := procMBGetString.Call(uintptr(id - 1)); r != 0 {
			label := windows.UTF16PtrToString((*uint16)(unsafe.Pointer(r)))
			if label = strings.ReplaceAll(label, "&", ""); label != "" {
				return label
			}
		}
	}
	switch id {
	case native.IDOK:
		return "OK"
	case native.IDCANCEL:
		return "Cancel"
	}
	return ""
}
