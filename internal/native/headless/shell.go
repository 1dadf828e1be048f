package headless

import (
	"errors"

	"github.com/username/ruwps/internal/native"
)

// workAreaBottom is the y coordinate popups are anchored to.
const workAreaBottom = 1040

// TrayIcon is the notification area state of one icon, keyed by GUID.
type TrayIcon struct {
	Hwnd            native.HWND
	ID              uint32
	GUID            [16]byte
	CallbackMessage uint32
	Icon            native.HICON
	Tip             string
	ShowTip         bool
	State           uint32
	Version         uint32

	BalloonTitle   string
	BalloonInfo    string
	BalloonFlags   uint32
	BalloonVisible bool

	Modifies int
}

func (b *Backend) LoadIcon(path string, size int) (native.HICON, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("LoadIcon"); err != nil {
		return 0, err
	}
	if path == "" {
		path = "default"
	}
	h := native.HICON(b.handle())
	b.icons[h] = path
	return h, nil
}

func (b *Backend) DestroyIcon(icon native.HICON) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.icons[icon]; !ok {
		b.invalid++
		return
	}
	delete(b.icons, icon)
}

// IconPath returns the file a live icon was loaded from.
func (b *Backend) IconPath(h native.HICON) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	p, ok := b.icons[h]
	return p, ok
}

// LiveIcons counts icons that were loaded and not destroyed.
func (b *Backend) LiveIcons() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.icons)
}

func (b *Backend) NotifyIcon(op uint32, data *native.NotifyIconData) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("NotifyIcon"); err != nil {
		return err
	}
	if data.Flags&native.NIF_GUID == 0 && op != native.NIM_ADD {
		return native.Fail("Shell_NotifyIcon", errors.New("icon not identified by GUID"))
	}
	icon, exists := b.tray[data.GUID]
	switch op {
	case native.NIM_ADD:
		if exists {
			return native.Fail("Shell_NotifyIcon", errors.New("icon already added"))
		}
		icon = &TrayIcon{ID: data.ID, GUID: data.GUID, Hwnd: data.Hwnd}
		if err := b.applyNotify(icon, data); err != nil {
			return err
		}
		b.tray[data.GUID] = icon
	case native.NIM_MODIFY:
		if !exists {
			return native.Fail("Shell_NotifyIcon", errors.New("icon not found"))
		}
		icon.Modifies++
		return b.applyNotify(icon, data)
	case native.NIM_DELETE:
		if !exists {
			return native.Fail("Shell_NotifyIcon", errors.New("icon not found"))
		}
		delete(b.tray, data.GUID)
	case native.NIM_SETVERSION:
		if !exists {
			return native.Fail("Shell_NotifyIcon", errors.New("icon not found"))
		}
		icon.Version = data.Version
	}
	return nil
}

func (b *Backend) applyNotify(icon *TrayIcon, data *native.NotifyIconData) error {
	if data.Flags&native.NIF_ICON != 0 {
		if _, ok := b.icons[data.Icon]; !ok {
			b.invalid++
			return native.Fail("Shell_NotifyIcon", errors.New("invalid icon handle"))
		}
		icon.Icon = data.Icon
	}
	if data.Flags&native.NIF_MESSAGE != 0 {
		icon.CallbackMessage = data.CallbackMessage
		icon.Hwnd = data.Hwnd
	}
	if data.Flags&native.NIF_TIP != 0 {
		icon.Tip = data.Tip
	}
	if data.Flags&native.NIF_STATE != 0 {
		icon.State = icon.State&^data.StateMask | data.State&data.StateMask
	}
	if data.Flags&native.NIF_INFO != 0 {
		icon.BalloonTitle = data.InfoTitle
		icon.BalloonInfo = data.Info
		icon.BalloonFlags = data.InfoFlags
		icon.BalloonVisible = data.Info != ""
		if icon.BalloonVisible {
			icon.ShowTip = false
		}
	} else if data.Flags&native.NIF_SHOWTIP != 0 {
		icon.ShowTip = true
	} else if icon.Version >= native.NOTIFYICON_VERSION_4 {
		// A version 4 icon keeps its standard tooltip only while every
		// modification restates NIF_SHOWTIP.
		icon.ShowTip = false
	}
	return nil
}

func (b *Backend) TrayAnchor(wParam uintptr) native.Point {
	return native.Point{X: int32(int16(native.LOWORD(wParam))), Y: workAreaBottom}
}

// Tray returns a snapshot of the first icon in the notification area.
func (b *Backend) Tray() (TrayIcon, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, icon := range b.tray {
		return *icon, true
	}
	return TrayIcon{}, false
}

func (b *Backend) trayEvent(event uint16, hideBalloon bool) bool {
	b.mu.Lock()
	var icon *TrayIcon
	for _, i := range b.tray {
		icon = i
		break
	}
	if icon == nil {
		b.mu.Unlock()
		return false
	}
	if hideBalloon {
		if !icon.BalloonVisible {
			b.mu.Unlock()
			return false
		}
		icon.BalloonVisible = false
	}
	hwnd, msg, id := icon.Hwnd, icon.CallbackMessage, icon.ID
	b.mu.Unlock()
	_ = b.PostMessage(hwnd, msg, native.MAKELONG(320, workAreaBottom), native.MAKELONG(event, uint16(id)))
	return true
}

// RightClickTray posts what the shell sends a version 4 icon for one right
// click: the button release followed by WM_CONTEXTMENU.
func (b *Backend) RightClickTray() bool {
	return b.trayEvent(native.WM_RBUTTONUP, false) && b.trayEvent(native.WM_CONTEXTMENU, false)
}

// ClickBalloon dismisses the visible balloon by clicking it.
func (b *Backend) ClickBalloon() bool {
	return b.trayEvent(native.NIN_BALLOONUSERCLICK, true)
}

// TimeoutBalloon lets the visible balloon time out.
func (b *Backend) TimeoutBalloon() bool {
	return b.trayEvent(native.NIN_BALLOONTIMEOUT, true)
}
