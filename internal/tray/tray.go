// Package tray owns the single notification-area icon of an application.
package tray

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

const (
	// IconID is the per-window icon id.
	IconID = 300
	// CallbackMessage is posted to the owner window for icon events.
	CallbackMessage = native.WM_USER + 1
)

// ErrHidden is returned when mutating an icon that is not shown.
var ErrHidden = errors.New("tray icon is not shown")

// Balloon icon kinds.
const (
	KindNone    = native.NIIF_NONE
	KindInfo    = native.NIIF_INFO
	KindWarning = native.NIIF_WARNING
	KindError   = native.NIIF_ERROR
)

// Notification is one balloon.
type Notification struct {
	Title   string
	Message string
	Kind    uint32
	Silent  bool
	Payload any
	// Timeout is only honoured by shells older than Vista.
	Timeout time.Duration
}

// Icon is the notification-area icon of one owner window. The GUID stays the
// same for the life of the Icon and is restated in every update.
type Icon struct {
	shell   native.Shell
	owner   native.HWND
	guid    uuid.UUID
	logger  *zap.Logger
	icon    native.HICON
	tooltip string
	shown   bool

	payload    any
	hasPayload bool
	onClick    func(payload any)
	onMenu     func(pt native.Point)
}

// New returns a hidden icon bound to owner. The icon handle becomes owned by
// the Icon and is destroyed when replaced or on Close.
func New(shell native.Shell, owner native.HWND, icon native.HICON, tooltip string, logger *zap.Logger) *Icon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Icon{
		shell:   shell,
		owner:   owner,
		guid:    uuid.New(),
		icon:    icon,
		tooltip: tooltip,
		logger:  logger,
	}
}

// GUID returns the identity the shell correlates updates with.
func (t *Icon) GUID() uuid.UUID { return t.guid }

func (t *Icon) Shown() bool { return t.shown }

func (t *Icon) Tooltip() string { return t.tooltip }

func (t *Icon) Handle() native.HICON { return t.icon }

// OnNotificationClick registers the callback run with the payload of the
// balloon the user clicked.
func (t *Icon) OnNotificationClick(fn func(payload any)) { t.onClick = fn }

// OnContextMenu registers the callback run on a right click with the point
// the popup menu should be anchored at.
func (t *Icon) OnContextMenu(fn func(pt native.Point)) { t.onMenu = fn }

func (t *Icon) data(flags uint32) *native.NotifyIconData {
	return &native.NotifyIconData{
		Hwnd:  t.owner,
		ID:    IconID,
		Flags: flags | native.NIF_GUID,
		GUID:  t.guid,
	}
}

// Show adds the icon to the notification area.
func (t *Icon) Show() error {
	if t.shown {
		return nil
	}
	d := t.data(native.NIF_ICON | native.NIF_MESSAGE | native.NIF_TIP | native.NIF_SHOWTIP)
	d.CallbackMessage = CallbackMessage
	d.Icon = t.icon
	d.Tip = t.tooltip
	d.State = native.NIS_SHAREDICON
	d.StateMask = native.NIS_SHAREDICON
	if err := t.shell.NotifyIcon(native.NIM_ADD, d); err != nil {
		return fmt.Errorf("failed to add tray icon: %w", err)
	}
	t.shown = true

	v := t.data(0)
	v.Version = native.NOTIFYICON_VERSION_4
	if err := t.shell.NotifyIcon(native.NIM_SETVERSION, v); err != nil {
		t.logger.Warn("Failed to set tray icon version", zap.Error(err))
	}
	t.logger.Debug("Tray icon shown", zap.String("guid", t.guid.String()))
	return nil
}

// Hide removes the icon from the notification area.
func (t *Icon) Hide() error {
	if !t.shown {
		return nil
	}
	t.shown = false
	if err := t.shell.NotifyIcon(native.NIM_DELETE, t.data(0)); err != nil {
		return fmt.Errorf("failed to remove tray icon: %w", err)
	}
	t.logger.Debug("Tray icon hidden")
	return nil
}

// SetIcon replaces the icon. The previous handle is released only once the
// shell accepted the new one.
func (t *Icon) SetIcon(icon native.HICON) error {
	old := t.icon
	if t.shown {
		d := t.data(native.NIF_ICON | native.NIF_SHOWTIP)
		d.Icon = icon
		if err := t.shell.NotifyIcon(native.NIM_MODIFY, d); err != nil {
			return fmt.Errorf("failed to update tray icon: %w", err)
		}
	}
	t.icon = icon
	if old != 0 && old != icon {
		t.shell.DestroyIcon(old)
	}
	return nil
}

// SetTooltip replaces the tooltip text.
func (t *Icon) SetTooltip(text string) error {
	t.tooltip = text
	if !t.shown {
		return nil
	}
	d := t.data(native.NIF_TIP | native.NIF_SHOWTIP)
	d.Tip = text
	if err := t.shell.NotifyIcon(native.NIM_MODIFY, d); err != nil {
		return fmt.Errorf("failed to update tray tooltip: %w", err)
	}
	return nil
}

// RestoreTooltip shows the normal tooltip again after a balloon.
func (t *Icon) RestoreTooltip() error {
	return t.SetTooltip(t.tooltip)
}

// Notify posts a balloon. A later balloon replaces an outstanding one, and
// only its payload is delivered on click.
func (t *Icon) Notify(n Notification) error {
	if !t.shown {
		return ErrHidden
	}
	d := t.data(native.NIF_INFO)
	d.Info = n.Message
	d.InfoTitle = n.Title
	d.InfoFlags = n.Kind
	d.Timeout = uint32(n.Timeout.Milliseconds())
	if n.Silent {
		d.InfoFlags |= native.NIIF_NOSOUND
	}
	if err := t.shell.NotifyIcon(native.NIM_MODIFY, d); err != nil {
		return fmt.Errorf("failed to post notification: %w", err)
	}
	t.payload, t.hasPayload = n.Payload, true
	t.logger.Debug("Notification posted", zap.String("title", n.Title))
	return nil
}

// Payload returns the payload of the last posted balloon.
func (t *Icon) Payload() (any, bool) { return t.payload, t.hasPayload }

// HandleCallback processes the icon callback message. It fits the route
// signature of the window runtime.
func (t *Icon) HandleCallback(hwnd native.HWND, wParam, lParam uintptr) (uintptr, bool) {
	switch uint32(native.LOWORD(lParam)) {
	// Version 4 icons follow the WM_RBUTTONUP of a right click with
	// WM_CONTEXTMENU, which keyboard requests send as well.
	case native.WM_CONTEXTMENU:
		if t.onMenu != nil {
			t.onMenu(t.shell.TrayAnchor(wParam))
		}
	case native.NIN_BALLOONTIMEOUT:
		if err := t.RestoreTooltip(); err != nil {
			t.logger.Warn("Failed to restore tooltip", zap.Error(err))
		}
	case native.NIN_BALLOONUSERCLICK:
		if err := t.RestoreTooltip(); err != nil {
			t.logger.Warn("Failed to restore tooltip", zap.Error(err))
		}
		if t.onClick != nil && t.hasPayload {
			t.onClick(t.payload)
		}
	}
	return 0, true
}

// Close hides the icon and destroys its handle.
func (t *Icon) Close() error {
	err := t.Hide()
	if t.icon != 0 {
		t.shell.DestroyIcon(t.icon)
		t.icon = 0
	}
	return err
}
