// Package dialog synthesizes in-memory dialog templates for alert and prompt
// boxes and drives them either synchronously, inside a nested message loop,
// or asynchronously through the runtime's open-dialog registry.
package dialog

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

// ErrClosed is returned when showing a dialog that was already shown.
var ErrClosed = errors.New("dialog already shown")

// Host is the part of the window runtime dialogs run on.
type Host interface {
	Backend() native.Backend
	// Owner is the window dialogs are owned by.
	Owner() native.HWND
	// Track adds a dialog to the open-dialog registry; Untrack removes it.
	Track(hwnd native.HWND)
	Untrack(hwnd native.HWND)
	// RunModal pumps the message loop until done reports true. It returns
	// false when the message queue delivered WM_QUIT first; the quit is then
	// re-posted for the outer loop.
	RunModal(done func() bool) bool
}

type state int

const (
	stateNew state = iota
	stateOpen
	stateClosed
)

// Dialog is one live modal built from a template whose buttons have ids
// equal to their position.
type Dialog struct {
	host    Host
	tpl     *native.DialogTemplate
	buttons int
	logger  *zap.Logger

	hwnd   native.HWND
	state  state
	result int
	modal  bool

	// OnInit runs while WM_INITDIALOG is processed.
	OnInit func(hwnd native.HWND)
	// OnEnd runs on the close transition while the controls still exist.
	OnEnd func(hwnd native.HWND, index int)
}

// New wraps a template with buttons buttons.
func New(host Host, tpl *native.DialogTemplate, buttons int, logger *zap.Logger) *Dialog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dialog{host: host, tpl: tpl, buttons: buttons, logger: logger}
}

// Hwnd returns the native dialog window, zero before it was shown.
func (d *Dialog) Hwnd() native.HWND { return d.hwnd }

// Closed reports whether the dialog went through its close transition.
func (d *Dialog) Closed() bool { return d.state == stateClosed }

// Result returns the index of the button that closed the dialog.
func (d *Dialog) Result() int { return d.result }

func (d *Dialog) create() error {
	if d.state != stateNew {
		return ErrClosed
	}
	b := d.host.Backend()
	hwnd, err := b.CreateDialog(d.host.Owner(), d.tpl, d.proc)
	if err != nil {
		return fmt.Errorf("failed to create dialog %q: %w", d.tpl.Caption, err)
	}
	// WM_INITDIALOG may already have closed it.
	if d.state == stateNew {
		d.hwnd = hwnd
		d.state = stateOpen
		d.host.Track(hwnd)
	}
	return nil
}

// ShowSync shows the dialog and returns once it is closed, with the index
// of the button that closed it. Other routes keep firing meanwhile.
func (d *Dialog) ShowSync() (int, error) {
	d.modal = true
	if err := d.create(); err != nil {
		return 0, err
	}
	b := d.host.Backend()
	owner := d.host.Owner()
	if d.state == stateOpen {
		b.EnableWindow(owner, false)
		d.logger.Debug("Dialog opened", zap.String("caption", d.tpl.Caption), zap.Bool("modal", true))
		if !d.host.RunModal(d.Closed) && !d.Closed() {
			d.logger.Debug("Quit while dialog open", zap.String("caption", d.tpl.Caption))
			d.End(d.buttons - 1)
		}
	}
	b.SetActiveWindow(owner)
	return d.result, nil
}

// ShowAsync shows the dialog and returns at once. The outcome is only
// delivered through OnEnd.
func (d *Dialog) ShowAsync() error {
	if err := d.create(); err != nil {
		return err
	}
	d.logger.Debug("Dialog opened", zap.String("caption", d.tpl.Caption), zap.Bool("modal", false))
	return nil
}

// End closes the dialog with the given button index. Only the first call
// has an effect.
func (d *Dialog) End(index int) {
	if d.state == stateClosed {
		return
	}
	hwnd := d.hwnd
	wasOpen := d.state == stateOpen
	d.state = stateClosed
	d.result = index
	if d.OnEnd != nil {
		d.OnEnd(hwnd, index)
	}
	if wasOpen {
		d.host.Untrack(hwnd)
	}
	b := d.host.Backend()
	if d.modal {
		b.EnableWindow(d.host.Owner(), true)
	}
	if hwnd != 0 {
		b.DestroyWindow(hwnd)
	}
	d.logger.Debug("Dialog closed", zap.String("caption", d.tpl.Caption), zap.Int("button", index))
}

func (d *Dialog) proc(hwnd native.HWND, msg uint32, wParam, lParam uintptr) bool {
	switch msg {
	case native.WM_INITDIALOG:
		if d.hwnd == 0 {
			d.hwnd = hwnd
		}
		if d.OnInit != nil {
			d.OnInit(hwnd)
		}
		return true
	case native.WM_COMMAND:
		if native.HIWORD(wParam) != native.BN_CLICKED {
			return false
		}
		id := int(native.LOWORD(wParam))
		switch {
		case id < d.buttons:
			d.End(id)
		case id == native.IDCANCEL:
			// Escape on a dialog without a third button.
			d.End(d.buttons - 1)
		default:
			return false
		}
		return true
	case native.WM_CLOSE:
		d.End(d.buttons - 1)
		return true
	}
	return false
}
