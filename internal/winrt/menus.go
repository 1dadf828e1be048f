package winrt

import (
	"go.uber.org/zap"

	"github.com/username/ruwps/internal/menu"
	"github.com/username/ruwps/internal/native"
)

// InstallMenu makes c the live menu. The previous menu is destroyed only
// after c is in place, and not before a popup showing it has closed.
func (r *Runtime) InstallMenu(c *menu.Compiled) error {
	if c.Bar {
		if err := r.b.SetMenuBar(r.hwnd, c.Menu); err != nil {
			return err
		}
	} else if r.menu != nil && r.menu.Bar {
		if err := r.b.SetMenuBar(r.hwnd, 0); err != nil {
			return err
		}
	}
	old := r.menu
	r.menu = c
	if old != nil {
		r.retire(old)
	}
	r.syncBarHooks()
	return nil
}

// Menu returns the live compiled menu.
func (r *Runtime) Menu() *menu.Compiled { return r.menu }

// HasMenuBar reports whether the window shows a menu bar.
func (r *Runtime) HasMenuBar() bool { return r.menu != nil && r.menu.Bar }

func (r *Runtime) retire(c *menu.Compiled) {
	if r.tracking > 0 {
		r.retired = append(r.retired, c)
		return
	}
	c.Destroy()
}

// Popup shows the live menu at pt and runs the selected entry's callback
// once the popup has closed.
func (r *Runtime) Popup(pt native.Point) {
	c := r.menu
	if c == nil || c.Bar {
		return
	}
	r.b.SetForegroundWindow(r.hwnd)
	r.tracking++
	cmd := r.b.TrackPopupMenu(c.Menu, r.hwnd, pt)
	r.tracking--
	// Lets the popup dismiss properly when focus moves elsewhere.
	_ = r.b.PostMessage(r.hwnd, native.WM_NULL, 0, 0)
	if r.tracking == 0 {
		for _, old := range r.retired {
			old.Destroy()
		}
		r.retired = nil
	}
	// The id belongs to the snapshot that was shown, even if a newer one
	// was installed while it was open.
	r.selectIn(c, cmd)
}

// Select runs the callback of the entry behind a command id of the live
// menu. Entries removed or disabled meanwhile are ignored.
func (r *Runtime) Select(cmd uint32) bool {
	return r.selectIn(r.menu, cmd)
}

func (r *Runtime) selectIn(c *menu.Compiled, cmd uint32) bool {
	if cmd == 0 || c == nil {
		return false
	}
	e, ok := c.Lookup(cmd)
	if !ok {
		r.logger.Debug("Stale menu selection", zap.Uint32("id", cmd))
		return false
	}
	r.logger.Debug("Menu selection", zap.Uint32("id", cmd), zap.String("title", e.Title()))
	return e.Invoke()
}

// onCommand handles menu bar and accelerator selections.
func (r *Runtime) onCommand(hwnd native.HWND, wParam, lParam uintptr) (uintptr, bool) {
	if lParam != 0 || native.HIWORD(wParam) > 1 {
		return 0, false
	}
	if r.Select(uint32(native.LOWORD(wParam))) {
		return 0, true
	}
	return 0, false
}
