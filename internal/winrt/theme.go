package winrt

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

// Theme selects the colors of native chrome.
type Theme int

const (
	ThemeAuto Theme = iota
	ThemeLight
	ThemeDark
)

func (t Theme) String() string {
	switch t {
	case ThemeAuto:
		return "auto"
	case ThemeLight:
		return "light"
	case ThemeDark:
		return "dark"
	}
	return fmt.Sprintf("Theme(%d)", int(t))
}

// ParseTheme reads "auto", "light" or "dark".
func ParseTheme(s string) (Theme, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto", "system":
		return ThemeAuto, nil
	case "light":
		return ThemeLight, nil
	case "dark":
		return ThemeDark, nil
	}
	return ThemeAuto, fmt.Errorf("unknown theme %q", s)
}

// Dark reports whether the dark variant is applied.
func (r *Runtime) Dark() bool { return r.dark }

// SetTheme applies t. ThemeAuto follows the system setting and keeps
// following it on WM_SETTINGCHANGE.
func (r *Runtime) SetTheme(t Theme) {
	r.theme = t
	switch t {
	case ThemeAuto:
		if r.autoRoute == 0 {
			r.autoRoute = r.Handle(native.WM_SETTINGCHANGE, r.onSettingChange)
		}
		r.ApplyTheme(r.b.SystemUsesDarkTheme())
	default:
		if r.autoRoute != 0 {
			r.Unhandle(r.autoRoute)
			r.autoRoute = 0
		}
		r.ApplyTheme(t == ThemeDark)
	}
}

func (r *Runtime) onSettingChange(hwnd native.HWND, wParam, lParam uintptr) (uintptr, bool) {
	if dark := r.b.SystemUsesDarkTheme(); dark != r.dark {
		r.logger.Debug("System theme changed", zap.Bool("dark", dark))
		r.ApplyTheme(dark)
	}
	return 0, false
}

// ApplyTheme repaints the window and popup menus in the light or dark
// variant. The menu bar paint hooks are installed only while a menu bar is
// shown in dark mode.
func (r *Runtime) ApplyTheme(dark bool) {
	r.dark = dark
	r.b.ApplyTheme(r.hwnd, dark)
	r.syncBarHooks()
}

func (r *Runtime) syncBarHooks() {
	want := r.dark && r.HasMenuBar()
	have := len(r.barRoutes) > 0
	switch {
	case want && !have:
		r.barRoutes = []RouteID{
			r.Handle(native.WM_UAHDRAWMENU, func(hwnd native.HWND, _, lParam uintptr) (uintptr, bool) {
				return r.b.PaintMenuBar(hwnd, lParam), true
			}),
			r.Handle(native.WM_UAHDRAWMENUITEM, func(hwnd native.HWND, _, lParam uintptr) (uintptr, bool) {
				return r.b.PaintMenuBarItem(hwnd, lParam), true
			}),
			r.Handle(native.WM_NCPAINT, r.paintBottomLine(native.WM_NCPAINT)),
			r.Handle(native.WM_NCACTIVATE, r.paintBottomLine(native.WM_NCACTIVATE)),
		}
	case !want && have:
		for _, id := range r.barRoutes {
			r.Unhandle(id)
		}
		r.barRoutes = nil
	}
}

// paintBottomLine covers the light line the system draws under a menu bar.
func (r *Runtime) paintBottomLine(msg uint32) RouteFunc {
	return func(hwnd native.HWND, wParam, lParam uintptr) (uintptr, bool) {
		r.b.DefWindowProc(hwnd, msg, wParam, lParam)
		r.b.PaintMenuBarLine(hwnd)
		return 1, true
	}
}
