package winrt

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/menu"
	"github.com/username/ruwps/internal/native"
	"github.com/username/ruwps/internal/native/headless"
)

func newRuntime(t *testing.T) (*Runtime, *headless.Backend) {
	t.Helper()
	b := headless.New()
	icon, err := b.LoadIcon("", 48)
	if err != nil {
		t.Fatal(err)
	}
	logger, _ := zap.NewDevelopment()
	r, err := New(b, Options{Title: "test", Icon: icon, Logger: logger})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r, b
}

func TestRuntime_RoutesFirstResultWins(t *testing.T) {
	r, _ := newRuntime(t)
	const msg = native.WM_USER + 42
	var calls []string

	r.Handle(msg, func(native.HWND, uintptr, uintptr) (uintptr, bool) {
		calls = append(calls, "a")
		return 0, false
	})
	second := r.Handle(msg, func(native.HWND, uintptr, uintptr) (uintptr, bool) {
		calls = append(calls, "b")
		return 7, true
	})
	r.Handle(msg, func(native.HWND, uintptr, uintptr) (uintptr, bool) {
		calls = append(calls, "c")
		return 9, true
	})

	if got := r.wndProc(r.Hwnd(), msg, 0, 0); got != 7 {
		t.Errorf("wndProc() = %d, want 7", got)
	}
	if !reflect.DeepEqual(calls, []string{"a", "b"}) {
		t.Errorf("calls = %v", calls)
	}

	if !r.Unhandle(second) {
		t.Fatal("Unhandle() = false")
	}
	if r.Unhandle(second) {
		t.Error("second Unhandle() = true")
	}
	calls = nil
	if got := r.wndProc(r.Hwnd(), msg, 0, 0); got != 9 {
		t.Errorf("wndProc() = %d, want 9", got)
	}
	if !reflect.DeepEqual(calls, []string{"a", "c"}) {
		t.Errorf("calls = %v", calls)
	}
}

func TestTimer_StateErrors(t *testing.T) {
	r, _ := newRuntime(t)
	tm := r.NewTimer(time.Second, nil)

	if err := tm.Stop(); !errors.Is(err, ErrTimerNotRunning) {
		t.Errorf("Stop() on stopped timer = %v", err)
	}
	if err := tm.SetInterval(2 * time.Second); !errors.Is(err, ErrTimerNotRunning) {
		t.Errorf("SetInterval() on stopped timer = %v", err)
	}
	if tm.Interval() != 2*time.Second {
		t.Errorf("Interval() = %v, want 2s", tm.Interval())
	}
	if err := tm.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if tm.ID() != firstTimerID {
		t.Errorf("ID() = %d, want %d", tm.ID(), firstTimerID)
	}
	if err := tm.Start(); !errors.Is(err, ErrTimerRunning) {
		t.Errorf("second Start() = %v", err)
	}
	if err := tm.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	if tm.ID() != firstTimerID+1 {
		t.Errorf("restarted ID() = %d, want a fresh id", tm.ID())
	}
}

func TestTimer_SetIntervalResetsPhase(t *testing.T) {
	r, b := newRuntime(t)
	var fired []time.Duration

	tm := r.NewTimer(100*time.Millisecond, func(tm *Timer) {
		fired = append(fired, b.Now())
		if len(fired) == 2 {
			r.Quit()
		}
	})
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	b.At(30*time.Millisecond, func() {
		if err := tm.SetInterval(200 * time.Millisecond); err != nil {
			t.Errorf("SetInterval() error = %v", err)
		}
	})

	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	want := []time.Duration{230 * time.Millisecond, 430 * time.Millisecond}
	if !reflect.DeepEqual(fired, want) {
		t.Errorf("fired at %v, want %v", fired, want)
	}
}

func TestTimer_NoFiringAfterQuit(t *testing.T) {
	r, b := newRuntime(t)
	counts := map[string]int{}
	var quitAt time.Duration

	a := r.NewTimer(50*time.Millisecond, func(*Timer) {
		counts["a"]++
		if counts["a"] == 3 {
			quitAt = b.Now()
			r.Quit()
		}
	})
	c := r.NewTimer(50*time.Millisecond, func(*Timer) {
		if quitAt != 0 {
			t.Errorf("timer fired after quit at %v", b.Now())
		}
		counts["c"]++
	})
	for _, tm := range []*Timer{a, c} {
		if err := tm.Start(); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if counts["a"] != 3 {
		t.Errorf("a fired %d times, want 3", counts["a"])
	}
	if a.Running() || c.Running() {
		t.Error("timers still running after teardown")
	}
	if ids := b.Armed(r.Hwnd()); len(ids) != 0 {
		t.Errorf("armed native timers = %v", ids)
	}

	// A WM_TIMER already queued when quit is latched is dropped.
	r2, _ := newRuntime(t)
	fired := false
	tm := r2.NewTimer(time.Second, func(*Timer) { fired = true })
	if err := tm.Start(); err != nil {
		t.Fatal(err)
	}
	r2.Quit()
	r2.wndProc(r2.Hwnd(), native.WM_TIMER, tm.ID(), 0)
	if fired {
		t.Error("WM_TIMER dispatched after quit ran the callback")
	}
}

func compile(t *testing.T, b *headless.Backend, m *menu.Model, bar bool) *menu.Compiled {
	t.Helper()
	c, err := menu.NewCompiler(b, nil).Compile(m.Root(), bar)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	return c
}

func TestRuntime_PopupSelectionAfterClose(t *testing.T) {
	r, b := newRuntime(t)
	m := menu.NewModel(nil)
	inPopup := false
	var selected []string

	cb := func(e *menu.Entry) {
		if inPopup {
			t.Error("callback ran while the popup was open")
		}
		selected = append(selected, e.Title())
	}
	if err := m.Replace(
		menu.Item{Title: "Keep", Callback: cb},
		menu.Item{Title: "Drop", Callback: cb},
	); err != nil {
		t.Fatal(err)
	}
	m.OnChange(func() {
		if err := r.InstallMenu(compile(t, b, m, false)); err != nil {
			t.Fatal(err)
		}
	})
	first := compile(t, b, m, false)
	if err := r.InstallMenu(first); err != nil {
		t.Fatal(err)
	}

	b.OnPopup(func(pm *headless.Menu) uint32 {
		inPopup = true
		defer func() { inPopup = false }()
		id := headless.Select("Keep")(pm)
		// Mutating the menu while it is shown must not release it.
		m.Root().Get("Keep").SetTitle("Kept")
		if b.Menu(first.Menu).Destroyed() {
			t.Error("menu destroyed while tracking")
		}
		return id
	})
	r.Popup(native.Point{})

	if !b.Menu(first.Menu).Destroyed() {
		t.Error("retired menu not destroyed after popup closed")
	}
	if !reflect.DeepEqual(selected, []string{"Kept"}) {
		t.Errorf("selected = %v", selected)
	}

	// An entry removed while the popup is open is not invoked.
	b.OnPopup(func(pm *headless.Menu) uint32 {
		id := headless.Select("Drop")(pm)
		m.Root().Remove("Drop")
		return id
	})
	r.Popup(native.Point{})
	if len(selected) != 1 {
		t.Errorf("removed entry invoked: %v", selected)
	}
	if b.Popups() != 2 {
		t.Errorf("popups = %d", b.Popups())
	}

	r.Close()
	if b.LiveMenus() != 0 || b.Invalid() != 0 {
		t.Errorf("live menus = %d, invalid = %d", b.LiveMenus(), b.Invalid())
	}
}

func TestRuntime_MenuBarCommandAfterIdentityWrap(t *testing.T) {
	r, b := newRuntime(t)
	m := menu.NewModel(nil)
	var hits []string
	cb := func(e *menu.Entry) { hits = append(hits, e.Title()) }
	m.Root().AddItem(menu.Item{Title: "Old", Callback: cb})
	// Push entry identities past 16 bits, as a long running app rebuilding
	// a submenu would.
	for i := 0; i < 1<<16; i++ {
		m.Root().AddItem(menu.Item{Title: "tmp"})
		m.Root().Remove("tmp")
	}
	newer := m.Root().AddItem(menu.Item{Title: "New", Callback: cb})
	if newer.ID() <= 0xFFFF {
		t.Fatalf("identity = %d, want above 16 bits", newer.ID())
	}

	c := compile(t, b, m, true)
	if err := r.InstallMenu(c); err != nil {
		t.Fatal(err)
	}
	item, ok := b.Menu(c.Menu).Find("New")
	if !ok {
		t.Fatal("New not in the menu bar")
	}
	b.Script(
		func() {
			_ = b.PostMessage(r.Hwnd(), native.WM_COMMAND, native.MAKELONG(uint16(item.ID), 0), 0)
		},
		func() { r.Quit() },
	)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(hits, []string{"New"}) {
		t.Errorf("menu bar selection invoked %v, want [New]", hits)
	}
}

func TestRuntime_AcceleratorSelects(t *testing.T) {
	r, b := newRuntime(t)
	m := menu.NewModel(nil)
	hits := 0
	if err := m.Replace(menu.Item{Title: "Reload", Shortcut: "Ctrl+R", Callback: func(*menu.Entry) {
		hits++
		r.Quit()
	}}); err != nil {
		t.Fatal(err)
	}
	if err := r.InstallMenu(compile(t, b, m, true)); err != nil {
		t.Fatal(err)
	}
	b.SetForegroundWindow(r.Hwnd())
	b.Script(func() { b.PressKey(native.FCONTROL, 'R') })

	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if hits != 1 {
		t.Errorf("accelerator hits = %d, want 1", hits)
	}
}

func TestRuntime_TeardownOrder(t *testing.T) {
	r, b := newRuntime(t)
	hwnd := r.Hwnd()
	m := menu.NewModel(nil)
	m.Root().AddItem(menu.Item{Title: "x", Shortcut: "F5", Callback: func(*menu.Entry) {}})
	c := compile(t, b, m, false)
	if err := r.InstallMenu(c); err != nil {
		t.Fatal(err)
	}

	hookRan := false
	r.OnExit(func() {
		hookRan = true
		if w, _ := b.Window(hwnd); w.Destroyed {
			t.Error("window destroyed before exit hooks")
		}
	})
	r.Quit()
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}

	if !hookRan {
		t.Error("exit hook did not run")
	}
	if w, _ := b.Window(hwnd); !w.Destroyed {
		t.Error("window not destroyed")
	}
	if b.LiveIcons() != 0 {
		t.Errorf("live icons = %d", b.LiveIcons())
	}
	if len(b.Accelerators(c.Accel)) != 0 || b.LiveMenus() != 0 {
		t.Error("menu resources leaked")
	}
	if b.Invalid() != 0 {
		t.Errorf("invalid handle uses = %d", b.Invalid())
	}
	if err := r.Run(); err == nil {
		t.Error("Run() on a closed runtime succeeded")
	}
}

func TestRuntime_RequestQuit(t *testing.T) {
	r, _ := newRuntime(t)
	asked := 0
	r.SetQuitRequestHandler(func() {
		asked++
		if asked == 2 {
			r.Quit()
		}
	})
	if err := r.RequestQuit(); err != nil {
		t.Fatal(err)
	}
	if err := r.RequestQuit(); err != nil {
		t.Fatal(err)
	}
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if asked != 2 {
		t.Errorf("quit handler ran %d times, want 2", asked)
	}
}

func TestRuntime_RunModalRepostsQuit(t *testing.T) {
	r, b := newRuntime(t)
	b.PostQuitMessage(0)
	if r.RunModal(func() bool { return false }) {
		t.Fatal("RunModal() = true after WM_QUIT")
	}
	var msg native.Msg
	if b.GetMessage(&msg) {
		t.Errorf("outer loop got %+v, want WM_QUIT", msg)
	}
}

func TestRuntime_Theme(t *testing.T) {
	r, b := newRuntime(t)

	r.ApplyTheme(true)
	if w, _ := b.Window(r.Hwnd()); !w.Dark {
		t.Error("window not dark")
	}
	if r.Routes(native.WM_UAHDRAWMENU) != 0 {
		t.Error("menu bar hooks installed without a menu bar")
	}

	m := menu.NewModel(nil)
	m.Root().AddSubmenu("File")
	if err := r.InstallMenu(compile(t, b, m, true)); err != nil {
		t.Fatal(err)
	}
	for _, msg := range []uint32{native.WM_UAHDRAWMENU, native.WM_UAHDRAWMENUITEM, native.WM_NCPAINT, native.WM_NCACTIVATE} {
		if r.Routes(msg) != 1 {
			t.Errorf("routes for %#x = %d, want 1", msg, r.Routes(msg))
		}
	}
	if got := r.wndProc(r.Hwnd(), native.WM_NCPAINT, 1, 0); got != 1 {
		t.Errorf("WM_NCPAINT result = %d", got)
	}
	r.wndProc(r.Hwnd(), native.WM_UAHDRAWMENU, 0, 0)
	if b.Painted("line") != 1 || b.Painted("bar") != 1 {
		t.Errorf("painted line=%d bar=%d", b.Painted("line"), b.Painted("bar"))
	}

	r.ApplyTheme(false)
	for _, msg := range []uint32{native.WM_UAHDRAWMENU, native.WM_UAHDRAWMENUITEM, native.WM_NCPAINT, native.WM_NCACTIVATE} {
		if r.Routes(msg) != 0 {
			t.Errorf("routes for %#x = %d after light", msg, r.Routes(msg))
		}
	}
}

func TestRuntime_AutoThemeFollowsSystem(t *testing.T) {
	r, b := newRuntime(t)
	b.SetSystemDark(true)
	// Drop the broadcast queued before the runtime followed the system.
	var msg native.Msg
	b.GetMessage(&msg)

	r.SetTheme(ThemeAuto)
	if !r.Dark() {
		t.Fatal("auto theme ignored dark system setting")
	}
	b.Script(
		func() { b.SetSystemDark(false) },
		func() { r.Quit() },
	)
	if err := r.Run(); err != nil {
		t.Fatal(err)
	}
	if r.Dark() {
		t.Error("theme did not follow the system back to light")
	}

	if _, err := ParseTheme("purple"); err == nil {
		t.Error("ParseTheme accepted an unknown theme")
	}
}
