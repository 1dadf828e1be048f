// Package headless is an in-memory native.Backend. It keeps every native
// object as plain data, runs timers on a virtual clock and lets tests script
// user input (popup selections, dialog clicks, tray clicks, key presses).
//
// The message queue has no real input source: once the queue is empty, the
// script is exhausted and no timer is armed, GetMessage reports WM_QUIT so a
// loop under test always terminates.
package headless

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/username/ruwps/internal/native"
)

const minTimerInterval = 10 * time.Millisecond

type class struct {
	proc native.WndProc
	icon native.HICON
}

type window struct {
	class     string
	title     string
	proc      native.WndProc
	dialog    *Dialog
	visible   bool
	enabled   bool
	dark      bool
	menuBar   native.HMENU
	destroyed bool
}

type timerKey struct {
	hwnd native.HWND
	id   uintptr
}

type timer struct {
	key      timerKey
	interval time.Duration
	due      time.Duration
	seq      uint64
}

type action struct {
	at  time.Duration
	seq uint64
	fn  func()
}

// Backend implements native.Backend in memory.
type Backend struct {
	mu sync.Mutex

	now     time.Duration
	handles uintptr
	seq     uint64

	queue   []native.Msg
	script  []func()
	actions []*action

	classes map[string]*class
	windows map[native.HWND]*window
	timers  map[timerKey]*timer
	menus   map[native.HMENU]*Menu
	accels  map[native.HACCEL][]native.Accel
	icons   map[native.HICON]string
	bitmaps map[native.HBITMAP]string
	tray    map[[16]byte]*TrayIcon
	dialogs []*Dialog

	onPopup  func(*Menu) uint32
	onDialog func(*Dialog)
	failures map[string][]error

	dark       bool
	foreground native.HWND
	popups     int
	invalid    int
	painted    map[string]int
}

// New returns an empty backend whose virtual clock starts at zero.
func New() *Backend {
	return &Backend{
		handles:  0x100,
		classes:  make(map[string]*class),
		windows:  make(map[native.HWND]*window),
		timers:   make(map[timerKey]*timer),
		menus:    make(map[native.HMENU]*Menu),
		accels:   make(map[native.HACCEL][]native.Accel),
		icons:    make(map[native.HICON]string),
		bitmaps:  make(map[native.HBITMAP]string),
		tray:     make(map[[16]byte]*TrayIcon),
		failures: make(map[string][]error),
		painted:  make(map[string]int),
	}
}

var _ native.Backend = (*Backend)(nil)

func (b *Backend) handle() uintptr {
	b.handles++
	return b.handles
}

func (b *Backend) nextSeq() uint64 {
	b.seq++
	return b.seq
}

// fail pops an injected failure for op. Callers hold b.mu.
func (b *Backend) fail(op string) error {
	errs := b.failures[op]
	if len(errs) == 0 {
		return nil
	}
	b.failures[op] = errs[1:]
	return native.Fail(op, errs[0])
}

// FailNext makes the next call of the named backend method fail with err.
func (b *Backend) FailNext(op string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		err = errors.New("injected failure")
	}
	b.failures[op] = append(b.failures[op], err)
}

// Now returns the virtual clock.
func (b *Backend) Now() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.now
}

// Script queues steps that run, one at a time, whenever the message queue
// runs dry.
func (b *Backend) Script(steps ...func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.script = append(b.script, steps...)
}

// At runs fn from inside GetMessage once the virtual clock reaches t.
func (b *Backend) At(t time.Duration, fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.actions = append(b.actions, &action{at: t, seq: b.nextSeq(), fn: fn})
}

// OnPopup installs the function that picks a command while a popup menu is
// tracked. Returning zero dismisses the popup.
func (b *Backend) OnPopup(fn func(*Menu) uint32) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPopup = fn
}

// OnDialog installs a hook called after every dialog received WM_INITDIALOG.
func (b *Backend) OnDialog(fn func(*Dialog)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onDialog = fn
}

// Invalid counts operations on handles that were already destroyed.
func (b *Backend) Invalid() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.invalid
}

// Popups counts TrackPopupMenu calls.
func (b *Backend) Popups() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.popups
}

// Painted reports how often a menu bar paint hook ran.
func (b *Backend) Painted(part string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.painted[part]
}

// Windows and message queue

func (b *Backend) RegisterClass(name string, proc native.WndProc, icon native.HICON) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("RegisterClass"); err != nil {
		return err
	}
	if _, ok := b.classes[name]; ok {
		return native.Fail("RegisterClass", fmt.Errorf("class %q already exists", name))
	}
	b.classes[name] = &class{proc: proc, icon: icon}
	return nil
}

func (b *Backend) UnregisterClass(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.classes, name)
}

func (b *Backend) CreateWindow(className, title string) (native.HWND, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("CreateWindow"); err != nil {
		return 0, err
	}
	c, ok := b.classes[className]
	if !ok {
		return 0, native.Fail("CreateWindow", fmt.Errorf("class %q not registered", className))
	}
	hwnd := native.HWND(b.handle())
	b.windows[hwnd] = &window{class: className, title: title, proc: c.proc, enabled: true}
	return hwnd, nil
}

func (b *Backend) DestroyWindow(hwnd native.HWND) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[hwnd]
	if !ok || w.destroyed {
		b.invalid++
		return
	}
	w.destroyed = true
	w.visible = false
	if w.dialog != nil {
		w.dialog.destroyed = true
	}
	for k := range b.timers {
		if k.hwnd == hwnd {
			delete(b.timers, k)
		}
	}
	if b.foreground == hwnd {
		b.foreground = 0
	}
}

func (b *Backend) ShowWindow(hwnd native.HWND, show bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[hwnd]; ok && !w.destroyed {
		w.visible = show
	}
}

func (b *Backend) SetForegroundWindow(hwnd native.HWND) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.foreground = hwnd
}

func (b *Backend) SetActiveWindow(hwnd native.HWND) {
	b.SetForegroundWindow(hwnd)
}

func (b *Backend) EnableWindow(hwnd native.HWND, enable bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[hwnd]; ok {
		w.enabled = enable
	}
}

func (b *Backend) DefWindowProc(hwnd native.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	return 0
}

// GetMessage pops the queue, then runs pending script steps, then fires the
// earliest timer or scheduled action by advancing the virtual clock.
func (b *Backend) GetMessage(msg *native.Msg) bool {
	for {
		b.mu.Lock()
		if len(b.queue) > 0 {
			m := b.queue[0]
			b.queue = b.queue[1:]
			b.mu.Unlock()
			if m.Message == native.WM_QUIT {
				return false
			}
			*msg = m
			return true
		}
		if len(b.script) > 0 {
			step := b.script[0]
			b.script = b.script[1:]
			b.mu.Unlock()
			step()
			continue
		}

		t := b.earliestTimer()
		a := b.earliestAction()
		switch {
		case a != nil && (t == nil || a.at <= t.due):
			b.removeAction(a)
			if a.at > b.now {
				b.now = a.at
			}
			b.mu.Unlock()
			a.fn()
			continue
		case t != nil:
			if t.due > b.now {
				b.now = t.due
			}
			t.due = b.now + t.interval
			*msg = native.Msg{Hwnd: t.key.hwnd, Message: native.WM_TIMER, WParam: t.key.id}
			b.mu.Unlock()
			return true
		}
		b.mu.Unlock()
		return false
	}
}

func (b *Backend) earliestTimer() *timer {
	var best *timer
	for _, t := range b.timers {
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (b *Backend) earliestAction() *action {
	var best *action
	for _, a := range b.actions {
		if best == nil || a.at < best.at || (a.at == best.at && a.seq < best.seq) {
			best = a
		}
	}
	return best
}

func (b *Backend) removeAction(a *action) {
	for i, x := range b.actions {
		if x == a {
			b.actions = append(b.actions[:i], b.actions[i+1:]...)
			return
		}
	}
}

func (b *Backend) PostMessage(hwnd native.HWND, msg uint32, wParam, lParam uintptr) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, native.Msg{Hwnd: hwnd, Message: msg, WParam: wParam, LParam: lParam})
	return nil
}

func (b *Backend) PostQuitMessage(code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.queue = append(b.queue, native.Msg{Message: native.WM_QUIT, WParam: uintptr(code)})
}

func (b *Backend) TranslateMessage(msg *native.Msg) {}

func (b *Backend) DispatchMessage(msg *native.Msg) uintptr {
	return b.send(msg.Hwnd, msg.Message, msg.WParam, msg.LParam)
}

// send calls the window or dialog procedure of hwnd synchronously.
func (b *Backend) send(hwnd native.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	b.mu.Lock()
	w, ok := b.windows[hwnd]
	if !ok || w.destroyed {
		b.mu.Unlock()
		return 0
	}
	proc, dlg := w.proc, w.dialog
	b.mu.Unlock()

	if dlg != nil {
		if dlg.proc(hwnd, msg, wParam, lParam) {
			return 1
		}
		return 0
	}
	if proc == nil {
		return 0
	}
	return proc(hwnd, msg, wParam, lParam)
}

// TranslateAccelerator matches WM_KEYDOWN messages posted by PressKey, which
// carry the virtual key in wParam and the FALT/FCONTROL/FSHIFT state in
// lParam.
func (b *Backend) TranslateAccelerator(hwnd native.HWND, accel native.HACCEL, msg *native.Msg) bool {
	if msg.Message != native.WM_KEYDOWN && msg.Message != native.WM_SYSKEYDOWN {
		return false
	}
	b.mu.Lock()
	table, ok := b.accels[accel]
	b.mu.Unlock()
	if !ok {
		return false
	}
	const mods = native.FALT | native.FCONTROL | native.FSHIFT
	for _, a := range table {
		if uintptr(a.Key) == msg.WParam && uintptr(a.Virt&mods) == msg.LParam&mods {
			b.send(hwnd, native.WM_COMMAND, native.MAKELONG(a.Cmd, 1), 0)
			return true
		}
	}
	return false
}

// PressKey posts a key press to the foreground window.
func (b *Backend) PressKey(virt uint8, key uint16) {
	b.mu.Lock()
	hwnd := b.foreground
	b.mu.Unlock()
	_ = b.PostMessage(hwnd, native.WM_KEYDOWN, uintptr(key), uintptr(virt))
}

// Timers

func (b *Backend) SetTimer(hwnd native.HWND, id uintptr, interval time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.fail("SetTimer"); err != nil {
		return err
	}
	if interval < minTimerInterval {
		interval = minTimerInterval
	}
	k := timerKey{hwnd: hwnd, id: id}
	b.timers[k] = &timer{key: k, interval: interval, due: b.now + interval, seq: b.nextSeq()}
	return nil
}

func (b *Backend) KillTimer(hwnd native.HWND, id uintptr) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.timers, timerKey{hwnd: hwnd, id: id})
}

// Armed lists the ids of timers armed for hwnd, in ascending order.
func (b *Backend) Armed(hwnd native.HWND) []uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []uintptr
	for k := range b.timers {
		if k.hwnd == hwnd {
			ids = append(ids, k.id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// WindowState is a snapshot of a window.
type WindowState struct {
	Class     string
	Title     string
	Visible   bool
	Enabled   bool
	Dark      bool
	MenuBar   native.HMENU
	Destroyed bool
}

// Window returns a snapshot of hwnd.
func (b *Backend) Window(hwnd native.HWND) (WindowState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[hwnd]
	if !ok {
		return WindowState{}, false
	}
	return WindowState{
		Class:     w.class,
		Title:     w.title,
		Visible:   w.visible,
		Enabled:   w.enabled,
		Dark:      w.dark,
		MenuBar:   w.menuBar,
		Destroyed: w.destroyed,
	}, true
}

// Theme

// SetSystemDark changes the value reported by SystemUsesDarkTheme and
// broadcasts WM_SETTINGCHANGE to every live top-level window.
func (b *Backend) SetSystemDark(dark bool) {
	b.mu.Lock()
	b.dark = dark
	var targets []native.HWND
	for h, w := range b.windows {
		if !w.destroyed && w.dialog == nil {
			targets = append(targets, h)
		}
	}
	b.mu.Unlock()
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })
	for _, h := range targets {
		_ = b.PostMessage(h, native.WM_SETTINGCHANGE, 0, 0)
	}
}

func (b *Backend) SystemUsesDarkTheme() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dark
}

func (b *Backend) ApplyTheme(hwnd native.HWND, dark bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[hwnd]; ok {
		w.dark = dark
	}
}

func (b *Backend) PaintMenuBar(hwnd native.HWND, lParam uintptr) uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.painted["bar"]++
	return 1
}

func (b *Backend) PaintMenuBarItem(hwnd native.HWND, lParam uintptr) uintptr {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.painted["item"]++
	return 1
}

func (b *Backend) PaintMenuBarLine(hwnd native.HWND) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.painted["line"]++
}
