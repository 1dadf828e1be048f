// Package winrt is the window runtime: one hidden top-level window acting as
// message target, a route table consulted by its window procedure, the
// blocking message loop (with nested modal loops for synchronous dialogs),
// the open-dialog registry, menu installation and theme propagation.
//
// Everything except RequestQuit must be called from the goroutine running
// the loop, which must be locked to its OS thread on Windows.
package winrt

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/menu"
	"github.com/username/ruwps/internal/native"
)

// MsgQuit asks the loop to quit; it may be posted from any goroutine.
const MsgQuit = native.WM_APP + 1

// RouteFunc handles one message. Returning false passes the message on to
// the next route and finally to the default window procedure.
type RouteFunc func(hwnd native.HWND, wParam, lParam uintptr) (uintptr, bool)

// RouteID identifies a registered route.
type RouteID uint64

type route struct {
	id RouteID
	fn RouteFunc
}

// Options configures a Runtime.
type Options struct {
	Title string
	// Icon is the window class icon; the runtime destroys it on teardown.
	Icon   native.HICON
	Logger *zap.Logger
}

var classSeq atomic.Uint32

// Runtime owns the hidden window and the message loop.
type Runtime struct {
	b      native.Backend
	hwnd   native.HWND
	class  string
	icon   native.HICON
	logger *zap.Logger

	routes    map[uint32][]route
	lastRoute RouteID

	dialogs []native.HWND
	modal   int

	menu     *menu.Compiled
	retired  []*menu.Compiled
	tracking int

	timers    map[uintptr]*Timer
	nextTimer uintptr

	theme     Theme
	dark      bool
	autoRoute RouteID
	barRoutes []RouteID

	quitting    bool
	quitRequest func()
	exitHooks   []func()
	closed      bool
}

// New registers the window class and creates the hidden window.
func New(b native.Backend, opts Options) (*Runtime, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Runtime{
		b:         b,
		class:     fmt.Sprintf("RuwpsWindow%d", classSeq.Add(1)),
		icon:      opts.Icon,
		logger:    logger,
		routes:    make(map[uint32][]route),
		timers:    make(map[uintptr]*Timer),
		nextTimer: firstTimerID,
	}
	r.quitRequest = r.Quit

	if err := b.RegisterClass(r.class, r.wndProc, opts.Icon); err != nil {
		return nil, fmt.Errorf("failed to register window class: %w", err)
	}
	hwnd, err := b.CreateWindow(r.class, opts.Title)
	if err != nil {
		b.UnregisterClass(r.class)
		return nil, fmt.Errorf("failed to create window: %w", err)
	}
	r.hwnd = hwnd

	r.Handle(native.WM_TIMER, r.onTimer)
	r.Handle(native.WM_COMMAND, r.onCommand)
	r.Handle(native.WM_CLOSE, func(native.HWND, uintptr, uintptr) (uintptr, bool) {
		r.quitRequest()
		return 0, true
	})
	r.Handle(MsgQuit, func(native.HWND, uintptr, uintptr) (uintptr, bool) {
		r.quitRequest()
		return 0, true
	})

	logger.Debug("Window runtime created",
		zap.String("class", r.class),
		zap.Uint64("hwnd", uint64(hwnd)))
	return r, nil
}

// Backend returns the native backend the runtime runs on.
func (r *Runtime) Backend() native.Backend { return r.b }

// Owner returns the hidden window.
func (r *Runtime) Owner() native.HWND { return r.hwnd }

// Hwnd returns the hidden window.
func (r *Runtime) Hwnd() native.HWND { return r.hwnd }

// Logger returns the runtime logger.
func (r *Runtime) Logger() *zap.Logger { return r.logger }

// Handle appends fn to the routes of msg.
func (r *Runtime) Handle(msg uint32, fn RouteFunc) RouteID {
	r.lastRoute++
	r.routes[msg] = append(r.routes[msg], route{id: r.lastRoute, fn: fn})
	return r.lastRoute
}

// Unhandle removes a route. It reports whether the route existed.
func (r *Runtime) Unhandle(id RouteID) bool {
	for msg, rs := range r.routes {
		for i, rt := range rs {
			if rt.id != id {
				continue
			}
			rs = append(rs[:i:i], rs[i+1:]...)
			if len(rs) == 0 {
				delete(r.routes, msg)
			} else {
				r.routes[msg] = rs
			}
			return true
		}
	}
	return false
}

// Routes counts the routes registered for msg.
func (r *Runtime) Routes(msg uint32) int { return len(r.routes[msg]) }

func (r *Runtime) wndProc(hwnd native.HWND, msg uint32, wParam, lParam uintptr) uintptr {
	// Routes may add or remove routes while running.
	for _, rt := range append([]route(nil), r.routes[msg]...) {
		if res, ok := rt.fn(hwnd, wParam, lParam); ok {
			return res
		}
	}
	return r.b.DefWindowProc(hwnd, msg, wParam, lParam)
}

// Track adds a dialog to the open-dialog registry.
func (r *Runtime) Track(hwnd native.HWND) {
	r.dialogs = append(r.dialogs, hwnd)
}

// Untrack removes a dialog from the open-dialog registry.
func (r *Runtime) Untrack(hwnd native.HWND) {
	for i, d := range r.dialogs {
		if d == hwnd {
			r.dialogs = append(r.dialogs[:i:i], r.dialogs[i+1:]...)
			return
		}
	}
}

// OpenDialogs lists the open dialogs in registration order.
func (r *Runtime) OpenDialogs() []native.HWND {
	return append([]native.HWND(nil), r.dialogs...)
}

// Run pumps messages until Quit is called or WM_QUIT arrives, then tears the
// runtime down.
func (r *Runtime) Run() error {
	if r.closed {
		return fmt.Errorf("runtime already closed")
	}
	r.logger.Info("Message loop started")
	r.pump(func() bool { return r.quitting })
	r.logger.Info("Message loop stopped")
	r.Close()
	return nil
}

// RunModal pumps messages until done reports true. When WM_QUIT arrives
// first it is posted again for the outer loop and false is returned.
func (r *Runtime) RunModal(done func() bool) bool {
	r.modal++
	defer func() { r.modal-- }()
	if r.pump(done) {
		return true
	}
	r.b.PostQuitMessage(0)
	return false
}

// InModal reports whether a synchronous dialog is running.
func (r *Runtime) InModal() bool { return r.modal > 0 }

func (r *Runtime) pump(done func() bool) bool {
	var msg native.Msg
	for !done() {
		if !r.b.GetMessage(&msg) {
			return false
		}
		r.dispatch(&msg)
	}
	return true
}

func (r *Runtime) dispatch(msg *native.Msg) {
	// Dialogs swallow keyboard input, which disables accelerators while any
	// dialog is open.
	for _, d := range append([]native.HWND(nil), r.dialogs...) {
		if r.b.IsDialogMessage(d, msg) {
			return
		}
	}
	if r.accel() != 0 && r.b.TranslateAccelerator(r.hwnd, r.accel(), msg) {
		return
	}
	r.b.TranslateMessage(msg)
	r.b.DispatchMessage(msg)
}

func (r *Runtime) accel() native.HACCEL {
	if r.menu == nil {
		return 0
	}
	return r.menu.Accel
}

// Quit latches the quit flag. The loop stops once the current message has
// been handled; a running synchronous dialog is not interrupted.
func (r *Runtime) Quit() {
	if r.quitting {
		return
	}
	r.quitting = true
	r.logger.Debug("Quit requested")
	_ = r.b.PostMessage(r.hwnd, native.WM_NULL, 0, 0)
}

// Quitting reports whether quit has been latched.
func (r *Runtime) Quitting() bool { return r.quitting }

// RequestQuit posts MsgQuit; it is safe to call from any goroutine.
func (r *Runtime) RequestQuit() error {
	if err := r.b.PostMessage(r.hwnd, MsgQuit, 0, 0); err != nil {
		return fmt.Errorf("failed to post quit request: %w", err)
	}
	return nil
}

// SetQuitRequestHandler replaces what MsgQuit and WM_CLOSE do. The default
// is Quit.
func (r *Runtime) SetQuitRequestHandler(fn func()) {
	if fn == nil {
		fn = r.Quit
	}
	r.quitRequest = fn
}

// OnExit registers fn to run first during teardown.
func (r *Runtime) OnExit(fn func()) {
	r.exitHooks = append(r.exitHooks, fn)
}

// Closed reports whether the runtime was torn down.
func (r *Runtime) Closed() bool { return r.closed }

// Close tears the runtime down: exit hooks, timers, then the window, its
// icon and the menu resources with their accelerator table.
func (r *Runtime) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.quitting = true
	for _, fn := range r.exitHooks {
		fn()
	}
	for _, t := range r.timers {
		r.b.KillTimer(r.hwnd, t.id)
		t.id = 0
	}
	r.timers = make(map[uintptr]*Timer)

	if r.menu != nil && r.menu.Bar {
		_ = r.b.SetMenuBar(r.hwnd, 0)
	}
	r.b.DestroyWindow(r.hwnd)
	if r.icon != 0 {
		r.b.DestroyIcon(r.icon)
		r.icon = 0
	}
	for _, c := range r.retired {
		c.Destroy()
	}
	r.retired = nil
	r.menu.Destroy()
	r.menu = nil
	r.b.UnregisterClass(r.class)
	r.logger.Debug("Window runtime closed")
}
