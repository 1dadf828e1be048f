// Package ruwps builds notification-area applications: a tray icon with a
// dynamic tooltip, a declarative menu of clickable and checkable entries,
// alert and prompt dialogs, balloon notifications and periodic timers, all
// driven by one message loop on one thread.
//
// The loop goroutine must stay on its OS thread; call runtime.LockOSThread
// before New on Windows.
package ruwps

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/dialog"
	"github.com/username/ruwps/internal/menu"
	"github.com/username/ruwps/internal/native"
	"github.com/username/ruwps/internal/tray"
	"github.com/username/ruwps/internal/winrt"
)

const (
	trayIconSize  = 48
	classIconSize = 32
)

type (
	// MenuItem is a live handle on one menu entry.
	MenuItem = menu.Entry
	// Item declares an actionable entry.
	Item = menu.Item
	// Sub declares a submenu.
	Sub = menu.Sub
	// Separator declares a separator; nil works too.
	Separator = menu.Separator
	// Callback runs when an entry is selected.
	Callback = menu.Callback
)

var current atomic.Pointer[App]

// Current returns the most recently created application that has not
// finished running.
func Current() *App { return current.Load() }

// App is a notification-area application.
type App struct {
	name     string
	title    string
	icon     string
	opts     options
	logger   *zap.Logger
	b        native.Backend
	rt       *winrt.Runtime
	tray     *tray.Icon
	model    *menu.Model
	compiler *menu.Compiler

	timers      []*Timer
	bindings    []Binding
	quitHandler func() bool
	onNotify    func(data any)

	started bool
}

// New creates the application window and shows the tray icon. Failing to
// obtain a native resource is fatal; a menu that cannot be fully parsed is
// reported in a blocking alert and the broken sections are left empty.
func New(name string, opts ...Option) (*App, error) {
	o := options{quitTitle: DefaultQuitTitle}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = defaultLogger()
	}
	logger = logger.With(zap.String("app", name))

	b := o.backend
	if b == nil {
		var err error
		if b, err = newBackend(logger); err != nil {
			return nil, fmt.Errorf("failed to initialize native backend: %w", err)
		}
	}

	a := &App{
		name:     name,
		title:    name,
		icon:     o.icon,
		opts:     o,
		logger:   logger,
		b:        b,
		compiler: menu.NewCompiler(b, logger),
	}
	if o.hasTitle {
		a.title = o.title
	}

	classIcon, err := b.LoadIcon(o.icon, classIconSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load icon %q: %w", o.icon, err)
	}
	a.rt, err = winrt.New(b, winrt.Options{Title: name, Icon: classIcon, Logger: logger})
	if err != nil {
		b.DestroyIcon(classIcon)
		return nil, err
	}
	trayIcon, err := b.LoadIcon(o.icon, trayIconSize)
	if err != nil {
		a.rt.Close()
		return nil, fmt.Errorf("failed to load icon %q: %w", o.icon, err)
	}
	a.tray = tray.New(b, a.rt.Hwnd(), trayIcon, a.title, logger)
	a.rt.Handle(tray.CallbackMessage, a.tray.HandleCallback)
	a.tray.OnContextMenu(a.rt.Popup)
	a.tray.OnNotificationClick(a.notificationClicked)
	a.rt.OnExit(func() {
		if err := a.tray.Close(); err != nil {
			logger.Warn("Failed to remove tray icon", zap.Error(err))
		}
	})
	a.rt.SetQuitRequestHandler(func() { a.Quit() })
	a.rt.SetTheme(o.theme)

	if err := a.tray.Show(); err != nil {
		a.rt.Close()
		return nil, err
	}

	for _, t := range o.timers {
		a.addTimer(t)
	}
	a.bindings = append(a.bindings, o.bindings...)

	a.model = menu.NewModel(logger)
	a.model.OnChange(a.menuChanged)
	current.Store(a)

	if o.hasMenu {
		if err := a.model.Replace(o.menu...); err != nil {
			a.reportMenuError(err)
		}
	}
	logger.Info("Application created", zap.String("title", a.title))
	return a, nil
}

// Name returns the application name.
func (a *App) Name() string { return a.name }

// Title returns the tray tooltip.
func (a *App) Title() string { return a.title }

// SetTitle changes the tray tooltip.
func (a *App) SetTitle(title string) error {
	a.title = title
	return a.tray.SetTooltip(title)
}

// Icon returns the path of the tray icon, empty for the default icon.
func (a *App) Icon() string { return a.icon }

// SetIcon loads the icon file at path and shows it in the tray. An empty
// path restores the default icon.
func (a *App) SetIcon(path string) error {
	h, err := a.b.LoadIcon(path, trayIconSize)
	if err != nil {
		return fmt.Errorf("failed to load icon %q: %w", path, err)
	}
	if err := a.tray.SetIcon(h); err != nil {
		a.b.DestroyIcon(h)
		return err
	}
	a.icon = path
	return nil
}

// Menu returns the root of the menu.
func (a *App) Menu() *MenuItem { return a.model.Root() }

// SetMenu replaces the whole menu. Sections that cannot be parsed are
// reported in a blocking alert and left empty.
func (a *App) SetMenu(values ...any) error {
	err := a.model.Replace(values...)
	if err != nil {
		a.reportMenuError(err)
	}
	return err
}

// SetQuitHandler installs fn, consulted before quitting; returning false
// keeps the application running.
func (a *App) SetQuitHandler(fn func() bool) { a.quitHandler = fn }

// Runtime exposes the window runtime the application runs on.
func (a *App) Runtime() *winrt.Runtime { return a.rt }

func (a *App) menuChanged() {
	if !a.started || a.rt.Closed() {
		return
	}
	if err := a.installMenu(); err != nil {
		a.logger.Error("Failed to rebuild menu", zap.Error(err))
	}
}

func (a *App) installMenu() error {
	c, err := a.compiler.Compile(a.model.Root(), a.opts.menuBar)
	if err != nil {
		return err
	}
	if err := a.rt.InstallMenu(c); err != nil {
		c.Destroy()
		return fmt.Errorf("failed to install menu: %w", err)
	}
	return nil
}

func (a *App) reportMenuError(err error) {
	a.logger.Error("Invalid menu configuration", zap.Error(err))
	al := &dialog.Alert{
		Title:   a.name,
		Message: fmt.Sprintf("The menu configuration could not be read:\n%v", err),
	}
	if _, derr := al.Show(a.rt, a.logger); derr != nil {
		a.logger.Error("Failed to show menu error", zap.Error(derr))
	}
}

// Run starts the timers, applies click bindings, adds the quit entry,
// installs the menu and blocks in the message loop until Quit.
func (a *App) Run() error {
	if a.started || a.rt.Closed() {
		return fmt.Errorf("application %q already ran", a.name)
	}
	defer current.CompareAndSwap(a, nil)

	for _, t := range a.timers {
		if t.Running() {
			continue
		}
		if err := t.Start(); err != nil {
			a.logger.Error("Failed to start timer", zap.Stringer("timer", t), zap.Error(err))
		}
	}
	for _, b := range a.bindings {
		b.apply(a)
	}
	if !a.opts.noQuit {
		a.addQuitEntry()
	}
	if err := a.installMenu(); err != nil {
		a.rt.Close()
		return err
	}
	// From here on every menu mutation is compiled at once.
	a.started = true
	if a.opts.menuBar {
		a.b.ShowWindow(a.rt.Hwnd(), true)
	}
	return a.rt.Run()
}

func (a *App) addQuitEntry() {
	root := a.model.Root()
	title := a.opts.quitTitle
	if title == "" {
		title = DefaultQuitTitle
	}
	if last := root.Last(); last != nil && last.Kind() != menu.KindSeparator {
		root.AddSeparator()
	}
	root.AddItem(Item{Title: title, Callback: func(*MenuItem) { a.Quit() }})
}

// Quit stops the message loop once the current callback returns, unless
// the quit handler vetoes it. It reports whether quitting proceeds.
func (a *App) Quit() bool {
	if a.quitHandler != nil && !a.quitHandler() {
		a.logger.Info("Quit vetoed")
		return false
	}
	a.logger.Info("Quitting")
	a.rt.Quit()
	return true
}

// RequestQuit asks the loop to quit; it may be called from any goroutine.
func (a *App) RequestQuit() error { return a.rt.RequestQuit() }

// QuitApplication quits the current application.
func QuitApplication() error {
	a := Current()
	if a == nil {
		return ErrNoActiveApplication
	}
	a.Quit()
	return nil
}
