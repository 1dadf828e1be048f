package ruwps

import (
	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
	"github.com/username/ruwps/internal/winrt"
)

// Theme selects light or dark native chrome.
type Theme = winrt.Theme

const (
	ThemeAuto  = winrt.ThemeAuto
	ThemeLight = winrt.ThemeLight
	ThemeDark  = winrt.ThemeDark
)

// DefaultQuitTitle is the title of the generated quit entry.
const DefaultQuitTitle = "Quit"

type options struct {
	title     string
	icon      string
	menu      []any
	quitTitle string
	noQuit    bool
	menuBar   bool
	theme     Theme
	logger    *zap.Logger
	backend   native.Backend
	timers    []*Timer
	bindings  []Binding
	hasTitle  bool
	hasMenu   bool
}

// Option configures an App.
type Option func(*options)

// WithTitle sets the tooltip of the tray icon. It defaults to the app name.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
		o.hasTitle = true
	}
}

// WithIcon sets the path of the .ico file shown in the tray.
func WithIcon(path string) Option {
	return func(o *options) { o.icon = path }
}

// WithMenu sets the initial menu from declarative values.
func WithMenu(values ...any) Option {
	return func(o *options) {
		o.menu = values
		o.hasMenu = true
	}
}

// WithQuitButton renames the generated quit entry.
func WithQuitButton(title string) Option {
	return func(o *options) {
		o.quitTitle = title
		o.noQuit = false
	}
}

// WithoutQuitButton suppresses the generated quit entry.
func WithoutQuitButton() Option {
	return func(o *options) { o.noQuit = true }
}

// WithMenuBar shows the window with the menu as its menu bar instead of a
// tray popup.
func WithMenuBar() Option {
	return func(o *options) { o.menuBar = true }
}

// WithTheme forces a theme; the default follows the system.
func WithTheme(t Theme) Option {
	return func(o *options) { o.theme = t }
}

// WithLogger sets the logger; the default is the one chosen by DebugMode.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithBackend runs the app on the given native backend.
func WithBackend(b native.Backend) Option {
	return func(o *options) { o.backend = b }
}

// WithTimers registers timers started automatically by Run.
func WithTimers(timers ...*Timer) Option {
	return func(o *options) { o.timers = append(o.timers, timers...) }
}

// WithClicked registers click bindings applied by Run.
func WithClicked(bindings ...Binding) Option {
	return func(o *options) { o.bindings = append(o.bindings, bindings...) }
}
