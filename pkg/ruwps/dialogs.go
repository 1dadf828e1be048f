package ruwps

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/dialog"
	"github.com/username/ruwps/internal/native"
	"github.com/username/ruwps/internal/winrt"
)

// Response is the outcome of an alert or a window.
type Response struct {
	// Clicked is 1 for the first button and 0 for the second; further
	// buttons report their own index.
	Clicked int
	// Button is the raw index of the pressed button. Closing the dialog
	// counts as pressing the last one.
	Button int
	// Text is the content of the input field of a window.
	Text string
}

// Accepted reports whether the first button was pressed.
func (r Response) Accepted() bool { return r.Button == 0 }

func normalize(index int) int {
	if index < 2 {
		return 1 - index
	}
	return index
}

type buttonOptions struct {
	ok         string
	cancel     string
	withCancel bool
}

// ButtonOption sets the buttons of an alert or a window.
type ButtonOption func(*buttonOptions)

// OK sets the caption of the first button; the system caption is used by
// default.
func OK(label string) ButtonOption {
	return func(o *buttonOptions) { o.ok = label }
}

// Cancel adds a second button with the given caption, or the system caption
// when label is empty.
func Cancel(label string) ButtonOption {
	return func(o *buttonOptions) {
		o.cancel = label
		o.withCancel = true
	}
}

func (o buttonOptions) labels(h dialog.Host) []string {
	return dialog.Labels(h.Backend(), o.ok, o.cancel, o.withCancel)
}

var (
	fallbackMu sync.Mutex
	fallback   *winrt.Runtime
)

// fallbackHost builds a bare runtime so blocking dialogs work without an
// application.
func fallbackHost() (*winrt.Runtime, error) {
	fallbackMu.Lock()
	defer fallbackMu.Unlock()
	if fallback != nil && !fallback.Closed() {
		return fallback, nil
	}
	logger := defaultLogger()
	b, err := newBackend(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize native backend: %w", err)
	}
	rt, err := winrt.New(b, winrt.Options{Title: "ruwps", Logger: logger})
	if err != nil {
		return nil, err
	}
	fallback = rt
	return rt, nil
}

// host picks the runtime of a, of the current application, or for blocking
// dialogs a fallback runtime.
func host(a *App, blocking bool) (*winrt.Runtime, error) {
	if a == nil {
		a = Current()
	}
	if a != nil {
		return a.rt, nil
	}
	if !blocking {
		return nil, ErrNoActiveApplication
	}
	return fallbackHost()
}

// Alert shows a blocking message box on the current application, or on a
// bare runtime when there is none. Given only a title, the title becomes
// the message.
func Alert(title, message string, opts ...ButtonOption) (Response, error) {
	return alert(nil, title, message, opts)
}

// Alert shows a blocking message box owned by the application window.
func (a *App) Alert(title, message string, opts ...ButtonOption) (Response, error) {
	return alert(a, title, message, opts)
}

func alert(a *App, title, message string, opts []ButtonOption) (Response, error) {
	rt, err := host(a, true)
	if err != nil {
		return Response{}, err
	}
	if message == "" {
		title, message = "", title
	}
	var o buttonOptions
	for _, opt := range opts {
		opt(&o)
	}
	al := &dialog.Alert{Title: title, Message: message, Buttons: o.labels(rt)}
	idx, err := al.Show(rt, rt.Logger())
	if err != nil {
		return Response{}, fmt.Errorf("failed to show alert: %w", err)
	}
	return Response{Clicked: normalize(idx), Button: idx}, nil
}

// Window is a prompt with a single-line input field and any number of
// buttons.
type Window struct {
	Title   string
	Message string
	Default string
	// Width is the requested width in pixels.
	Width int

	app     *App
	buttons []string
}

// NewWindow returns a window for the current application.
func NewWindow(title, message, defaultText string, opts ...ButtonOption) *Window {
	return newWindow(nil, title, message, defaultText, opts)
}

// Window returns a window owned by the application.
func (a *App) Window(title, message, defaultText string, opts ...ButtonOption) *Window {
	return newWindow(a, title, message, defaultText, opts)
}

func newWindow(a *App, title, message, defaultText string, opts []ButtonOption) *Window {
	o := buttonOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	w := &Window{Title: title, Message: message, Default: defaultText, Width: dialog.DefaultPromptWidth, app: a}
	if o.ok != "" {
		w.buttons = append(w.buttons, o.ok)
	}
	if o.withCancel {
		if o.ok == "" {
			// The first button is resolved when shown.
			w.buttons = append(w.buttons, "")
		}
		w.buttons = append(w.buttons, o.cancel)
	}
	return w
}

// AddButton appends a button after the existing ones.
func (w *Window) AddButton(label string) {
	w.buttons = append(w.buttons, label)
}

// AddButtons appends several buttons.
func (w *Window) AddButtons(labels ...string) {
	w.buttons = append(w.buttons, labels...)
}

// Buttons returns the button captions; empty captions are filled with the
// system ones when the window is shown.
func (w *Window) Buttons() []string { return append([]string(nil), w.buttons...) }

func (w *Window) prompt(rt *winrt.Runtime) *dialog.Prompt {
	labels := append([]string(nil), w.buttons...)
	if len(labels) == 0 {
		labels = append(labels, "")
	}
	sys := rt.Backend()
	for i, l := range labels {
		if l != "" {
			continue
		}
		if i == 0 {
			labels[i] = sys.ButtonLabel(native.IDOK)
		} else {
			labels[i] = sys.ButtonLabel(native.IDCANCEL)
		}
	}
	return &dialog.Prompt{
		Title:   w.Title,
		Message: w.Message,
		Default: w.Default,
		Buttons: labels,
		Width:   w.Width,
	}
}

// Run blocks until the window is closed.
func (w *Window) Run() (Response, error) {
	rt, err := host(w.app, true)
	if err != nil {
		return Response{}, err
	}
	res, err := w.prompt(rt).Show(rt, rt.Logger())
	if err != nil {
		return Response{}, fmt.Errorf("failed to show window: %w", err)
	}
	return Response{Clicked: normalize(res.Index), Button: res.Index, Text: res.Text}, nil
}

// RunAsync opens the window and returns at once; done receives the response
// when it closes. It needs a running application.
func (w *Window) RunAsync(done func(Response)) error {
	rt, err := host(w.app, false)
	if err != nil {
		return err
	}
	_, err = w.prompt(rt).ShowAsync(rt, rt.Logger(), func(res dialog.Result) {
		if done != nil {
			done(Response{Clicked: normalize(res.Index), Button: res.Index, Text: res.Text})
		}
	})
	if err != nil {
		rt.Logger().Error("Failed to open window", zap.String("title", w.Title), zap.Error(err))
		return fmt.Errorf("failed to show window: %w", err)
	}
	return nil
}
