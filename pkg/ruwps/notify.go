package ruwps

import (
	"time"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/tray"
)

// Balloon icon kinds.
const (
	KindNone    = tray.KindNone
	KindInfo    = tray.KindInfo
	KindWarning = tray.KindWarning
	KindError   = tray.KindError
)

// Notification is a balloon shown next to the tray icon.
type Notification struct {
	Title string
	// Subtitle is shown on a second title line.
	Subtitle string
	Message  string
	// Data is handed to the OnNotification callback when the balloon is
	// clicked.
	Data    any
	NoSound bool
	Kind    uint32
	Timeout time.Duration
}

func (n Notification) balloon() tray.Notification {
	title := n.Title
	if n.Subtitle != "" {
		if title != "" {
			title += "\n"
		}
		title += n.Subtitle
	}
	return tray.Notification{
		Title:   title,
		Message: n.Message,
		Kind:    n.Kind,
		Silent:  n.NoSound,
		Payload: n.Data,
		Timeout: n.Timeout,
	}
}

// Notify posts a balloon. A newer balloon replaces one still showing.
func (a *App) Notify(n Notification) error {
	if err := a.tray.Notify(n.balloon()); err != nil {
		a.logger.Error("Failed to post notification", zap.String("title", n.Title), zap.Error(err))
		return err
	}
	return nil
}

// Notify posts a balloon from the current application. Unlike alerts it
// never creates a runtime of its own.
func Notify(n Notification) error {
	a := Current()
	if a == nil {
		return ErrNoActiveApplication
	}
	return a.Notify(n)
}

// OnNotification registers fn, called with the data of a clicked balloon.
func (a *App) OnNotification(fn func(data any)) { a.onNotify = fn }

// OnNotification registers fn on the current application.
func OnNotification(fn func(data any)) error {
	a := Current()
	if a == nil {
		return ErrNoActiveApplication
	}
	a.OnNotification(fn)
	return nil
}

func (a *App) notificationClicked(data any) {
	a.logger.Debug("Notification clicked")
	if a.onNotify != nil {
		a.onNotify(data)
	}
}
