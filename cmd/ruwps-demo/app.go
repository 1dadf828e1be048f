package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/config"
	"github.com/username/ruwps/pkg/ruwps"
)

// demo binds the action names used in the config file to the application.
type demo struct {
	app    *ruwps.App
	cfg    *config.Config
	logger *zap.Logger
}

func buildApp(cfg *config.Config, logger *zap.Logger, extra ...ruwps.Option) (*ruwps.App, error) {
	d := &demo{cfg: cfg, logger: logger}

	opts := []ruwps.Option{
		ruwps.WithTitle(cfg.App.GetTitle()),
		ruwps.WithIcon(cfg.App.Icon),
		ruwps.WithTheme(cfg.GetTheme()),
		ruwps.WithLogger(logger),
		ruwps.WithMenu(cfg.MenuValues(d.menuAction)...),
	}
	if cfg.App.QuitButton != "" {
		opts = append(opts, ruwps.WithQuitButton(cfg.App.QuitButton))
	}
	if cfg.App.NoQuitButton {
		opts = append(opts, ruwps.WithoutQuitButton())
	}
	if cfg.App.MenuBar {
		opts = append(opts, ruwps.WithMenuBar())
	}
	for _, t := range cfg.Timers {
		cb := d.timerAction(t.Action)
		if cb == nil {
			return nil, fmt.Errorf("unknown timer action %q", t.Action)
		}
		opts = append(opts, ruwps.WithTimers(ruwps.NewTimer(cb, t.GetInterval())))
	}

	app, err := ruwps.New(cfg.App.Name, append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}
	d.app = app
	app.OnNotification(func(data any) {
		logger.Info("Notification clicked", zap.Any("data", data))
	})
	return app, nil
}

func (d *demo) notification(title, message string, data any) ruwps.Notification {
	return ruwps.Notification{
		Title:   title,
		Message: message,
		Data:    data,
		NoSound: !d.cfg.Notifications.SoundEnabled(),
		Kind:    ruwps.KindInfo,
		Timeout: d.cfg.Notifications.GetBalloonTimeout(),
	}
}

// menuAction resolves the action of a menu entry. Unknown actions leave the
// entry without a callback, which shows it grayed out.
func (d *demo) menuAction(action string) ruwps.Callback {
	switch action {
	case "quit":
		return func(*ruwps.MenuItem) { d.app.Quit() }
	case "toggle":
		return func(e *ruwps.MenuItem) { e.SetState(!e.State()) }
	case "notify":
		return func(e *ruwps.MenuItem) {
			_ = d.app.Notify(d.notification(d.app.Title(), e.Title(), e.Key()))
		}
	case "alert":
		return func(e *ruwps.MenuItem) {
			if _, err := d.app.Alert(d.app.Title(), e.Title()); err != nil {
				d.logger.Error("Failed to show alert", zap.Error(err))
			}
		}
	case "rename":
		return func(e *ruwps.MenuItem) {
			w := d.app.Window("Rename", "New title for this entry", e.Title(), ruwps.Cancel(""))
			err := w.RunAsync(func(r ruwps.Response) {
				if r.Accepted() && r.Text != "" {
					e.SetTitle(r.Text)
				}
			})
			if err != nil {
				d.logger.Error("Failed to show prompt", zap.Error(err))
			}
		}
	}
	d.logger.Warn("Unknown menu action", zap.String("action", action))
	return nil
}

func (d *demo) timerAction(action string) func(*ruwps.Timer) {
	switch action {
	case "log":
		return func(t *ruwps.Timer) { d.logger.Info("Tick", zap.Stringer("timer", t)) }
	case "notify":
		return func(t *ruwps.Timer) {
			_ = d.app.Notify(d.notification(d.app.Title(), time.Now().Format(time.Kitchen), nil))
		}
	case "title":
		return func(t *ruwps.Timer) {
			if err := d.app.SetTitle(d.cfg.App.GetTitle() + " " + time.Now().Format(time.TimeOnly)); err != nil {
				d.logger.Warn("Failed to update title", zap.Error(err))
			}
		}
	case "quit":
		return func(*ruwps.Timer) { d.app.Quit() }
	}
	return nil
}
