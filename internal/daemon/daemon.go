// Package daemon runs a tray application until it quits on its own, the
// context is cancelled or the process receives SIGINT/SIGTERM.
package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// App is the part of a tray application the daemon drives. Run blocks on
// the UI thread; RequestQuit may be called from any goroutine.
type App interface {
	Run() error
	RequestQuit() error
}

// Daemon represents the daemon process
type Daemon struct {
	app    App
	logger *zap.Logger

	signals []os.Signal
}

// NewDaemon creates a daemon for app
func NewDaemon(app App, logger *zap.Logger) *Daemon {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Daemon{
		app:     app,
		logger:  logger,
		signals: []os.Signal{os.Interrupt, syscall.SIGTERM},
	}
}

// Start runs the application on the calling goroutine, which must be the
// one the application was created on.
func (d *Daemon) Start(ctx context.Context) error {
	d.logger.Info("Daemon started")

	// Setup signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, d.signals...)
	defer signal.Stop(sigChan)

	done := make(chan struct{})
	defer close(done)
	go d.watch(ctx, sigChan, done)

	err := d.app.Run()
	if err != nil {
		d.logger.Error("Application failed", zap.Error(err))
		return err
	}
	d.logger.Info("Daemon stopped")
	return nil
}

func (d *Daemon) watch(ctx context.Context, sigChan <-chan os.Signal, done <-chan struct{}) {
	select {
	case <-done:
		return
	case <-ctx.Done():
		d.logger.Info("Context cancelled, shutting down")
	case sig := <-sigChan:
		d.logger.Info("Received signal, shutting down",
			zap.String("signal", sig.String()))
	}
	if err := d.app.RequestQuit(); err != nil {
		d.logger.Error("Failed to request quit", zap.Error(err))
	}
}
