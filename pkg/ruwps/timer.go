package ruwps

import (
	"fmt"
	"time"

	"github.com/username/ruwps/internal/winrt"
)

// Timer calls its callback periodically on the loop thread. A timer created
// with NewTimer binds to the current application when first started.
type Timer struct {
	app      *App
	rt       *winrt.Timer
	callback func(*Timer)
	interval time.Duration
}

// NewTimer returns a stopped timer that is not yet tied to an application.
func NewTimer(callback func(*Timer), interval time.Duration) *Timer {
	return &Timer{callback: callback, interval: interval}
}

// Timer creates a stopped timer owned by the application. Timers created
// before Run are started by Run.
func (a *App) Timer(callback func(*Timer), interval time.Duration) *Timer {
	t := NewTimer(callback, interval)
	a.addTimer(t)
	return t
}

// Timers lists the timers registered with the application.
func (a *App) Timers() []*Timer {
	return append([]*Timer(nil), a.timers...)
}

func (a *App) addTimer(t *Timer) {
	if t.app == nil {
		t.app = a
	}
	a.timers = append(a.timers, t)
}

func (t *Timer) bind() error {
	if t.rt != nil {
		return nil
	}
	a := t.app
	if a == nil {
		if a = Current(); a == nil {
			return ErrNoActiveApplication
		}
		t.app = a
	}
	t.rt = a.rt.NewTimer(t.interval, t.fire)
	return nil
}

func (t *Timer) fire(*winrt.Timer) {
	if t.callback != nil {
		t.callback(t)
	}
}

// Running reports whether the timer is armed.
func (t *Timer) Running() bool { return t.rt != nil && t.rt.Running() }

// Interval returns the firing period.
func (t *Timer) Interval() time.Duration { return t.interval }

// Callback returns the function called on each firing.
func (t *Timer) Callback() func(*Timer) { return t.callback }

// Start arms the timer. Starting a running timer reports ErrTimerRunning.
func (t *Timer) Start() error {
	if err := t.bind(); err != nil {
		return err
	}
	return t.rt.Start()
}

// Stop disarms the timer. Stopping a stopped timer reports
// ErrTimerNotRunning and changes nothing.
func (t *Timer) Stop() error {
	if t.rt == nil {
		return ErrTimerNotRunning
	}
	return t.rt.Stop()
}

// SetInterval changes the period; a running timer restarts its phase. On a
// stopped timer the value is kept and ErrTimerNotRunning is reported.
func (t *Timer) SetInterval(d time.Duration) error {
	t.interval = d
	if t.rt == nil {
		return ErrTimerNotRunning
	}
	return t.rt.SetInterval(d)
}

// SetCallback replaces the callback and restarts a running timer.
func (t *Timer) SetCallback(fn func(*Timer)) error {
	t.callback = fn
	if !t.Running() {
		return nil
	}
	if err := t.rt.Stop(); err != nil {
		return err
	}
	return t.rt.Start()
}

func (t *Timer) String() string {
	status := "OFF"
	if t.Running() {
		status = "ON"
	}
	return fmt.Sprintf("<Timer: interval=%v status=%s>", t.interval, status)
}
