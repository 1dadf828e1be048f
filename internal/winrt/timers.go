package winrt

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native"
)

const firstTimerID = 1000

var (
	// ErrTimerRunning is returned when starting a running timer.
	ErrTimerRunning = errors.New("timer already running")
	// ErrTimerNotRunning is returned when stopping, or rescheduling, a
	// stopped timer.
	ErrTimerNotRunning = errors.New("timer not running")
)

// Timer is a periodic callback multiplexed onto the runtime's native timers.
type Timer struct {
	r        *Runtime
	callback func(*Timer)
	interval time.Duration
	id       uintptr
}

// NewTimer returns a stopped timer.
func (r *Runtime) NewTimer(interval time.Duration, callback func(*Timer)) *Timer {
	return &Timer{r: r, callback: callback, interval: interval}
}

// Timers counts running timers.
func (r *Runtime) Timers() int { return len(r.timers) }

// ID returns the native timer id, zero when stopped.
func (t *Timer) ID() uintptr { return t.id }

// Running reports whether the timer is armed.
func (t *Timer) Running() bool { return t.id != 0 }

// Interval returns the firing period.
func (t *Timer) Interval() time.Duration { return t.interval }

// Start arms the timer with a fresh native id.
func (t *Timer) Start() error {
	if t.id != 0 {
		return ErrTimerRunning
	}
	r := t.r
	if r.closed {
		return fmt.Errorf("failed to start timer: runtime closed")
	}
	id := r.nextTimer
	if err := r.b.SetTimer(r.hwnd, id, t.interval); err != nil {
		return fmt.Errorf("failed to start timer: %w", err)
	}
	r.nextTimer++
	t.id = id
	r.timers[id] = t
	r.logger.Debug("Timer started", zap.Uint64("id", uint64(id)), zap.Duration("interval", t.interval))
	return nil
}

// Stop disarms the timer. Stopping a stopped timer changes nothing and
// reports ErrTimerNotRunning.
func (t *Timer) Stop() error {
	if t.id == 0 {
		return ErrTimerNotRunning
	}
	r := t.r
	r.b.KillTimer(r.hwnd, t.id)
	delete(r.timers, t.id)
	r.logger.Debug("Timer stopped", zap.Uint64("id", uint64(t.id)))
	t.id = 0
	return nil
}

// SetInterval changes the period. A running timer is restarted, so the next
// firing is one full new interval away. On a stopped timer the interval is
// kept for the next Start and ErrTimerNotRunning is reported.
func (t *Timer) SetInterval(d time.Duration) error {
	t.interval = d
	if t.id == 0 {
		return ErrTimerNotRunning
	}
	if err := t.Stop(); err != nil {
		return err
	}
	return t.Start()
}

// SetCallback replaces the callback.
func (t *Timer) SetCallback(fn func(*Timer)) {
	t.callback = fn
}

func (r *Runtime) onTimer(hwnd native.HWND, wParam, lParam uintptr) (uintptr, bool) {
	t, ok := r.timers[wParam]
	if !ok {
		return 0, false
	}
	// WM_TIMER already queued when quit was latched must not fire.
	if r.quitting {
		return 0, true
	}
	if t.callback != nil {
		t.callback(t)
	}
	return 0, true
}
