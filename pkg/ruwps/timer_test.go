package ruwps

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestTimer_WithoutApplication(t *testing.T) {
	tm := NewTimer(func(*Timer) {}, time.Second)
	if err := tm.Start(); !errors.Is(err, ErrNoActiveApplication) {
		t.Errorf("Start() error = %v, want ErrNoActiveApplication", err)
	}
	if err := tm.Stop(); !errors.Is(err, ErrTimerNotRunning) {
		t.Errorf("Stop() error = %v, want ErrTimerNotRunning", err)
	}
	if err := tm.SetInterval(2 * time.Second); !errors.Is(err, ErrTimerNotRunning) {
		t.Errorf("SetInterval() error = %v, want ErrTimerNotRunning", err)
	}
	if tm.Interval() != 2*time.Second {
		t.Errorf("Interval() = %v, want the stored value", tm.Interval())
	}
}

func TestTimer_StateErrors(t *testing.T) {
	a, _ := newApp(t)
	tm := a.Timer(func(*Timer) {}, 4*time.Second)

	if err := tm.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if got := tm.String(); got != "<Timer: interval=4s status=ON>" {
		t.Errorf("String() = %q", got)
	}
	if err := tm.Start(); !errors.Is(err, ErrTimerRunning) {
		t.Errorf("second Start() error = %v", err)
	}
	if err := tm.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := tm.Stop(); !errors.Is(err, ErrTimerNotRunning) {
		t.Errorf("second Stop() error = %v", err)
	}
	if got := tm.String(); got != "<Timer: interval=4s status=OFF>" {
		t.Errorf("String() = %q", got)
	}
}

func TestTimer_BindsToCurrentApplication(t *testing.T) {
	a, b := newApp(t)
	tm := NewTimer(func(*Timer) {}, time.Second)
	if err := tm.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if ids := b.Armed(a.rt.Hwnd()); len(ids) != 1 {
		t.Errorf("armed timers = %v", ids)
	}
}

func TestTimer_AutoStartAndQuit(t *testing.T) {
	var a *App
	slow, fast := 0, 0
	quitTimer := NewTimer(func(tm *Timer) {
		slow++
		if slow == 3 {
			a.Quit()
		}
	}, 100*time.Millisecond)
	a, b := newApp(t, WithTimers(quitTimer))
	other := a.Timer(func(*Timer) { fast++ }, 30*time.Millisecond)

	var after []time.Duration
	a.rt.OnExit(func() { after = append(after, b.Now()) })
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}

	if slow != 3 {
		t.Errorf("slow ticks = %d, want 3", slow)
	}
	// The 300ms tick of the fast timer was due together with the quitting
	// tick and must not run.
	if fast != 9 {
		t.Errorf("fast ticks = %d, want 9", fast)
	}
	if quitTimer.Running() || other.Running() {
		t.Error("timers still running after Run")
	}
	if !reflect.DeepEqual(after, []time.Duration{300 * time.Millisecond}) {
		t.Errorf("teardown at %v", after)
	}
	if got := a.Timers(); len(got) != 2 || got[0] != quitTimer || got[1] != other {
		t.Errorf("Timers() = %v", got)
	}
}

func TestTimer_SetIntervalResetsPhase(t *testing.T) {
	a, b := newApp(t)
	var fired []time.Duration
	tm := a.Timer(func(tm *Timer) {
		fired = append(fired, b.Now())
		if len(fired) == 4 {
			a.Quit()
		}
	}, 100*time.Millisecond)
	b.At(250*time.Millisecond, func() {
		if err := tm.SetInterval(200 * time.Millisecond); err != nil {
			t.Error(err)
		}
	})
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 450 * time.Millisecond, 650 * time.Millisecond}
	if !reflect.DeepEqual(fired, want) {
		t.Errorf("fired at %v, want %v", fired, want)
	}
}

func TestTimer_SetCallbackRestarts(t *testing.T) {
	a, b := newApp(t)
	var which []string
	tm := a.Timer(func(*Timer) { which = append(which, "old") }, 100*time.Millisecond)
	b.At(150*time.Millisecond, func() {
		if err := tm.SetCallback(func(*Timer) {
			which = append(which, "new")
			a.Quit()
		}); err != nil {
			t.Error(err)
		}
	})
	if err := a.Run(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(which, []string{"old", "new"}) {
		t.Errorf("callbacks = %v", which)
	}
	if b.Now() != 250*time.Millisecond {
		t.Errorf("new callback ran at %v, want 250ms", b.Now())
	}
}
