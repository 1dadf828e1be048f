package daemon

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/ruwps/internal/native/headless"
	"github.com/username/ruwps/pkg/ruwps"
)

// notifyingApp reports when the daemon asked the application to quit.
type notifyingApp struct {
	*ruwps.App
	requested chan struct{}
}

func (n *notifyingApp) RequestQuit() error {
	defer close(n.requested)
	return n.App.RequestQuit()
}

func TestStart_ContextCancelQuitsApp(t *testing.T) {
	b := headless.New()
	a, err := ruwps.New("Test", ruwps.WithBackend(b), ruwps.WithLogger(zap.NewNop()))
	if err != nil {
		t.Fatal(err)
	}
	ticks := 0
	a.Timer(func(*ruwps.Timer) { ticks++ }, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	app := &notifyingApp{App: a, requested: make(chan struct{})}
	d := NewDaemon(app, zap.NewNop())
	b.At(250*time.Millisecond, func() {
		cancel()
		<-app.requested
	})

	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if ticks != 2 {
		t.Errorf("ticks = %d, want 2", ticks)
	}
	if ruwps.Current() != nil {
		t.Error("application still current")
	}
}

type fakeApp struct {
	quit   chan struct{}
	runErr error
}

func (f *fakeApp) Run() error {
	if f.runErr != nil {
		return f.runErr
	}
	<-f.quit
	return nil
}

func (f *fakeApp) RequestQuit() error {
	close(f.quit)
	return nil
}

func TestStart(t *testing.T) {
	boom := errors.New("boom")
	tests := []struct {
		name    string
		app     *fakeApp
		cancel  bool
		wantErr error
	}{
		{name: "cancelled", app: &fakeApp{quit: make(chan struct{})}, cancel: true},
		{name: "run fails", app: &fakeApp{runErr: boom}, wantErr: boom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancel {
				cancel()
			}
			err := NewDaemon(tt.app, nil).Start(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Start() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
