package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/username/ruwps/internal/menu"
	"github.com/username/ruwps/internal/winrt"
)

const sampleConfig = `
app:
  name: Proxy
  icon: ${RUWPS_TEST_DIR}/idle.ico
  quit_button: Exit
menu:
  - Status
  - null
  - title: Connect
    shortcut: Ctrl+K
    action: connect
  - title: Settings
    items:
      - title: Sounds
        checked: true
        action: toggle
      - Advanced
timers:
  - interval: 30s
    action: poll
theme: dark
log:
  file: ${RUWPS_TEST_DIR}/ruwps.log
  level: debug
notifications:
  timeout: 5s
  sound: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("RUWPS_TEST_DIR", "/data")
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.App.Name != "Proxy" || cfg.App.GetTitle() != "Proxy" || cfg.App.QuitButton != "Exit" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.App.Icon != "/data/idle.ico" || cfg.Log.File != "/data/ruwps.log" {
		t.Errorf("paths not expanded: icon = %q, log = %q", cfg.App.Icon, cfg.Log.File)
	}
	if cfg.GetTheme() != winrt.ThemeDark {
		t.Errorf("GetTheme() = %v", cfg.GetTheme())
	}
	if len(cfg.Timers) != 1 || cfg.Timers[0].GetInterval() != 30*time.Second || cfg.Timers[0].Action != "poll" {
		t.Errorf("timers = %+v", cfg.Timers)
	}
	if cfg.Notifications.GetBalloonTimeout() != 5*time.Second || cfg.Notifications.SoundEnabled() {
		t.Errorf("notifications = %+v", cfg.Notifications)
	}
	if len(cfg.Menu) != 4 {
		t.Fatalf("menu = %v", cfg.Menu)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "menu:\n  - One\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.Name != "ruwps" || cfg.GetTheme() != winrt.ThemeAuto || cfg.Log.Level != "info" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Notifications.GetBalloonTimeout() != 10*time.Second || !cfg.Notifications.SoundEnabled() {
		t.Errorf("notification defaults = %+v", cfg.Notifications)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("RUWPS_APP_TITLE", "From env")
	cfg, err := Load(writeConfig(t, "app:\n  name: Proxy\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.App.GetTitle() != "From env" {
		t.Errorf("title = %q", cfg.App.GetTitle())
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() of a missing file succeeded")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "valid", cfg: Config{App: AppConfig{Name: "a"}}},
		{name: "no name", cfg: Config{}, wantErr: "app.name"},
		{name: "bad theme", cfg: Config{App: AppConfig{Name: "a"}, Theme: "pink"}, wantErr: "theme"},
		{name: "bad level", cfg: Config{App: AppConfig{Name: "a"}, Log: LogConfig{Level: "loud"}}, wantErr: "log.level"},
		{name: "bad interval", cfg: Config{App: AppConfig{Name: "a"}, Timers: []TimerConfig{{Interval: "soon", Action: "x"}}}, wantErr: "timers[0].interval"},
		{name: "negative interval", cfg: Config{App: AppConfig{Name: "a"}, Timers: []TimerConfig{{Interval: "-1s", Action: "x"}}}, wantErr: "must be positive"},
		{name: "no action", cfg: Config{App: AppConfig{Name: "a"}, Timers: []TimerConfig{{Interval: "1s"}}}, wantErr: "action is required"},
		{name: "bad timeout", cfg: Config{App: AppConfig{Name: "a"}, Notifications: NotificationsConfig{Timeout: "later"}}, wantErr: "notifications.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestMenuValues(t *testing.T) {
	cfg := Config{Menu: []any{
		"Status",
		nil,
		map[string]any{"title": "Connect", "shortcut": "Ctrl+K", "action": "connect"},
		map[string]any{"title": "Settings", "items": []any{
			map[any]any{"title": "Sounds", "checked": true, "action": "toggle"},
			"Advanced",
		}},
		map[string]any{"More": []any{map[string]any{"title": "Deep", "action": "connect"}}},
		42,
	}}
	var resolved []string
	values := cfg.MenuValues(func(action string) menu.Callback {
		resolved = append(resolved, action)
		return func(*menu.Entry) {}
	})

	if len(values) != 6 {
		t.Fatalf("values = %v", values)
	}
	if values[0] != "Status" || values[1] != nil || values[5] != 42 {
		t.Errorf("pass-through values = %v", values)
	}
	connect, ok := values[2].(menu.Item)
	if !ok || connect.Title != "Connect" || connect.Shortcut != "Ctrl+K" || connect.Callback == nil {
		t.Errorf("Connect = %#v", values[2])
	}
	settings, ok := values[3].(menu.Sub)
	if !ok || settings.Title != "Settings" || len(settings.Items) != 2 {
		t.Fatalf("Settings = %#v", values[3])
	}
	if sounds, ok := settings.Items[0].(menu.Item); !ok || !sounds.Checked || sounds.Callback == nil {
		t.Errorf("Sounds = %#v", settings.Items[0])
	}
	more, ok := values[4].(map[string]any)
	if !ok {
		t.Fatalf("More = %#v", values[4])
	}
	if deep, ok := more["More"].([]any)[0].(menu.Item); !ok || deep.Title != "Deep" {
		t.Errorf("Deep = %#v", more["More"])
	}
	if strings.Join(resolved, ",") != "connect,toggle,connect" {
		t.Errorf("resolved = %v", resolved)
	}
}
