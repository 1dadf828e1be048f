package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"

	"github.com/username/ruwps/internal/menu"
	"github.com/username/ruwps/internal/winrt"
)

// Config represents the configuration of a tray application
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Menu          []any               `mapstructure:"menu"`
	Timers        []TimerConfig       `mapstructure:"timers"`
	Theme         string              `mapstructure:"theme"`
	Log           LogConfig           `mapstructure:"log"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

// AppConfig represents the application identity
type AppConfig struct {
	Name         string `mapstructure:"name"`
	Title        string `mapstructure:"title"`
	Icon         string `mapstructure:"icon"`
	QuitButton   string `mapstructure:"quit_button"`
	NoQuitButton bool   `mapstructure:"no_quit_button"`
	MenuBar      bool   `mapstructure:"menu_bar"` // Show a window with a menu bar instead of a tray popup
}

// TimerConfig represents a periodic action
type TimerConfig struct {
	Interval string `mapstructure:"interval"`
	Action   string `mapstructure:"action"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// NotificationsConfig represents balloon defaults
type NotificationsConfig struct {
	Timeout string `mapstructure:"timeout"`
	Sound   *bool  `mapstructure:"sound"`
}

// Load loads configuration from file
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.ruwps")
	}

	v.SetDefault("app.name", "ruwps")
	v.SetDefault("app.title", "")
	v.SetDefault("app.icon", "")
	v.SetDefault("theme", "auto")
	v.SetDefault("log.level", "info")

	// RUWPS_APP_TITLE overrides app.title, and so on.
	v.SetEnvPrefix("ruwps")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if strings.TrimSpace(c.App.Name) == "" {
		return fmt.Errorf("app.name is required")
	}
	if _, err := winrt.ParseTheme(c.Theme); err != nil {
		return fmt.Errorf("theme: %w", err)
	}
	if c.Log.Level != "" {
		var level zapcore.Level
		if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	for i, t := range c.Timers {
		d, err := time.ParseDuration(t.Interval)
		if err != nil {
			return fmt.Errorf("timers[%d].interval: %w", i, err)
		}
		if d <= 0 {
			return fmt.Errorf("timers[%d].interval must be positive", i)
		}
		if t.Action == "" {
			return fmt.Errorf("timers[%d].action is required", i)
		}
	}
	if c.Notifications.Timeout != "" {
		if _, err := time.ParseDuration(c.Notifications.Timeout); err != nil {
			return fmt.Errorf("notifications.timeout: %w", err)
		}
	}
	return nil
}

// ExpandEnvVars expands environment variables in paths
func (c *Config) ExpandEnvVars() {
	c.App.Icon = os.ExpandEnv(c.App.Icon)
	c.Log.File = os.ExpandEnv(c.Log.File)
}

// GetTitle returns the tooltip, defaulting to the application name
func (c *AppConfig) GetTitle() string {
	if c.Title == "" {
		return c.Name
	}
	return c.Title
}

// GetInterval returns the timer interval
func (t *TimerConfig) GetInterval() time.Duration {
	d, err := time.ParseDuration(t.Interval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// GetTheme returns the configured theme. Unknown values follow the system.
func (c *Config) GetTheme() winrt.Theme {
	t, err := winrt.ParseTheme(c.Theme)
	if err != nil {
		return winrt.ThemeAuto
	}
	return t
}

// GetBalloonTimeout returns how long a balloon stays up. Default: 10s
func (n *NotificationsConfig) GetBalloonTimeout() time.Duration {
	if n.Timeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(n.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// SoundEnabled reports whether balloons play the system sound. Default: true
func (n *NotificationsConfig) SoundEnabled() bool {
	return n.Sound == nil || *n.Sound
}

// MenuValues converts the menu section into declarative menu values.
// Objects with a title become items, or submenus when they carry items;
// strings, nulls and single-key maps are passed through unchanged, so the
// menu parser reports anything it cannot read. resolve maps an action name
// to its callback.
func (c *Config) MenuValues(resolve func(action string) menu.Callback) []any {
	return menuValues(c.Menu, resolve)
}

func menuValues(values []any, resolve func(string) menu.Callback) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, menuValue(v, resolve))
	}
	return out
}

func menuValue(v any, resolve func(string) menu.Callback) any {
	m, ok := stringMap(v)
	if !ok {
		return v
	}
	title, ok := m["title"].(string)
	if !ok {
		if len(m) != 1 {
			return v
		}
		for k, children := range m {
			if items, ok := children.([]any); ok {
				return map[string]any{k: menuValues(items, resolve)}
			}
		}
		return v
	}
	if items, ok := m["items"].([]any); ok {
		return menu.Sub{Title: title, Items: menuValues(items, resolve)}
	}
	it := menu.Item{Title: title}
	it.Key, _ = m["key"].(string)
	it.Shortcut, _ = m["shortcut"].(string)
	it.Icon, _ = m["icon"].(string)
	it.Checked, _ = m["checked"].(bool)
	it.Disabled, _ = m["disabled"].(bool)
	if action, _ := m["action"].(string); action != "" && resolve != nil {
		it.Callback = resolve(action)
	}
	return it
}

func stringMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			s, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[s] = val
		}
		return out, true
	}
	return nil, false
}
