// Package config loads limitbook's ambient configuration: logging
// level/format and the Good-For-Day pruner's session-close schedule.
// It mirrors the teacher's two configuration idioms side by side —
// config/config.go's flag+YAML file override, and
// pkg/marketmaker/config.go's viper environment-variable loading — since
// this module has both a "run me as a service" surface (logging) and a
// "tunable policy" surface (the pruner schedule) the way the teacher
// splits config.LoadConfig from marketmaker.LoadConfig.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// PrunerConfig controls when the background Good-For-Day pruner fires.
// Per spec.md §9's REDESIGN FLAGS, the 16:00-local default is a
// configuration value, not a hard-coded constant.
type PrunerConfig struct {
	// CloseHour/CloseMinute is the local wall-clock session-close time
	// at which resting GoodForDay orders are cancelled. Default 16:00.
	CloseHour   int `yaml:"close_hour"`
	CloseMinute int `yaml:"close_minute"`
	// SlackMS is added to the computed wake time, in milliseconds, to
	// avoid racing the boundary. Default 100. Stored as a plain int
	// rather than a time.Duration because yaml.v3 cannot unmarshal a
	// duration string like "100ms" into a time.Duration field — it only
	// accepts a bare integer of nanoseconds — the same reason
	// pkg/marketmaker/config.go's RequestTimeout is loaded as
	// REQUEST_TIMEOUT_SECONDS and multiplied rather than unmarshaled
	// directly.
	SlackMS int `yaml:"slack_ms"`
	// Slack is SlackMS as a time.Duration, re-derived after any YAML
	// override the same way Location is re-resolved below.
	Slack time.Duration `yaml:"-"`
	// Location is the timezone the close time is interpreted in.
	// Defaults to time.Local.
	Location *time.Location `yaml:"-"`
}

// LoggingConfig controls the process-wide logger (pkg/logging).
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "pretty"
}

// Config is limitbook's full ambient configuration.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Pruner  PrunerConfig  `yaml:"pruner"`
}

// DefaultPrunerConfig returns the spec's default schedule: 16:00 local
// with a 100ms slack.
func DefaultPrunerConfig() PrunerConfig {
	return PrunerConfig{
		CloseHour:   16,
		CloseMinute: 0,
		SlackMS:     100,
		Slack:       100 * time.Millisecond,
		Location:    time.Local,
	}
}

// Default returns the module's default configuration.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Pruner:  DefaultPrunerConfig(),
	}
}

// Load builds a Config from defaults, environment variables (via
// viper, following pkg/marketmaker/config.go's convention), and,
// if configPath is non-empty, a YAML override file (following
// config/config.go's convention). configPath == "" skips the file
// step entirely.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("PRUNER_CLOSE_HOUR", 16)
	v.SetDefault("PRUNER_CLOSE_MINUTE", 0)
	v.SetDefault("PRUNER_SLACK_MS", 100)
	v.SetDefault("PRUNER_TIMEZONE", "Local")
	v.AutomaticEnv()

	loc, err := loadLocation(v.GetString("PRUNER_TIMEZONE"))
	if err != nil {
		return nil, fmt.Errorf("config: resolving pruner timezone: %w", err)
	}

	cfg := &Config{
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Pruner: PrunerConfig{
			CloseHour:   v.GetInt("PRUNER_CLOSE_HOUR"),
			CloseMinute: v.GetInt("PRUNER_CLOSE_MINUTE"),
			SlackMS:     v.GetInt("PRUNER_SLACK_MS"),
			Location:    loc,
		},
	}
	cfg.Pruner.Slack = time.Duration(cfg.Pruner.SlackMS) * time.Millisecond

	if configPath == "" {
		return cfg, nil
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", configPath, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", configPath, err)
	}
	// Location is not read from the file (yaml:"-"); keep the
	// env-resolved one if the unmarshal left it nil.
	if cfg.Pruner.Location == nil {
		cfg.Pruner.Location = loc
	}
	// Re-derive Slack in case the file overrode slack_ms.
	cfg.Pruner.Slack = time.Duration(cfg.Pruner.SlackMS) * time.Millisecond

	return cfg, nil
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(name)
}
