// Package config loads healthmon settings from a TOML file with flag
// overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds user-tunable settings. Zero values are replaced by
// defaults at load time.
type Config struct {
	IntervalSec int    `mapstructure:"interval_sec"`
	HistoryCap  int    `mapstructure:"history_cap"`
	EventCap    int    `mapstructure:"event_cap"`
	DataDir     string `mapstructure:"data_dir"`
	RecordDB    string `mapstructure:"record_db"` // empty disables the recorder

	DeepHangAfterSec int `mapstructure:"deep_hang_after_sec"`
	DumpHangAfterSec int `mapstructure:"dump_hang_after_sec"`
	DeepCooldownSec  int `mapstructure:"deep_cooldown_sec"`
	DumpCooldownSec  int `mapstructure:"dump_cooldown_sec"`

	Debug   bool `mapstructure:"debug"`
	Verbose bool `mapstructure:"verbose"`
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		IntervalSec:      3,
		HistoryCap:       100,
		EventCap:         200,
		DataDir:          defaultDataDir(),
		DeepHangAfterSec: 5,
		DumpHangAfterSec: 15,
		DeepCooldownSec:  30,
		DumpCooldownSec:  300,
	}
}

// Interval returns the tick interval as a duration.
func (c Config) Interval() time.Duration {
	return time.Duration(c.IntervalSec) * time.Second
}

// Load reads healthmon.toml from /etc and the user config directory, then
// applies defaults to anything unset. A missing file is not an error.
func Load() (Config, error) {
	v := viper.New()
	v.SetConfigName("healthmon")
	v.SetConfigType("toml")
	v.AddConfigPath("/etc")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "healthmon"))
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{}
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return withDefaults(cfg), nil
}

func withDefaults(cfg Config) Config {
	def := Default()
	if cfg.IntervalSec <= 0 {
		cfg.IntervalSec = def.IntervalSec
	}
	if cfg.HistoryCap <= 0 {
		cfg.HistoryCap = def.HistoryCap
	}
	if cfg.EventCap <= 0 {
		cfg.EventCap = def.EventCap
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.DeepHangAfterSec <= 0 {
		cfg.DeepHangAfterSec = def.DeepHangAfterSec
	}
	if cfg.DumpHangAfterSec <= 0 {
		cfg.DumpHangAfterSec = def.DumpHangAfterSec
	}
	if cfg.DeepCooldownSec <= 0 {
		cfg.DeepCooldownSec = def.DeepCooldownSec
	}
	if cfg.DumpCooldownSec <= 0 {
		cfg.DumpCooldownSec = def.DumpCooldownSec
	}
	return cfg
}

func defaultDataDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "healthmon")
}
