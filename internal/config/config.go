// Package config loads front-end settings from TOML files, the environment and flags.
//
// Sources are applied in order, later ones winning:
//
//  1. Defaults
//  2. User file ($XDG_CONFIG_HOME/tasks/config.toml or the OS equivalent)
//  3. Project file (.tasks.toml in the working directory)
//  4. Environment (TASKS_LOG_LEVEL, TASKS_LOG_FORMAT, TASKS_LOG_TIMESTAMPS, TASKS_THEME, TASKS_GROUP)
//  5. Flags (-log-level, -log-format, -log-timestamps, -theme, -group)
//
// Data file locations are not configurable; each front end has a fixed file.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
	DefaultTheme     = "classic"

	ProjectFileName = ".tasks.toml"
	userDirName     = "tasks"
	userFileName    = "config.toml"
)

// Config holds settings shared by every front end.
type Config struct {
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	Theme         string `toml:"theme"`
	Group         bool   `toml:"group"`
}

// ErrInvalid is wrapped by every ValidationError.
var ErrInvalid = errors.New("invalid config value")

// ValidationError names the offending field.
type ValidationError struct {
	Field string
	Value string
	Allow []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %q is not one of %s", e.Field, e.Value, strings.Join(e.Allow, ", "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func setDefaults(cfg *Config) {
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat
	cfg.Theme = DefaultTheme
}

// Load builds the configuration. Flags are parsed from args with fs;
// remaining positional arguments are available from fs.Args().
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if p := userConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", p, err)
		}
	}
	if p := projectConfigFile(); p != "" {
		if err := loadConfigFile(cfg, p); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", p, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	checks := []struct {
		field, value string
		allow        []string
	}{
		{"log_level", c.LogLevel, []string{"debug", "info", "warn", "warning", "error"}},
		{"log_format", c.LogFormat, []string{"text", "json", "logfmt"}},
		{"theme", c.Theme, []string{"classic", "neon", "mono"}},
	}
	for _, ch := range checks {
		if !contains(ch.allow, strings.ToLower(ch.value)) {
			return &ValidationError{Field: ch.field, Value: ch.value, Allow: ch.allow}
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func userConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return existing(filepath.Join(dir, userDirName, userFileName))
}

func projectConfigFile() string {
	return existing(ProjectFileName)
}

func existing(p string) string {
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p
	}
	return ""
}

func loadConfigFile(cfg *Config, path string) error {
	_, err := toml.DecodeFile(path, cfg)
	return err
}

func loadFromEnv(cfg *Config) error {
	if v := os.Getenv("TASKS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKS_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("TASKS_THEME"); v != "" {
		cfg.Theme = v
	}
	for name, dst := range map[string]*bool{
		"TASKS_LOG_TIMESTAMPS": &cfg.LogTimestamps,
		"TASKS_GROUP":          &cfg.Group,
	} {
		v := os.Getenv(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = b
	}
	return nil
}

func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("tasks", flag.ContinueOnError)
	}
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "include timestamps in log lines")
	fs.StringVar(&cfg.Theme, "theme", cfg.Theme, "color theme (classic, neon, mono)")
	fs.BoolVar(&cfg.Group, "group", cfg.Group, "group ls output by pending/done")
	return fs.Parse(args)
}
