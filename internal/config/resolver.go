// Package config resolves runtime settings from the config file,
// environment variables, and CLI flags, tracking where each value came
// from. Precedence: CLI flag > environment > config file > default.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type ValueSource string

const (
	SourceUnknown ValueSource = "unknown"
	SourceConfig  ValueSource = "config"
	SourceEnv     ValueSource = "env"
	SourceCLI     ValueSource = "cli"
	SourceDefault ValueSource = "default"
)

// ResolvedValue is one setting with its provenance.
type ResolvedValue struct {
	Value  string      `json:"value"`
	Source ValueSource `json:"source"`
	From   string      `json:"from,omitempty"`
}

// ResolveOptions carries CLI flag values into resolution.
type ResolveOptions struct {
	ConfigPath string
	CLIDBPath  string
	CLIPoll    string
}

// ResolvedConfig is the effective configuration.
type ResolvedConfig struct {
	ConfigPath string `json:"config_path"`

	DBPath          ResolvedValue `json:"db_path"`
	PollSpec        ResolvedValue `json:"poll"`
	ReminderMinutes ResolvedValue `json:"default_reminder_minutes"`
}

type fileConfig struct {
	DBPath          string `yaml:"db_path"`
	Poll            string `yaml:"poll"`
	ReminderMinutes int    `yaml:"default_reminder_minutes"`
}

// Defaults applied when nothing else sets a value.
const (
	DefaultDBPath          = "~/.nhac/nhac.db"
	DefaultPollSpec        = "@every 30s"
	DefaultReminderMinutes = 10
)

// DefaultConfigPath returns the default config file location.
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".nhac", "config.yaml")
}

// ResolveConfig resolves the effective configuration. A missing config file
// is not an error; a malformed one is.
func ResolveConfig(opts ResolveOptions) (ResolvedConfig, error) {
	path := strings.TrimSpace(opts.ConfigPath)
	if path == "" {
		path = DefaultConfigPath()
	}

	out := ResolvedConfig{
		ConfigPath:      path,
		DBPath:          ResolvedValue{Value: DefaultDBPath, Source: SourceDefault},
		PollSpec:        ResolvedValue{Value: DefaultPollSpec, Source: SourceDefault},
		ReminderMinutes: ResolvedValue{Value: strconv.Itoa(DefaultReminderMinutes), Source: SourceDefault},
	}

	cfg, err := loadConfig(path)
	if err != nil {
		return out, err
	}
	if cfg != nil {
		apply(&out.DBPath, cfg.DBPath, SourceConfig, path)
		apply(&out.PollSpec, cfg.Poll, SourceConfig, path)
		if cfg.ReminderMinutes > 0 {
			apply(&out.ReminderMinutes, strconv.Itoa(cfg.ReminderMinutes), SourceConfig, path)
		}
	}

	applyEnv(&out.DBPath, "NHAC_DB")
	applyEnv(&out.PollSpec, "NHAC_POLL")
	applyEnv(&out.ReminderMinutes, "NHAC_REMINDER")

	apply(&out.DBPath, opts.CLIDBPath, SourceCLI, "--db")
	apply(&out.PollSpec, opts.CLIPoll, SourceCLI, "--poll")

	return out, nil
}

// DefaultReminder returns the resolved default reminder lead-time, falling
// back to the built-in default when the setting is not a positive integer.
func (c ResolvedConfig) DefaultReminder() int {
	n, err := strconv.Atoi(strings.TrimSpace(c.ReminderMinutes.Value))
	if err != nil || n < 0 {
		return DefaultReminderMinutes
	}
	return n
}

func loadConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return &cfg, nil
}

func apply(dst *ResolvedValue, value string, source ValueSource, from string) {
	if v := strings.TrimSpace(value); v != "" {
		*dst = ResolvedValue{Value: v, Source: source, From: from}
	}
}

func applyEnv(dst *ResolvedValue, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = ResolvedValue{Value: v, Source: SourceEnv, From: env}
	}
}
