// Package config provides configuration file support for monitd.
//
// monitd supports both command-line flags and a configuration file:
// - CLI flags take highest priority (override config file)
// - Config file provides defaults
// - Built-in defaults are used if neither is specified
//
// Configuration files use TOML format for readability and structure. One
// [run] table carries daemon-wide settings; one array-of-tables per
// service kind (`[[process]]`, `[[file]]`, ...) declares the monitored
// service list the engine walks every cycle.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the complete monitd configuration, as loaded from TOML.
type Config struct {
	Run RunConfig `toml:"run"`

	Process    []ServiceSpec `toml:"process"`
	File       []ServiceSpec `toml:"file"`
	Directory  []ServiceSpec `toml:"directory"`
	Fifo       []ServiceSpec `toml:"fifo"`
	Filesystem []ServiceSpec `toml:"filesystem"`
	Program    []ServiceSpec `toml:"program"`
	Host       []ServiceSpec `toml:"host"`
	System     []ServiceSpec `toml:"system"`
}

// RunConfig carries the global settings the original kept on its
// package-level Run struct: poll interval, daemon flags, and the
// credentials/command the control collaborator needs.
type RunConfig struct {
	// Interval is the poll interval between cycles, e.g. "30s". Matches
	// Monit's own default of 30 seconds when left empty.
	Interval string `toml:"interval"`

	// Daemon runs monitd as a background daemon (fork + detach).
	Daemon bool `toml:"daemon"`

	// PidFile is the PID file path written after daemonizing.
	PidFile string `toml:"pidfile"`

	// Database is the SQLite event log path.
	Database string `toml:"database"`

	// Syslog is the syslog facility (daemon, local0-local7). Empty logs
	// to stderr.
	Syslog string `toml:"syslog"`

	// Debug enables verbose debug logging.
	Debug bool `toml:"debug"`

	// ControlCommand is the command template internal/control shells out
	// to for start/stop/restart/unmonitor actions, e.g.
	// ["service", "{name}", "{action}"] or
	// ["systemctl", "{action}", "{name}"]. Empty uses
	// control.DefaultTemplate.
	ControlCommand []string `toml:"control_command"`

	// Auth guards the daemon's own control/status surface, mirroring the
	// teacher's CollectorConfig/WebConfig credential pattern.
	Auth AuthConfig `toml:"auth"`
}

// AuthConfig is HTTP Basic Auth credentials for a control surface.
// Password may be plain text or a bcrypt hash depending on
// PasswordFormat, exactly like the teacher's Web/CollectorConfig.
type AuthConfig struct {
	User           string `toml:"user"`
	Password       string `toml:"password"`
	PasswordFormat string `toml:"password_format"` // "plain" (default) or "bcrypt"
}

// Load reads and parses a TOML configuration file.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &cfg, nil
}

// MergeString merges a config-file string with a CLI flag value,
// preferring the CLI flag when it differs from its declared default.
func MergeString(cfgValue, cliValue, defaultValue string) string {
	if cliValue != defaultValue {
		return cliValue
	}
	if cfgValue != "" {
		return cfgValue
	}
	return cliValue
}

// MergeBool merges a config-file bool with a CLI flag, preferring the
// CLI flag whenever it is true (false is the default for every flag this
// is used with).
func MergeBool(cfgValue, cliValue bool) bool {
	if cliValue {
		return true
	}
	return cfgValue
}
