// Package config loads the netaudit configuration from YAML with
// NETAUDIT_* environment variable overrides applied on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	apperrors "github.com/ehsaniara/netaudit/pkg/errors"
)

// Config is the flat application configuration. One struct, no nesting maze:
// every knob the pool, manager and orchestrator need lives here.
type Config struct {
	// Connection pool
	MaxConnections int           `yaml:"max_connections" envconfig:"MAX_CONNECTIONS"`
	CreateRetries  int           `yaml:"create_retries" envconfig:"CREATE_RETRIES"`
	RetryBackoff   time.Duration `yaml:"retry_backoff" envconfig:"RETRY_BACKOFF"`

	// Command execution
	CommandTimeout time.Duration `yaml:"command_timeout" envconfig:"COMMAND_TIMEOUT"`
	HeavyTimeout   time.Duration `yaml:"heavy_timeout" envconfig:"HEAVY_TIMEOUT"`

	// SSH transport defaults
	SSHPort        int           `yaml:"ssh_port" envconfig:"SSH_PORT"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" envconfig:"CONNECT_TIMEOUT"`
	PrivateKeyPath string        `yaml:"private_key_path" envconfig:"PRIVATE_KEY_PATH"`

	// Jump host (optional; empty hostname disables it)
	JumpHost     string `yaml:"jump_host" envconfig:"JUMP_HOST"`
	JumpPort     int    `yaml:"jump_port" envconfig:"JUMP_PORT"`
	JumpUsername string `yaml:"jump_username" envconfig:"JUMP_USERNAME"`
	JumpPassword string `yaml:"jump_password" envconfig:"JUMP_PASSWORD"`

	// Collection
	DefaultPlatform string `yaml:"default_platform" envconfig:"DEFAULT_PLATFORM"`
	DeviceBudget    bool   `yaml:"device_budget" envconfig:"DEVICE_BUDGET"`

	// Output
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR"`

	// Logging
	LogLevel  string `yaml:"log_level" envconfig:"LOG_LEVEL"`
	LogFormat string `yaml:"log_format" envconfig:"LOG_FORMAT"`
}

// GetDefaults returns a config with sensible defaults
func GetDefaults() *Config {
	return &Config{
		MaxConnections:  10,
		CreateRetries:   3,
		RetryBackoff:    2 * time.Second,
		CommandTimeout:  30 * time.Second,
		HeavyTimeout:    90 * time.Second,
		SSHPort:         22,
		ConnectTimeout:  15 * time.Second,
		JumpPort:        22,
		DefaultPlatform: "cisco_iosxr",
		OutputDir:       "netaudit-output",
		LogLevel:        "INFO",
		LogFormat:       "text",
	}
}

// searchPaths are checked in order when no explicit path is given
var searchPaths = []string{
	"netaudit-config.yml",
	"netaudit-config.yaml",
	"/etc/netaudit/config.yml",
}

// Load reads the configuration file at path (or the first file found in the
// default search locations when path is empty), then applies NETAUDIT_*
// environment overrides. A missing file is not an error: defaults + env still
// produce a usable config. Returns the config and the path actually used.
func Load(path string) (*Config, string, error) {
	cfg := GetDefaults()

	usedPath := path
	if usedPath == "" {
		for _, candidate := range searchPaths {
			if _, err := os.Stat(candidate); err == nil {
				usedPath = candidate
				break
			}
		}
	}

	if usedPath != "" {
		data, err := os.ReadFile(usedPath)
		if err != nil {
			return nil, "", &apperrors.ConfigError{Component: "file", Err: err}
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, "", &apperrors.ConfigError{Component: "yaml", Err: err}
		}
		usedPath, _ = filepath.Abs(usedPath)
	}

	// Env vars win over file values
	if err := envconfig.Process("netaudit", cfg); err != nil {
		return nil, "", &apperrors.ConfigError{Component: "env", Err: err}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, usedPath, nil
}

// Validate rejects configurations the pool and transport cannot operate with
func (c *Config) Validate() error {
	if c.MaxConnections <= 0 {
		return &apperrors.ConfigError{Component: "pool", Field: "max_connections",
			Err: fmt.Errorf("must be positive, got %d", c.MaxConnections)}
	}
	if c.CreateRetries < 1 {
		return &apperrors.ConfigError{Component: "pool", Field: "create_retries",
			Err: fmt.Errorf("must be at least 1, got %d", c.CreateRetries)}
	}
	if c.SSHPort <= 0 || c.SSHPort > 65535 {
		return &apperrors.ConfigError{Component: "ssh", Field: "ssh_port",
			Err: fmt.Errorf("out of range: %d", c.SSHPort)}
	}
	if c.CommandTimeout <= 0 {
		return &apperrors.ConfigError{Component: "exec", Field: "command_timeout",
			Err: fmt.Errorf("must be positive, got %s", c.CommandTimeout)}
	}
	if c.HeavyTimeout < c.CommandTimeout {
		return &apperrors.ConfigError{Component: "exec", Field: "heavy_timeout",
			Err: fmt.Errorf("must be >= command_timeout (%s), got %s", c.CommandTimeout, c.HeavyTimeout)}
	}
	return nil
}

// HasJumpHost reports whether connections should hop through a bastion
func (c *Config) HasJumpHost() bool {
	return c.JumpHost != ""
}

// JumpAddress returns the bastion dial address
func (c *Config) JumpAddress() string {
	return fmt.Sprintf("%s:%d", c.JumpHost, c.JumpPort)
}
