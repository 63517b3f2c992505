// Package config loads the agent configuration from a YAML file and
// applies UNLOCKDESK_* environment overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the main configuration struct.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Storage   StorageConfig   `yaml:"storage"`
	Agent     AgentConfig     `yaml:"agent"`
	Poll      PollConfig      `yaml:"poll"`
	Logging   LoggingConfig   `yaml:"logging"`
	Retention RetentionConfig `yaml:"retention"`
}

// APIConfig points the client at the unlock service backend.
type APIConfig struct {
	BaseURL   string    `yaml:"base_url"`
	Timeout   Duration  `yaml:"timeout"`
	MaxUpload SizeBytes `yaml:"max_upload"`
	RateLimit struct {
		RPS   float64 `yaml:"rps"`
		Burst int     `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// StorageConfig holds the local state database location.
type StorageConfig struct {
	DBPath string `yaml:"db_path"`
}

// AgentConfig holds the local metrics/health listener settings.
type AgentConfig struct {
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// PollConfig overrides per-view poll intervals. Zero values keep the
// built-in defaults.
type PollConfig struct {
	Detail        Duration `yaml:"detail"`
	Chat          Duration `yaml:"chat"`
	Lists         Duration `yaml:"lists"`
	Notifications Duration `yaml:"notifications"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
	Sink  string `yaml:"sink"`
}

// RetentionConfig holds configuration for the local cache purge runner.
type RetentionConfig struct {
	Enabled bool   `yaml:"enabled"`
	Cron    string `yaml:"cron"`
	Period  string `yaml:"period"`
	DryRun  bool   `yaml:"dry_run"`
}

// Addr returns host:port for the local metrics listener.
func (c *Config) Addr() string {
	addr := c.Agent.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	p := c.Agent.Port
	if p == 0 {
		p = 9180
	}
	return fmt.Sprintf("%s:%d", addr, p)
}

func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadEnvOverrides applies environment overrides onto the provided cfg
// and reports whether any env vars were used.
func LoadEnvOverrides(cfg *Config) bool {
	envUsed := false

	if v := os.Getenv("UNLOCKDESK_API_URL"); v != "" {
		envUsed = true
		cfg.API.BaseURL = v
	}
	if v := os.Getenv("UNLOCKDESK_API_TIMEOUT"); v != "" {
		var d Duration
		if err := yaml.Unmarshal([]byte(strconv.Quote(v)), &d); err == nil {
			envUsed = true
			cfg.API.Timeout = d
		}
	}
	if v := os.Getenv("UNLOCKDESK_RATE_RPS"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			envUsed = true
			cfg.API.RateLimit.RPS = f
		}
	}
	if v := os.Getenv("UNLOCKDESK_RATE_BURST"); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			envUsed = true
			cfg.API.RateLimit.Burst = n
		}
	}
	if v := os.Getenv("UNLOCKDESK_DB_PATH"); v != "" {
		envUsed = true
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("UNLOCKDESK_AGENT_ADDRESS"); v != "" {
		envUsed = true
		cfg.Agent.Address = v
	}
	if v := os.Getenv("UNLOCKDESK_AGENT_PORT"); v != "" {
		if pi, err := strconv.Atoi(v); err == nil {
			envUsed = true
			cfg.Agent.Port = pi
		}
	}
	if v := os.Getenv("UNLOCKDESK_LOG_LEVEL"); v != "" {
		envUsed = true
		cfg.Logging.Level = v
	}
	if v := os.Getenv("UNLOCKDESK_LOG_SINK"); v != "" {
		envUsed = true
		cfg.Logging.Sink = v
	}
	if v := os.Getenv("UNLOCKDESK_RETENTION_ENABLED"); v != "" {
		envUsed = true
		vl := strings.ToLower(strings.TrimSpace(v))
		cfg.Retention.Enabled = vl == "1" || vl == "true" || vl == "yes"
	}
	if v := os.Getenv("UNLOCKDESK_RETENTION_CRON"); v != "" {
		envUsed = true
		cfg.Retention.Cron = v
	}
	if v := os.Getenv("UNLOCKDESK_RETENTION_PERIOD"); v != "" {
		envUsed = true
		cfg.Retention.Period = v
	}
	return envUsed
}

// LoadEffective loads config from the given path and applies environment
// overrides. A missing file is not an error; env vars alone can carry a
// usable config.
func LoadEffective(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if err != nil {
		cfg = &Config{}
	}
	envUsed := LoadEnvOverrides(cfg)
	if cfg.API.BaseURL == "" {
		return nil, envUsed, fmt.Errorf("api.base_url is required (or UNLOCKDESK_API_URL)")
	}
	return cfg, envUsed, nil
}

// ResolveConfigPath decides the config file path using the flag-provided
// value and the environment variable `UNLOCKDESK_CONFIG` when the flag
// was not set.
func ResolveConfigPath(flagPath string, flagSet bool) string {
	if flagSet {
		return flagPath
	}
	if p := os.Getenv("UNLOCKDESK_CONFIG"); p != "" {
		return p
	}
	return flagPath
}
