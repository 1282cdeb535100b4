// Package config loads application configuration from a YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/veilhq/veil/pkg/browser"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Browser BrowserConfig `yaml:"browser"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig controls the local API listener.
type ServerConfig struct {
	Listen        string `yaml:"listen"`
	PublicMetrics bool   `yaml:"public_metrics"`
}

// BrowserConfig controls the remote cloud browser API client.
type BrowserConfig struct {
	APIURL           string `yaml:"api_url"`
	RequestTimeout   string `yaml:"request_timeout"`
	PaymentSignature string `yaml:"payment_signature"`
	InternalKey      string `yaml:"internal_key"`
}

// LoggingConfig controls the structured event log.
type LoggingConfig struct {
	Dir      string `yaml:"dir"`
	MinLevel string `yaml:"min_level"`
}

// Load reads the config file at path (optional), applies environment
// overrides, then defaults, and validates the result.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultPath returns the conventional config file location, or "" when
// no config file exists there.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(home, ".veil", "veil.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

func (c *Config) applyEnv() {
	if v := os.Getenv("VEIL_LISTEN"); v != "" {
		c.Server.Listen = v
	}
	if v := os.Getenv("BROWSER_API_URL"); v != "" {
		c.Browser.APIURL = v
	}
	if v := os.Getenv("PAYMENT_SIGNATURE"); v != "" {
		c.Browser.PaymentSignature = v
	}
	if v := os.Getenv("BROWSER_INTERNAL_KEY"); v != "" {
		c.Browser.InternalKey = v
	}
	if v := os.Getenv("VEIL_LOG_DIR"); v != "" {
		c.Logging.Dir = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Listen == "" {
		c.Server.Listen = "127.0.0.1:8420"
	}
	if c.Logging.Dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Logging.Dir = filepath.Join(home, ".veil", "logs")
		}
	}
	if c.Logging.MinLevel == "" {
		c.Logging.MinLevel = "info"
	}
}

// Validate rejects configurations that cannot produce a working client.
func (c *Config) Validate() error {
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
	}
	if _, err := c.BrowserConfig(); err != nil {
		return err
	}
	return nil
}

// BrowserConfig converts the YAML section into a session store config.
func (c *Config) BrowserConfig() (browser.Config, error) {
	bc := browser.DefaultConfig()
	if c.Browser.APIURL != "" {
		bc.BaseURL = c.Browser.APIURL
	}
	bc.PaymentSignature = c.Browser.PaymentSignature
	bc.InternalKey = c.Browser.InternalKey
	if c.Browser.RequestTimeout != "" {
		d, err := parseDuration(c.Browser.RequestTimeout)
		if err != nil {
			return browser.Config{}, fmt.Errorf("browser.request_timeout: %w", err)
		}
		bc.RequestTimeout = d
	}
	return bc, nil
}
