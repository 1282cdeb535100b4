package browser

import (
	"errors"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://browser.proxies.sx"

// Config controls how the session store reaches the cloud browser API.
type Config struct {
	// BaseURL is the root of the browser API, without a trailing slash.
	BaseURL string

	// RequestTimeout bounds every remote call. There is no separate
	// per-operation timeout and no retry logic; the remote service owns
	// resilience.
	RequestTimeout time.Duration

	// PaymentSignature is the fallback x402 payment signature used when a
	// spawn request does not carry one explicitly.
	PaymentSignature string

	// InternalKey grants privileged access for internal/testing sessions.
	InternalKey string
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        defaultBaseURL,
		RequestTimeout: 60 * time.Second,
	}
}

// ConfigFromEnv builds a config from the process environment.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if val := strings.TrimSpace(os.Getenv("BROWSER_API_URL")); val != "" {
		cfg.BaseURL = val
	}
	if val := strings.TrimSpace(os.Getenv("PAYMENT_SIGNATURE")); val != "" {
		cfg.PaymentSignature = val
	}
	if val := strings.TrimSpace(os.Getenv("BROWSER_INTERNAL_KEY")); val != "" {
		cfg.InternalKey = val
	}
	return cfg
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if strings.TrimSpace(c.BaseURL) != "" {
		defaults.BaseURL = strings.TrimRight(c.BaseURL, "/")
	}
	if c.RequestTimeout != 0 {
		defaults.RequestTimeout = c.RequestTimeout
	}
	defaults.PaymentSignature = c.PaymentSignature
	defaults.InternalKey = c.InternalKey
	return defaults
}

// Validate checks whether the config is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return errors.New("base_url is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return errors.New("base_url must be a valid URL")
	}
	if c.RequestTimeout < 0 {
		return errors.New("request_timeout must be zero or positive")
	}
	return nil
}
