// Package config loads the reviewflow configuration: TOML base file,
// environment overlay selected by REVIEWFLOW_ENV, then environment variable
// overrides. If no config.toml exists, defaults and environment variables
// provide all configuration.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"reviewflow/pkg/review"
	"reviewflow/pkg/transport"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvReviewflowEnv = "REVIEWFLOW_ENV"

	EnvHTTPTimeout = "REVIEWFLOW_HTTP_TIMEOUT"

	EnvConfigItemBaseURL = "REVIEWFLOW_CONFIGITEM_BASE_URL"
	EnvConfigItemModel   = "REVIEWFLOW_CONFIGITEM_MODEL"
	EnvRegressionBaseURL = "REVIEWFLOW_REGRESSION_BASE_URL"
	EnvRegressionModel   = "REVIEWFLOW_REGRESSION_MODEL"
)

// VariantConfig holds one workflow variant's endpoint configuration.
type VariantConfig struct {
	BaseURL      string `toml:"base_url"`
	DefaultModel string `toml:"default_model"`
}

// Merge overwrites non-zero fields from overlay.
func (c *VariantConfig) Merge(overlay *VariantConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.DefaultModel != "" {
		c.DefaultModel = overlay.DefaultModel
	}
}

type variantEnv struct {
	BaseURL string
	Model   string
}

func (c *VariantConfig) finalize(env variantEnv, defaultBaseURL string) error {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}
	if v := os.Getenv(env.BaseURL); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv(env.Model); v != "" {
		c.DefaultModel = v
	}
	if c.BaseURL == "" {
		return fmt.Errorf("base_url required")
	}
	return nil
}

// Config is the root configuration for reviewflow.
type Config struct {
	HTTP              transport.Config `toml:"http"`
	ConfigurationItem VariantConfig    `toml:"configuration_item"`
	Regression        VariantConfig    `toml:"regression"`
}

// Env returns the REVIEWFLOW_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvReviewflowEnv); env != "" {
		return env
	}
	return "local"
}

// ConfigurationItemClient assembles the configuration-item variant's client
// configuration: review-document-only generation routing, server-chosen
// model unless configured otherwise.
func (c *Config) ConfigurationItemClient() review.Config {
	return review.Config{
		BaseURL:      c.ConfigurationItem.BaseURL,
		DefaultModel: c.ConfigurationItem.DefaultModel,
		Route:        review.RouteReviewDocument,
	}
}

// RegressionClient assembles the regression variant's client configuration:
// type-routed generation endpoints and a fallback review session.
func (c *Config) RegressionClient() review.Config {
	return review.Config{
		BaseURL:           c.Regression.BaseURL,
		DefaultModel:      c.Regression.DefaultModel,
		Route:             review.RouteByType,
		FallbackSessionID: "default",
	}
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	c.HTTP.Merge(&overlay.HTTP)
	c.ConfigurationItem.Merge(&overlay.ConfigurationItem)
	c.Regression.Merge(&overlay.Regression)
}

func (c *Config) finalize() error {
	if v := os.Getenv(EnvHTTPTimeout); v != "" {
		c.HTTP.Timeout = v
	}
	if err := c.HTTP.Finalize(); err != nil {
		return fmt.Errorf("http: %w", err)
	}

	ciEnv := variantEnv{BaseURL: EnvConfigItemBaseURL, Model: EnvConfigItemModel}
	if err := c.ConfigurationItem.finalize(ciEnv, "http://localhost:5002/api"); err != nil {
		return fmt.Errorf("configuration_item: %w", err)
	}

	regEnv := variantEnv{BaseURL: EnvRegressionBaseURL, Model: EnvRegressionModel}
	if err := c.Regression.finalize(regEnv, "http://localhost:5002/regression/api"); err != nil {
		return fmt.Errorf("regression: %w", err)
	}
	if c.Regression.DefaultModel == "" {
		c.Regression.DefaultModel = review.RegressionDefaultModel
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvReviewflowEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
