package workspace

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/scenedeck/scenedeck/pkg/gateway"
	"gopkg.in/yaml.v3"
)

// Config is the optional scenedeck.yaml configuration. Everything in it has a
// working default; the file only pins down overrides.
type Config struct {
	Gateway   GatewayConfig   `yaml:"gateway"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Connector ConnectorConfig `yaml:"connector"`
}

// GatewayConfig overrides the gateway resolver. Pointer fields distinguish an
// explicit zero from absence.
type GatewayConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKey      string   `yaml:"api_key"` //nolint:gosec // configuration field, not a hardcoded secret
	Model       string   `yaml:"model"`
	MaxTokens   int      `yaml:"max_tokens"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     string   `yaml:"timeout"` // duration string, e.g. "120s"
	TrustEnv    *bool    `yaml:"trust_env"`
}

// PipelineConfig overrides how the scene-generation pipeline is launched.
type PipelineConfig struct {
	Python string   `yaml:"python"`
	Module string   `yaml:"module"`
	Args   []string `yaml:"args"` // extra args appended to every run
}

// ConnectorConfig overrides the Unity editor connector.
type ConnectorConfig struct {
	Script string `yaml:"script"`
	Port   int    `yaml:"port"`
}

// LoadConfig reads a YAML config file. Environment variables referenced as
// ${VAR} or $VAR are expanded before parsing, so API keys can live in the
// environment (or the .scenedeck.env file) instead of the config. A missing
// file yields a zero Config.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is caller-provided configuration, not user input
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, nil
		}

		return Config{}, fmt.Errorf("workspace: load config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("workspace: parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks that the configuration values are usable.
func (c Config) Validate() error {
	if c.Gateway.MaxTokens < 0 {
		return fmt.Errorf("workspace: config: gateway.max_tokens must be positive")
	}

	if t := c.Gateway.Temperature; t != nil && (*t < 0 || *t > 2) {
		return fmt.Errorf("workspace: config: gateway.temperature must be between 0 and 2")
	}

	if c.Gateway.Timeout != "" {
		if _, err := time.ParseDuration(c.Gateway.Timeout); err != nil {
			return fmt.Errorf("workspace: config: gateway.timeout: %w", err)
		}
	}

	if p := c.Connector.Port; p < 0 || p > 65535 {
		return fmt.Errorf("workspace: config: connector.port must be between 1 and 65535")
	}

	return nil
}

// GatewayOverrides converts the config's gateway section into resolver
// overrides. Unset fields stay zero so environment variables and defaults
// still apply.
func (c Config) GatewayOverrides() gateway.Overrides {
	o := gateway.Overrides{
		Token:       c.Gateway.APIKey,
		BaseURL:     c.Gateway.BaseURL,
		Model:       c.Gateway.Model,
		MaxTokens:   c.Gateway.MaxTokens,
		Temperature: c.Gateway.Temperature,
		TrustEnv:    c.Gateway.TrustEnv,
	}

	if c.Gateway.Timeout != "" {
		if d, err := time.ParseDuration(c.Gateway.Timeout); err == nil {
			o.Timeout = d
		}
	}

	return o
}
