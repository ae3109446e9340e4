package gateway

import (
	"os"
	"strings"
	"time"
)

// Defaults applied when neither an explicit override nor an environment
// variable provides a value. The default model is the quota-friendly one.
const (
	DefaultBaseURL     = "https://models.github.ai/inference"
	DefaultModel       = "openai/gpt-4o-mini"
	DefaultMaxTokens   = 2048
	DefaultTemperature = 0.2
	DefaultTimeout     = 120 * time.Second
)

// Environment variables consulted by Resolve, in priority order per field.
var (
	tokenVars   = []string{"GITHUB_TOKEN", "GH_TOKEN", "OPENAI_API_KEY"}
	baseURLVars = []string{"OPENAI_API_BASE", "OPENAI_BASE_URL"}
	modelVars   = []string{"SCENEDECK_MODEL"}
)

const trustEnvVar = "SCENEDECK_TRUST_ENV"

// Config holds the settings for one gateway client instance. It is built once
// by Resolve and not mutated afterwards. A missing Token is allowed at
// construction time (so a UI can display the unset state); Complete reports
// it as a config error before any network call.
type Config struct {
	Token       string
	BaseURL     string // no trailing slash
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
	TrustEnv    bool // honor proxy environment variables
}

// Overrides carries explicit values that take precedence over environment
// variables and defaults. Zero values mean "not provided"; pointer fields
// distinguish an explicit zero from absence.
type Overrides struct {
	Token       string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature *float64
	Timeout     time.Duration
	TrustEnv    *bool
}

// Resolve produces a fully populated Config. Per field the resolution order
// is: explicit override, then the first non-empty value among that field's
// environment variables, then the hardcoded default.
func Resolve(o Overrides) Config {
	cfg := Config{
		Token:       firstNonEmpty(o.Token, firstEnv(tokenVars...)),
		BaseURL:     firstNonEmpty(o.BaseURL, firstEnv(baseURLVars...), DefaultBaseURL),
		Model:       firstNonEmpty(o.Model, firstEnv(modelVars...), DefaultModel),
		MaxTokens:   o.MaxTokens,
		Temperature: DefaultTemperature,
		Timeout:     o.Timeout,
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	if o.Temperature != nil {
		cfg.Temperature = *o.Temperature
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	if o.TrustEnv != nil {
		cfg.TrustEnv = *o.TrustEnv
	} else {
		cfg.TrustEnv = envBool(trustEnvVar)
	}

	return cfg
}

// Endpoints returns the candidate completion URLs in priority order: the
// versioned OpenAI-compatible path, then the unversioned REST-style path.
// The order is fixed and never varies.
func (c Config) Endpoints() [2]string {
	return [2]string{
		c.BaseURL + "/v1/chat/completions",
		c.BaseURL + "/chat/completions",
	}
}

// HasToken reports whether a credential was resolved. The dashboard uses this
// to show an unset-credential state without triggering an error.
func (c Config) HasToken() bool { return c.Token != "" }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}

	return ""
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}

	return ""
}

// envBool treats 1/true/yes (case-insensitive) as true; anything else,
// including an unset variable, is false.
func envBool(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes":
		return true
	default:
		return false
	}
}
