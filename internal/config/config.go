// Package config loads and validates the easel configuration: YAML (or JSON5
// by extension) with environment-variable expansion, defaults applied after
// parse, and fail-fast validation of the selected provider's credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json5 "github.com/yosuke-furukawa/json5/encoding/json5"
	"gopkg.in/yaml.v3"
)

// Provider names accepted in llm.provider.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// Store drivers accepted in store.driver.
const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

// Duration wraps time.Duration so "30s" style strings decode from both YAML
// and JSON5. Bare integers are taken as nanoseconds.
type Duration time.Duration

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := parseDuration(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	parsed, err := parseDuration(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.String())), nil
}

func parseDuration(s string) (Duration, error) {
	if parsed, err := time.ParseDuration(s); err == nil {
		return Duration(parsed), nil
	}
	if ns, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Duration(ns), nil
	}
	return 0, fmt.Errorf("config: invalid duration %q", s)
}

// Config is the root configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server"`
	LLM     LLMConfig     `yaml:"llm" json:"llm"`
	Store   StoreConfig   `yaml:"store" json:"store"`
	Prompt  PromptConfig  `yaml:"prompt" json:"prompt"`
	Logging LoggingConfig `yaml:"logging" json:"logging"`
	Tracing TracingConfig `yaml:"tracing" json:"tracing"`
}

type ServerConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type LLMConfig struct {
	// Provider selects the translation backend: "openai" or "anthropic".
	Provider   string         `yaml:"provider" json:"provider"`
	OpenAI     ProviderConfig `yaml:"openai" json:"openai"`
	Anthropic  ProviderConfig `yaml:"anthropic" json:"anthropic"`
	Timeout    Duration       `yaml:"timeout" json:"timeout"`
	MaxRetries int            `yaml:"max_retries" json:"max_retries"`
	RetryDelay Duration       `yaml:"retry_delay" json:"retry_delay"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key" json:"api_key"`
	Model   string `yaml:"model" json:"model"`
	BaseURL string `yaml:"base_url" json:"base_url"`
}

type StoreConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver" json:"driver"`
	// Path is the sqlite database file; empty means in-memory.
	Path string `yaml:"path" json:"path"`
}

type PromptConfig struct {
	// PreambleFile is an optional operator preamble prepended to the
	// system prompt.
	PreambleFile string `yaml:"preamble_file" json:"preamble_file"`
	// Watch reloads the preamble when the file changes.
	Watch bool `yaml:"watch" json:"watch"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type TracingConfig struct {
	// Endpoint is the OTLP gRPC collector address; empty disables tracing.
	Endpoint string `yaml:"endpoint" json:"endpoint"`
}

// Load reads, expands, parses, and defaults the configuration file. The
// format is chosen by extension: .json/.json5 parse as JSON5, everything else
// as YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".json5":
		if err := json5.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Default returns the configuration used when no file is given: in-memory
// store, keys from the environment.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderAnthropic
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = Duration(30 * time.Second)
	}
	if cfg.LLM.MaxRetries == 0 {
		cfg.LLM.MaxRetries = 3
	}
	if cfg.LLM.RetryDelay == 0 {
		cfg.LLM.RetryDelay = Duration(time.Second)
	}
	if cfg.LLM.OpenAI.APIKey == "" {
		cfg.LLM.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.LLM.Anthropic.APIKey == "" {
		cfg.LLM.Anthropic.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = StoreMemory
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// Validate fails fast on configuration a server cannot start with. The
// selected provider's API key must be present for either provider; neither
// backend defers the check to the first command.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderOpenAI:
		if c.LLM.OpenAI.APIKey == "" {
			return fmt.Errorf("config: llm provider is %s but no API key is set (llm.openai.api_key or OPENAI_API_KEY)", ProviderOpenAI)
		}
	case ProviderAnthropic:
		if c.LLM.Anthropic.APIKey == "" {
			return fmt.Errorf("config: llm provider is %s but no API key is set (llm.anthropic.api_key or ANTHROPIC_API_KEY)", ProviderAnthropic)
		}
	default:
		return fmt.Errorf("config: unknown llm provider %q (want %s or %s)", c.LLM.Provider, ProviderOpenAI, ProviderAnthropic)
	}

	switch c.Store.Driver {
	case StoreMemory, StoreSQLite:
	default:
		return fmt.Errorf("config: unknown store driver %q (want %s or %s)", c.Store.Driver, StoreMemory, StoreSQLite)
	}
	return nil
}
