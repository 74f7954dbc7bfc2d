package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/agenthands/ordex/internal/core/model"
)

const (
	DefaultProvider    = "groq"
	DefaultModel       = "llama-3.1-8b-instruct"
	DefaultTemperature = 0.1
	DefaultTimeout     = 60 * time.Second
	DefaultMaxChars    = 15000
	DefaultPort        = "8080"
)

type GenerativePrompts struct {
	System string `toml:"system"`
	User   string `toml:"user"`
}

type LLMConfig struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Temperature float32  `toml:"temperature"`
	Timeout     Duration `toml:"timeout"`
}

type ExtractionConfig struct {
	CriticalFields []string          `toml:"critical_fields"`
	MaxChars       int               `toml:"max_chars"`
	Prompts        GenerativePrompts `toml:"prompts"`
}

type ServerConfig struct {
	Port           string `toml:"port"`
	MaxUpload      int64  `toml:"max_upload_bytes"`
	DisableMetrics bool   `toml:"disable_metrics"`
}

type LogConfig struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

type Config struct {
	LLM        LLMConfig        `toml:"llm"`
	Extraction ExtractionConfig `toml:"extraction"`
	Server     ServerConfig     `toml:"server"`
	Log        LogConfig        `toml:"log"`
}

// Duration lets TOML carry Go duration strings such as "60s".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to Default when the file does
// not exist. Any other read or parse error is returned.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Resolve loads path (or defaults), applies environment overrides and
// validates the result.
func Resolve(path string) (*Config, error) {
	cfg, err := LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultModel
	}
	if c.LLM.Temperature == 0 {
		c.LLM.Temperature = DefaultTemperature
	}
	if c.LLM.Timeout.Duration <= 0 {
		c.LLM.Timeout.Duration = DefaultTimeout
	}
	if c.Extraction.MaxChars <= 0 {
		c.Extraction.MaxChars = DefaultMaxChars
	}
	if c.Server.Port == "" {
		c.Server.Port = DefaultPort
	}
	if c.Server.MaxUpload <= 0 {
		c.Server.MaxUpload = 32 << 20
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// ApplyEnv overrides file values with environment variables when set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		c.LLM.Provider = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if c.LLM.APIKey == "" && strings.EqualFold(c.LLM.Provider, "groq") {
		c.LLM.APIKey = os.Getenv("GROQ_API_KEY")
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		c.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			c.LLM.Timeout.Duration = d
		}
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
}

// CriticalFields resolves the configured critical field names. An empty
// list yields nil so callers fall back to their own default.
func (c *Config) CriticalFields() ([]model.Field, error) {
	var out []model.Field
	for _, name := range c.Extraction.CriticalFields {
		f, err := model.ParseField(name)
		if err != nil {
			return nil, fmt.Errorf("extraction.critical_fields: %w", err)
		}
		out = append(out, f)
	}
	return out, nil
}

// Validate reports configuration errors that make startup pointless.
func (c *Config) Validate() error {
	if _, err := c.CriticalFields(); err != nil {
		return err
	}
	if c.Extraction.Prompts.User != "" && !strings.Contains(c.Extraction.Prompts.User, "{texto}") {
		return fmt.Errorf("extraction.prompts.user must contain the {texto} placeholder")
	}
	return nil
}
