package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/salesdash/internal/ai"
)

// EnvPrefix is prepended to every configuration key read from the environment.
const EnvPrefix = "SALESDASH"

// Global configuration structure.
type Global struct {
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	Model       string  `mapstructure:"model" yaml:"model"`
	Provider    string  `mapstructure:"provider" yaml:"provider"`
	BaseURL     string  `mapstructure:"base_url" yaml:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`

	// HTTP configuration
	HTTPTimeoutSec int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`

	// Local runtimes (Ollama)
	OllamaHost string `mapstructure:"ollama_host" yaml:"ollama_host"`

	// Models catalog override (JSON map of name -> ModelInfo)
	ModelsCatalog string `mapstructure:"models_catalog" yaml:"models_catalog"`
	ModelsMerge   bool   `mapstructure:"models_merge" yaml:"models_merge"`

	// Dashboard
	DefaultDataset  string `mapstructure:"default_dataset" yaml:"default_dataset"`
	CacheMaxEntries int    `mapstructure:"cache_max_entries" yaml:"cache_max_entries"`
	LogLevel        string `mapstructure:"log_level" yaml:"log_level"`
	ListenAddr      string `mapstructure:"listen_addr" yaml:"listen_addr"`
	MaxUploadMB     int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb"`
}

// Default returns the built-in configuration, used when no file or env applies.
func Default() *Global {
	return &Global{
		Model:           "gpt-oss-120b",
		Provider:        ai.ProviderOpenAI,
		Temperature:     0.1,
		HTTPTimeoutSec:  60,
		OllamaHost:      ai.DefaultOllamaHost,
		ModelsMerge:     true,
		DefaultDataset:  "faturamento.xlsx",
		CacheMaxEntries: 64,
		LogLevel:        "info",
		ListenAddr:      ":8080",
		MaxUploadMB:     32,
	}
}

// Dir returns ~/.salesdash.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".salesdash"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.salesdash/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	// Unprefixed names used by the OpenAI SDKs are honored as fallbacks.
	_ = v.BindEnv("api_key", EnvPrefix+"_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("model", EnvPrefix+"_MODEL", "GPT_OSS_MODEL")
	_ = v.BindEnv("base_url", EnvPrefix+"_BASE_URL", "OPENAI_BASE_URL")

	d := Default()
	v.SetDefault("api_key", "")
	v.SetDefault("model", d.Model)
	v.SetDefault("provider", d.Provider)
	v.SetDefault("base_url", "")
	v.SetDefault("max_tokens", 0)
	v.SetDefault("temperature", d.Temperature)
	v.SetDefault("http_timeout_sec", d.HTTPTimeoutSec)
	v.SetDefault("ollama_host", d.OllamaHost)
	v.SetDefault("models_catalog", "")
	v.SetDefault("models_merge", d.ModelsMerge)
	v.SetDefault("default_dataset", d.DefaultDataset)
	v.SetDefault("cache_max_entries", d.CacheMaxEntries)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("listen_addr", d.ListenAddr)
	v.SetDefault("max_upload_mb", d.MaxUploadMB)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be >= 0, got %d", c.MaxTokens)
	}
	if c.CacheMaxEntries < 0 {
		return fmt.Errorf("cache_max_entries must be >= 0, got %d", c.CacheMaxEntries)
	}
	if c.Provider != "" {
		known := false
		for _, p := range ai.Providers() {
			if p == c.Provider {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown provider %q (known: %s)", c.Provider, strings.Join(ai.Providers(), ", "))
		}
	}
	return nil
}

// HTTPTimeout returns the transport timeout.
func (c *Global) HTTPTimeout() time.Duration {
	if c.HTTPTimeoutSec <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// RuntimeConfig returns the settings passed to ai.NewRuntime.
func (c *Global) RuntimeConfig() ai.RuntimeConfig {
	return ai.RuntimeConfig{
		HTTPTimeout: c.HTTPTimeout(),
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Host:        c.OllamaHost,
	}
}

// MaxUploadBytes returns the upload size limit.
func (c *Global) MaxUploadBytes() int64 {
	if c.MaxUploadMB <= 0 {
		return 32 << 20
	}
	return int64(c.MaxUploadMB) << 20
}

// Redacted returns a copy safe to print.
func (c *Global) Redacted() Global {
	out := *c
	if out.APIKey != "" {
		k := out.APIKey
		if len(k) > 8 {
			out.APIKey = k[:4] + "…" + k[len(k)-4:]
		} else {
			out.APIKey = "****"
		}
	}
	return out
}
