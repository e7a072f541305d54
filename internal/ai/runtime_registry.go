package ai

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// OpenRouterBaseURL is the OpenAI-compatible OpenRouter endpoint.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1"

// RuntimeFactory builds a Runtime from the generic config below.
type RuntimeFactory func(RuntimeConfig) (Runtime, error)

// RuntimeConfig carries common knobs used by runtimes.
type RuntimeConfig struct {
	HTTPTimeout time.Duration
	// Hosted runtimes
	APIKey  string
	BaseURL string
	// Ollama
	Host string
}

var registry = map[string]RuntimeFactory{}

// RegisterRuntime registers a provider name with its factory.
func RegisterRuntime(name string, f RuntimeFactory) { registry[strings.ToLower(name)] = f }

// NewRuntime creates a Runtime for the given provider.
func NewRuntime(name string, cfg RuntimeConfig) (Runtime, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q (known: %s)", name, strings.Join(Providers(), ", "))
	}
	return f(cfg)
}

// Providers lists registered provider names.
func Providers() []string {
	out := make([]string, 0, len(registry))
	for k := range registry {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// NeedsAPIKey reports whether provider requires a credential.
func NeedsAPIKey(provider string) bool {
	return !strings.EqualFold(provider, ProviderOllama)
}

func init() {
	RegisterRuntime(ProviderOpenAI, func(c RuntimeConfig) (Runtime, error) {
		if c.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewClient(c.APIKey, c.BaseURL, c.HTTPTimeout), nil
	})
	RegisterRuntime(ProviderOpenRouter, func(c RuntimeConfig) (Runtime, error) {
		if c.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		if c.BaseURL == "" {
			c.BaseURL = OpenRouterBaseURL
		}
		return NewClient(c.APIKey, c.BaseURL, c.HTTPTimeout), nil
	})
	RegisterRuntime(ProviderOllama, func(c RuntimeConfig) (Runtime, error) {
		return NewOllamaClient(c.Host, c.HTTPTimeout), nil
	})
	RegisterRuntime(ProviderGemini, func(c RuntimeConfig) (Runtime, error) {
		if c.APIKey == "" {
			return nil, ErrMissingAPIKey
		}
		return NewGeminiClient(c.APIKey, c.BaseURL, c.HTTPTimeout), nil
	})
}
