package ai

import (
	"encoding/json"
	"os"
	"sort"
)

// Model metadata and simple pricing helpers for UX warnings.
// Prices are illustrative and should be verified against provider docs.

type ModelInfo struct {
	Name          string
	Provider      string
	ContextTokens int     // approximate context window
	InputPerK     float64 // USD per 1K input tokens
	OutputPerK    float64 // USD per 1K output tokens
}

var models = map[string]ModelInfo{
	"gpt-oss-120b": {
		Name:          "gpt-oss-120b",
		Provider:      ProviderOpenAI,
		ContextTokens: 131072,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"gpt-oss-20b": {
		Name:          "gpt-oss-20b",
		Provider:      ProviderOpenAI,
		ContextTokens: 131072,
		InputPerK:     0.00005,
		OutputPerK:    0.0002,
	},
	"gpt-4o-mini": {
		Name:          "gpt-4o-mini",
		Provider:      ProviderOpenAI,
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"gpt-4.1-mini": {
		Name:          "gpt-4.1-mini",
		Provider:      ProviderOpenAI,
		ContextTokens: 1047576,
		InputPerK:     0.0004,
		OutputPerK:    0.0016,
	},
	"openai/gpt-oss-120b": {
		Name:          "openai/gpt-oss-120b",
		Provider:      ProviderOpenRouter,
		ContextTokens: 131072,
		InputPerK:     0.0001,
		OutputPerK:    0.0005,
	},
	"openai/gpt-4o-mini": {
		Name:          "openai/gpt-4o-mini",
		Provider:      ProviderOpenRouter,
		ContextTokens: 128000,
		InputPerK:     0.00015,
		OutputPerK:    0.0006,
	},
	"deepseek/deepseek-r1:free": {
		Name:          "deepseek/deepseek-r1:free",
		Provider:      ProviderOpenRouter,
		ContextTokens: 128000,
	},
	"gemini-2.0-flash": {
		Name:          "gemini-2.0-flash",
		Provider:      ProviderGemini,
		ContextTokens: 1048576,
		InputPerK:     0.0001,
		OutputPerK:    0.0004,
	},
	"gemini-2.5-flash": {
		Name:          "gemini-2.5-flash",
		Provider:      ProviderGemini,
		ContextTokens: 1048576,
		InputPerK:     0.0003,
		OutputPerK:    0.0025,
	},
	// Common local (Ollama) tags
	"gpt-oss:20b": {
		Name:          "gpt-oss:20b",
		Provider:      ProviderOllama,
		ContextTokens: 131072,
	},
	"gpt-oss:120b": {
		Name:          "gpt-oss:120b",
		Provider:      ProviderOllama,
		ContextTokens: 131072,
	},
	"llama3.1:8b-instruct": {
		Name:          "llama3.1:8b-instruct",
		Provider:      ProviderOllama,
		ContextTokens: 8192,
	},
	"qwen2.5:7b-instruct": {
		Name:          "qwen2.5:7b-instruct",
		Provider:      ProviderOllama,
		ContextTokens: 32768,
	},
}

// LookupModel returns ModelInfo and ok flag.
func LookupModel(name string) (ModelInfo, bool) {
	mi, ok := models[name]
	return mi, ok
}

// EstimateCostUSD estimates total cost in USD for given tokens using model pricing.
// If the model is unknown, returns 0 and ok=false.
func EstimateCostUSD(model string, promptTokens, completionTokens int) (float64, bool) {
	mi, ok := LookupModel(model)
	if !ok {
		return 0, false
	}
	inCost := (float64(promptTokens) / 1000.0) * mi.InputPerK
	outCost := (float64(completionTokens) / 1000.0) * mi.OutputPerK
	return inCost + outCost, true
}

// LoadCatalogFromJSON loads a JSON object map[string]ModelInfo from a file path.
// Example JSON entry:
// { "gpt-oss-120b": {"Name":"gpt-oss-120b","ContextTokens":131072,"InputPerK":0.00015,"OutputPerK":0.0006} }
func LoadCatalogFromJSON(path string) (map[string]ModelInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var m map[string]ModelInfo
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}

// OverrideCatalog replaces the in-memory catalog entirely.
func OverrideCatalog(m map[string]ModelInfo) {
	if m == nil {
		return
	}
	models = m
}

// MergeCatalog merges/overrides entries in the in-memory catalog.
func MergeCatalog(m map[string]ModelInfo) {
	for k, v := range m {
		models[k] = v
	}
}

// Catalog returns a shallow copy of the current model catalog.
func Catalog() map[string]ModelInfo {
	out := make(map[string]ModelInfo, len(models))
	for k, v := range models {
		out[k] = v
	}
	return out
}

// SortedModels returns catalog entries ordered by provider then name.
func SortedModels(m map[string]ModelInfo) []ModelInfo {
	out := make([]ModelInfo, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Name < out[j].Name
	})
	return out
}
