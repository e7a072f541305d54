package ai

// PresetCatalog returns the built-in models for a known provider.
// The catalog can be merged or used to replace the in-memory catalog.
func PresetCatalog(provider string) (map[string]ModelInfo, bool) {
	switch provider {
	case "local":
		provider = ProviderOllama
	case "google":
		provider = ProviderGemini
	}
	out := map[string]ModelInfo{}
	for k, v := range models {
		if v.Provider == provider {
			out[k] = v
		}
	}
	if len(out) == 0 {
		return nil, false
	}
	return out, true
}

// RecommendModel returns a recommended model name for a given tier and provider.
// If provider is empty, defaults to "openai". Tiers: cheap|balanced|high-context.
func RecommendModel(provider, tier string) (string, bool) {
	if provider == "" {
		provider = ProviderOpenAI
	}
	switch tier {
	case "cheap":
		switch provider {
		case ProviderOpenAI:
			return "gpt-oss-20b", true
		case ProviderOpenRouter:
			return "deepseek/deepseek-r1:free", true
		case ProviderGemini, "google":
			return "gemini-2.0-flash", true
		case ProviderOllama, "local":
			return "gpt-oss:20b", true
		}
	case "balanced":
		switch provider {
		case ProviderOpenAI:
			return "gpt-oss-120b", true
		case ProviderOpenRouter:
			return "openai/gpt-oss-120b", true
		case ProviderGemini, "google":
			return "gemini-2.5-flash", true
		case ProviderOllama, "local":
			return "gpt-oss:120b", true
		}
	case "high-context":
		switch provider {
		case ProviderOpenAI:
			return "gpt-4.1-mini", true
		case ProviderOpenRouter:
			return "openai/gpt-4o-mini", true
		case ProviderGemini, "google":
			return "gemini-2.5-flash", true
		case ProviderOllama, "local":
			return "qwen2.5:7b-instruct", true
		}
	}
	return "", false
}
