package interviewer

import "interview-practice/internal/api"

// GenerationOverrides: nil поля не влияют на значения по умолчанию
type GenerationOverrides struct {
	Temperature     *float64
	TopP            *float64
	TopK            *int
	MaxOutputTokens *int
}

func mergeGeneration(overrides *GenerationOverrides) api.GenerationConfig {
	cfg := api.DefaultGenerationConfig()
	if overrides == nil {
		return cfg
	}
	if overrides.Temperature != nil {
		cfg.Temperature = *overrides.Temperature
	}
	if overrides.TopP != nil {
		cfg.TopP = *overrides.TopP
	}
	if overrides.TopK != nil {
		cfg.TopK = *overrides.TopK
	}
	if overrides.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = *overrides.MaxOutputTokens
	}
	return cfg
}

// resolveSafety: непустое переопределение заменяет настройки целиком
func resolveSafety(override api.SafetySettings) api.SafetySettings {
	if len(override) == 0 {
		return api.DefaultSafetySettings()
	}
	out := make(api.SafetySettings, len(override))
	for k, v := range override {
		out[k] = v
	}
	return out
}
