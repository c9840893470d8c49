package config

import "fmt"

// DefaultGeminiModel используется, если GEMINI_MODEL не задан
const DefaultGeminiModel = "gemini-2.5-pro"

// GeminiConfig содержит параметры доступа к Gemini API.
// Ключ из окружения необязателен: пользователь может ввести свой на странице настроек.
type GeminiConfig struct {
	APIKey string `envconfig:"GOOGLE_API_KEY"`
	Model  string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-pro"`
}

// ValidateConfig проверяет корректность конфигурации
func (c *GeminiConfig) ValidateConfig() error {
	if c.Model == "" {
		return fmt.Errorf("GEMINI_MODEL не может быть пустым")
	}
	return nil
}

func (c *GeminiConfig) HasAPIKey() bool {
	return c.APIKey != ""
}

// GetModelInfo возвращает информацию о используемой модели
func (c *GeminiConfig) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{
		"model":          c.Model,
		"provider":       "Google Gemini",
		"env_key_loaded": c.HasAPIKey(),
	}
}
