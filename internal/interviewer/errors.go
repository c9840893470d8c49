package interviewer

import (
	"errors"

	"interview-practice/internal/prompts"
)

// Ошибки конфигурации: возвращаются до обращения к API и не оборачиваются
var (
	ErrMissingAPIKey = errors.New("GOOGLE_API_KEY missing; provide it via the .env file or the settings page")
	ErrInvalidAPIKey = errors.New("GOOGLE_API_KEY validation failed")
)

// Классы пустого ответа модели
var (
	ErrTokenLimit    = errors.New("response exceeded token limit; try increasing 'Max Tokens' in the LLM generation settings (recommended: 1024-2048)")
	ErrSafetyBlocked = errors.New("content blocked by Gemini safety filters; try adjusting your safety settings to 'Block None' or 'Block Few' in the app settings")
	ErrEmptyResponse = errors.New("Gemini returned an empty or invalid response")
)

// GenerationError оборачивает любую ошибку после проверок конфигурации
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "Gemini question generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// IsConfigError сообщает, что ошибка вызвана настройками, а не ответом модели
func IsConfigError(err error) bool {
	return errors.Is(err, ErrMissingAPIKey) ||
		errors.Is(err, ErrInvalidAPIKey) ||
		errors.Is(err, prompts.ErrUnknownStrategy)
}
