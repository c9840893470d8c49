package practice

import (
	"errors"
	"strings"

	"interview-practice/internal/interviewer"
	"interview-practice/internal/prompts"
)

// Message содержит текст ошибки для пользователя и подсказку, что делать дальше
type Message struct {
	Title string `json:"title"`
	Hint  string `json:"hint"`
}

const (
	keyErrorTitle = "API Error: Invalid or missing Google API key"
	keyErrorHint  = "Please check your API key in the settings and try again."
)

// Describe переводит ошибку генерации в сообщение для страницы практики
func Describe(err error) Message {
	if err == nil {
		return Message{}
	}
	lower := strings.ToLower(err.Error())

	switch {
	case errors.Is(err, interviewer.ErrMissingAPIKey), errors.Is(err, interviewer.ErrInvalidAPIKey):
		return Message{Title: keyErrorTitle, Hint: keyErrorHint}
	case errors.Is(err, prompts.ErrUnknownStrategy):
		return Message{
			Title: "Configuration error: " + err.Error(),
			Hint:  "Choose one of the listed prompt strategies on the setup page.",
		}
	case errors.Is(err, interviewer.ErrSafetyBlocked):
		return Message{
			Title: "Content safety violation: " + err.Error(),
			Hint:  "Please adjust your safety settings or try again.",
		}
	case errors.Is(err, interviewer.ErrTokenLimit):
		return Message{
			Title: "Token limit reached: " + err.Error(),
			Hint:  "Raise 'Max Tokens' on the setup page and try again.",
		}
	case strings.Contains(lower, "api key"), strings.Contains(lower, "api_key"):
		return Message{Title: keyErrorTitle, Hint: keyErrorHint}
	default:
		return Message{
			Title: "An error occurred while generating questions: " + err.Error(),
			Hint:  "Please check your settings and try again. If the problem persists, try adjusting the content safety settings.",
		}
	}
}
