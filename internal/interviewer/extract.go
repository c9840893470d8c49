package interviewer

import (
	"fmt"
	"strings"

	"interview-practice/internal/api"
)

// questionPrefixes проверяются по порядку, снимается только первый совпавший
var questionPrefixes = []string{
	"**Question:**",
	"**Question**:",
	"Question:",
	"**Q:**",
	"Q:",
	"Interview Question:",
	"**Interview Question:**",
}

// extractText достает текст ответа: сначала общий доступ, затем перебор кандидатов
func extractText(resp *api.Response) string {
	if resp == nil {
		return ""
	}
	if text, err := resp.Text(); err == nil && strings.TrimSpace(text) != "" {
		return text
	}
	for _, cand := range resp.Candidates {
		if text := cand.Text(); strings.TrimSpace(text) != "" {
			return text
		}
	}
	return ""
}

// cleanQuestion убирает служебный префикс и гарантирует знак вопроса в конце
func cleanQuestion(text string) string {
	question := strings.TrimSpace(text)
	for _, prefix := range questionPrefixes {
		if strings.HasPrefix(question, prefix) {
			question = strings.TrimSpace(question[len(prefix):])
			break
		}
	}
	if !strings.HasSuffix(question, "?") {
		question += "?"
	}
	return question
}

// classifyEmpty определяет причину отсутствия текста в ответе
func classifyEmpty(resp *api.Response) error {
	var reasons []string
	if resp != nil {
		for _, cand := range resp.Candidates {
			if cand.FinishReason != "" {
				reasons = append(reasons, string(cand.FinishReason))
			}
			for _, rating := range cand.SafetyRatings {
				if rating.Blocked {
					reasons = append(reasons, "BLOCKED: "+rating.Category)
				}
			}
		}
		if resp.PromptBlockReason != "" {
			reasons = append(reasons, "PROMPT_BLOCKED: "+resp.PromptBlockReason)
		}
	}

	safety := false
	for _, r := range reasons {
		if r == string(api.FinishMaxTokens) {
			return ErrTokenLimit
		}
		if r == string(api.FinishSafety) || strings.HasPrefix(r, "BLOCKED") || strings.HasPrefix(r, "PROMPT_BLOCKED") {
			safety = true
		}
	}
	if safety {
		return ErrSafetyBlocked
	}

	details := "No finish reason provided"
	if len(reasons) > 0 {
		details = strings.Join(reasons, ", ")
	}
	return fmt.Errorf("%w. Finish reasons: %s", ErrEmptyResponse, details)
}
