package feedback

import (
	"unicode/utf8"

	"interview-practice/internal/config"
	"interview-practice/internal/storage"
)

// Service формирует итоговый отзыв по завершенному интервью
type Service struct {
	cfg config.FeedbackConfig
}

// Summary представляет итог интервью для страницы результатов
type Summary struct {
	Acknowledgment string       `json:"acknowledgment"`
	Items          []storage.QA `json:"items"`
	Feedback       []string     `json:"feedback"`
	AverageLength  float64      `json:"average_length"`
	MatchedRole    string       `json:"matched_role,omitempty"`
}

// New создает новый сервис отзывов
func New(cfg config.FeedbackConfig) *Service {
	return &Service{cfg: cfg}
}

// Summarize собирает отзыв: подтверждение, совет о подробности и советы по роли
func (s *Service) Summarize(role string, items []storage.QA) *Summary {
	summary := &Summary{
		Acknowledgment: s.cfg.Acknowledgment,
		Items:          items,
		AverageLength:  averageLength(items),
	}

	summary.Feedback = append(summary.Feedback, s.cfg.Completion)
	if len(items) > 0 && summary.AverageLength < float64(s.cfg.MinAverageLength) {
		summary.Feedback = append(summary.Feedback, s.cfg.DetailNudge)
	}

	if tips, ok := MatchRole(s.cfg.RoleTips, role); ok {
		summary.MatchedRole = tips.Name
		summary.Feedback = append(summary.Feedback, tips.Tips...)
	} else {
		summary.Feedback = append(summary.Feedback, s.cfg.GenericTips...)
	}

	return summary
}

// averageLength считает среднюю длину ответа в символах; пропущенные ответы дают 0
func averageLength(items []storage.QA) float64 {
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, qa := range items {
		total += utf8.RuneCountInString(qa.Answer)
	}
	return float64(total) / float64(len(items))
}
