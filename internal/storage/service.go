package storage

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"interview-practice/internal/session"
)

const (
	TranscriptFilename = "interview_responses.txt"
	ExportFilename     = "interview_responses.json"
	missingAnswer      = "No response"
)

// BuildResult собирает результат интервью из сессии
func BuildResult(s *session.Session, now time.Time) *InterviewResult {
	result := &InterviewResult{
		InterviewID:         s.InterviewID,
		Timestamp:           now.UTC().Format(time.RFC3339),
		Role:                s.Setup.Role,
		Company:             s.Setup.Company,
		Round:               s.Setup.Round,
		Difficulty:          s.Setup.Difficulty,
		Strategy:            string(s.Setup.Strategy),
		Finished:            s.Finished,
		QuestionsAndAnswers: PairAnswers(s.Questions, s.Answers),
	}
	return result
}

// PairAnswers сопоставляет вопросы и ответы по индексу
func PairAnswers(questions []string, answers map[int]string) []QA {
	pairs := make([]QA, 0, len(questions))
	for i, q := range questions {
		answer, ok := answers[i]
		pairs = append(pairs, QA{Question: q, Answer: answer, Answered: ok})
	}
	return pairs
}

// RenderTranscript формирует текст для скачивания
func RenderTranscript(questions []string, answers map[int]string) string {
	blocks := make([]string, 0, len(questions))
	for i, qa := range PairAnswers(questions, answers) {
		answer := qa.Answer
		if !qa.Answered {
			answer = missingAnswer
		}
		blocks = append(blocks, fmt.Sprintf("Question %d: %s\nAnswer: %s", i+1, qa.Question, answer))
	}
	return strings.Join(blocks, "\n\n")
}

// MarshalResult сериализует результат в JSON с отступами
func MarshalResult(result *InterviewResult) ([]byte, error) {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("ошибка сериализации результата: %w", err)
	}
	return jsonData, nil
}
