package interviewer

import (
	"context"
	"fmt"
	"strings"

	"interview-practice/internal/api"
	"interview-practice/internal/logger"
	"interview-practice/internal/metrics"
	"interview-practice/internal/prompts"
)

// Service генерирует вопросы интервью через Gemini
type Service struct {
	dialer  api.Dialer
	log     *logger.Logger
	metrics *metrics.Metrics
}

// New создает новый сервис интервьюера
func New(dialer api.Dialer, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		dialer:  dialer,
		log:     log,
		metrics: m,
	}
}

// Request описывает один вопрос, который нужно сгенерировать
type Request struct {
	Role              string
	Company           string
	RoundType         string
	Difficulty        string
	PreviousQuestions []string
	Strategy          prompts.Strategy
	APIKey            string
	Generation        *GenerationOverrides
	Safety            api.SafetySettings
}

// GenerateQuestion делает один синхронный запрос к модели и возвращает очищенный вопрос
func (s *Service) GenerateQuestion(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.APIKey) == "" {
		return "", ErrMissingAPIKey
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = prompts.DefaultStrategy
	}
	prompt, err := prompts.Render(strategy, prompts.Input{
		Role:              req.Role,
		Company:           req.Company,
		RoundType:         req.RoundType,
		Difficulty:        req.Difficulty,
		PreviousQuestions: req.PreviousQuestions,
	})
	if err != nil {
		return "", fmt.Errorf("invalid prompt strategy: %w", err)
	}

	opts := api.ModelOptions{
		Generation: mergeGeneration(req.Generation),
		Safety:     resolveSafety(req.Safety),
	}
	s.log.Debug("generating question",
		"strategy", strategy,
		"round", req.RoundType,
		"difficulty", req.Difficulty,
		"previous_questions", len(req.PreviousQuestions),
		"max_output_tokens", opts.Generation.MaxOutputTokens,
	)

	model, err := s.dialer.Open(ctx, req.APIKey, opts)
	if err != nil {
		return "", s.fail(err)
	}
	defer model.Close()

	resp, err := model.GenerateContent(ctx, prompt)
	s.metrics.IncrementAPICall(err == nil)
	if err != nil {
		return "", s.fail(err)
	}

	text := extractText(resp)
	if text == "" {
		return "", s.fail(classifyEmpty(resp))
	}

	s.metrics.IncrementQuestionsGenerated()
	return cleanQuestion(text), nil
}

// ValidateAPIKey проверяет ключ пробным подсчетом токенов
func (s *Service) ValidateAPIKey(ctx context.Context, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrMissingAPIKey
	}
	s.metrics.IncrementKeyValidations()

	model, err := s.dialer.Open(ctx, apiKey, api.ModelOptions{
		Generation: api.DefaultGenerationConfig(),
		Safety:     api.DefaultSafetySettings(),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAPIKey, err)
	}
	defer model.Close()

	if _, err := model.CountTokens(ctx, "ping"); err != nil {
		s.log.Warn("api key validation failed", "error", err)
		return fmt.Errorf("%w: %w", ErrInvalidAPIKey, err)
	}
	return nil
}

func (s *Service) fail(err error) error {
	s.log.Warn("question generation failed", "error", err)
	return &GenerationError{Err: err}
}
