package practice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"interview-practice/internal/config"
	"interview-practice/internal/feedback"
	"interview-practice/internal/interviewer"
	"interview-practice/internal/logger"
	"interview-practice/internal/metrics"
	"interview-practice/internal/session"
	"interview-practice/internal/storage"
)

var (
	ErrNoQuestions     = errors.New("questions have not been generated yet")
	ErrIndexOutOfRange = errors.New("question index out of range")
	ErrLocked          = errors.New("question is locked")
	ErrFinished        = errors.New("interview is finished")
	ErrInvalidAction   = errors.New("navigation action is not available")
)

// Generator является источником вопросов
type Generator interface {
	GenerateQuestion(ctx context.Context, req interviewer.Request) (string, error)
}

type State string

const (
	StateLoading   State = "loading"
	StateAnswering State = "answering"
	StateFinished  State = "finished"
)

type Action string

const (
	ActionPrevious    Action = "previous"
	ActionNext        Action = "next"
	ActionNewQuestion Action = "new_question"
	ActionFinish      Action = "finish"
)

// Countdown описывает состояние таймера вопроса
type Countdown struct {
	Index     int  `json:"index"`
	Allotted  int  `json:"allotted"`
	Remaining int  `json:"remaining"`
	Locked    bool `json:"locked"`
}

// Flow управляет ходом тренировочного интервью поверх сессии
type Flow struct {
	gen      Generator
	cfg      *config.Config
	feedback *feedback.Service
	log      *logger.Logger
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewFlow(gen Generator, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *Flow {
	return &Flow{
		gen:      gen,
		cfg:      cfg,
		feedback: feedback.New(cfg.Feedback),
		log:      log,
		metrics:  m,
		now:      time.Now,
	}
}

// SetClock подменяет источник времени
func (f *Flow) SetClock(now func() time.Time) {
	f.now = now
}

func (f *Flow) State(s *session.Session) State {
	switch {
	case s.Finished:
		return StateFinished
	case !s.HasQuestions():
		return StateLoading
	default:
		return StateAnswering
	}
}

// GenerateQuestions последовательно запрашивает вопросы, передавая уже полученные.
// При ошибке вопросы сбрасываются, повтор не выполняется.
func (f *Flow) GenerateQuestions(ctx context.Context, s *session.Session, apiKey string) error {
	if s.HasQuestions() {
		return nil
	}

	total := f.cfg.GetQuestionCount()
	questions := make([]string, 0, total)
	for i := 0; i < total; i++ {
		q, err := f.gen.GenerateQuestion(ctx, f.request(s, apiKey, questions))
		if err != nil {
			s.Questions = nil
			s.Index = 0
			f.metrics.IncrementGenerationFailures()
			return fmt.Errorf("question %d of %d: %w", i+1, total, err)
		}
		questions = append(questions, q)
		f.log.Info("question generated",
			"session_id", s.ID,
			"index", i+1,
			"total", total,
		)
	}

	s.Questions = questions
	s.Index = 0
	f.metrics.IncrementInterviewsStarted()
	return nil
}

func (f *Flow) request(s *session.Session, apiKey string, prior []string) interviewer.Request {
	return interviewer.Request{
		Role:              s.Setup.Role,
		Company:           s.Setup.Company,
		RoundType:         s.Setup.Round,
		Difficulty:        s.Setup.Difficulty,
		PreviousQuestions: append([]string(nil), prior...),
		Strategy:          s.Setup.Strategy,
		APIKey:            apiKey,
		Generation:        overridesFrom(s.Setup),
		Safety:            s.Setup.Safety,
	}
}

// overridesFrom передает только заданные пользователем значения
func overridesFrom(setup session.Setup) *interviewer.GenerationOverrides {
	g := setup.Generation
	o := &interviewer.GenerationOverrides{}
	if g.Temperature > 0 {
		o.Temperature = &g.Temperature
	}
	if g.TopP > 0 {
		o.TopP = &g.TopP
	}
	if g.TopK > 0 {
		o.TopK = &g.TopK
	}
	if g.MaxOutputTokens > 0 {
		o.MaxOutputTokens = &g.MaxOutputTokens
	}
	return o
}

// AllottedSeconds возвращает время на вопрос для раунда и сложности
func (f *Flow) AllottedSeconds(round, difficulty string) int {
	if f.cfg.IsCodingRound(round) {
		return f.cfg.Timers.CodingSeconds
	}
	if seconds, ok := f.cfg.Timers.DifficultySeconds[strings.ToLower(strings.TrimSpace(difficulty))]; ok {
		return seconds
	}
	return f.cfg.Timers.DefaultSeconds
}

// Countdown запускает таймер текущего вопроса при первом обращении и блокирует вопрос по истечении
func (f *Flow) Countdown(s *session.Session) (Countdown, error) {
	if s.Finished {
		return Countdown{}, ErrFinished
	}
	if !s.HasQuestions() {
		return Countdown{}, ErrNoQuestions
	}
	return f.countdown(s, s.Index, true), nil
}

// Lock обрабатывает сигнал клиента об истечении таймера; решение принимается по серверным часам
func (f *Flow) Lock(s *session.Session, index int) (Countdown, error) {
	if err := f.checkIndex(s, index); err != nil {
		return Countdown{}, err
	}
	return f.countdown(s, index, false), nil
}

func (f *Flow) countdown(s *session.Session, index int, start bool) Countdown {
	allotted := f.AllottedSeconds(s.Setup.Round, s.Setup.Difficulty)
	started, ok := s.Timers[index]
	if !ok {
		if !start {
			return Countdown{Index: index, Allotted: allotted, Remaining: allotted, Locked: s.Locked[index]}
		}
		started = f.now()
		s.Timers[index] = started
	}

	elapsed := int(f.now().Sub(started) / time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > allotted {
		elapsed = allotted
	}
	remaining := allotted - elapsed
	if remaining == 0 {
		s.Locked[index] = true
	}
	return Countdown{Index: index, Allotted: allotted, Remaining: remaining, Locked: s.Locked[index]}
}

func (f *Flow) checkIndex(s *session.Session, index int) error {
	if s.Finished {
		return ErrFinished
	}
	if !s.HasQuestions() {
		return ErrNoQuestions
	}
	if index < 0 || index >= len(s.Questions) {
		return ErrIndexOutOfRange
	}
	return nil
}

// SetAnswer сохраняет ответ; для заблокированного вопроса прежний текст остается
func (f *Flow) SetAnswer(s *session.Session, index int, text string) error {
	if err := f.checkIndex(s, index); err != nil {
		return err
	}
	if f.countdown(s, index, false).Locked {
		return ErrLocked
	}
	s.Answers[index] = text
	return nil
}

// Navigate выполняет действие кнопки навигации
func (f *Flow) Navigate(s *session.Session, action Action) error {
	if s.Finished {
		return ErrFinished
	}
	if !s.HasQuestions() {
		return ErrNoQuestions
	}

	last := s.LastIndex()
	switch action {
	case ActionPrevious:
		if s.Index == 0 {
			return ErrInvalidAction
		}
		s.Index--
	case ActionNext:
		if s.Index >= last {
			return ErrInvalidAction
		}
		s.Index++
	case ActionNewQuestion:
		// кнопка отображается, но ничего не меняет
		if s.Index >= last {
			return ErrInvalidAction
		}
	case ActionFinish:
		if s.Index != last {
			return ErrInvalidAction
		}
		f.Finish(s)
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	return nil
}

// Finish завершает интервью и выключает запись звука
func (f *Flow) Finish(s *session.Session) {
	s.Finished = true
	s.Setup.AudioEnabled = false
	f.metrics.IncrementInterviewsCompleted()
	f.log.Info("interview finished",
		"session_id", s.ID,
		"interview_id", s.InterviewID,
		"answered", len(s.Answers),
	)
}

// AudioEnabled: для раунда Coding звук выключен всегда
func (f *Flow) AudioEnabled(s *session.Session) bool {
	if s.Finished || f.cfg.IsCodingRound(s.Setup.Round) {
		return false
	}
	return s.Setup.AudioEnabled
}

// SetAudio меняет предпочтение пользователя; для Coding сохраняется false
func (f *Flow) SetAudio(s *session.Session, enabled bool) {
	if f.cfg.IsCodingRound(s.Setup.Round) {
		enabled = false
	}
	s.Setup.AudioEnabled = enabled
}

// ShowTextArea: поле ввода скрыто только в режиме звука для незаблокированного вопроса
func (f *Flow) ShowTextArea(s *session.Session, index int) bool {
	return !f.AudioEnabled(s) || s.Locked[index]
}

func (f *Flow) Summary(s *session.Session) *feedback.Summary {
	return f.feedback.Summarize(s.Setup.Role, storage.PairAnswers(s.Questions, s.Answers))
}

// StartNew начинает новое интервью с теми же настройками
func (f *Flow) StartNew(s *session.Session) {
	s.Reset()
}

func (f *Flow) BackToSetup(s *session.Session, defaults session.Setup) {
	s.ReturnToSetup(defaults)
}
