package session

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"interview-practice/internal/api"
	"interview-practice/internal/prompts"
)

// Page определяет текущую страницу приложения
type Page string

const (
	PageSetup    Page = "setup"
	PagePractice Page = "practice"
)

// Setup содержит настройки, выбранные на странице настроек
type Setup struct {
	Role         string               `json:"role"`
	Company      string               `json:"company"`
	Round        string               `json:"round"`
	Difficulty   string               `json:"difficulty"`
	AudioEnabled bool                 `json:"audio_enabled"`
	Strategy     prompts.Strategy     `json:"strategy"`
	Generation   api.GenerationConfig `json:"generation"`
	Safety       api.SafetySettings   `json:"safety"`
	APIKey       string               `json:"api_key,omitempty"`
	// хэш последнего ключа, прошедшего проверку
	ValidatedKeyHash string `json:"validated_key_hash,omitempty"`
}

func (s *Setup) MarkKeyValidated(key string) {
	s.ValidatedKeyHash = hashKey(key)
}

func (s *Setup) KeyValidated(key string) bool {
	return key != "" && s.ValidatedKeyHash == hashKey(key)
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// Session хранит состояние одного браузера
type Session struct {
	ID           string            `json:"id"`
	InterviewID  string            `json:"interview_id"`
	Page         Page              `json:"page"`
	Setup        Setup             `json:"setup"`
	Questions    []string          `json:"questions"`
	Index        int               `json:"index"`
	Answers      map[int]string    `json:"answers"`
	Timers       map[int]time.Time `json:"timers"`
	Locked       map[int]bool      `json:"locked"`
	Finished     bool              `json:"finished"`
	CreatedAt    time.Time         `json:"created_at"`
	LastActivity time.Time         `json:"last_activity"`
}

// New создает сессию со свежими идентификаторами
func New(defaults Setup) *Session {
	now := time.Now()
	s := &Session{
		ID:           uuid.New().String(),
		Page:         PageSetup,
		Setup:        defaults,
		CreatedAt:    now,
		LastActivity: now,
	}
	s.Reset()
	s.Setup.AudioEnabled = defaults.AudioEnabled
	return s
}

// Reset очищает данные текущего интервью, сохраняя настройки
func (s *Session) Reset() {
	s.InterviewID = uuid.New().String()
	s.Questions = nil
	s.Index = 0
	s.Answers = make(map[int]string)
	s.Timers = make(map[int]time.Time)
	s.Locked = make(map[int]bool)
	s.Finished = false
	s.Setup.AudioEnabled = true
}

// Clear возвращает сессию в исходное состояние, сохраняя только ID
func (s *Session) Clear(defaults Setup) {
	s.Page = PageSetup
	s.Setup = defaults
	s.Reset()
	s.Setup.AudioEnabled = defaults.AudioEnabled
}

func (s *Session) StartPractice() {
	s.Page = PagePractice
}

func (s *Session) ReturnToSetup(defaults Setup) {
	s.Clear(defaults)
}

func (s *Session) HasQuestions() bool {
	return len(s.Questions) > 0
}

// LastIndex возвращает индекс последнего вопроса, -1 если вопросов нет
func (s *Session) LastIndex() int {
	return len(s.Questions) - 1
}

func (s *Session) Touch(now time.Time) {
	s.LastActivity = now
}
