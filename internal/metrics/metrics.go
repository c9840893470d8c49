package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                  sync.RWMutex
	interviewsStarted   int64
	interviewsCompleted int64
	questionsGenerated  int64
	generationFailures  int64
	keyValidations      int64
	apiCallsTotal       int64
	apiCallsSuccessful  int64
	lastUpdateTime      time.Time
}

// Snapshot содержит копию счетчиков для отдачи в /metrics
type Snapshot struct {
	InterviewsStarted   int64     `json:"interviews_started"`
	InterviewsCompleted int64     `json:"interviews_completed"`
	QuestionsGenerated  int64     `json:"questions_generated"`
	GenerationFailures  int64     `json:"generation_failures"`
	KeyValidations      int64     `json:"key_validations"`
	APICallsTotal       int64     `json:"api_calls_total"`
	APICallsSuccessful  int64     `json:"api_calls_successful"`
	LastUpdateTime      time.Time `json:"last_update_time"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		lastUpdateTime: time.Now(),
	}
}

func (m *Metrics) IncrementInterviewsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewsStarted++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementInterviewsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.interviewsCompleted++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementQuestionsGenerated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questionsGenerated++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementGenerationFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generationFailures++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementKeyValidations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyValidations++
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCallsTotal++
	if success {
		m.apiCallsSuccessful++
	}
	m.lastUpdateTime = time.Now()
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		InterviewsStarted:   m.interviewsStarted,
		InterviewsCompleted: m.interviewsCompleted,
		QuestionsGenerated:  m.questionsGenerated,
		GenerationFailures:  m.generationFailures,
		KeyValidations:      m.keyValidations,
		APICallsTotal:       m.apiCallsTotal,
		APICallsSuccessful:  m.apiCallsSuccessful,
		LastUpdateTime:      m.lastUpdateTime,
	}
}
