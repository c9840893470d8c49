package web

import (
	"interview-practice/internal/api"
	"interview-practice/internal/config"
	"interview-practice/internal/feedback"
	"interview-practice/internal/practice"
	"interview-practice/internal/prompts"
	"interview-practice/internal/session"
)

// SetupForm содержит поля страницы настроек; пороги безопасности читаются отдельно
type SetupForm struct {
	Role            string  `form:"role"`
	Company         string  `form:"company"`
	Round           string  `form:"round"`
	Difficulty      string  `form:"difficulty"`
	Audio           bool    `form:"audio"`
	Strategy        string  `form:"strategy"`
	Temperature     float64 `form:"temperature"`
	TopP            float64 `form:"top_p"`
	TopK            int     `form:"top_k"`
	MaxOutputTokens int     `form:"max_output_tokens"`
	APIKey          string  `form:"api_key"`
}

// AnswerForm отправляется кнопками навигации вместе с текстом ответа
type AnswerForm struct {
	Index  int    `form:"index"`
	Action string `form:"action"`
}

// AudioTranscriptMessage приходит от панели распознавания речи
type AudioTranscriptMessage struct {
	Type     string `json:"type" binding:"required"`
	TargetID string `json:"targetId" binding:"required"`
	Value    string `json:"value"`
}

// TimerLockMessage приходит от таймера, дошедшего до нуля
type TimerLockMessage struct {
	Type  string `json:"type" binding:"required"`
	Index *int   `json:"index" binding:"required"`
}

const (
	messageAudioTranscript = "audio-transcript"
	messageTimerLock       = "timer-lock"
	targetIDPrefix         = "response-area-"
)

type safetyRow struct {
	Category api.HarmCategory
	Label    string
	Selected api.Threshold
}

type setupView struct {
	Title          string
	Setup          session.Setup
	Rounds         []config.Round
	CodingKeywords []string
	Difficulties   []string
	Strategies     []prompts.Info
	Selected       prompts.Info
	Limits         config.GenerationLimits
	Safety         []safetyRow
	Thresholds     []api.ThresholdLabel
	HasEnvKey      bool
	HasSessionKey  bool
	Warnings       []string
}

type practiceView struct {
	Title        string
	Setup        session.Setup
	Question     string
	Index        int
	Number       int
	Total        int
	Answer       string
	TargetID     string
	Countdown    practice.Countdown
	Locked       bool
	IsCoding     bool
	AudioEnabled bool
	AudioPref    bool
	ShowTextArea bool
	HasPrevious  bool
	HasNext      bool
	IsLast       bool
	Notice       string
}

type summaryView struct {
	Title   string
	Setup   session.Setup
	Summary *feedback.Summary
}

type errorView struct {
	Title   string
	Message practice.Message
}
