package api

import (
	"context"
	"errors"
	"strings"
)

// HarmCategory определяет категорию фильтра безопасности Gemini
type HarmCategory string

const (
	HarmHarassment       HarmCategory = "harassment"
	HarmHateSpeech       HarmCategory = "hate_speech"
	HarmSexuallyExplicit HarmCategory = "sexually_explicit"
	HarmDangerousContent HarmCategory = "dangerous_content"
)

// HarmCategories возвращает категории в порядке отображения
func HarmCategories() []HarmCategory {
	return []HarmCategory{HarmHarassment, HarmHateSpeech, HarmSexuallyExplicit, HarmDangerousContent}
}

// Threshold определяет порог блокировки для категории
type Threshold string

const (
	BlockNone           Threshold = "BLOCK_NONE"
	BlockOnlyHigh       Threshold = "BLOCK_ONLY_HIGH"
	BlockMediumAndAbove Threshold = "BLOCK_MEDIUM_AND_ABOVE"
	BlockLowAndAbove    Threshold = "BLOCK_LOW_AND_ABOVE"
)

// ThresholdLabel содержит подпись порога на странице настроек
type ThresholdLabel struct {
	Threshold Threshold
	Label     string
}

func ThresholdLabels() []ThresholdLabel {
	return []ThresholdLabel{
		{Threshold: BlockNone, Label: "Block None"},
		{Threshold: BlockOnlyHigh, Label: "Block Few"},
		{Threshold: BlockMediumAndAbove, Label: "Block Some"},
		{Threshold: BlockLowAndAbove, Label: "Block Most"},
	}
}

func (t Threshold) Valid() bool {
	switch t {
	case BlockNone, BlockOnlyHigh, BlockMediumAndAbove, BlockLowAndAbove:
		return true
	}
	return false
}

// SafetySettings сопоставляет категории и пороги
type SafetySettings map[HarmCategory]Threshold

// DefaultSafetySettings блокирует средний и высокий риск во всех категориях
func DefaultSafetySettings() SafetySettings {
	out := make(SafetySettings, 4)
	for _, c := range HarmCategories() {
		out[c] = BlockMediumAndAbove
	}
	return out
}

// GenerationConfig содержит параметры генерации одного запроса
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"top_p"`
	TopK            int     `json:"top_k"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// DefaultGenerationConfig содержит значения, используемые без переопределений
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.75,
		TopP:            0.9,
		TopK:            40,
		MaxOutputTokens: 3000,
	}
}

type ModelOptions struct {
	Generation GenerationConfig
	Safety     SafetySettings
}

type FinishReason string

const (
	FinishUnspecified FinishReason = "FINISH_REASON_UNSPECIFIED"
	FinishStop        FinishReason = "STOP"
	FinishMaxTokens   FinishReason = "MAX_TOKENS"
	FinishSafety      FinishReason = "SAFETY"
	FinishRecitation  FinishReason = "RECITATION"
	FinishOther       FinishReason = "OTHER"
)

type SafetyRating struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Blocked     bool   `json:"blocked"`
}

type Candidate struct {
	Parts         []string       `json:"parts"`
	FinishReason  FinishReason   `json:"finish_reason"`
	SafetyRatings []SafetyRating `json:"safety_ratings"`
}

// Text склеивает текстовые части кандидата
func (c Candidate) Text() string {
	return strings.Join(c.Parts, "")
}

type Usage struct {
	PromptTokens    int32 `json:"prompt_tokens"`
	CandidateTokens int32 `json:"candidate_tokens"`
	TotalTokens     int32 `json:"total_tokens"`
}

// Response представляет ответ модели, не зависящий от SDK
type Response struct {
	Candidates        []Candidate `json:"candidates"`
	PromptBlockReason string      `json:"prompt_block_reason,omitempty"`
	Usage             Usage       `json:"usage"`
}

var ErrNoText = errors.New("response has no valid text part")

// Text возвращает текст ответа; требует ровно одного кандидата с текстом
func (r *Response) Text() (string, error) {
	if r == nil || len(r.Candidates) != 1 {
		return "", ErrNoText
	}
	text := r.Candidates[0].Text()
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Model представляет сконфигурированную модель, готовую к запросам
type Model interface {
	GenerateContent(ctx context.Context, prompt string) (*Response, error)
	CountTokens(ctx context.Context, text string) (int32, error)
	Close() error
}

// Dialer открывает модель для конкретного ключа и настроек
type Dialer interface {
	Open(ctx context.Context, apiKey string, opts ModelOptions) (Model, error)
}
