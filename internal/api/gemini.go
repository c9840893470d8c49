package api

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/option"
)

type GeminiDialer struct {
	modelName  string
	clientOpts []option.ClientOption
	tracer     trace.Tracer
}

// NewGeminiDialer принимает дополнительные опции клиента (endpoint, http-клиент);
// ключ API добавляется при каждом Open
func NewGeminiDialer(modelName string, clientOpts ...option.ClientOption) *GeminiDialer {
	return &GeminiDialer{
		modelName:  modelName,
		clientOpts: clientOpts,
		tracer:     otel.Tracer("interview-practice/api"),
	}
}

// Open создает клиента Gemini и настраивает модель
func (d *GeminiDialer) Open(ctx context.Context, apiKey string, modelOpts ModelOptions) (Model, error) {
	opts := append([]option.ClientOption{option.WithAPIKey(apiKey)}, d.clientOpts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(d.modelName)
	model.SetTemperature(float32(modelOpts.Generation.Temperature))
	model.SetTopP(float32(modelOpts.Generation.TopP))
	model.SetTopK(int32(modelOpts.Generation.TopK))
	model.SetMaxOutputTokens(int32(modelOpts.Generation.MaxOutputTokens))
	model.SafetySettings = toGenaiSafety(modelOpts.Safety)

	return &geminiModel{
		name:   d.modelName,
		client: client,
		model:  model,
		tracer: d.tracer,
	}, nil
}

type geminiModel struct {
	name   string
	client *genai.Client
	model  *genai.GenerativeModel
	tracer trace.Tracer
}

func (m *geminiModel) GenerateContent(ctx context.Context, prompt string) (*Response, error) {
	ctx, span := m.tracer.Start(ctx, "gemini.GenerateContent",
		trace.WithAttributes(attribute.String("gemini.model", m.name)))
	defer span.End()

	resp, err := m.model.GenerateContent(ctx, genai.Text(prompt))
	// SDK отдает блокировку ошибкой без ответа
	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		resp, err = blockedResponse(blocked), nil
		span.SetAttributes(attribute.Bool("gemini.blocked", true))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return nil, fmt.Errorf("Gemini API error: %w", err)
	}

	out := convertResponse(resp)
	span.SetAttributes(
		attribute.Int("gemini.candidates", len(out.Candidates)),
		attribute.Int("gemini.total_tokens", int(out.Usage.TotalTokens)),
	)
	return out, nil
}

func (m *geminiModel) CountTokens(ctx context.Context, text string) (int32, error) {
	ctx, span := m.tracer.Start(ctx, "gemini.CountTokens",
		trace.WithAttributes(attribute.String("gemini.model", m.name)))
	defer span.End()

	resp, err := m.model.CountTokens(ctx, genai.Text(text))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count tokens failed")
		return 0, fmt.Errorf("Gemini API error: %w", err)
	}
	return resp.TotalTokens, nil
}

func (m *geminiModel) Close() error {
	return m.client.Close()
}

var genaiCategories = map[HarmCategory]genai.HarmCategory{
	HarmHarassment:       genai.HarmCategoryHarassment,
	HarmHateSpeech:       genai.HarmCategoryHateSpeech,
	HarmSexuallyExplicit: genai.HarmCategorySexuallyExplicit,
	HarmDangerousContent: genai.HarmCategoryDangerousContent,
}

var genaiThresholds = map[Threshold]genai.HarmBlockThreshold{
	BlockNone:           genai.HarmBlockNone,
	BlockOnlyHigh:       genai.HarmBlockOnlyHigh,
	BlockMediumAndAbove: genai.HarmBlockMediumAndAbove,
	BlockLowAndAbove:    genai.HarmBlockLowAndAbove,
}

func toGenaiSafety(settings SafetySettings) []*genai.SafetySetting {
	out := make([]*genai.SafetySetting, 0, len(settings))
	for _, category := range HarmCategories() {
		threshold, ok := settings[category]
		if !ok {
			continue
		}
		gt, ok := genaiThresholds[threshold]
		if !ok {
			continue
		}
		out = append(out, &genai.SafetySetting{
			Category:  genaiCategories[category],
			Threshold: gt,
		})
	}
	return out
}

func convertResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		return out
	}

	for _, cand := range resp.Candidates {
		if cand == nil {
			continue
		}
		c := Candidate{FinishReason: convertFinishReason(cand.FinishReason)}
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					c.Parts = append(c.Parts, string(t))
				}
			}
		}
		for _, rating := range cand.SafetyRatings {
			if rating == nil {
				continue
			}
			c.SafetyRatings = append(c.SafetyRatings, SafetyRating{
				Category:    categoryName(rating.Category),
				Probability: rating.Probability.String(),
				Blocked:     rating.Blocked,
			})
		}
		out.Candidates = append(out.Candidates, c)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockReasonUnspecified {
		out.PromptBlockReason = resp.PromptFeedback.BlockReason.String()
	}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			PromptTokens:    resp.UsageMetadata.PromptTokenCount,
			CandidateTokens: resp.UsageMetadata.CandidatesTokenCount,
			TotalTokens:     resp.UsageMetadata.TotalTokenCount,
		}
	}
	return out
}

func blockedResponse(be *genai.BlockedError) *genai.GenerateContentResponse {
	resp := &genai.GenerateContentResponse{PromptFeedback: be.PromptFeedback}
	if be.Candidate != nil {
		resp.Candidates = []*genai.Candidate{be.Candidate}
	}
	return resp
}

func convertFinishReason(r genai.FinishReason) FinishReason {
	switch r {
	case genai.FinishReasonUnspecified:
		return FinishUnspecified
	case genai.FinishReasonStop:
		return FinishStop
	case genai.FinishReasonMaxTokens:
		return FinishMaxTokens
	case genai.FinishReasonSafety:
		return FinishSafety
	case genai.FinishReasonRecitation:
		return FinishRecitation
	case genai.FinishReasonOther:
		return FinishOther
	default:
		return FinishReason(r.String())
	}
}

func categoryName(c genai.HarmCategory) string {
	for name, gc := range genaiCategories {
		if gc == c {
			return string(name)
		}
	}
	return c.String()
}
