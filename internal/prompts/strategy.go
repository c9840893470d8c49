package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// Strategy идентифицирует способ построения промпта для генерации вопроса
type Strategy string

const (
	ZeroShot         Strategy = "zero_shot"
	FewShot          Strategy = "few_shot"
	ChainOfThought   Strategy = "chain_of_thought"
	RoleBased        Strategy = "role_based"
	StructuredOutput Strategy = "structured_output"
	Socratic         Strategy = "socratic"
)

// DefaultStrategy используется, когда пользователь ничего не выбрал
const DefaultStrategy = ChainOfThought

var ErrUnknownStrategy = errors.New("unknown strategy")

// Input содержит параметры, подставляемые в шаблон
type Input struct {
	Role              string
	Company           string
	RoundType         string
	Difficulty        string
	PreviousQuestions []string
}

// Info описывает стратегию для отображения в интерфейсе
type Info struct {
	ID          Strategy `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
}

type entry struct {
	info   Info
	render func(Input) string
}

// registry хранит стратегии в порядке показа
var registry = []entry{
	{
		info: Info{ID: ZeroShot, Name: "Zero-Shot Prompting",
			Description: "Direct instruction without examples - simple and straightforward"},
		render: zeroShot,
	},
	{
		info: Info{ID: FewShot, Name: "Few-Shot Learning",
			Description: "Provides examples to guide the model's output style and quality"},
		render: fewShot,
	},
	{
		info: Info{ID: ChainOfThought, Name: "Chain-of-Thought (CoT)",
			Description: "Encourages step-by-step reasoning for more thoughtful questions"},
		render: chainOfThought,
	},
	{
		info: Info{ID: RoleBased, Name: "Role-Based Prompting",
			Description: "Assigns expert persona (senior recruiter) for specialized perspective"},
		render: roleBased,
	},
	{
		info: Info{ID: StructuredOutput, Name: "Structured Output",
			Description: "Requests specific format and quality criteria for consistency"},
		render: structuredOutput,
	},
	{
		info: Info{ID: Socratic, Name: "Socratic Method",
			Description: "Uses guiding questions to lead the model to better outputs"},
		render: socratic,
	},
}

// Render строит промпт выбранной стратегии
func Render(strategy Strategy, in Input) (string, error) {
	for _, e := range registry {
		if e.info.ID == strategy {
			return e.render(in), nil
		}
	}
	return "", fmt.Errorf("%w '%s'. Available strategies: %s",
		ErrUnknownStrategy, strategy, strings.Join(IDs(), ", "))
}

// Available возвращает все стратегии в порядке регистрации
func Available() []Info {
	out := make([]Info, 0, len(registry))
	for _, e := range registry {
		out = append(out, e.info)
	}
	return out
}

// Lookup ищет стратегию по идентификатору
func Lookup(id Strategy) (Info, bool) {
	for _, e := range registry {
		if e.info.ID == id {
			return e.info, true
		}
	}
	return Info{}, false
}

func IDs() []string {
	ids := make([]string, 0, len(registry))
	for _, e := range registry {
		ids = append(ids, string(e.info.ID))
	}
	return ids
}

func companyOrDefault(company string) string {
	if strings.TrimSpace(company) == "" {
		return "a company"
	}
	return company
}

// priorList форматирует ранее заданные вопросы списком или маркером "None"
func priorList(questions []string) string {
	if len(questions) == 0 {
		return "None"
	}
	lines := make([]string, 0, len(questions))
	for _, q := range questions {
		lines = append(lines, "- "+q)
	}
	return strings.Join(lines, "\n")
}
