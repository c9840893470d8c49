package config

import "strings"

// Config описывает правила тренировочного интервью
type Config struct {
	Interview          InterviewConfig  `yaml:"interview"`
	Defaults           QueryDefaults    `yaml:"defaults"`
	Timers             TimerConfig      `yaml:"timers"`
	Rounds             []Round          `yaml:"rounds"`
	Difficulties       []string         `yaml:"difficulties"`
	CodingRoleKeywords []string         `yaml:"coding_role_keywords"`
	DefaultStrategy    string           `yaml:"default_strategy"`
	Generation         GenerationLimits `yaml:"generation"`
	Feedback           FeedbackConfig   `yaml:"feedback"`
}

// InterviewConfig содержит общие настройки интервью
type InterviewConfig struct {
	QuestionCount int `yaml:"question_count"`
}

// QueryDefaults подставляются, когда страница практики открыта без параметров
type QueryDefaults struct {
	Role       string `yaml:"role"`
	Company    string `yaml:"company"`
	Round      string `yaml:"round"`
	Difficulty string `yaml:"difficulty"`
}

// TimerConfig задает время на вопрос в секундах
type TimerConfig struct {
	CodingSeconds     int            `yaml:"coding_seconds"`
	DefaultSeconds    int            `yaml:"default_seconds"`
	DifficultySeconds map[string]int `yaml:"difficulty_seconds"`
}

type Round struct {
	Name   string `yaml:"name"`
	Coding bool   `yaml:"coding"`
}

type Range struct {
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max"`
	Step float64 `yaml:"step"`
}

// GenerationLimits задает диапазоны ползунков на странице настроек
type GenerationLimits struct {
	Temperature     Range `yaml:"temperature"`
	TopP            Range `yaml:"top_p"`
	TopK            Range `yaml:"top_k"`
	MaxOutputTokens Range `yaml:"max_output_tokens"`
	// значения max tokens ниже этого порога заменяются значением по умолчанию
	MinUsableTokens int `yaml:"min_usable_tokens"`
}

type FeedbackConfig struct {
	Acknowledgment   string     `yaml:"acknowledgment"`
	Completion       string     `yaml:"completion"`
	MinAverageLength int        `yaml:"min_average_length"`
	DetailNudge      string     `yaml:"detail_nudge"`
	RoleTips         []RoleTips `yaml:"role_tips"`
	GenericTips      []string   `yaml:"generic_tips"`
}

// RoleTips выбирается, если роль содержит одно из ключевых слов
type RoleTips struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
	Tips     []string `yaml:"tips"`
}

// Методы для удобного доступа к конфигурации
func (c *Config) GetQuestionCount() int {
	return c.Interview.QuestionCount
}

func (c *Config) RoundNames() []string {
	names := make([]string, 0, len(c.Rounds))
	for _, r := range c.Rounds {
		names = append(names, r.Name)
	}
	return names
}

func (c *Config) IsCodingRound(name string) bool {
	for _, r := range c.Rounds {
		if r.Coding && strings.EqualFold(r.Name, name) {
			return true
		}
	}
	return false
}

func (c *Config) HasRound(name string) bool {
	for _, r := range c.Rounds {
		if r.Name == name {
			return true
		}
	}
	return false
}

func (c *Config) HasDifficulty(name string) bool {
	for _, d := range c.Difficulties {
		if d == name {
			return true
		}
	}
	return false
}

// IsCodingRole сообщает, уместен ли раунд Coding для указанной роли
func (c *Config) IsCodingRole(role string) bool {
	lower := strings.ToLower(role)
	for _, kw := range c.CodingRoleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RoundsForRole возвращает раунды, доступные для роли
func (c *Config) RoundsForRole(role string) []string {
	coding := c.IsCodingRole(role)
	names := make([]string, 0, len(c.Rounds))
	for _, r := range c.Rounds {
		if r.Coding && !coding {
			continue
		}
		names = append(names, r.Name)
	}
	return names
}
