package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"interview-practice/internal/prompts"
)

//go:embed practice.yaml
var defaultPractice []byte

// Load загружает правила из YAML файла; пустое имя означает встроенный документ
func Load(filename string) (*Config, error) {
	data := defaultPractice
	if filename != "" {
		var err error
		data, err = os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения файла %s: %w", filename, err)
		}
	}
	return Parse(data)
}

// Parse разбирает и валидирует YAML документ
func Parse(data []byte) (*Config, error) {
	var config Config
	err := yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга YAML: %w", err)
	}

	// Валидация конфигурации
	err = validateConfig(&config)
	if err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}

	return &config, nil
}

// validateConfig проверяет корректность конфигурации
func validateConfig(config *Config) error {
	if config.Interview.QuestionCount <= 0 {
		return fmt.Errorf("question_count должно быть больше 0")
	}

	if config.Timers.CodingSeconds <= 0 || config.Timers.DefaultSeconds <= 0 {
		return fmt.Errorf("coding_seconds и default_seconds должны быть больше 0")
	}
	for name, seconds := range config.Timers.DifficultySeconds {
		if seconds <= 0 {
			return fmt.Errorf("таймер для сложности %q должен быть больше 0", name)
		}
	}

	if len(config.Rounds) == 0 {
		return fmt.Errorf("нужен хотя бы один раунд")
	}
	hasCoding := false
	for i, r := range config.Rounds {
		if strings.TrimSpace(r.Name) == "" {
			return fmt.Errorf("раунд %d должен иметь name", i)
		}
		hasCoding = hasCoding || r.Coding
	}
	if !hasCoding {
		return fmt.Errorf("среди раундов должен быть раунд с coding: true")
	}

	if len(config.Difficulties) == 0 {
		return fmt.Errorf("нужен хотя бы один уровень сложности")
	}
	if !config.HasRound(config.Defaults.Round) {
		return fmt.Errorf("раунд по умолчанию %q не найден", config.Defaults.Round)
	}
	if !config.HasDifficulty(config.Defaults.Difficulty) {
		return fmt.Errorf("сложность по умолчанию %q не найдена", config.Defaults.Difficulty)
	}

	if _, ok := prompts.Lookup(prompts.Strategy(config.DefaultStrategy)); !ok {
		return fmt.Errorf("неизвестная стратегия по умолчанию %q", config.DefaultStrategy)
	}

	if len(config.Feedback.GenericTips) == 0 {
		return fmt.Errorf("generic_tips не может быть пустым")
	}
	for _, rt := range config.Feedback.RoleTips {
		if len(rt.Keywords) == 0 || len(rt.Tips) == 0 {
			return fmt.Errorf("набор советов %q должен иметь keywords и tips", rt.Name)
		}
	}

	return nil
}
