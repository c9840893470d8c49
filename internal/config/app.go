package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// AppConfig содержит настройки процесса, читаемые из окружения
type AppConfig struct {
	Env            string `envconfig:"APP_ENV" default:"development"`
	PracticeConfig string `envconfig:"PRACTICE_CONFIG"`

	Gemini    GeminiConfig    `ignored:"true"`
	Server    ServerConfig    `ignored:"true"`
	Session   SessionConfig   `ignored:"true"`
	Redis     RedisConfig     `ignored:"true"`
	RateLimit RateLimitConfig `ignored:"true"`
	Tracing   TracingConfig   `ignored:"true"`
}

type ServerConfig struct {
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"5m"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
	TrustedOrigins  []string      `envconfig:"CORS_TRUSTED_ORIGINS" default:"http://localhost:8080,http://127.0.0.1:8080"`
}

type SessionConfig struct {
	CookieName   string        `envconfig:"SESSION_COOKIE" default:"interview_session"`
	TTL          time.Duration `envconfig:"SESSION_TTL" default:"24h"`
	SecureCookie bool          `envconfig:"SESSION_SECURE_COOKIE" default:"false"`
}

// RedisConfig: пустой адрес означает хранение сессий в памяти
type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR"`
	Password string `envconfig:"REDIS_PASSWORD"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type RateLimitConfig struct {
	Requests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	Window   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// TracingConfig: без OTLP endpoint спаны пишутся в stdout
type TracingConfig struct {
	Enabled     bool    `envconfig:"OTEL_ENABLED" default:"false"`
	ServiceName string  `envconfig:"OTEL_SERVICE_NAME" default:"interview-practice"`
	Endpoint    string  `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	SampleRatio float64 `envconfig:"OTEL_SAMPLER_RATIO" default:"1"`
}

// LoadAppConfig читает все секции конфигурации из переменных окружения
func LoadAppConfig() (*AppConfig, error) {
	var cfg AppConfig
	sections := []interface{}{&cfg, &cfg.Gemini, &cfg.Server, &cfg.Session, &cfg.Redis, &cfg.RateLimit, &cfg.Tracing}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, fmt.Errorf("ошибка чтения переменных окружения: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("ошибка валидации конфигурации: %w", err)
	}
	return &cfg, nil
}

// Validate проверяет корректность настроек процесса
func (c *AppConfig) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT должен быть в диапазоне 1-65535, получен %d", c.Server.Port)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT должен быть положительным")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("SESSION_COOKIE не может быть пустым")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL должен быть положительным")
	}
	if c.RateLimit.Requests <= 0 || c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть положительными")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLER_RATIO должен быть в диапазоне 0-1")
	}
	return c.Gemini.ValidateConfig()
}

func (c *AppConfig) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
