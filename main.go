package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"interview-practice/internal/api"
	"interview-practice/internal/config"
	"interview-practice/internal/interviewer"
	"interview-practice/internal/logger"
	"interview-practice/internal/metrics"
	"interview-practice/internal/observability"
	"interview-practice/internal/practice"
	"interview-practice/internal/session"
	"interview-practice/internal/web"
)

func main() {
	// .env необязателен: переменные могут прийти из окружения
	envErr := godotenv.Load()

	appCfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logg, err := logger.New(appCfg.Env)
	if err != nil {
		log.Fatalf("Ошибка инициализации логгера: %v", err)
	}
	defer logg.Sync()

	if envErr != nil {
		logg.Warn("no .env file loaded, using process environment", "error", envErr)
	}
	if !appCfg.Gemini.HasAPIKey() {
		logg.Warn("GOOGLE_API_KEY is not set; users must enter a key on the setup page")
	}

	// Загружаем правила интервью
	rules, err := config.Load(appCfg.PracticeConfig)
	if err != nil {
		logg.Fatal("practice config load failed", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := observability.InitTracing(ctx, logg, appCfg.Tracing, appCfg.Env)

	store, closeStore := newSessionStore(ctx, appCfg, logg)
	defer closeStore()

	m := metrics.NewMetrics()
	interviewerService := interviewer.New(api.NewGeminiDialer(appCfg.Gemini.Model), logg, m)
	flow := practice.NewFlow(interviewerService, rules, logg, m)

	if appCfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := web.NewHandler(web.Deps{
		Rules:     rules,
		App:       appCfg,
		Flow:      flow,
		Validator: interviewerService,
		Store:     store,
		Log:       logg,
		Metrics:   m,
	})
	app, err := web.NewWebApp(handler, appCfg, logg)
	if err != nil {
		logg.Fatal("web app init failed", "error", err)
	}

	logg.Info("interview practice starting",
		"env", appCfg.Env,
		"model", appCfg.Gemini.Model,
		"questions", rules.GetQuestionCount(),
		"rounds", rules.RoundNames(),
		"default_strategy", rules.DefaultStrategy,
	)

	errc := make(chan error, 1)
	app.Run(fmt.Sprintf(":%d", appCfg.Server.Port), errc)

	select {
	case <-ctx.Done():
		logg.Info("shutdown signal received")
	case err := <-errc:
		logg.Error("http server failed", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), appCfg.Server.ShutdownTimeout)
	defer cancel()

	if err := app.Shutdown(shutdownCtx); err != nil {
		logg.Error("http shutdown failed", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logg.Warn("otel shutdown failed", "error", err)
	}

	snapshot := m.GetSnapshot()
	logg.Info("interview practice stopped",
		"interviews_started", snapshot.InterviewsStarted,
		"interviews_completed", snapshot.InterviewsCompleted,
		"api_calls", snapshot.APICallsTotal,
	)
}

// newSessionStore выбирает Redis при заданном REDIS_ADDR, иначе хранит сессии в памяти
func newSessionStore(ctx context.Context, cfg *config.AppConfig, logg *logger.Logger) (session.Store, func()) {
	if cfg.Redis.Addr != "" {
		client, err := session.NewRedisClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logg.Fatal("redis connection failed", "addr", cfg.Redis.Addr, "error", err)
		}
		logg.Info("session store: redis", "addr", cfg.Redis.Addr)
		return session.NewRedisStore(client, cfg.Session.TTL), func() {
			if err := client.Close(); err != nil {
				logg.Warn("redis close failed", "error", err)
			}
		}
	}

	store := session.NewMemoryStore(cfg.Session.TTL)
	store.StartCleanup(ctx, 10*time.Minute)
	logg.Info("session store: memory", "ttl", cfg.Session.TTL.String())
	return store, func() {}
}
