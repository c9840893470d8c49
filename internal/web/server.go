package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"interview-practice/internal/config"
	"interview-practice/internal/logger"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

//go:embed static
var staticFS embed.FS

var templateFuncs = template.FuncMap{
	"add1": func(i int) int { return i + 1 },
}

// WebApp wraps the gin router and the HTTP server serving it.
type WebApp struct {
	Router *gin.Engine
	Server *http.Server

	handler *Handler
	cfg     config.ServerConfig
	log     *logger.Logger
}

// NewWebApp wires middleware, templates and routes.
func NewWebApp(h *Handler, app *config.AppConfig, log *logger.Logger) (*WebApp, error) {
	router := gin.New()
	router.Use(
		otelgin.Middleware(app.Tracing.ServiceName),
		RequestLogger(log),
		Recovery(log),
		CORS(app.Server.TrustedOrigins),
	)

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	router.StaticFS("/static", http.FS(static))

	wa := &WebApp{
		Router:  router,
		handler: h,
		cfg:     app.Server,
		log:     log,
	}
	wa.setupRoutes()
	return wa, nil
}

func (wa *WebApp) setupRoutes() {
	h := wa.handler

	wa.Router.GET("/healthcheck", h.healthcheck)
	wa.Router.GET("/metrics", h.metricsSnapshot)
	wa.Router.GET("/api/strategies", h.strategies)

	pages := wa.Router.Group("/", h.loadSession)
	pages.GET("/", h.index)
	pages.POST("/setup", h.startPractice)

	flow := pages.Group("/practice")
	flow.POST("/answer", h.submitAnswer)
	flow.POST("/audio", h.toggleAudio)
	flow.POST("/restart", h.restart)
	flow.POST("/exit", h.exit)
	flow.POST("/transcript", h.transcript)
	flow.POST("/lock", h.lock)
	flow.GET("/timer", h.timer)
	flow.GET("/download", h.download)
	flow.GET("/export", h.export)
}

// Run starts the HTTP server (non-blocking). Listen errors are sent to errc.
func (wa *WebApp) Run(addr string, errc chan<- error) {
	wa.Server = &http.Server{
		Addr:              addr,
		Handler:           wa.Router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       wa.cfg.ReadTimeout,
		WriteTimeout:      wa.cfg.WriteTimeout,
	}

	go func() {
		wa.log.Info("web UI listening", "addr", addr)
		if err := wa.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
}

// Shutdown gracefully stops the HTTP server.
func (wa *WebApp) Shutdown(ctx context.Context) error {
	if wa.Server != nil {
		return wa.Server.Shutdown(ctx)
	}
	return nil
}
