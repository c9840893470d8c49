package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"interview-practice/internal/logger"
	"interview-practice/internal/practice"
	"interview-practice/internal/session"
)

const sessionContextKey = "practice_session"

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if s, ok := c.Get(sessionContextKey); ok {
			fields = append(fields, "session_id", s.(*session.Session).ID)
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

func CORS(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		origins = []string{"http://localhost:8080", "http://127.0.0.1:8080"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}

// Recovery renders panics as the practice error page.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		log.Error("panic recovered", "error", recovered, "path", c.Request.URL.Path)
		c.HTML(http.StatusInternalServerError, "error.tmpl", errorView{
			Title: "Something went wrong",
			Message: practice.Message{
				Title: fmt.Sprintf("An error occurred during the practice session: %v", recovered),
				Hint:  "Please check your settings and try again. If the problem persists, try adjusting the content safety settings.",
			},
		})
	})
}

// loadSession attaches the browser's session, creating one when the cookie
// is missing or points at an expired session. Requests of the same session
// run one at a time until the handler chain returns.
func (h *Handler) loadSession(c *gin.Context) {
	ctx := c.Request.Context()
	if id, err := c.Cookie(h.app.Session.CookieName); err == nil && id != "" {
		unlock := h.locks.Lock(id)
		defer unlock()

		s, err := h.store.Get(ctx, id)
		if err == nil {
			c.Set(sessionContextKey, s)
			c.Next()
			return
		}
		if !errors.Is(err, session.ErrNotFound) {
			h.log.Error("session load failed", "error", err)
			RespondError(c, http.StatusInternalServerError, "session_unavailable", err)
			c.Abort()
			return
		}
	}

	s := session.New(h.defaultSetup())
	if err := h.store.Save(ctx, s); err != nil {
		h.log.Error("session create failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "session_unavailable", err)
		c.Abort()
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.app.Session.CookieName, s.ID, int(h.app.Session.TTL.Seconds()), "/", "", h.app.Session.SecureCookie, true)
	c.Set(sessionContextKey, s)
	c.Next()
}

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(sessionContextKey).(*session.Session)
}
