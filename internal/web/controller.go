package web

import (
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"interview-practice/internal/api"
	"interview-practice/internal/config"
	"interview-practice/internal/prompts"
	"interview-practice/internal/session"
)

// resolvePage: страница практики открывается только при page=practice
func resolvePage(query string) session.Page {
	if query == string(session.PagePractice) {
		return session.PagePractice
	}
	return session.PageSetup
}

// practiceURL кодирует параметры интервью в адрес страницы практики
func practiceURL(setup session.Setup) string {
	v := url.Values{}
	v.Set("page", string(session.PagePractice))
	v.Set("round", setup.Round)
	v.Set("difficulty", setup.Difficulty)
	v.Set("role", setup.Role)
	v.Set("company", setup.Company)
	return "/?" + v.Encode()
}

func (h *Handler) defaultSetup() session.Setup {
	rounds := h.rules.RoundsForRole("")
	round := h.rules.Defaults.Round
	if len(rounds) > 0 {
		round = rounds[0]
	}
	return session.Setup{
		Round:        round,
		Difficulty:   h.rules.Defaults.Difficulty,
		AudioEnabled: true,
		Strategy:     prompts.Strategy(h.rules.DefaultStrategy),
		Generation:   api.DefaultGenerationConfig(),
		Safety:       api.DefaultSafetySettings(),
	}
}

func queryOr(c *gin.Context, key, current, fallback string) string {
	if v, ok := c.GetQuery(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	if current != "" {
		return current
	}
	return fallback
}

// applyQuery переносит параметры адреса в сессию; смена параметров начинает новое интервью
func (h *Handler) applyQuery(s *session.Session, c *gin.Context) {
	d := h.rules.Defaults
	next := s.Setup
	next.Role = queryOr(c, "role", s.Setup.Role, d.Role)
	next.Company = queryOr(c, "company", s.Setup.Company, d.Company)

	next.Round = queryOr(c, "round", s.Setup.Round, d.Round)
	if !h.rules.HasRound(next.Round) {
		next.Round = d.Round
	}
	if allowed := h.rules.RoundsForRole(next.Role); !contains(allowed, next.Round) {
		next.Round = allowed[0]
	}
	next.Difficulty = queryOr(c, "difficulty", s.Setup.Difficulty, d.Difficulty)
	if !h.rules.HasDifficulty(next.Difficulty) {
		next.Difficulty = d.Difficulty
	}

	changed := next.Role != s.Setup.Role || next.Company != s.Setup.Company ||
		next.Round != s.Setup.Round || next.Difficulty != s.Setup.Difficulty
	if changed && (s.HasQuestions() || s.Finished) {
		h.log.Info("practice parameters changed, starting a new interview", "session_id", s.ID)
		s.Reset()
		next.AudioEnabled = s.Setup.AudioEnabled
	}
	s.Setup = next
	if h.rules.IsCodingRound(next.Round) {
		s.Setup.AudioEnabled = false
	}
}

// buildSetup проверяет форму и собирает настройки; возвращает предупреждения для пользователя
func (h *Handler) buildSetup(c *gin.Context, form SetupForm, prev session.Setup) (session.Setup, []string) {
	var warnings []string

	setup := session.Setup{
		Role:             strings.TrimSpace(form.Role),
		Company:          strings.TrimSpace(form.Company),
		Round:            form.Round,
		Difficulty:       form.Difficulty,
		AudioEnabled:     form.Audio,
		Strategy:         prompts.Strategy(form.Strategy),
		Generation:       h.clampGeneration(form),
		Safety:           h.readSafety(c),
		APIKey:           strings.TrimSpace(form.APIKey),
		ValidatedKeyHash: prev.ValidatedKeyHash,
	}
	if setup.APIKey == "" {
		setup.APIKey = prev.APIKey
	}

	if setup.Role == "" {
		warnings = append(warnings, "Enter a position title before starting your practice session.")
	}

	allowed := h.rules.RoundsForRole(setup.Role)
	if !contains(allowed, setup.Round) {
		setup.Round = allowed[0]
	}
	if !h.rules.HasDifficulty(setup.Difficulty) {
		setup.Difficulty = h.rules.Defaults.Difficulty
	}
	if _, ok := prompts.Lookup(setup.Strategy); !ok {
		setup.Strategy = prompts.Strategy(h.rules.DefaultStrategy)
	}
	if h.rules.IsCodingRound(setup.Round) {
		setup.AudioEnabled = false
	}

	if h.resolveAPIKey(setup) == "" {
		warnings = append(warnings, "Add a valid GOOGLE_API_KEY to .env and restart, or enter a key below, before generating questions.")
	}
	return setup, warnings
}

// resolveAPIKey: ключ сессии важнее ключа из окружения
func (h *Handler) resolveAPIKey(setup session.Setup) string {
	if setup.APIKey != "" {
		return setup.APIKey
	}
	return h.app.Gemini.APIKey
}

func (h *Handler) clampGeneration(form SetupForm) api.GenerationConfig {
	def := api.DefaultGenerationConfig()
	limits := h.rules.Generation

	g := api.GenerationConfig{
		Temperature:     clampFloat(form.Temperature, def.Temperature, limits.Temperature),
		TopP:            clampFloat(form.TopP, def.TopP, limits.TopP),
		TopK:            int(clampFloat(float64(form.TopK), float64(def.TopK), limits.TopK)),
		MaxOutputTokens: int(clampFloat(float64(form.MaxOutputTokens), float64(def.MaxOutputTokens), limits.MaxOutputTokens)),
	}
	if g.MaxOutputTokens < limits.MinUsableTokens {
		g.MaxOutputTokens = def.MaxOutputTokens
	}
	return g
}

// clampFloat: ноль означает "не задано"
func clampFloat(v, fallback float64, r config.Range) float64 {
	if v == 0 {
		return fallback
	}
	if r.Max > r.Min {
		if v < r.Min {
			return r.Min
		}
		if v > r.Max {
			return r.Max
		}
	}
	return v
}

func (h *Handler) readSafety(c *gin.Context) api.SafetySettings {
	out := make(api.SafetySettings, 4)
	for _, category := range api.HarmCategories() {
		threshold := api.Threshold(c.PostForm("safety_" + string(category)))
		if !threshold.Valid() {
			threshold = api.BlockMediumAndAbove
		}
		out[category] = threshold
	}
	return out
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
