package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"interview-practice/internal/api"
	"interview-practice/internal/config"
	"interview-practice/internal/interviewer"
	"interview-practice/internal/logger"
	"interview-practice/internal/metrics"
	"interview-practice/internal/practice"
	"interview-practice/internal/prompts"
	"interview-practice/internal/session"
	"interview-practice/internal/storage"
)

const maxAnswerLength = 4000

// KeyValidator проверяет пользовательский ключ Gemini
type KeyValidator interface {
	ValidateAPIKey(ctx context.Context, apiKey string) error
}

// Deps содержит зависимости обработчика
type Deps struct {
	Rules     *config.Config
	App       *config.AppConfig
	Flow      *practice.Flow
	Validator KeyValidator
	Store     session.Store
	Log       *logger.Logger
	Metrics   *metrics.Metrics
}

// Handler обрабатывает запросы страниц настроек и практики
type Handler struct {
	rules     *config.Config
	app       *config.AppConfig
	flow      *practice.Flow
	validator KeyValidator
	store     session.Store
	log       *logger.Logger
	metrics   *metrics.Metrics
	limiter   *RateLimiter
	locks     *sessionLocks
	now       func() time.Time
}

// NewHandler создает обработчик; генерация и проверка ключа ограничены по частоте на сессию
func NewHandler(d Deps) *Handler {
	return &Handler{
		rules:     d.Rules,
		app:       d.App,
		flow:      d.Flow,
		validator: d.Validator,
		store:     d.Store,
		log:       d.Log,
		metrics:   d.Metrics,
		limiter:   NewRateLimiter(d.App.RateLimit.Requests, d.App.RateLimit.Window),
		locks:     newSessionLocks(),
		now:       time.Now,
	}
}

func (h *Handler) save(c *gin.Context, s *session.Session) bool {
	s.Touch(h.now())
	if err := h.store.Save(c.Request.Context(), s); err != nil {
		h.log.Error("session save failed", "session_id", s.ID, "error", err)
		RespondError(c, http.StatusInternalServerError, "session_unavailable", err)
		return false
	}
	return true
}

// index выбирает страницу по параметру page
func (h *Handler) index(c *gin.Context) {
	s := currentSession(c)
	if resolvePage(c.Query("page")) == session.PageSetup {
		s.Page = session.PageSetup
		if !h.save(c, s) {
			return
		}
		h.renderSetup(c, http.StatusOK, s.Setup, h.keyWarnings(s.Setup))
		return
	}

	s.StartPractice()
	h.applyQuery(s, c)
	h.practicePage(c, s)
}

func (h *Handler) keyWarnings(setup session.Setup) []string {
	if h.resolveAPIKey(setup) != "" {
		return nil
	}
	return []string{"Add a valid GOOGLE_API_KEY to .env and restart, or enter a key below, before generating questions."}
}

func (h *Handler) renderSetup(c *gin.Context, status int, setup session.Setup, warnings []string) {
	selected, ok := prompts.Lookup(setup.Strategy)
	if !ok {
		selected, _ = prompts.Lookup(prompts.Strategy(h.rules.DefaultStrategy))
	}

	rows := make([]safetyRow, 0, len(api.HarmCategories()))
	for _, category := range api.HarmCategories() {
		threshold, ok := setup.Safety[category]
		if !ok {
			threshold = api.BlockMediumAndAbove
		}
		rows = append(rows, safetyRow{Category: category, Label: safetyLabels[category], Selected: threshold})
	}

	c.HTML(status, "setup.tmpl", setupView{
		Title:          "Interview Practice Setup",
		Setup:          setup,
		Rounds:         h.rules.Rounds,
		CodingKeywords: h.rules.CodingRoleKeywords,
		Difficulties:   h.rules.Difficulties,
		Strategies:     prompts.Available(),
		Selected:       selected,
		Limits:         h.rules.Generation,
		Safety:         rows,
		Thresholds:     api.ThresholdLabels(),
		HasEnvKey:      h.app.Gemini.HasAPIKey(),
		HasSessionKey:  setup.APIKey != "",
		Warnings:       warnings,
	})
}

var safetyLabels = map[api.HarmCategory]string{
	api.HarmHarassment:       "Harassment",
	api.HarmHateSpeech:       "Hate Speech",
	api.HarmSexuallyExplicit: "Sexually Explicit",
	api.HarmDangerousContent: "Dangerous Content",
}

// practicePage генерирует вопросы при первом открытии и показывает текущий вопрос или итоги
func (h *Handler) practicePage(c *gin.Context, s *session.Session) {
	if !s.HasQuestions() && !s.Finished {
		if !h.limiter.IsAllowed(s.ID) {
			if !h.save(c, s) {
				return
			}
			h.renderError(c, http.StatusTooManyRequests, practice.Message{
				Title: "Too many requests: question generation is temporarily limited",
				Hint:  "Wait a minute and reload the page.",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.app.Server.WriteTimeout)
		err := h.flow.GenerateQuestions(ctx, s, h.resolveAPIKey(s.Setup))
		cancel()
		if err != nil {
			h.log.Warn("practice questions unavailable", "session_id", s.ID, "error", err)
			if !h.save(c, s) {
				return
			}
			status := http.StatusBadGateway
			if interviewer.IsConfigError(err) {
				status = http.StatusBadRequest
			}
			h.renderError(c, status, practice.Describe(err))
			return
		}
	}

	if s.Finished {
		if !h.save(c, s) {
			return
		}
		c.HTML(http.StatusOK, "summary.tmpl", summaryView{
			Title:   "Interview Summary",
			Setup:   s.Setup,
			Summary: h.flow.Summary(s),
		})
		return
	}

	countdown, err := h.flow.Countdown(s)
	if err != nil {
		h.flowError(c, err)
		return
	}
	if !h.save(c, s) {
		return
	}
	c.HTML(http.StatusOK, "practice.tmpl", h.practiceView(s, countdown))
}

func (h *Handler) practiceView(s *session.Session, countdown practice.Countdown) practiceView {
	idx := s.Index
	last := s.LastIndex()
	v := practiceView{
		Title:        fmt.Sprintf("%s Interview Practice", s.Setup.Round),
		Setup:        s.Setup,
		Question:     s.Questions[idx],
		Index:        idx,
		Number:       idx + 1,
		Total:        len(s.Questions),
		Answer:       s.Answers[idx],
		TargetID:     targetIDPrefix + strconv.Itoa(idx),
		Countdown:    countdown,
		Locked:       countdown.Locked,
		IsCoding:     h.rules.IsCodingRound(s.Setup.Round),
		AudioEnabled: h.flow.AudioEnabled(s) && !countdown.Locked,
		AudioPref:    h.flow.AudioEnabled(s),
		ShowTextArea: h.flow.ShowTextArea(s, idx),
		HasPrevious:  idx > 0,
		HasNext:      idx < last,
		IsLast:       idx == last,
	}
	if countdown.Locked {
		v.Notice = "Time's up for this question. Move to the next one when you're ready."
	}
	return v
}

func (h *Handler) renderError(c *gin.Context, status int, msg practice.Message) {
	c.HTML(status, "error.tmpl", errorView{Title: "Interview Practice", Message: msg})
}

// startPractice принимает форму настроек и открывает страницу практики
func (h *Handler) startPractice(c *gin.Context) {
	s := currentSession(c)

	var form SetupForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderSetup(c, http.StatusBadRequest, s.Setup, []string{"Invalid settings: " + err.Error()})
		return
	}

	setup, warnings := h.buildSetup(c, form, s.Setup)
	if len(warnings) > 0 {
		h.renderSetup(c, http.StatusUnprocessableEntity, setup, warnings)
		return
	}

	if setup.APIKey != "" && !setup.KeyValidated(setup.APIKey) {
		if !h.limiter.IsAllowed(s.ID) {
			h.renderSetup(c, http.StatusTooManyRequests, setup, []string{"Too many attempts. Wait a minute before validating the API key again."})
			return
		}
		if err := h.validator.ValidateAPIKey(c.Request.Context(), setup.APIKey); err != nil {
			h.log.Warn("api key rejected", "session_id", s.ID, "error", err)
			setup.APIKey = ""
			setup.ValidatedKeyHash = ""
			h.renderSetup(c, http.StatusUnprocessableEntity, setup, []string{"API key validation failed: " + err.Error()})
			return
		}
		setup.MarkKeyValidated(setup.APIKey)
	}

	s.Reset()
	s.Setup = setup
	h.flow.SetAudio(s, setup.AudioEnabled)
	s.StartPractice()
	if !h.save(c, s) {
		return
	}
	h.log.Info("practice started",
		"session_id", s.ID,
		"interview_id", s.InterviewID,
		"round", setup.Round,
		"difficulty", setup.Difficulty,
		"strategy", string(setup.Strategy),
	)
	c.Redirect(http.StatusSeeOther, practiceURL(s.Setup))
}

// validateAnswer ограничивает длину ответа и отсекает спам повторяющимся символом
func validateAnswer(text string) error {
	if len([]rune(text)) > maxAnswerLength {
		return fmt.Errorf("answer is too long (maximum %d characters)", maxAnswerLength)
	}
	if len(text) > 10 && strings.Count(text, text[:1]) > len(text)*8/10 {
		return errors.New("answer contains too many repeated characters")
	}
	return nil
}

// submitAnswer сохраняет текст ответа и выполняет действие навигации
func (h *Handler) submitAnswer(c *gin.Context) {
	s := currentSession(c)

	var form AnswerForm
	if err := c.ShouldBind(&form); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_form", err)
		return
	}

	if answer, ok := c.GetPostForm("answer"); ok {
		if err := validateAnswer(answer); err != nil {
			h.renderError(c, http.StatusBadRequest, practice.Message{
				Title: "Answer rejected: " + err.Error(),
				Hint:  "Go back, shorten your answer and try again.",
			})
			return
		}
		if err := h.flow.SetAnswer(s, form.Index, answer); err != nil && !errors.Is(err, practice.ErrLocked) {
			h.flowError(c, err)
			return
		}
	}

	if form.Action != "" {
		if err := h.flow.Navigate(s, practice.Action(form.Action)); err != nil && !errors.Is(err, practice.ErrInvalidAction) {
			h.flowError(c, err)
			return
		}
	}

	if !h.save(c, s) {
		return
	}
	c.Redirect(http.StatusSeeOther, practiceURL(s.Setup))
}

// toggleAudio переключает ввод голосом; для Coding остается выключенным
func (h *Handler) toggleAudio(c *gin.Context) {
	s := currentSession(c)
	enabled, _ := strconv.ParseBool(c.PostForm("audio"))
	h.flow.SetAudio(s, enabled)
	if !h.save(c, s) {
		return
	}
	c.Redirect(http.StatusSeeOther, practiceURL(s.Setup))
}

// restart начинает новое интервью с теми же настройками
func (h *Handler) restart(c *gin.Context) {
	s := currentSession(c)
	h.flow.StartNew(s)
	if !h.save(c, s) {
		return
	}
	c.Redirect(http.StatusSeeOther, practiceURL(s.Setup))
}

// exit очищает сессию и возвращает на страницу настроек
func (h *Handler) exit(c *gin.Context) {
	s := currentSession(c)
	h.flow.BackToSetup(s, h.defaultSetup())
	if !h.save(c, s) {
		return
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (h *Handler) download(c *gin.Context) {
	s := currentSession(c)
	if !s.HasQuestions() {
		RespondError(c, http.StatusNotFound, "no_questions", practice.ErrNoQuestions)
		return
	}
	body := storage.RenderTranscript(s.Questions, s.Answers)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, storage.TranscriptFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

func (h *Handler) export(c *gin.Context) {
	s := currentSession(c)
	if !s.HasQuestions() {
		RespondError(c, http.StatusNotFound, "no_questions", practice.ErrNoQuestions)
		return
	}
	data, err := storage.MarshalResult(storage.BuildResult(s, h.now()))
	if err != nil {
		h.log.Error("export failed", "session_id", s.ID, "error", err)
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, storage.ExportFilename))
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// transcript принимает распознанный текст от панели записи звука
func (h *Handler) transcript(c *gin.Context) {
	s := currentSession(c)

	var msg AudioTranscriptMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_message", err)
		return
	}
	if msg.Type != messageAudioTranscript {
		RespondError(c, http.StatusBadRequest, "invalid_message", fmt.Errorf("unexpected message type %q", msg.Type))
		return
	}
	idx, err := parseTargetID(msg.TargetID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_target", err)
		return
	}
	if !h.flow.AudioEnabled(s) {
		RespondError(c, http.StatusConflict, "audio_disabled", errors.New("audio capture is disabled for this interview"))
		return
	}
	if err := h.flow.SetAnswer(s, idx, msg.Value); err != nil {
		h.flowError(c, err)
		return
	}
	if !h.save(c, s) {
		return
	}
	RespondOK(c, gin.H{"index": idx, "saved": true})
}

func parseTargetID(id string) (int, error) {
	raw, ok := strings.CutPrefix(id, targetIDPrefix)
	if !ok {
		return 0, fmt.Errorf("unknown target %q", id)
	}
	idx, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("unknown target %q", id)
	}
	return idx, nil
}

// lock обрабатывает сигнал таймера клиента
func (h *Handler) lock(c *gin.Context) {
	s := currentSession(c)

	var msg TimerLockMessage
	if err := c.ShouldBindJSON(&msg); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_message", err)
		return
	}
	if msg.Type != messageTimerLock {
		RespondError(c, http.StatusBadRequest, "invalid_message", fmt.Errorf("unexpected message type %q", msg.Type))
		return
	}
	countdown, err := h.flow.Lock(s, *msg.Index)
	if err != nil {
		h.flowError(c, err)
		return
	}
	if !h.save(c, s) {
		return
	}
	RespondOK(c, countdown)
}

func (h *Handler) timer(c *gin.Context) {
	s := currentSession(c)
	countdown, err := h.flow.Countdown(s)
	if err != nil {
		h.flowError(c, err)
		return
	}
	if !h.save(c, s) {
		return
	}
	RespondOK(c, countdown)
}

func (h *Handler) flowError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, practice.ErrLocked):
		RespondError(c, http.StatusConflict, "question_locked", err)
	case errors.Is(err, practice.ErrFinished):
		RespondError(c, http.StatusConflict, "interview_finished", err)
	case errors.Is(err, practice.ErrNoQuestions):
		RespondError(c, http.StatusConflict, "no_questions", err)
	case errors.Is(err, practice.ErrIndexOutOfRange):
		RespondError(c, http.StatusBadRequest, "index_out_of_range", err)
	case errors.Is(err, practice.ErrInvalidAction):
		RespondError(c, http.StatusBadRequest, "invalid_action", err)
	default:
		h.log.Error("practice request failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "internal", err)
	}
}

func (h *Handler) strategies(c *gin.Context) {
	RespondOK(c, gin.H{
		"default":    h.rules.DefaultStrategy,
		"strategies": prompts.Available(),
	})
}

func (h *Handler) metricsSnapshot(c *gin.Context) {
	RespondOK(c, h.metrics.GetSnapshot())
}

func (h *Handler) healthcheck(c *gin.Context) {
	RespondOK(c, gin.H{
		"status": "ok",
		"model":  h.app.Gemini.GetModelInfo(),
	})
}
