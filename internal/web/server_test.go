package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"interview-practice/internal/config"
	"interview-practice/internal/interviewer"
	"interview-practice/internal/logger"
	"interview-practice/internal/metrics"
	"interview-practice/internal/practice"
	"interview-practice/internal/session"
)

type fakeGenerator struct {
	calls []interviewer.Request
	err   error
}

func (g *fakeGenerator) GenerateQuestion(_ context.Context, req interviewer.Request) (string, error) {
	g.calls = append(g.calls, req)
	if g.err != nil {
		return "", g.err
	}
	return fmt.Sprintf("Question %d?", len(g.calls)), nil
}

type fakeValidator struct {
	calls int
	err   error
}

func (v *fakeValidator) ValidateAPIKey(_ context.Context, _ string) error {
	v.calls++
	return v.err
}

type testApp struct {
	web       *WebApp
	gen       *fakeGenerator
	validator *fakeValidator
	now       time.Time
	cookies   []*http.Cookie
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithStore(t, session.NewMemoryStore(time.Hour))
}

func newTestAppWithStore(t *testing.T, store session.Store) *testApp {
	t.Helper()

	rules, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	app := &config.AppConfig{
		Env:       "test",
		Gemini:    config.GeminiConfig{APIKey: "env-key", Model: config.DefaultGeminiModel},
		Server:    config.ServerConfig{WriteTimeout: time.Minute},
		Session:   config.SessionConfig{CookieName: "interview_session", TTL: time.Hour},
		RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute},
		Tracing:   config.TracingConfig{ServiceName: "interview-practice-test"},
	}

	ta := &testApp{
		gen:       &fakeGenerator{},
		validator: &fakeValidator{},
		now:       time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	log := logger.Nop()
	m := metrics.NewMetrics()
	flow := practice.NewFlow(ta.gen, rules, log, m)
	flow.SetClock(func() time.Time { return ta.now })

	h := NewHandler(Deps{
		Rules:     rules,
		App:       app,
		Flow:      flow,
		Validator: ta.validator,
		Store:     store,
		Log:       log,
		Metrics:   m,
	})
	wa, err := NewWebApp(h, app, log)
	if err != nil {
		t.Fatalf("NewWebApp: %v", err)
	}
	ta.web = wa
	return ta
}

// do отправляет запрос с cookie сессии и запоминает новые cookie
func (ta *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range ta.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ta.web.Router.ServeHTTP(rec, req)
	if cookies := rec.Result().Cookies(); len(cookies) > 0 {
		ta.cookies = cookies
	}
	return rec
}

func (ta *testApp) get(target string) *httptest.ResponseRecorder {
	return ta.do(httptest.NewRequest(http.MethodGet, target, nil))
}

func (ta *testApp) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return ta.do(req)
}

func (ta *testApp) postJSON(target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return ta.do(req)
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env ErrorEnvelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v (body=%s)", err, rec.Body.String())
	}
	return env.Error.Code
}

const behavioralPractice = "/?page=practice&role=Software+Engineer&company=Acme&round=Behavioral&difficulty=Beginner"

func TestHealthcheck(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.get("/healthcheck")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusOK)
	}
	var body struct {
		Status string `json:"status"`
		Model  struct {
			Model        string `json:"model"`
			Provider     string `json:"provider"`
			EnvKeyLoaded bool   `json:"env_key_loaded"`
		} `json:"model"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode healthcheck: %v (body=%s)", err, rec.Body.String())
	}
	if body.Status != "ok" || body.Model.Model != config.DefaultGeminiModel ||
		body.Model.Provider != "Google Gemini" || !body.Model.EnvKeyLoaded {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestIndexRendersSetupWithoutPracticeQuery(t *testing.T) {
	t.Parallel()

	for _, target := range []string{"/", "/?page=setup", "/?page=Practice"} {
		ta := newTestApp(t)
		rec := ta.get(target)
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status for %s: got=%d", target, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Start Practice") {
			t.Fatalf("expected setup page for %s", target)
		}
		if len(ta.gen.calls) != 0 {
			t.Fatalf("setup page must not generate questions for %s", target)
		}
		if len(ta.cookies) == 0 {
			t.Fatalf("expected session cookie for %s", target)
		}
	}
}

func TestPracticePageGeneratesQuestions(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.get(behavioralPractice)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Question 1 of 5") {
		t.Fatalf("expected question header, body=%s", body)
	}
	if !strings.Contains(body, "Question 1?") {
		t.Fatalf("expected first question text")
	}
	if len(ta.gen.calls) != 5 {
		t.Fatalf("unexpected generation calls: got=%d want=5", len(ta.gen.calls))
	}
	for i, req := range ta.gen.calls {
		if len(req.PreviousQuestions) != i {
			t.Fatalf("call %d: unexpected prior questions: got=%d want=%d", i, len(req.PreviousQuestions), i)
		}
		if req.APIKey != "env-key" {
			t.Fatalf("call %d: unexpected api key: got=%q", i, req.APIKey)
		}
		if req.Company != "Acme" || req.RoundType != "Behavioral" || req.Difficulty != "Beginner" {
			t.Fatalf("call %d: query not applied: %+v", i, req)
		}
	}

	// повторное открытие использует сохраненные вопросы
	ta.get(behavioralPractice)
	if len(ta.gen.calls) != 5 {
		t.Fatalf("questions must be cached: got=%d calls", len(ta.gen.calls))
	}
}

func TestPracticePageHidesAudioForCoding(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.get("/?page=practice&role=Backend+Engineer&round=Coding&difficulty=Professional")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "audio-panel") {
		t.Fatalf("coding round must not render the audio panel")
	}
	if !strings.Contains(body, `aria-label="Answer for question 1"`) {
		t.Fatalf("coding round must render the text area")
	}
	if !strings.Contains(body, `data-allotted="900"`) {
		t.Fatalf("coding round must allot 900 seconds")
	}
}

func TestPracticePageShowsGenerationError(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)
	ta.gen.err = interviewer.ErrMissingAPIKey

	rec := ta.get(behavioralPractice)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
	if !strings.Contains(rec.Body.String(), "API Error: Invalid or missing Google API key") {
		t.Fatalf("expected key error message, body=%s", rec.Body.String())
	}

	ta.gen.err = &interviewer.GenerationError{Err: interviewer.ErrEmptyResponse}
	rec = ta.get(behavioralPractice)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusBadGateway)
	}
	if !strings.Contains(rec.Body.String(), "An error occurred while generating questions") {
		t.Fatalf("expected generic generation error")
	}
}

func TestStartPracticeRedirectsWithQuery(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.postForm("/setup", url.Values{
		"role":       {"Software Engineer"},
		"company":    {"Acme Corp"},
		"round":      {"Behavioral"},
		"difficulty": {"Beginner"},
		"strategy":   {"few_shot"},
		"audio":      {"true"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}
	want := "/?company=Acme+Corp&difficulty=Beginner&page=practice&role=Software+Engineer&round=Behavioral"
	if got := rec.Header().Get("Location"); got != want {
		t.Fatalf("unexpected redirect: got=%q want=%q", got, want)
	}
	if ta.validator.calls != 0 {
		t.Fatalf("environment key must not be validated: got=%d calls", ta.validator.calls)
	}

	ta.get(want)
	if len(ta.gen.calls) == 0 || ta.gen.calls[0].Strategy != "few_shot" {
		t.Fatalf("selected strategy not used: %+v", ta.gen.calls)
	}
}

func TestStartPracticeRejectsMissingRole(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.postForm("/setup", url.Values{"role": {"  "}, "round": {"Behavioral"}})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "Enter a position title") {
		t.Fatalf("expected role warning")
	}
}

func TestStartPracticeValidatesKeyOnce(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	form := url.Values{
		"role":    {"Data Scientist"},
		"round":   {"Behavioral"},
		"api_key": {"user-key"},
	}
	for i := 0; i < 2; i++ {
		rec := ta.postForm("/setup", form)
		if rec.Code != http.StatusSeeOther {
			t.Fatalf("attempt %d: unexpected status: got=%d", i, rec.Code)
		}
	}
	if ta.validator.calls != 1 {
		t.Fatalf("unexpected validations: got=%d want=1", ta.validator.calls)
	}

	ta.get("/?page=practice")
	if len(ta.gen.calls) == 0 || ta.gen.calls[0].APIKey != "user-key" {
		t.Fatalf("session key must override environment key")
	}
}

func TestStartPracticeRejectsInvalidKey(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)
	ta.validator.err = errors.New("permission denied")

	rec := ta.postForm("/setup", url.Values{
		"role":    {"Software Engineer"},
		"round":   {"Behavioral"},
		"api_key": {"bad-key"},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status: got=%d want=%d", rec.Code, http.StatusUnprocessableEntity)
	}
	if !strings.Contains(rec.Body.String(), "API key validation failed: permission denied") {
		t.Fatalf("expected validation warning, body=%s", rec.Body.String())
	}
}

func TestStartPracticeDropsCodingForNonCodingRole(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.postForm("/setup", url.Values{
		"role":  {"Product Manager"},
		"round": {"Coding"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "round=Warm+Up") {
		t.Fatalf("coding round must fall back to the first round: %q", loc)
	}
}

func TestPracticeQueryDropsCodingForNonCodingRole(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.get("/?page=practice&role=Product+Manager&round=Coding&difficulty=Beginner")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	if len(ta.gen.calls) == 0 {
		t.Fatalf("expected questions to be generated")
	}
	for _, call := range ta.gen.calls {
		if call.RoundType != "Warm Up" {
			t.Fatalf("coding round must fall back to the first round: got=%q", call.RoundType)
		}
	}
}

func TestAnswerNavigationAndDownload(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)
	ta.get(behavioralPractice)

	rec := ta.postForm("/practice/answer", url.Values{
		"index":  {"0"},
		"answer": {"My answer"},
		"action": {"next"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = ta.get(behavioralPractice)
	if !strings.Contains(rec.Body.String(), "Question 2 of 5") {
		t.Fatalf("expected second question")
	}

	rec = ta.get("/practice/download")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "interview_responses.txt") {
		t.Fatalf("unexpected disposition: %q", got)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "Question 1: Question 1?\nAnswer: My answer\n\n") {
		t.Fatalf("unexpected transcript: %q", body)
	}
	if !strings.Contains(body, "Question 2: Question 2?\nAnswer: No response") {
		t.Fatalf("missing answers must be marked: %q", body)
	}
}

func TestFinishShowsSummary(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)
	ta.get(behavioralPractice)

	for i := 0; i < 4; i++ {
		ta.postForm("/practice/answer", url.Values{"index": {fmt.Sprint(i)}, "action": {"next"}})
	}
	rec := ta.postForm("/practice/answer", url.Values{"index": {"4"}, "action": {"finish"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}

	body := ta.get(behavioralPractice).Body.String()
	if !strings.Contains(body, "Interview is ended") {
		t.Fatalf("expected summary page, body=%s", body)
	}
	if !strings.Contains(body, "No response provided") {
		t.Fatalf("expected unanswered marker")
	}
	if !strings.Contains(body, "Question 5: Question 5?") {
		t.Fatalf("expected numbered questions")
	}

	rec = ta.get("/practice/export")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected export status: got=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"finished": true`) && !strings.Contains(rec.Body.String(), `"finished":true`) {
		t.Fatalf("export must report finished interview: %s", rec.Body.String())
	}
}

func TestTimerAndLock(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.get("/practice/timer")
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "no_questions" {
		t.Fatalf("timer without questions: got=%d body=%s", rec.Code, rec.Body.String())
	}

	ta.get(behavioralPractice)
	rec = ta.get("/practice/timer")
	var cd practice.Countdown
	if err := json.Unmarshal(rec.Body.Bytes(), &cd); err != nil {
		t.Fatalf("decode countdown: %v", err)
	}
	if cd.Allotted != 180 || cd.Remaining != 180 || cd.Locked {
		t.Fatalf("unexpected countdown: %+v", cd)
	}

	// преждевременный сигнал таймера не блокирует вопрос
	rec = ta.postJSON("/practice/lock", `{"type":"timer-lock","index":0}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &cd); err != nil {
		t.Fatalf("decode countdown: %v", err)
	}
	if cd.Locked {
		t.Fatalf("question locked before its time ran out")
	}

	ta.now = ta.now.Add(181 * time.Second)
	rec = ta.postJSON("/practice/lock", `{"type":"timer-lock","index":0}`)
	if err := json.Unmarshal(rec.Body.Bytes(), &cd); err != nil {
		t.Fatalf("decode countdown: %v", err)
	}
	if !cd.Locked || cd.Remaining != 0 {
		t.Fatalf("unexpected countdown after expiry: %+v", cd)
	}

	rec = ta.postJSON("/practice/lock", `{"type":"something-else","index":0}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unexpected status for wrong type: got=%d", rec.Code)
	}
}

func TestTranscript(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)
	ta.get(behavioralPractice)

	rec := ta.postJSON("/practice/transcript", `{"type":"audio-transcript","targetId":"response-area-0","value":"spoken answer"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = ta.postJSON("/practice/transcript", `{"type":"audio-transcript","targetId":"answer-0","value":"x"}`)
	if rec.Code != http.StatusBadRequest || errorCode(t, rec) != "invalid_target" {
		t.Fatalf("unknown target accepted: got=%d", rec.Code)
	}

	ta.now = ta.now.Add(time.Hour)
	ta.postJSON("/practice/lock", `{"type":"timer-lock","index":0}`)
	rec = ta.postJSON("/practice/transcript", `{"type":"audio-transcript","targetId":"response-area-0","value":"late"}`)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "question_locked" {
		t.Fatalf("locked question accepted transcript: got=%d body=%s", rec.Code, rec.Body.String())
	}

	body := ta.get("/practice/download").Body.String()
	if !strings.Contains(body, "Answer: spoken answer") {
		t.Fatalf("locked question must keep its answer: %q", body)
	}
}

func TestTranscriptRejectedForCoding(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)
	ta.get("/?page=practice&role=Backend+Engineer&round=Coding&difficulty=Beginner")

	rec := ta.postJSON("/practice/transcript", `{"type":"audio-transcript","targetId":"response-area-0","value":"x"}`)
	if rec.Code != http.StatusConflict || errorCode(t, rec) != "audio_disabled" {
		t.Fatalf("coding round accepted audio: got=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRestartAndExit(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)
	ta.get(behavioralPractice)

	rec := ta.postForm("/practice/restart", nil)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	ta.get(behavioralPractice)
	if len(ta.gen.calls) != 10 {
		t.Fatalf("restart must regenerate questions: got=%d calls", len(ta.gen.calls))
	}

	rec = ta.postForm("/practice/exit", nil)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/" {
		t.Fatalf("unexpected exit redirect: %d %q", rec.Code, rec.Header().Get("Location"))
	}
	rec = ta.get("/practice/download")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("exit must clear the interview: got=%d", rec.Code)
	}
}

func TestStrategiesEndpoint(t *testing.T) {
	t.Parallel()
	ta := newTestApp(t)

	rec := ta.get("/api/strategies")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got=%d", rec.Code)
	}
	var payload struct {
		Default    string `json:"default"`
		Strategies []struct {
			ID string `json:"id"`
		} `json:"strategies"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Default != "chain_of_thought" || len(payload.Strategies) != 6 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

// heldStore задерживает один Get уже после чтения копии сессии
type heldStore struct {
	session.Store
	mutex   sync.Mutex
	hold    chan struct{}
	entered chan struct{}
}

func (s *heldStore) holdNextGet() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.hold = make(chan struct{})
	s.entered = make(chan struct{})
}

func (s *heldStore) Get(ctx context.Context, id string) (*session.Session, error) {
	sess, err := s.Store.Get(ctx, id)

	s.mutex.Lock()
	hold, entered := s.hold, s.entered
	s.hold, s.entered = nil, nil
	s.mutex.Unlock()

	if hold != nil {
		close(entered)
		<-hold
	}
	return sess, err
}

func TestConcurrentRequestsKeepSessionWrites(t *testing.T) {
	t.Parallel()
	store := &heldStore{Store: session.NewMemoryStore(time.Hour)}
	ta := newTestAppWithStore(t, store)
	ta.get(behavioralPractice)
	for i := 0; i < 4; i++ {
		ta.postForm("/practice/answer", url.Values{"index": {fmt.Sprint(i)}, "action": {"next"}})
	}
	cookies := ta.cookies

	send := func(req *http.Request) *httptest.ResponseRecorder {
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		ta.web.Router.ServeHTTP(rec, req)
		return rec
	}

	store.holdNextGet()
	entered := store.entered
	release := store.hold

	var wg sync.WaitGroup
	var transcriptCode, finishCode int
	wg.Add(2)
	go func() {
		defer wg.Done()
		req := httptest.NewRequest(http.MethodPost, "/practice/transcript",
			strings.NewReader(`{"type":"audio-transcript","targetId":"response-area-4","value":"spoken"}`))
		req.Header.Set("Content-Type", "application/json")
		transcriptCode = send(req).Code
	}()
	<-entered

	go func() {
		defer wg.Done()
		form := url.Values{"index": {"4"}, "answer": {"typed"}, "action": {"finish"}}
		req := httptest.NewRequest(http.MethodPost, "/practice/answer", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		finishCode = send(req).Code
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if transcriptCode != http.StatusOK || finishCode != http.StatusSeeOther {
		t.Fatalf("unexpected statuses: transcript=%d finish=%d", transcriptCode, finishCode)
	}

	var id string
	for _, c := range cookies {
		if c.Name == "interview_session" {
			id = c.Value
		}
	}
	s, err := store.Store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("store.Get: %v", err)
	}
	if !s.Finished {
		t.Fatalf("finish must survive the overlapping transcript save")
	}
	if s.Answers[4] != "typed" {
		t.Fatalf("unexpected answer: got=%q want=%q", s.Answers[4], "typed")
	}
	if n := ta.web.handler.locks.size(); n != 0 {
		t.Fatalf("session locks must be released: got=%d", n)
	}
}
