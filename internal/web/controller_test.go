package web

import (
	"testing"
	"time"

	"interview-practice/internal/api"
	"interview-practice/internal/config"
	"interview-practice/internal/session"
)

func TestResolvePage(t *testing.T) {
	t.Parallel()

	cases := map[string]session.Page{
		"":          session.PageSetup,
		"practice":  session.PagePractice,
		"Practice":  session.PageSetup,
		"setup":     session.PageSetup,
		"practice ": session.PageSetup,
	}
	for query, want := range cases {
		if got := resolvePage(query); got != want {
			t.Fatalf("unexpected page for %q: got=%q want=%q", query, got, want)
		}
	}
}

func TestPracticeURL(t *testing.T) {
	t.Parallel()

	got := practiceURL(session.Setup{
		Role:       "C++ Developer",
		Company:    "R&D Labs",
		Round:      "Role Related",
		Difficulty: "Professional",
	})
	want := "/?company=R%26D+Labs&difficulty=Professional&page=practice&role=C%2B%2B+Developer&round=Role+Related"
	if got != want {
		t.Fatalf("unexpected url: got=%q want=%q", got, want)
	}
}

func TestParseTargetID(t *testing.T) {
	t.Parallel()

	idx, err := parseTargetID("response-area-3")
	if err != nil || idx != 3 {
		t.Fatalf("unexpected parse: idx=%d err=%v", idx, err)
	}
	for _, bad := range []string{"", "response-area-", "response-area-x", "answer-1"} {
		if _, err := parseTargetID(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestValidateAnswer(t *testing.T) {
	t.Parallel()

	if err := validateAnswer("I would start by profiling the service."); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := validateAnswer("aaaaaaaaaaaaaaaaaaaa"); err == nil {
		t.Fatalf("expected repeated characters to be rejected")
	}
	long := make([]rune, maxAnswerLength+1)
	for i := range long {
		long[i] = rune('a' + i%26)
	}
	if err := validateAnswer(string(long)); err == nil {
		t.Fatalf("expected long answer to be rejected")
	}
}

func TestClampGeneration(t *testing.T) {
	t.Parallel()

	rules, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	h := &Handler{rules: rules}
	def := api.DefaultGenerationConfig()

	got := h.clampGeneration(SetupForm{})
	if got != def {
		t.Fatalf("empty form must use defaults: got=%+v want=%+v", got, def)
	}

	got = h.clampGeneration(SetupForm{Temperature: 5, TopP: 0.1, TopK: 500, MaxOutputTokens: 100000})
	want := api.GenerationConfig{Temperature: 1.0, TopP: 0.5, TopK: 128, MaxOutputTokens: 8192}
	if got != want {
		t.Fatalf("unexpected clamp: got=%+v want=%+v", got, want)
	}

	got = h.clampGeneration(SetupForm{MaxOutputTokens: 600})
	if got.MaxOutputTokens != def.MaxOutputTokens {
		t.Fatalf("unusable max tokens must fall back: got=%d want=%d", got.MaxOutputTokens, def.MaxOutputTokens)
	}
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.IsAllowed("a") || !rl.IsAllowed("a") {
		t.Fatalf("first two requests must pass")
	}
	if rl.IsAllowed("a") {
		t.Fatalf("third request must be limited")
	}
	if !rl.IsAllowed("b") {
		t.Fatalf("limits are per key")
	}
	now = now.Add(time.Minute)
	if !rl.IsAllowed("a") {
		t.Fatalf("window must slide")
	}
}
