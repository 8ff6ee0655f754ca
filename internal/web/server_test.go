package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/example/campsched/internal/auth"
	"github.com/example/campsched/internal/history"
	"github.com/example/campsched/internal/jobs"
	"github.com/example/campsched/internal/runner"
)

type fixedStatus []runner.Status

func (f fixedStatus) Snapshot() []runner.Status { return f }

type fixedHistory []history.Attempt

func (f fixedHistory) Recent(context.Context, int) ([]history.Attempt, error) { return f, nil }

func testServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()
	hash, err := auth.HashPassword("hunter2")
	if err != nil {
		t.Fatal(err)
	}
	s := &Server{
		Auth: auth.NewStore(make([]byte, 32), make([]byte, 16), hash),
		Jobs: []jobs.Job{{
			Name:        "camp",
			Enabled:     true,
			Adapter:     "interpark_anseong",
			BaseURL:     "https://tickets.example.com",
			IntervalSec: 30,
		}},
		Status: fixedStatus{{
			JobName:   "camp",
			LastKind:  runner.OutcomeNoMatch,
			LastRunAt: time.Now(),
			Runs:      3,
		}},
		DryRun: true,
	}
	return s, s.Routes()
}

func login(t *testing.T, h http.Handler) *http.Cookie {
	t.Helper()
	form := url.Values{"password": {"hunter2"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
		t.Fatalf("login should redirect to the dashboard, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	return cookies[0]
}

func TestHealthzIsPublic(t *testing.T) {
	_, h := testServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz must answer without a session, got %d", rec.Code)
	}
}

func TestDashboardRequiresSession(t *testing.T) {
	_, h := testServer(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Errorf("unauthenticated dashboard access should redirect, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestLoginWrongPassword(t *testing.T) {
	_, h := testServer(t)

	form := url.Values{"password": {"nope"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("a failed login re-renders the form, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Wrong password") {
		t.Error("failed login should flash a message")
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("failed login must not issue a session")
	}
}

func TestDashboardShowsJobStatus(t *testing.T) {
	_, h := testServer(t)
	cookie := login(t, h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("dashboard: got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"camp", "interpark_anseong", "no_match", "dry run"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestDashboardShowsAttemptHistory(t *testing.T) {
	s, _ := testServer(t)
	s.History = fixedHistory{{
		ID:        "a1",
		JobName:   "camp",
		Outcome:   "booked",
		SlotLabel: "River-2 (RIVER)",
		CreatedAt: time.Now(),
	}}
	h := s.Routes()
	cookie := login(t, h)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "Recent attempts") || !strings.Contains(body, "River-2 (RIVER)") {
		t.Error("dashboard should render the attempt table when history is configured")
	}
}

func TestLogoutClearsSession(t *testing.T) {
	_, h := testServer(t)
	cookie := login(t, h)

	req := httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(cookie)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Errorf("logout should redirect to the login form, got %d", rec.Code)
	}
	cleared := rec.Result().Cookies()
	if len(cleared) != 1 || cleared[0].MaxAge != -1 {
		t.Errorf("logout should expire the session cookie, got %+v", cleared)
	}
}
