package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func testStore(t *testing.T, password string) *Store {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatal(err)
	}
	return NewStore(make([]byte, 32), make([]byte, 16), hash)
}

func TestAuthenticate(t *testing.T) {
	s := testStore(t, "hunter2")

	if !s.Authenticate("hunter2") {
		t.Error("correct password rejected")
	}
	if s.Authenticate("hunter3") {
		t.Error("wrong password accepted")
	}
	if s.Authenticate("") {
		t.Error("empty password accepted")
	}
}

func sessionRequest(t *testing.T, s *Store) *http.Request {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := s.SetSession(rec, httptest.NewRequest(http.MethodPost, "/login", nil)); err != nil {
		t.Fatal(err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one session cookie, got %d", len(cookies))
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	return req
}

func TestSessionRoundTrip(t *testing.T) {
	s := testStore(t, "hunter2")

	if s.HasSession(httptest.NewRequest(http.MethodGet, "/", nil)) {
		t.Error("bare request must not have a session")
	}
	if !s.HasSession(sessionRequest(t, s)) {
		t.Error("issued session cookie not accepted")
	}
}

func TestSessionRejectsForeignCookie(t *testing.T) {
	issuer := testStore(t, "hunter2")
	verifier := NewStore(append(make([]byte, 31), 1), make([]byte, 16), "")

	req := sessionRequest(t, issuer)
	if verifier.HasSession(req) {
		t.Error("a cookie signed with different keys must be rejected")
	}
}

func TestRequireAuth(t *testing.T) {
	s := testStore(t, "hunter2")
	protected := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	protected.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/login" {
		t.Errorf("unauthenticated request should redirect to /login, got %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = httptest.NewRecorder()
	protected.ServeHTTP(rec, sessionRequest(t, s))
	if rec.Code != http.StatusOK {
		t.Errorf("authenticated request should pass through, got %d", rec.Code)
	}
}

func TestClearSession(t *testing.T) {
	s := testStore(t, "hunter2")
	rec := httptest.NewRecorder()
	s.ClearSession(rec)

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 || cookies[0].Value != "" {
		t.Errorf("clear should expire the cookie, got %+v", cookies)
	}
}
