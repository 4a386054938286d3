package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/templui/filenest/internal/ctxkeys"
	"github.com/templui/filenest/internal/model"
	"github.com/templui/filenest/internal/service"
)

type stubFavorites struct {
	calls []string
	err   error
}

func (s *stubFavorites) EnsureDefaultFavoriteFolder(_ context.Context, ownerID string) (*model.Node, error) {
	s.calls = append(s.calls, ownerID)
	return &model.Node{ID: "fav", OwnerID: ownerID, IsFolder: true, IsFavoriteFolder: true}, s.err
}

func echoUser(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte(ctxkeys.UserID(r.Context())))
}

func TestAuthenticate(t *testing.T) {
	tokens := service.NewTokenService("test-secret-test-secret-test-secret", time.Hour, false)
	valid, err := tokens.Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	expired, err := service.NewTokenService("test-secret-test-secret-test-secret", -time.Hour, false).Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	foreign, err := service.NewTokenService("another-secret-another-secret-xx", time.Hour, false).Issue("alice")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, http.StatusOK, "alice"},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: service.AuthCookieName, Value: valid}) }, http.StatusOK, "alice"},
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized, ""},
		{"expired", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+expired) }, http.StatusUnauthorized, ""},
		{"wrong secret", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+foreign) }, http.StatusUnauthorized, ""},
		{"basic scheme", func(r *http.Request) { r.Header.Set("Authorization", "Basic "+valid) }, http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favorites := &stubFavorites{}
			h := Authenticate(tokens, favorites)(http.HandlerFunc(echoUser))

			req := httptest.NewRequest(http.MethodGet, "/api/nodes", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if rec.Body.String() != tt.wantBody {
					t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
				}
				if len(favorites.calls) != 1 || favorites.calls[0] != "alice" {
					t.Errorf("favorites provisioned for %v, want [alice]", favorites.calls)
				}
			}
		})
	}
}

func TestAuthenticate_ProvisioningFailure(t *testing.T) {
	tokens := service.NewTokenService("test-secret-test-secret-test-secret", time.Hour, false)
	token, _ := tokens.Issue("alice")

	h := Authenticate(tokens, &stubFavorites{err: errors.New("db down")})(http.HandlerFunc(echoUser))
	req := httptest.NewRequest(http.MethodGet, "/api/nodes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("first two requests were rejected")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("third request within the window was allowed")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("a different client was rejected")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()
	h := RateLimit(rl)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/files", nil)
		req.Header.Set("X-Forwarded-For", "10.0.0.1, 172.16.0.1")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != want {
			t.Errorf("request %d status = %d, want %d", i+1, rec.Code, want)
		}
	}
}

func TestRequestID(t *testing.T) {
	var seen string
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = ctxkeys.RequestID(r.Context())
	}), RequestID, RequestLogging, Recover)

	req := httptest.NewRequest(http.MethodGet, "/api/nodes", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if seen != "abc-123" || rec.Header().Get(RequestIDHeader) != "abc-123" {
		t.Errorf("request id = %q / header %q, want abc-123", seen, rec.Header().Get(RequestIDHeader))
	}
}

func TestRecover(t *testing.T) {
	h := Recover(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestCSRFProtection(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := CSRFProtection(false)(ok)

	// A safe request hands out the token and its cookie.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/nodes", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("GET status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	token := rec.Header().Get(CSRFHeader)
	cookies := rec.Result().Cookies()
	if token == "" || len(cookies) != 1 || cookies[0].Value != token {
		t.Fatalf("token %q, cookies %v", token, cookies)
	}

	tests := []struct {
		name   string
		header string
		bearer bool
		want   int
	}{
		{name: "matching header", header: token, want: http.StatusNoContent},
		{name: "missing header", want: http.StatusForbidden},
		{name: "wrong header", header: "nope", want: http.StatusForbidden},
		{name: "bearer exempt", bearer: true, want: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/nodes/delete", nil)
			if !tt.bearer {
				req.AddCookie(cookies[0])
			} else {
				req.Header.Set("Authorization", "Bearer abc")
			}
			if tt.header != "" {
				req.Header.Set(CSRFHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(http.HandlerFunc(echoUser)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"X-Content-Type-Options", "X-Frame-Options", "Content-Security-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing %s", h)
		}
	}
}
