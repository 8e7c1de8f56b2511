package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stocktakehq/stocktake-web/pkg/config"
)

type fakeLimiter struct {
	counts map[string]int64
}

func (f *fakeLimiter) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[key]++
	return f.counts[key], nil
}

func loginRequest(ip, email string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"`+email+`","password":"pw"}`))
	r.RemoteAddr = ip + ":51234"
	return r
}

func TestLoginRateLimitPerEmail(t *testing.T) {
	cfg := config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginEmailLimit: 2, LoginIPLimit: 100}
	limiter := &fakeLimiter{}
	passed := 0
	handler := LoginRateLimit(cfg, limiter, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed++
	}))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, loginRequest("10.0.0.1", "ana@example.com"))
		if w.Code != http.StatusOK {
			t.Fatalf("attempt %d should pass, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest("10.0.0.1", "ana@example.com"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("third attempt should be limited, got %d", w.Code)
	}
	if passed != 2 {
		t.Fatalf("handler reached %d times", passed)
	}

	// A different address is its own window.
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest("10.0.0.1", "bob@example.com"))
	if w.Code != http.StatusOK {
		t.Fatalf("other email should pass, got %d", w.Code)
	}
}

func TestLoginRateLimitPerIP(t *testing.T) {
	cfg := config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginIPLimit: 1}
	handler := LoginRateLimit(cfg, &fakeLimiter{}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest("10.0.0.9", "ana@example.com"))
	if w.Code != http.StatusOK {
		t.Fatalf("first attempt should pass, got %d", w.Code)
	}
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, loginRequest("10.0.0.9", "other@example.com"))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt from the ip should be limited, got %d", w.Code)
	}
}

func TestLoginRateLimitDisabledWithoutStore(t *testing.T) {
	cfg := config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginIPLimit: 1}
	passed := 0
	handler := LoginRateLimit(cfg, nil, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		passed++
	}))
	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), loginRequest("10.0.0.1", "ana@example.com"))
	}
	if passed != 3 {
		t.Fatalf("no store means no limiting, passed=%d", passed)
	}
}

func TestClientIPPrefersForwardedFor(t *testing.T) {
	r := loginRequest("10.0.0.1", "ana@example.com")
	r.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	if got := clientIP(r); got != "203.0.113.5" {
		t.Fatalf("unexpected client ip %q", got)
	}
}
