package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if !rl.Allow("10.0.0.1") || !rl.Allow("10.0.0.1") {
		t.Fatal("burst of 2 should be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Error("third request within the same instant should be refused")
	}
	if !rl.Allow("10.0.0.2") {
		t.Error("a different IP has its own bucket")
	}

	now = now.Add(time.Second)
	if !rl.Allow("10.0.0.1") {
		t.Error("one token should have refilled after a second")
	}
}

func TestRateLimiter_Sweep(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(10 * time.Minute)
	rl.Allow("10.0.0.2")

	if n := rl.Sweep(visitorIdle); n != 1 {
		t.Errorf("swept = %d, want 1", n)
	}
	if _, ok := rl.visitors["10.0.0.2"]; !ok {
		t.Error("recent visitor should survive the sweep")
	}
}

func TestRateLimit_Middleware(t *testing.T) {
	handler := RateLimit(NewRateLimiter(0.001, 1))(okHandler)

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5000"
	handler.ServeHTTP(first, req)
	if first.Code != http.StatusOK {
		t.Fatalf("first status = %d, want 200", first.Code)
	}

	// Same IP from another port shares the bucket.
	second := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:5001"
	handler.ServeHTTP(second, req)
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("second status = %d, want 429", second.Code)
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(okHandler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	for _, h := range []string{"Content-Security-Policy", "X-Frame-Options", "X-Content-Type-Options", "Referrer-Policy"} {
		if rec.Header().Get(h) == "" {
			t.Errorf("missing header %s", h)
		}
	}
}

func TestCSRF(t *testing.T) {
	key := []byte(strings.Repeat("k", 32))
	handler := CSRF(key, false, nil)(okHandler)

	tests := []struct {
		name        string
		method      string
		contentType string
		want        int
	}{
		{"safe method passes", http.MethodGet, "", http.StatusOK},
		{"json body is exempt", http.MethodPost, "application/json", http.StatusOK},
		{"json with charset is exempt", http.MethodPost, "application/json; charset=utf-8", http.StatusOK},
		{"form without token is refused", http.MethodPost, "application/x-www-form-urlencoded", http.StatusForbidden},
		{"bodyless post without token is refused", http.MethodPost, "", http.StatusForbidden},
		{"delete without content type passes", http.MethodDelete, "", http.StatusOK},
		{"put without content type passes", http.MethodPut, "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/trainers", strings.NewReader("{}"))
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestCSRF_RejectionIsJSON(t *testing.T) {
	handler := CSRF([]byte(strings.Repeat("k", 32)), false, nil)(okHandler)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/outbox/x/retry", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body["error"] == "" {
		t.Errorf("body = %v, %v", body, err)
	}
}

func TestCSRF_TokenRoundTrip(t *testing.T) {
	handler := CSRF([]byte(strings.Repeat("k", 32)), false, nil)(okHandler)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/outbox", nil))
	token := rec.Header().Get(CSRFHeader)
	if token == "" {
		t.Fatal("GET response carries no token")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/outbox/x/retry", nil)
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	req.Header.Set(CSRFHeader, token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("POST with token = %d, want 200; body %s", rec.Code, rec.Body.String())
	}
}

func TestChain_Order(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	Chain(okHandler, mark("inner"), mark("outer")).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "outer" || order[1] != "inner" {
		t.Errorf("order = %v, want [outer inner]", order)
	}
}
