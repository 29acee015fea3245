package moltin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTokenServer(t *testing.T, refreshes *atomic.Int32, tokenFor func(n int32) string, ttl time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/access_token" {
			t.Errorf("unexpected path %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "client_credentials" {
			t.Errorf("grant_type = %q", got)
		}
		n := refreshes.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": tokenFor(n),
			"expires":      time.Now().Add(ttl).Unix(),
		})
	}))
}

func TestTokenSingleRefreshWithinValidity(t *testing.T) {
	var refreshes atomic.Int32
	srv := newTokenServer(t, &refreshes, func(int32) string { return "tok-1" }, time.Hour)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "secret", DefaultRefreshMargin, srv.Client())

	for i := 0; i < 10; i++ {
		token, err := ts.Token(context.Background())
		if err != nil {
			t.Fatalf("token call %d: %v", i, err)
		}
		if token != "tok-1" {
			t.Fatalf("token call %d = %q", i, token)
		}
	}
	if got := refreshes.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh, got %d", got)
	}
}

func TestTokenRefreshesNearExpiry(t *testing.T) {
	var refreshes atomic.Int32
	srv := newTokenServer(t, &refreshes, func(n int32) string {
		if n == 1 {
			return "tok-old"
		}
		return "tok-new"
	}, time.Hour)
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "secret", DefaultRefreshMargin, srv.Client())

	now := time.Now()
	ts.now = func() time.Time { return now }

	first, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("first token: %v", err)
	}
	if first != "tok-old" {
		t.Fatalf("first token = %q", first)
	}

	// Advance the clock into the refresh margin.
	ts.now = func() time.Time { return now.Add(time.Hour - 50*time.Second) }

	second, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("second token: %v", err)
	}
	if second != "tok-new" {
		t.Fatalf("expected refreshed token, got %q", second)
	}
	if got := refreshes.Load(); got != 2 {
		t.Fatalf("expected two refreshes, got %d", got)
	}

	// The near-expiry token must never come back.
	third, err := ts.Token(context.Background())
	if err != nil {
		t.Fatalf("third token: %v", err)
	}
	if third == "tok-old" {
		t.Fatal("stale token returned after refresh")
	}
}

func TestTokenRefreshFailurePropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"title":"Unable to validate access token"}]}`))
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "bad-secret", DefaultRefreshMargin, srv.Client())

	_, err := ts.Token(context.Background())
	if err == nil {
		t.Fatal("expected refresh failure")
	}
	if !IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
}

func TestTokenExpiresInFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "tok-ttl",
			"expires_in":   3600,
		})
	}))
	defer srv.Close()

	ts := NewTokenSource(srv.URL, "id", "secret", DefaultRefreshMargin, srv.Client())

	now := time.Now()
	ts.now = func() time.Time { return now }

	if _, err := ts.Token(context.Background()); err != nil {
		t.Fatalf("token: %v", err)
	}
	want := now.Add(time.Hour)
	if !ts.expiresAt.Equal(want) {
		t.Fatalf("expiresAt = %v, want %v", ts.expiresAt, want)
	}
}
