package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

type countingRateStore struct {
	mu     sync.Mutex
	counts map[string]int64
}

func newCountingRateStore() *countingRateStore {
	return &countingRateStore{counts: map[string]int64{}}
}

func (s *countingRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counts[key]++
	return s.counts[key], nil
}

func loginRequest(email, addr string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login",
		strings.NewReader(`{"email":"`+email+`","password":"tarte-tatin-42"}`))
	req.RemoteAddr = addr
	return req
}

func TestRateLimitPassesBodyThroughUnderLimit(t *testing.T) {
	store := newCountingRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if !strings.Contains(string(body), `"email":"camille@lcdt.fr"`) {
			t.Fatalf("handler saw body %s", body)
		}
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("camille@lcdt.fr", "203.0.113.7:40122"))

	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestRateLimitBlocksRepeatedEmail(t *testing.T) {
	store := newCountingRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for attempt := 1; attempt <= 3; attempt++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, loginRequest("Camille@LCDT.fr", "203.0.113.7:40122"))

		if attempt <= 2 {
			if rec.Code != http.StatusOK {
				t.Fatalf("attempt %d: status %d", attempt, rec.Code)
			}
			continue
		}
		if rec.Code != http.StatusTooManyRequests {
			t.Fatalf("attempt %d: status %d, want 429", attempt, rec.Code)
		}
		var payload struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if payload.Error.Code != string(pkgerrors.CodeRateLimit) {
			t.Fatalf("code %s", payload.Error.Code)
		}
	}
}

func TestRateLimitEmailIsCaseInsensitive(t *testing.T) {
	store := newCountingRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 1)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, loginRequest("camille@lcdt.fr", "203.0.113.7:40122"))
	second := httptest.NewRecorder()
	handler.ServeHTTP(second, loginRequest("CAMILLE@lcdt.fr", "198.51.100.9:8080"))

	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("different casing must share the counter, got %d", second.Code)
	}
}

func TestRateLimitBlocksRepeatedIP(t *testing.T) {
	store := newCountingRateStore()
	policy := NewAuthRateLimitPolicy("register", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, loginRequest("a@lcdt.fr", "198.51.100.9:8080"))
	if first.Code != http.StatusOK {
		t.Fatalf("first attempt: status %d", first.Code)
	}

	second := httptest.NewRecorder()
	handler.ServeHTTP(second, loginRequest("b@lcdt.fr", "198.51.100.9:9090"))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second attempt from same IP: status %d, want 429", second.Code)
	}
}

func TestRateLimitKeysCarryNamespace(t *testing.T) {
	store := newCountingRateStore()
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, loginRequest("a@lcdt.fr", "192.0.2.4:1000"))

	if _, ok := store.counts["lcdt:rl:ip:login:192.0.2.4"]; !ok {
		t.Fatalf("counter keys: %v", store.counts)
	}
}
