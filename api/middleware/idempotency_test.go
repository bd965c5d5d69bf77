package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/Max3uc3Planz/lcdt-back/pkg/errors"
)

type replayStore struct {
	data map[string]string
}

func newReplayStore() *replayStore {
	return &replayStore{data: map[string]string{}}
}

func (s *replayStore) Get(_ context.Context, key string) (string, error) {
	if v, ok := s.data[key]; ok {
		return v, nil
	}
	return "", redis.Nil
}

func (s *replayStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	str, _ := value.(string)
	s.data[key] = str
	return true, nil
}

func (s *replayStore) IdempotencyKey(scope, id string) string {
	return "lcdt:idempotency:" + scope + ":" + id
}

func (s *replayStore) Del(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(s.data, k)
	}
	return nil
}

func routedRequest(method, url, pattern string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, url, body)
	rc := chi.NewRouteContext()
	rc.RoutePatterns = []string{pattern}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
}

func registerRequest(body string) *http.Request {
	return routedRequest(http.MethodPost, "/api/v1/auth/register", "/api/v1/auth/register", strings.NewReader(body))
}

func TestReplayCoverage(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		pattern string
		ttl     time.Duration
		covered bool
	}{
		{"checkout keeps the record a week", http.MethodPost, "/api/v1/orders", checkoutReplayTTL, true},
		{"register", http.MethodPost, "/api/v1/auth/register", standardReplayTTL, true},
		{"address create", http.MethodPost, "/api/v1/users/{userId}/addresses", standardReplayTTL, true},
		{"telephone create", http.MethodPost, "/api/v1/users/{userId}/telephones", standardReplayTTL, true},
		{"login stays uncovered", http.MethodPost, "/api/v1/auth/login", 0, false},
		{"order read stays uncovered", http.MethodGet, "/api/v1/orders", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := routedRequest(tc.method, "/ignored", tc.pattern, nil)
			ttl, covered := replayTTL(req)
			if covered != tc.covered {
				t.Fatalf("covered %v, want %v", covered, tc.covered)
			}
			if covered && ttl != tc.ttl {
				t.Fatalf("ttl %v, want %v", ttl, tc.ttl)
			}
		})
	}
}

func TestCoveredRouteRequiresIdempotencyKey(t *testing.T) {
	mw := Idempotency(newReplayStore(), nil)
	called := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, registerRequest(`{"email":"camille@lcdt.fr"}`))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	if called {
		t.Fatal("handler must not run without the header")
	}
}

func TestRepeatedKeyReplaysStoredResponse(t *testing.T) {
	mw := Idempotency(newReplayStore(), nil)
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"usr-1"}}`))
	})

	first := registerRequest(`{"email":"camille@lcdt.fr"}`)
	first.Header.Set("Idempotency-Key", "reg-2024-01")
	mw(handler).ServeHTTP(httptest.NewRecorder(), first)

	replay := registerRequest(`{"email":"camille@lcdt.fr"}`)
	replay.Header.Set("Idempotency-Key", "reg-2024-01")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, replay)

	if rec.Code != http.StatusCreated {
		t.Fatalf("replay status %d, want 201", rec.Code)
	}
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Fatal("content type lost on replay")
	}
	if strings.TrimSpace(rec.Body.String()) != `{"data":{"id":"usr-1"}}` {
		t.Fatalf("replay body %s", rec.Body.String())
	}
	if calls != 1 {
		t.Fatalf("handler ran %d times, want 1", calls)
	}
}

func TestReusedKeyWithDifferentBodyConflicts(t *testing.T) {
	mw := Idempotency(newReplayStore(), nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	first := registerRequest(`{"email":"camille@lcdt.fr"}`)
	first.Header.Set("Idempotency-Key", "reg-2024-02")
	mw(handler).ServeHTTP(httptest.NewRecorder(), first)

	changed := registerRequest(`{"email":"jules@lcdt.fr"}`)
	changed.Header.Set("Idempotency-Key", "reg-2024-02")
	rec := httptest.NewRecorder()
	mw(handler).ServeHTTP(rec, changed)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status %d, want 409", rec.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("code %s", payload.Error.Code)
	}
}
