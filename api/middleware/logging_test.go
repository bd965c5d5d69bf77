package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Max3uc3Planz/lcdt-back/pkg/logger"
)

func TestLoggingRecordsStatusAndDuration(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api-test", Output: &buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d", rec.Code)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected start and complete lines, got %d", len(lines))
	}
	var complete map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &complete); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if complete["status"] != float64(http.StatusCreated) {
		t.Fatalf("logged status %v", complete["status"])
	}
	if complete["path"] != "/api/v1/orders" {
		t.Fatalf("logged path %v", complete["path"])
	}
	if _, ok := complete["duration_ms"]; !ok {
		t.Fatal("duration_ms missing")
	}
}

func TestLoggingDefaultsImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	logg := logger.New(logger.Options{ServiceName: "api-test", Output: &buf})

	handler := Logging(logg)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var complete map[string]any
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &complete); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if complete["status"] != float64(http.StatusOK) {
		t.Fatalf("logged status %v, want 200", complete["status"])
	}
}
