package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]any
	if err := json.Unmarshal(lines[len(lines)-1], &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%s)", err, buf.String())
	}
	return entry
}

func TestContextFieldsTravelWithTheRequest(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "orders-api", Output: buf})

	ctx := log.WithRequestID(context.Background(), "req-123")
	ctx = log.WithOrderID(ctx, "ord-456")
	log.Error(ctx, "charge failed", errors.New("card declined"))

	entry := lastLogLine(t, buf)
	if entry["request_id"] != "req-123" {
		t.Fatalf("request_id missing: %v", entry)
	}
	if entry["order_id"] != "ord-456" {
		t.Fatalf("order_id missing: %v", entry)
	}
	if entry["service"] != "orders-api" {
		t.Fatalf("service field missing: %v", entry)
	}
	if _, ok := entry["stack"]; !ok {
		t.Fatalf("error entries must carry a stack: %v", entry)
	}
}

func TestWarnStackToggle(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(Options{ServiceName: "test", Output: buf, WarnStack: true})
	log.Warn(context.Background(), "slow query")
	if _, ok := lastLogLine(t, buf)["stack"]; !ok {
		t.Fatal("WarnStack=true must attach a stack to warnings")
	}

	buf.Reset()
	log = New(Options{ServiceName: "test", Output: buf})
	log.Warn(context.Background(), "slow query")
	if _, ok := lastLogLine(t, buf)["stack"]; ok {
		t.Fatal("WarnStack=false must not attach a stack")
	}
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	if lvl := ParseLevel(""); lvl != zerolog.InfoLevel {
		t.Fatalf("empty level parsed as %v", lvl)
	}
	if lvl := ParseLevel("chatty"); lvl != zerolog.InfoLevel {
		t.Fatalf("unknown level parsed as %v", lvl)
	}
	if lvl := ParseLevel(" WARN "); lvl != zerolog.WarnLevel {
		t.Fatalf("warn parsed as %v", lvl)
	}
}
