package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	ctxlog "github.com/ErlanBelekov/companydesk/internal/log"
	"github.com/ErlanBelekov/companydesk/internal/requestid"
)

func TestContextHandler_AddsRequestScopedAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ctxlog.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	ctx := requestid.WithRequestID(context.Background(), "req-1")
	ctx = requestid.WithUser(ctx, "a@x.com")
	logger.With("component", "test").InfoContext(ctx, "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["request_id"] != "req-1" {
		t.Errorf("request_id = %v, want req-1", rec["request_id"])
	}
	if rec["user"] != "a@x.com" {
		t.Errorf("user = %v, want a@x.com", rec["user"])
	}
	if rec["component"] != "test" {
		t.Errorf("component = %v, want test", rec["component"])
	}
}

func TestContextHandler_NoValues_NoAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(ctxlog.NewContextHandler(slog.NewJSONHandler(&buf, nil)))

	logger.InfoContext(context.Background(), "hello")

	var rec map[string]any
	if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if _, ok := rec["request_id"]; ok {
		t.Error("unexpected request_id attr")
	}
	if _, ok := rec["user"]; ok {
		t.Error("unexpected user attr")
	}
}
