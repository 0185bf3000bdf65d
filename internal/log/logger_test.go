package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"INFO":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewHandlerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentLedger, Handler: NewHandler(&buf, FormatJSON, slog.LevelInfo)})

	logger.InfoContext(context.Background(), "hello", FieldKind, "expense")
	logger.Debug("dropped")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if entry[FieldComponent] != ComponentLedger || entry[FieldKind] != "expense" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestNewHandlerFormats(t *testing.T) {
	for _, format := range []string{FormatText, FormatTint, "unknown"} {
		var buf bytes.Buffer
		logger := slog.New(NewHandler(&buf, format, slog.LevelDebug))
		logger.Debug("visible")
		if !strings.Contains(buf.String(), "visible") {
			t.Fatalf("%s: expected output, got %q", format, buf.String())
		}
	}
}

func TestFromContextFallback(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil || logger.Component() != "unknown" {
		t.Fatalf("expected fallback logger, got %+v", logger)
	}
}

func TestMiddlewareAttachesLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentApp, Handler: NewHandler(&buf, FormatJSON, slog.LevelDebug)})

	var got *Logger
	handler := Middleware(logger)(ComponentMiddleware(ComponentHTTP)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = FromContext(r.Context())
	})))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if got == nil || got.Component() != ComponentHTTP {
		t.Fatalf("expected http component logger, got %+v", got)
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentHTTP, Handler: NewHandler(&buf, FormatJSON, slog.LevelDebug)})
	ctx := WithLogger(context.Background(), logger.With(FieldRequestID, "req-1"))
	sl := NewStructuredLogger(FromContext(ctx))

	sl.LogTransactionCreated(ctx, "expense", 7, 3, 1250, "Food", "2025-06-15", 12)
	sl.LogError(ctx, "boom", errors.New("disk full"), ComponentStorage, OpCreate, NewFields())
	sl.LogHTTPEnd(ctx, httptest.NewRequest(http.MethodPost, "/expenses", nil), "POST /expenses", http.StatusTooManyRequests, 3, "192.0.2.1")

	var entries []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("invalid json %q: %v", line, err)
		}
		entries = append(entries, entry)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}

	created := entries[0]
	if created[FieldComponent] != ComponentLedger || created[FieldRequestID] != "req-1" ||
		created[FieldLabel] != "Food" || created[FieldAggregate] != float64(12) {
		t.Errorf("unexpected created entry %v", created)
	}

	failed := entries[1]
	if failed["level"] != "ERROR" || failed[FieldComponent] != ComponentStorage || failed[FieldError] != "disk full" {
		t.Errorf("unexpected error entry %v", failed)
	}

	completed := entries[2]
	if completed["level"] != "WARN" || completed[FieldRoute] != "POST /expenses" || completed[FieldStatusCode] != float64(429) {
		t.Errorf("unexpected completion entry %v", completed)
	}
}

func TestStructuredLogger_FieldOrderIsStable(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Config{Component: ComponentLedger, Handler: NewHandler(&buf, FormatJSON, slog.LevelDebug)})
	sl := NewStructuredLogger(logger)
	ctx := context.Background()

	for range 5 {
		sl.LogTransactionCreated(ctx, "expense", 7, 3, 1250, "Food", "2025-06-15", 12)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d", len(lines))
	}

	want := []string{FieldOperation, FieldKind, FieldTransactionID, FieldOwnerID, FieldAmountCents, FieldLabel, FieldTxnDate, FieldAggregate}
	for _, line := range lines {
		last := -1
		for _, key := range want {
			at := strings.Index(line, `"`+key+`":`)
			if at <= last {
				t.Fatalf("key %q out of order in %s", key, line)
			}
			last = at
		}
	}

	fields := NewFields().WithOperation(OpDelete).WithClientIP("192.0.2.1").WithComponent(ComponentHTTP)
	got := fields.ToSlice()
	keys := []any{got[0], got[2], got[4]}
	if keys[0] != FieldClientIP || keys[1] != FieldComponent || keys[2] != FieldOperation {
		t.Errorf("ToSlice keys = %v, want sorted", keys)
	}
}
