package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestLoggingMiddleware_GeneratesRequestID проверяет генерацию request ID
func TestLoggingMiddleware_GeneratesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	var seen string
	handler := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/users", nil))

	if seen == "" {
		t.Fatal("Expected request ID in context")
	}
	if w.Header().Get(RequestIDHeader) != seen {
		t.Errorf("Expected response header %q, got %q", seen, w.Header().Get(RequestIDHeader))
	}

	entries := logs.FilterMessage("HTTP request completed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 completion log, got %d", len(entries))
	}
	if status := entries[0].ContextMap()["status"]; status != int64(http.StatusTeapot) {
		t.Errorf("Expected logged status %d, got %v", http.StatusTeapot, status)
	}
}

// TestLoggingMiddleware_PropagatesRequestID проверяет использование входящего X-Request-ID
func TestLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	handler := LoggingMiddleware(zap.New(core))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Header().Get(RequestIDHeader) != "req-123" {
		t.Errorf("Expected request ID 'req-123', got %q", w.Header().Get(RequestIDHeader))
	}

	entries := logs.FilterMessage("HTTP request failed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected 1 failure log, got %d", len(entries))
	}
	if id := entries[0].ContextMap()["request_id"]; id != "req-123" {
		t.Errorf("Expected logged request_id 'req-123', got %v", id)
	}
}

// TestWithRequestID проверяет добавление request ID в логгер
func TestWithRequestID(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithRequestID(context.Background(), base).Info("no id")
	ctx := context.WithValue(context.Background(), RequestIDKey, "abc")
	WithRequestID(ctx, base).Info("with id")

	all := logs.All()
	if len(all) != 2 {
		t.Fatalf("Expected 2 log entries, got %d", len(all))
	}
	if _, ok := all[0].ContextMap()["request_id"]; ok {
		t.Error("Expected no request_id field without context value")
	}
	if all[1].ContextMap()["request_id"] != "abc" {
		t.Errorf("Expected request_id 'abc', got %v", all[1].ContextMap()["request_id"])
	}
}
