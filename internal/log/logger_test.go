package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufferLogger(level slog.Level) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Component: ComponentLedger, Output: &buf}), &buf
}

func TestLoggerAddsComponent(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.Info("Transaction recorded", FieldCount, 3)

	out := buf.String()
	assert.Contains(t, out, "component=ledger")
	assert.Contains(t, out, "count=3")
}

func TestWithComponentReplacesName(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.WithComponent(ComponentHTTP).Warn("slow")

	assert.Contains(t, buf.String(), "component=http")
	assert.NotContains(t, buf.String(), "component=ledger")
}

func TestLevelFiltersDebug(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	logger.Debug("hidden")
	assert.Empty(t, buf.String())
}

func TestFieldsBuilder(t *testing.T) {
	f := NewFields().
		WithComponent(ComponentStorage).
		WithOperation(OpAppend).
		WithError(errors.New("disk full")).
		WithTransaction("expense", "Food", "-50", "2025-01-02").
		WithRange("2025-01-01", "")

	assert.Equal(t, "storage", f[FieldComponent])
	assert.Equal(t, "disk full", f[FieldError])
	assert.Equal(t, "Food", f[FieldCategory])
	assert.Equal(t, "2025-01-01", f[FieldFrom])
	_, hasTo := f[FieldTo]
	assert.False(t, hasTo)
	assert.Len(t, f.ToSlice(), len(f)*2)
}

func TestMiddlewareStoresLogger(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	handler := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req-1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			FromContext(r.Context()).Info("inside")
		})))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, buf.String(), "request_id=req-1")
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	logger := FromContext(context.Background())
	require.NotNil(t, logger)
	assert.Equal(t, "unknown", logger.Component())
}

func TestLogHTTPEndLevels(t *testing.T) {
	logger, buf := newBufferLogger(slog.LevelInfo)
	sl := NewStructuredLogger(logger)
	r := httptest.NewRequest(http.MethodPost, "/api/transactions", nil)

	sl.LogHTTPEnd(context.Background(), r, "req-2", http.StatusUnprocessableEntity, 3, "10.0.0.1")
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "status_code=422")
	assert.Contains(t, buf.String(), "success=false")
}
