package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestNewWithWriter_text_format(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "text")
	log.Debug("hidden")
	log.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")
}

func TestRequestLogger_logs_route(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "info", "json")

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(RequestLogger(log))
	r.Get("/renderers/{category}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/renderers/audio", nil))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "request", entry["msg"])
	assert.Equal(t, "/renderers/audio", entry["path"])
	assert.Equal(t, "/renderers/{category}", entry["route"])
	assert.NotEmpty(t, entry["request_id"])
	assert.Equal(t, float64(200), entry["status"])
	assert.Equal(t, float64(2), entry["size"])
}
