package httpapi

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"":      LevelOff,
		"off":   LevelOff,
		"error": LevelError,
		"info":  LevelInfo,
		"debug": LevelDebug,
		"weird": LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestRequestLogLevel_Overrides(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/x?log=debug", nil)
	if got := requestLogLevel(r); got != LevelDebug {
		t.Fatalf("query override failed: %v", got)
	}
	r = httptest.NewRequest(http.MethodGet, "/x", nil)
	r.Header.Set("X-Log-Level", "error")
	if got := requestLogLevel(r); got != LevelError {
		t.Fatalf("header override failed: %v", got)
	}
	SetRequestLogLevel("info")
	defer SetRequestLogLevel("off")
	if got := requestLogLevel(httptest.NewRequest(http.MethodGet, "/x", nil)); got != LevelInfo {
		t.Fatalf("default level not applied: %v", got)
	}
}

func TestLogAction(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer func() { zlog = nil }()

	r := httptest.NewRequest(http.MethodPost, "/session/settle", nil)
	logAction(r, LevelOff, http.StatusOK, time.Now(), nil)
	logAction(r, LevelError, http.StatusOK, time.Now(), nil)
	if buf.Len() != 0 {
		t.Fatalf("unexpected log output: %s", buf.String())
	}
	logAction(r, LevelError, http.StatusNotFound, time.Now(), errors.New("index 9 out of range"))
	out := buf.String()
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"status":404`) || !strings.Contains(out, "/session/settle") {
		t.Fatalf("unexpected log line: %s", out)
	}
	buf.Reset()
	logAction(r, LevelInfo, http.StatusOK, time.Now(), nil)
	if !strings.Contains(buf.String(), `"level":"info"`) {
		t.Fatalf("info action not logged: %s", buf.String())
	}
}

func TestLoggerFallback(t *testing.T) {
	zlog = nil
	if logger() == nil {
		t.Fatalf("logger fallback is nil")
	}
}
