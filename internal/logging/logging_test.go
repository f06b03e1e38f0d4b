package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// captureLogOutput captures log output for testing by temporarily
// redirecting the logger to write to a buffer
func captureLogOutput(f func()) string {
	var buf bytes.Buffer

	oldLogger := defaultLogger
	handler := slog.NewJSONHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})
	defaultLogger = slog.New(handler)

	f()

	defaultLogger = oldLogger
	return buf.String()
}

func TestInitLogger(t *testing.T) {
	tests := []struct {
		name   string
		level  Level
		format Format
	}{
		{name: "Debug level JSON format", level: LevelDebug, format: FormatJSON},
		{name: "Info level JSON format", level: LevelInfo, format: FormatJSON},
		{name: "Warn level Text format", level: LevelWarn, format: FormatText},
		{name: "Error level Text format", level: LevelError, format: FormatText},
		{name: "Default level (invalid value)", level: Level(999), format: FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			InitLogger(tt.level, tt.format)
			if GetLogger() == nil {
				t.Error("Expected logger to be initialized, got nil")
			}
		})
	}
	InitLogger(LevelWarn, FormatText)
}

func TestInitLoggerWithWriterFiltersLevel(t *testing.T) {
	var buf bytes.Buffer
	InitLoggerWithWriter(LevelWarn, FormatJSON, &buf)
	defer InitLogger(LevelWarn, FormatText)

	Info("hidden message")
	Warn("visible message", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden message") {
		t.Errorf("info message should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "visible message") {
		t.Errorf("warn message missing: %s", out)
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(out)), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	ts, _ := entry["time"].(string)
	if _, err := time.Parse(time.RFC3339, ts); err != nil {
		t.Errorf("timestamp %q is not RFC3339: %v", ts, err)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warning", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "loud", want: LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("json"); err != nil || f != FormatJSON {
		t.Errorf("ParseFormat(json) = %v, %v", f, err)
	}
	if f, err := ParseFormat("Text"); err != nil || f != FormatText {
		t.Errorf("ParseFormat(Text) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestRequestIDContext(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	if got := GetRequestID(ctx); got != "req-1" {
		t.Errorf("GetRequestID() = %q, want req-1", got)
	}
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID(empty) = %q, want empty", got)
	}

	output := captureLogOutput(func() {
		InfoContext(ctx, "with id")
	})
	if !strings.Contains(output, `"request_id":"req-1"`) {
		t.Errorf("expected request_id in output: %s", output)
	}
}

func TestDomainHelpers(t *testing.T) {
	tests := []struct {
		name string
		call func()
		want []string
	}{
		{
			name: "TreeLoaded",
			call: func() { TreeLoaded("royal.ged", 10, 6, 3) },
			want: []string{"tree_loaded", `"individuals":6`, `"families":3`},
		},
		{
			name: "DanglingReference",
			call: func() { DanglingReference("@I1@", "FAMS", "@F9@") },
			want: []string{"dangling_reference", `"xref":"@F9@"`, `"level":"WARN"`},
		},
		{
			name: "QueryEvent",
			call: func() { QueryEvent(context.Background(), "path", "@I1@", "@I2@", true) },
			want: []string{"kinship_query", `"op":"path"`, `"found":true`},
		},
		{
			name: "WebSocketEvent",
			call: func() { WebSocketEvent("client_connected", 2) },
			want: []string{"websocket_event", `"client_count":2`},
		},
		{
			name: "ServerStartup",
			call: func() { ServerStartup("query_api", "http", 8080, "individuals", 4) },
			want: []string{"server_startup", `"port":8080`, `"individuals":4`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := captureLogOutput(tt.call)
			for _, w := range tt.want {
				if !strings.Contains(output, w) {
					t.Errorf("output missing %s: %s", w, output)
				}
			}
		})
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		existingHeader string
		check          func(t *testing.T, got string)
	}{
		{
			name: "Generate new request ID",
			check: func(t *testing.T, got string) {
				if len(got) != 36 {
					t.Errorf("Expected UUID request ID, got %q", got)
				}
			},
		},
		{
			name:           "Use existing request ID from header",
			existingHeader: "existing-req-id-123",
			check: func(t *testing.T, got string) {
				if got != "existing-req-id-123" {
					t.Errorf("Expected request ID 'existing-req-id-123', got %q", got)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if GetRequestID(r.Context()) == "" {
					t.Error("Expected request ID in context")
				}
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/health", nil)
			if tt.existingHeader != "" {
				req.Header.Set("X-Request-ID", tt.existingHeader)
			}
			w := httptest.NewRecorder()
			RequestIDMiddleware(handler).ServeHTTP(w, req)

			tt.check(t, w.Header().Get("X-Request-ID"))
		})
	}
}

func TestLoggingMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		statusCode int
		write      bool
	}{
		{name: "explicit status", path: "/individuals", statusCode: http.StatusNotFound},
		{name: "implicit 200 on write", path: "/health", statusCode: http.StatusOK, write: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.write {
					w.Write([]byte("ok"))
					return
				}
				w.WriteHeader(tt.statusCode)
			})

			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()

			output := captureLogOutput(func() {
				CombinedMiddleware(handler).ServeHTTP(w, req)
			})

			if !strings.Contains(output, tt.path) {
				t.Errorf("Expected output to contain path %s: %s", tt.path, output)
			}
			if !strings.Contains(output, `"status_code":`+itoa(tt.statusCode)) {
				t.Errorf("Expected status %d in output: %s", tt.statusCode, output)
			}
		})
	}
}

func TestResponseWriterHijackUnsupported(t *testing.T) {
	rw := &responseWriter{ResponseWriter: httptest.NewRecorder(), statusCode: http.StatusOK}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("Hijack() on a recorder should fail")
	}
	if rw.Unwrap() == nil {
		t.Error("Unwrap() returned nil")
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
