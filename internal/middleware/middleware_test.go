package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
)

func TestResponseWriterCapturesStatusAndBytes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := newResponseWriter(rec)

	rw.WriteHeader(http.StatusNotFound)
	rw.WriteHeader(http.StatusOK)
	rw.Write([]byte("hello"))

	if rw.statusCode != http.StatusNotFound {
		t.Errorf("statusCode = %d, want 404", rw.statusCode)
	}
	if rw.bytesWritten != 5 {
		t.Errorf("bytesWritten = %d, want 5", rw.bytesWritten)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("recorded code = %d, want 404", rec.Code)
	}
}

func TestLoggingConfigSkip(t *testing.T) {
	tests := []struct {
		name   string
		config LoggingConfig
		path   string
		want   bool
	}{
		{"api logged", DefaultLoggingConfig(), "/api/images", false},
		{"blob skipped by default", DefaultLoggingConfig(), "/blob/abc", true},
		{"blob logged when static enabled", LoggingConfig{LogStaticFiles: true, LogHealthChecks: true}, "/blob/abc", false},
		{"health logged by default", DefaultLoggingConfig(), "/healthz", false},
		{"health skipped", LoggingConfig{}, "/readyz", true},
		{"explicit prefix", LoggingConfig{SkipPaths: []string{"/api/preview"}, LogHealthChecks: true}, "/api/preview/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.config.skip(tt.path); got != tt.want {
				t.Errorf("skip(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestW3CLine(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/images?path=album", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	req.Header.Set("User-Agent", "Test Agent\n\"x\"")

	rw := newResponseWriter(httptest.NewRecorder())
	rw.WriteHeader(http.StatusTeapot)
	rw.Write([]byte("abc"))

	now := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	line := w3cLine(now, req, rw, 1500*time.Millisecond)

	want := `2024-05-06 07:08:09 127.0.0.1 GET /api/images path=album 418 3 1500 - "Test Agent ""x""" -`
	if line != want {
		t.Errorf("w3cLine() =\n%s\nwant\n%s", line, want)
	}
	if strings.Contains(line, "\n") {
		t.Error("line contains a newline")
	}
}

func TestSanitizeLogField(t *testing.T) {
	tests := map[string]string{
		"plain":          "plain",
		"a\nb\rc":        "a b c",
		"nul\x00byte":    "nulbyte",
		"\x1b[31mred":    "[31mred",
		"tab\tkept":      "tab\tkept",
		"del\x7fremoved": "delremoved",
	}
	for in, want := range tests {
		if got := sanitizeLogField(in); got != want {
			t.Errorf("sanitizeLogField(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	if got := clientIP(req); got != "10.0.0.1" {
		t.Errorf("clientIP() = %q, want 10.0.0.1", got)
	}

	req.Header.Set("X-Real-IP", "10.0.0.2")
	if got := clientIP(req); got != "10.0.0.2" {
		t.Errorf("clientIP() = %q, want 10.0.0.2", got)
	}

	req.Header.Set("X-Forwarded-For", " 10.0.0.3 , 10.0.0.4")
	if got := clientIP(req); got != "10.0.0.3" {
		t.Errorf("clientIP() = %q, want 10.0.0.3", got)
	}
}

func TestLoggerPassesThrough(t *testing.T) {
	handler := Logger(DefaultLoggingConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("ok"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/rescan", nil))
	if rec.Code != http.StatusCreated || rec.Body.String() != "ok" {
		t.Errorf("response = %d %q", rec.Code, rec.Body.String())
	}
}

func TestRouteLabel(t *testing.T) {
	var got string
	r := mux.NewRouter()
	r.HandleFunc("/api/preview/{id}", func(w http.ResponseWriter, req *http.Request) {
		got = routeLabel(req)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/preview/a.jpg:1", nil))

	if got != "/api/preview/{id}" {
		t.Errorf("routeLabel() = %q, want /api/preview/{id}", got)
	}

	if label := routeLabel(httptest.NewRequest(http.MethodGet, "/nope", nil)); label != "unmatched" {
		t.Errorf("routeLabel(unrouted) = %q, want unmatched", label)
	}
}

func TestMetricsMiddlewareRecordsStatus(t *testing.T) {
	r := mux.NewRouter()
	r.Use(Metrics(DefaultMetricsConfig()))
	r.HandleFunc("/api/missing", func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %d, want 404", rec.Code)
	}
}

func gzipHandler(contentType string, body []byte) http.Handler {
	return Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentType)
		w.Write(body)
	}))
}

func TestCompressionLargeJSON(t *testing.T) {
	body := bytes.Repeat([]byte(`{"id":"a.jpg:1"},`), 200)
	req := httptest.NewRequest(http.MethodGet, "/api/images", nil)
	req.Header.Set("Accept-Encoding", "gzip, deflate")
	rec := httptest.NewRecorder()

	gzipHandler("application/json; charset=utf-8", body).ServeHTTP(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", rec.Header().Get("Content-Encoding"))
	}
	zr, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip.NewReader() error = %v", err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read gzip body: %v", err)
	}
	if !bytes.Equal(got, body) {
		t.Error("decompressed body differs")
	}
}

func TestCompressionSkips(t *testing.T) {
	large := bytes.Repeat([]byte("x"), 4096)

	tests := []struct {
		name        string
		contentType string
		body        []byte
		accept      string
	}{
		{"small body", "application/json", []byte(`{}`), "gzip"},
		{"image", "image/jpeg", large, "gzip"},
		{"client without gzip", "application/json", large, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.accept != "" {
				req.Header.Set("Accept-Encoding", tt.accept)
			}
			rec := httptest.NewRecorder()
			gzipHandler(tt.contentType, tt.body).ServeHTTP(rec, req)

			if enc := rec.Header().Get("Content-Encoding"); enc != "" {
				t.Errorf("Content-Encoding = %q, want none", enc)
			}
			if !bytes.Equal(rec.Body.Bytes(), tt.body) {
				t.Error("body altered")
			}
		})
	}
}

func TestCompressionPreservesStatus(t *testing.T) {
	handler := Compression(DefaultCompressionConfig())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
	}))
	req := httptest.NewRequest(http.MethodPost, "/api/rescan", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("code = %d, want 202", rec.Code)
	}
}
