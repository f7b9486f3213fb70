package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/userdash/internal/config"
	"github.com/JonMunkholm/userdash/internal/logging"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name       string
		trusted    []string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "untrusted proxy headers ignored",
			remoteAddr: "203.0.113.5:4000",
			headers:    map[string]string{"X-Real-IP": "10.1.1.1"},
			want:       "203.0.113.5",
		},
		{
			name:       "trusted X-Real-IP",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "198.51.100.7",
		},
		{
			name:       "trusted first forwarded hop",
			trusted:    []string{"127.0.0.1"},
			remoteAddr: "127.0.0.1:4000",
			headers:    map[string]string{"X-Forwarded-For": "198.51.100.8, 10.0.0.3"},
			want:       "198.51.100.8",
		},
		{
			name:       "invalid header value ignored",
			trusted:    []string{"10.0.0.0/8"},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Real-IP": "not-an-ip"},
			want:       "10.0.0.2",
		},
		{
			name:       "invalid CIDR skipped",
			trusted:    []string{"garbage", " "},
			remoteAddr: "10.0.0.2:4000",
			headers:    map[string]string{"X-Real-IP": "198.51.100.7"},
			want:       "10.0.0.2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got, gotRemote string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
				gotRemote = r.RemoteAddr
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)

			if got != tt.want {
				t.Errorf("ClientIP() = %q, want %q", got, tt.want)
			}
			if gotRemote != tt.want {
				t.Errorf("RemoteAddr = %q, want %q", gotRemote, tt.want)
			}
		})
	}
}

func TestClientIP_WithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.1:1234"
	if got := ClientIP(req); got != "192.0.2.1" {
		t.Errorf("ClientIP() = %q, want %q", got, "192.0.2.1")
	}
}

func TestAPIKeyAuth(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name string
		cfg  config.SecurityConfig
		key  string
		want int
	}{
		{"disabled", config.SecurityConfig{}, "", http.StatusNoContent},
		{"missing key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "", http.StatusUnauthorized},
		{"wrong key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1"}}, "nope", http.StatusForbidden},
		{"valid second key", config.SecurityConfig{RequireAPIKey: true, APIKeys: []string{"k1", "k2"}}, "k2", http.StatusNoContent},
		{"no keys configured", config.SecurityConfig{RequireAPIKey: true}, "k1", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()

			APIKeyAuth(&cfg)(ok).ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := chimw.RequestID(Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("missing"))
	})))

	req := httptest.NewRequest(http.MethodGet, "/users/u9", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v (%q)", err, buf.String())
	}

	checks := map[string]any{
		"msg":    "request",
		"level":  "WARN",
		"method": "GET",
		"path":   "/users/u9",
		"status": float64(404),
		"bytes":  float64(7),
	}
	for k, want := range checks {
		if entry[k] != want {
			t.Errorf("%s = %v, want %v", k, entry[k], want)
		}
	}
	if entry["request_id"] == nil {
		t.Error("request_id should be logged")
	}
}
