package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSecuritySetsHeaders(t *testing.T) {
	h := Security()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Hello Alice"))
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/Alice", nil))

	want := map[string]string{
		"Cache-Control":                "no-store",
		"Content-Security-Policy":      "frame-ancestors 'none'",
		"Cross-Origin-Opener-Policy":   "same-origin",
		"Cross-Origin-Resource-Policy": "cross-origin",
		"Referrer-Policy":              "strict-origin-when-cross-origin",
		"X-Content-Type-Options":       "nosniff",
		"X-Frame-Options":              "DENY",
	}
	for header, value := range want {
		if got := resp.Header().Get(header); got != value {
			t.Errorf("%s: expected %q, got %q", header, value, got)
		}
	}
	if resp.Header().Get("Permissions-Policy") == "" {
		t.Error("expected Permissions-Policy to be set")
	}
}

func TestSecurityLetsHandlerOverride(t *testing.T) {
	h := Security()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Cache-Control", "max-age=60")
		_, _ = w.Write([]byte("Hello Bob"))
	}))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/Bob", nil))

	if got := resp.Header().Get("Cache-Control"); got != "max-age=60" {
		t.Fatalf("expected handler Cache-Control to win, got %q", got)
	}
	if resp.Body.String() != "Hello Bob" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}

func TestSecuritySkipPaths(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/meta/docs", true},
		{"/meta/docs/", true},
		{"/meta/docs/assets/app.js", true},
		{"/meta/docsx", false},
		{"/meta/openapi.json", false},
		{"/docs", false},
	}

	h := Security("/meta/docs")(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp := httptest.NewRecorder()
			h.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if skipped := resp.Header().Get("X-Frame-Options") == ""; skipped != tt.skip {
				t.Fatalf("skipped=%v, want %v", skipped, tt.skip)
			}
		})
	}
}
