package middleware

import (
	"net/http"
	"strings"
)

// Vary lists Accept in Vary on every response; error bodies are negotiated
// between JSON and CBOR. CORS contributes Origin on its own.
func Vary() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			AddVary(w.Header(), "Accept")
			next.ServeHTTP(w, r)
		})
	}
}

// AddVary appends each value to Vary unless already listed. Entries are
// compared case-insensitively, including inside comma-separated values.
func AddVary(h http.Header, values ...string) {
	present := make(map[string]struct{})
	for _, v := range h.Values("Vary") {
		for part := range strings.SplitSeq(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				present[strings.ToLower(part)] = struct{}{}
			}
		}
	}
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := present[key]; ok {
			continue
		}
		present[key] = struct{}{}
		h.Add("Vary", v)
	}
}
