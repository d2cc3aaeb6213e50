// Package greeting serves the path greeting as an HTTP Cloud Function.
//
// The function URL is its mount point, so the request path must be exactly
// one segment, "/<name>"; anything deeper is 404 like in the main service.
package greeting

import (
	"net/http"
	"strings"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
)

const prefix = "Hello "

func init() {
	functions.HTTP("Greeting", greetingHandler)
}

// greetingHandler greets the single segment of the request path. The
// function URL carries no router, so not-found and method checks are done here.
func greetingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if name == "" || strings.Contains(name, "/") {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(prefix + name))
}
