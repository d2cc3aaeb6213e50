package respond

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "github.com/janisto/path-greeter/internal/platform/logging"
	appmiddleware "github.com/janisto/path-greeter/internal/platform/middleware"
)

// SchemasPath is where the Huma API serves its JSON schemas. Problem
// responses written outside Huma point at the ErrorModel schema below it.
const SchemasPath = "/meta/schemas"

const (
	contentTypeProblemJSON = "application/problem+json"
	contentTypeProblemCBOR = "application/problem+cbor"

	msgNotFound          = "resource not found"
	msgInternalServerErr = "internal server error"
)

// problem mirrors huma.ErrorModel plus the $schema link Huma adds to its own
// error bodies, and a traceId extension member for log correlation.
// The cbor encoder falls back to the json tags.
type problem struct {
	Schema  string `json:"$schema,omitempty"`
	Title   string `json:"title,omitempty"`
	Status  int    `json:"status,omitempty"`
	Detail  string `json:"detail,omitempty"`
	TraceID string `json:"traceId,omitempty"`
}

// NotFoundHandler emits an RFC 9457 404 response.
func NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeProblem(w, r, http.StatusNotFound, msgNotFound, nil)
	}
}

// MethodNotAllowedHandler emits an RFC 9457 405 response and lists the
// methods the matched route does accept in Allow.
func MethodNotAllowedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if allow := allowedMethods(r); len(allow) > 0 {
			w.Header().Set("Allow", strings.Join(allow, ", "))
		}
		writeProblem(w, r, http.StatusMethodNotAllowed, fmt.Sprintf("method %s not allowed", r.Method), nil)
	}
}

// Recoverer converts panics into RFC 9457 500 responses.
// http.ErrAbortHandler is re-panicked so net/http can abort the connection,
// and nothing is written when the handler already sent headers.
func Recoverer() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &responseWriter{ResponseWriter: w}
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				var err error
				switch v := rec.(type) {
				case error:
					err = v
				default:
					err = fmt.Errorf("%v", v)
				}
				err = fmt.Errorf("panic: %w\n%s", err, debug.Stack())
				if rw.wroteHeader {
					applog.LogError(r.Context(), "panic after response started", err)
					return
				}
				writeProblem(rw, r, http.StatusInternalServerError, msgInternalServerErr, err)
			}()
			next.ServeHTTP(rw, r)
		})
	}
}

// responseWriter records whether the status line has gone out.
type responseWriter struct {
	http.ResponseWriter
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(code int) {
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

func writeProblem(w http.ResponseWriter, r *http.Request, status int, detail string, cause error) {
	logProblem(r, status, detail, cause)

	schema := schemaURL(r)
	body := problem{
		Schema:  schema,
		Title:   http.StatusText(status),
		Status:  status,
		Detail:  detail,
		TraceID: applog.CorrelationID(r.Context()),
	}

	var (
		payload     []byte
		contentType string
		err         error
	)
	if selectFormat(r.Header.Get("Accept")) {
		contentType = contentTypeProblemCBOR
		payload, err = cbor.Marshal(body)
	} else {
		contentType = contentTypeProblemJSON
		payload, err = marshalJSON(body)
	}
	if err != nil {
		applog.LogError(r.Context(), "failed to encode problem", err)
		http.Error(w, http.StatusText(status), status)
		return
	}

	h := w.Header()
	appmiddleware.AddVary(h, "Origin", "Accept")
	h.Set("Content-Type", contentType)
	h.Set("Link", "<"+schema+`>; rel="describedBy"`)
	w.WriteHeader(status)
	if _, err := w.Write(payload); err != nil {
		applog.LogError(r.Context(), "failed to write problem", err)
	}
}

func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func logProblem(r *http.Request, status int, detail string, cause error) {
	fields := []zap.Field{
		zap.Int("status", status),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	}
	if status >= http.StatusInternalServerError {
		applog.LogError(r.Context(), detail, cause, fields...)
		return
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}
	applog.LogWarn(r.Context(), detail, fields...)
}

func schemaURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		scheme = "https"
	}
	return scheme + "://" + r.Host + SchemasPath + "/ErrorModel.json"
}

// allowedMethods probes chi's routing tree for the methods matching the path.
func allowedMethods(r *http.Request) []string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil || rctx.Routes == nil {
		return nil
	}

	routePath := rctx.RoutePath
	if routePath == "" {
		if r.URL.RawPath != "" {
			routePath = r.URL.RawPath
		} else {
			routePath = r.URL.Path
		}
		if routePath == "" {
			routePath = "/"
		}
	}

	methods := []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}
	allowed := make([]string, 0, len(methods))
	for _, method := range methods {
		if rctx.Routes.Match(chi.NewRouteContext(), method, routePath) {
			allowed = append(allowed, method)
		}
	}
	return allowed
}

// mediaRange is one element of an Accept header.
type mediaRange struct {
	typ     string
	subtype string
	q       float64
}

// parseAccept splits an Accept header into media ranges. Types are
// lowercased, a bare type becomes type/*, and a missing, malformed or
// out-of-range q defaults to 1. Only the first q parameter counts.
func parseAccept(header string) []mediaRange {
	var ranges []mediaRange
	for part := range strings.SplitSeq(header, ",") {
		params := strings.Split(part, ";")
		mt := strings.ToLower(strings.TrimSpace(params[0]))
		if mt == "" {
			continue
		}
		typ, subtype, ok := strings.Cut(mt, "/")
		if !ok {
			subtype = "*"
		}
		mr := mediaRange{typ: strings.TrimSpace(typ), subtype: strings.TrimSpace(subtype), q: 1}
		for _, p := range params[1:] {
			key, val, found := strings.Cut(strings.TrimSpace(p), "=")
			if !found || !strings.EqualFold(strings.TrimSpace(key), "q") {
				continue
			}
			if q, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil && q >= 0 && q <= 1 {
				mr.q = q
			}
			break
		}
		ranges = append(ranges, mr)
	}
	return ranges
}

// specificity ranks how precisely mr names format ("json" or "cbor"):
// 4 problem+format, 3 format, 2 *+format, 1 application/*, 0 */*.
// It returns -1 when mr does not cover the format at all.
func specificity(mr mediaRange, format string) int {
	switch {
	case mr.typ == "*" && mr.subtype == "*":
		return 0
	case mr.typ != "application":
		return -1
	case mr.subtype == "*":
		return 1
	case mr.subtype == "*+"+format:
		return 2
	case mr.subtype == format:
		return 3
	case mr.subtype == "problem+"+format:
		return 4
	default:
		return -1
	}
}

// preference returns the q and specificity of the most specific range that
// covers format, or q=0 when none does.
func preference(ranges []mediaRange, format string) (float64, int) {
	q, best := 0.0, -1
	for _, mr := range ranges {
		if s := specificity(mr, format); s > best {
			q, best = mr.q, s
		}
	}
	return q, best
}

// selectFormat reports whether the problem body should be CBOR. JSON wins
// unless CBOR has a higher q, or an equal non-zero q with a more specific range.
func selectFormat(accept string) bool {
	if strings.TrimSpace(accept) == "" {
		return false
	}
	ranges := parseAccept(accept)
	cborQ, cborSpec := preference(ranges, "cbor")
	if cborQ == 0 {
		return false
	}
	jsonQ, jsonSpec := preference(ranges, "json")
	if cborQ != jsonQ {
		return cborQ > jsonQ
	}
	return cborSpec > jsonSpec
}
