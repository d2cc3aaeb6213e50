package logging

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const traceparentHeader = "traceparent"

// version-traceid-parentid-flags, lowercase hex per W3C Trace Context.
var traceparentRe = regexp.MustCompile(`^([0-9a-f]{2})-([0-9a-f]{32})-([0-9a-f]{16})-([0-9a-f]{2})$`)

// traceContext is the part of a traceparent header Cloud Logging cares about.
type traceContext struct {
	traceID string
	spanID  string
	sampled bool
}

// parseTraceparent accepts upper-case hex for leniency but rejects the
// reserved version ff and all-zero IDs.
func parseTraceparent(header string) (traceContext, bool) {
	m := traceparentRe.FindStringSubmatch(strings.ToLower(strings.TrimSpace(header)))
	if m == nil || m[1] == "ff" {
		return traceContext{}, false
	}
	if strings.Trim(m[2], "0") == "" || strings.Trim(m[3], "0") == "" {
		return traceContext{}, false
	}
	flags, _ := strconv.ParseUint(m[4], 16, 8)
	return traceContext{traceID: m[2], spanID: m[3], sampled: flags&1 == 1}, true
}

func (tc traceContext) resource(projectID string) string {
	return "projects/" + projectID + "/traces/" + tc.traceID
}

func (tc traceContext) fields(projectID string) []zap.Field {
	return []zap.Field{
		zap.String("logging.googleapis.com/trace", tc.resource(projectID)),
		zap.String("logging.googleapis.com/spanId", tc.spanID),
		zap.Bool("logging.googleapis.com/trace_sampled", tc.sampled),
	}
}
