package logging

import (
	"context"

	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is what RequestLogger attaches to each request.
type scope struct {
	logger        *zap.Logger
	correlationID string
}

func withScope(ctx context.Context, logger *zap.Logger, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, scopeKey{}, scope{logger: logger, correlationID: correlationID})
}

func scopeFrom(ctx context.Context) (scope, bool) {
	if ctx == nil {
		return scope{}, false
	}
	s, ok := ctx.Value(scopeKey{}).(scope)
	return s, ok
}

// LoggerFromContext returns the request logger, or the process logger outside a request.
func LoggerFromContext(ctx context.Context) *zap.Logger {
	if s, ok := scopeFrom(ctx); ok && s.logger != nil {
		return s.logger
	}
	return Logger()
}

// CorrelationID returns the Cloud Trace resource of the request, falling back
// to its request ID. It is empty outside a request.
func CorrelationID(ctx context.Context) string {
	s, _ := scopeFrom(ctx)
	return s.correlationID
}

func LogDebug(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Debug(msg, fields...)
}

func LogInfo(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Info(msg, fields...)
}

func LogWarn(ctx context.Context, msg string, fields ...zap.Field) {
	LoggerFromContext(ctx).Warn(msg, fields...)
}

// LogError logs at error level; a non-nil err is added as the "error" field.
func LogError(ctx context.Context, msg string, err error, fields ...zap.Field) {
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	LoggerFromContext(ctx).Error(msg, fields...)
}
