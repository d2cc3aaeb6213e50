package logging

import (
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/janisto/path-greeter/internal/platform/timeutil"
)

var (
	once sync.Once
	base *zap.Logger

	// level gates the process logger and can be changed at any time.
	level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
)

// severities maps zap levels onto Cloud Logging LogSeverity names.
var severities = map[zapcore.Level]string{
	zapcore.DebugLevel:  "DEBUG",
	zapcore.InfoLevel:   "INFO",
	zapcore.WarnLevel:   "WARNING",
	zapcore.ErrorLevel:  "ERROR",
	zapcore.DPanicLevel: "CRITICAL",
	zapcore.PanicLevel:  "ALERT",
	zapcore.FatalLevel:  "EMERGENCY",
}

func encodeSeverity(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	if s, ok := severities[l]; ok {
		enc.AppendString(s)
		return
	}
	enc.AppendString("DEFAULT")
}

func encodeTimeMicros(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.UTC().Format(timeutil.RFC3339Micros))
}

func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = encodeTimeMicros
	cfg.LevelKey = "severity"
	cfg.EncodeLevel = encodeSeverity
	cfg.MessageKey = "message"
	cfg.CallerKey = "caller"
	return cfg
}

// newLogger writes one JSON object per entry to ws. Error entries and above
// carry a stacktrace.
func newLogger(ws zapcore.WriteSyncer, enab zapcore.LevelEnabler) *zap.Logger {
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), ws, enab)
	return zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
}

// Logger returns the process logger, writing to stdout.
func Logger() *zap.Logger {
	once.Do(func() {
		base = newLogger(zapcore.Lock(os.Stdout), level)
	})
	return base
}

// SetLevel changes the minimum level of the process logger, e.g. "debug".
func SetLevel(text string) error {
	if err := level.UnmarshalText([]byte(text)); err != nil {
		return fmt.Errorf("set log level %q: %w", text, err)
	}
	return nil
}

// Sync flushes the process logger. Call it once during shutdown.
func Sync() error {
	return Logger().Sync()
}
