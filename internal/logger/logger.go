// Package logger wraps a zap sugared logger with key-value helpers and
// redaction of secret-looking fields.
package logger

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Modes accepted by New.
const (
	ModeDev  = "dev"
	ModeProd = "prod"
	ModeNop  = "nop"
)

type Logger struct {
	SugaredLogger *zap.SugaredLogger
}

// New builds a logger for mode. "prod" emits JSON at info level, "nop"
// discards everything, anything else is a colored development logger at
// debug level. Output goes to stderr.
func New(mode string) (*Logger, error) {
	var cfg zap.Config
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeNop, "off", "none":
		return Nop(), nil
	case ModeProd, "production":
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	default:
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

// Nop returns a logger that drops every entry. The TUI uses it so log
// lines never land on the alternate screen.
func Nop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

// Zap exposes the underlying structured logger.
func (l *Logger) Zap() *zap.Logger {
	return l.SugaredLogger.Desugar()
}

func (l *Logger) Sync() {
	_ = l.SugaredLogger.Sync()
}

func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.SugaredLogger.Debugw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.SugaredLogger.Infow(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.SugaredLogger.Warnw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.SugaredLogger.Errorw(msg, sanitizeKVs(keysAndValues)...)
}
func (l *Logger) With(keysAndValues ...any) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(sanitizeKVs(keysAndValues)...)}
}

var (
	redactOnce       sync.Once
	redactionEnabled bool
)

func sanitizeKVs(kv []any) []any {
	if len(kv) == 0 || !redactionOn() {
		return kv
	}
	out := make([]any, 0, len(kv))
	for i := 0; i < len(kv); i += 2 {
		if i == len(kv)-1 {
			out = append(out, kv[i])
			break
		}
		key := toString(kv[i])
		out = append(out, key, sanitizeValue(strings.ToLower(strings.TrimSpace(key)), kv[i+1]))
	}
	return out
}

func sanitizeValue(key string, val any) any {
	if isRedactKey(key) {
		return "[REDACTED]"
	}
	if m, ok := val.(map[string]any); ok {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = sanitizeValue(strings.ToLower(k), v)
		}
		return out
	}
	return val
}

func isRedactKey(key string) bool {
	for _, frag := range []string{"api_key", "apikey", "token", "secret", "password", "authorization"} {
		if strings.Contains(key, frag) {
			return true
		}
	}
	return false
}

func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		return fmt.Sprint(v)
	}
}

// redactionOn is true unless ADAPTIQ_LOG_REDACTION is set to a false value.
func redactionOn() bool {
	redactOnce.Do(func() {
		switch strings.ToLower(strings.TrimSpace(os.Getenv("ADAPTIQ_LOG_REDACTION"))) {
		case "0", "false", "no", "off":
			redactionEnabled = false
		default:
			redactionEnabled = true
		}
	})
	return redactionEnabled
}
