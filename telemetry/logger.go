// Package telemetry is the ambient observability stack: a structured
// logger that renders spec.md §6.2's required `[TICK n] key=value` diagnostic
// format, and a small set of Prometheus gauges/counters mirroring
// core.Stats(), the tick counter, and the learner's energy, epsilon and
// mean surprise.
//
// Neither zap nor Prometheus appears anywhere in the reference corpus this
// module was grounded on; both are out-of-pack ecosystem choices (see
// DESIGN.md) rather than teacher-grounded ones, picked because they are the
// idiomatic default for a Go service's logging and metrics surface.
package telemetry

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger renders one line per log event in the `[TICK n] key=value ...`
// format spec.md §6.2 requires stderr diagnostics to use.
type Logger struct {
	z *zap.Logger
}

// NewLogger builds a Logger writing to w. Output is plain text (not JSON):
// spec.md §6.2 only requires the line be "textually parseable". formatMsg
// builds the whole key=value line, and zap's console encoder, with the
// level, time, name and caller keys switched off, prints it as is.
func NewLogger(w io.Writer) *Logger {
	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		MessageKey:    "msg",
		LevelKey:      "",
		TimeKey:       "",
		NameKey:       "",
		CallerKey:     "",
		StacktraceKey: "",
		EncodeLevel:   zapcore.CapitalLevelEncoder,
		ConsoleSeparator: " ",
	})
	core := zapcore.NewCore(enc, zapcore.AddSync(w), zapcore.DebugLevel)
	return &Logger{z: zap.New(core)}
}

// Info logs one `[TICK n] msg key=value ...` line at info level.
func (l *Logger) Info(tick uint64, msg string, kv ...any) {
	l.z.Info(formatMsg(tick, msg, kv))
}

// Warn logs one `[TICK n] msg key=value ...` line at warn level, for the
// recoverable error kinds spec.md §7 describes (CapacityExhausted,
// InvalidVertex, SnapshotCorrupt, SnapshotWriteFailed).
func (l *Logger) Warn(tick uint64, msg string, kv ...any) {
	l.z.Warn(formatMsg(tick, msg, kv))
}

// Error logs one `[TICK n] msg key=value ...` line at error level.
func (l *Logger) Error(tick uint64, msg string, kv ...any) {
	l.z.Error(formatMsg(tick, msg, kv))
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error { return l.z.Sync() }

func formatMsg(tick uint64, msg string, kv []any) string {
	var b strings.Builder
	b.WriteString("[TICK " + uitoa(tick) + "] " + msg)
	for i := 0; i+1 < len(kv); i += 2 {
		if key, ok := kv[i].(string); ok {
			fmt.Fprintf(&b, " %s=%v", key, kv[i+1])
		}
	}
	return b.String()
}

// toFields turns a flat key,value,key,value... slice into zap.Field,
// matching the calling convention spec.md §6.2's examples use and the
// go.uber.org/zap SugaredLogger convention this mirrors without the
// reflection overhead of a fully sugared logger.
func toFields(kv []any) []zap.Field {
	fields := make([]zap.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, kv[i+1]))
	}
	return fields
}

func uitoa(v uint64) string {
	if v == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	return string(buf[i:])
}
