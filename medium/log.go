package medium

import (
	"context"
	"log/slog"
	"os"
)

// Severity follows the syslog convention used by spec.md §6/§7: 0 is the
// most severe (emergency), 7 the least (debug). The CLI's -l flag sets this
// directly, defaulting to 6 (info).
type Severity int

const (
	SevEmergency Severity = 0
	SevAlert     Severity = 1
	SevCritical  Severity = 2
	SevError     Severity = 3
	SevWarning   Severity = 4
	SevNotice    Severity = 5
	SevInfo      Severity = 6
	SevDebug     Severity = 7
)

// toSlogLevel maps a syslog severity onto the nearest slog level. Several
// syslog severities legitimately collapse onto the same slog level; that's
// fine, the severity number itself is still carried as an attribute so a
// log line never loses the distinction a reader of spec.md §7 would expect.
func (s Severity) toSlogLevel() slog.Level {
	switch {
	case s <= SevError:
		return slog.LevelError
	case s <= SevWarning:
		return slog.LevelWarn
	case s <= SevInfo:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Logger wraps an *slog.Logger with the severity-threshold semantics of
// spec.md's -l flag: a message is emitted only if its severity is numerically
// <= the configured threshold (lower number = more severe = always shown).
type Logger struct {
	base      *slog.Logger
	threshold Severity
}

// NewLogger builds a Logger writing text-format lines to stderr at the given severity
// threshold (0..7, default 6 matching spec.md §6's CLI default).
func NewLogger(threshold Severity) *Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	return &Logger{
		base:      slog.New(slog.NewTextHandler(os.Stderr, opts)),
		threshold: threshold,
	}
}

// NoopLogger discards everything; useful in tests that don't care about log
// output but still need a non-nil *Logger.
func NoopLogger() *Logger {
	return &Logger{base: slog.New(slog.NewTextHandler(discardWriter{}, nil)), threshold: SevEmergency}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// Logf emits a message at the given severity if it passes the threshold.
// severity >= 6 entries are how spec.md §7 wants per-frame drops logged.
func (l *Logger) Logf(sev Severity, msg string, args ...any) {
	if l == nil || sev > l.threshold {
		return
	}
	l.base.Log(context.Background(), sev.toSlogLevel(), msg, append(args, "severity", int(sev))...)
}

func (l *Logger) DropFrame(reason string, cookie uint64) {
	l.Logf(SevInfo, "dropping frame", "reason", reason, "cookie", cookie)
}
