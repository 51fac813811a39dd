// Package logging provides module-scoped structured logging over
// log/slog. It has zero external dependencies by design, matching the
// project's own central logger.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
)

const (
	LevelTrace = slog.Level(-8)
	LevelFatal = slog.Level(12)
)

var levelNames = map[slog.Leveler]string{
	LevelTrace: "TRACE",
	LevelFatal: "FATAL",
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == slog.TimeKey && a.Value.Kind() == slog.KindTime {
		a.Value = slog.StringValue(a.Value.Time().Format("2006-01-02T15:04:05Z07:00"))
	}
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok {
			if label, exists := levelNames[level]; exists {
				a.Value = slog.StringValue(label)
			}
		}
	}
	return a
}

var (
	mu      sync.RWMutex
	level   = new(slog.LevelVar)
	handler slog.Handler
)

func init() {
	level.Set(slog.LevelInfo)
	handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level, ReplaceAttr: replaceAttr})
}

// Configure installs the process-wide log handler. w defaults to
// os.Stderr when nil. Call once at startup before components call For.
func Configure(w io.Writer, json bool) {
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: level, ReplaceAttr: replaceAttr}
	mu.Lock()
	defer mu.Unlock()
	if json {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
}

// SetLevel adjusts the minimum level for every logger returned by For,
// including ones already handed out (they share the same LevelVar).
func SetLevel(l slog.Level) { level.Set(l) }

// For returns a logger scoped to the named module, tagging every
// record with a "component" attribute.
func For(module string) *slog.Logger {
	mu.RLock()
	h := handler
	mu.RUnlock()
	return slog.New(h).With(slog.String("component", module))
}

// Fatal logs at the custom fatal level on the root handler and exits.
func Fatal(msg string, args ...any) {
	For("fatal").Log(context.Background(), LevelFatal, msg, args...)
	os.Exit(1)
}
