// Package telemetry forwards error-class operational events to an
// optional Sentry project, so an operator running unattended hardware
// finds out about a stuck classifier or a wedged capture child without
// having to tail logs.
package telemetry

import (
	"fmt"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// Reporter forwards apperr.Error values to Sentry, when configured; a
// zero-value Reporter (no DSN) is a safe no-op everywhere it's used.
type Reporter struct {
	enabled bool

	mu       sync.Mutex
	lastSent map[string]time.Time
}

const dedupeWindow = 5 * time.Minute

// New initializes the Sentry client against dsn. An empty dsn disables
// the reporter entirely; callers never need to check this themselves.
func New(dsn, release string) (*Reporter, error) {
	if dsn == "" {
		return &Reporter{}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Release:          release,
		AttachStacktrace: true,
	}); err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	return &Reporter{enabled: true, lastSent: make(map[string]time.Time)}, nil
}

// Report sends err to Sentry if the reporter is enabled, tagging it
// with component/category and deduplicating identical component+message
// pairs within a short window so a tight restart loop doesn't flood the
// project with one event per attempt.
func (r *Reporter) Report(err *apperr.Error) {
	if r == nil || !r.enabled || err == nil {
		return
	}

	key := string(err.Component()) + "|" + err.Error()
	r.mu.Lock()
	if last, ok := r.lastSent[key]; ok && time.Since(last) < dedupeWindow {
		r.mu.Unlock()
		return
	}
	r.lastSent[key] = time.Now()
	r.mu.Unlock()

	level := sentry.LevelWarning
	if err.Priority() >= apperr.PriorityHigh {
		level = sentry.LevelError
	}

	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(level)
		scope.SetTag("component", err.Component())
		scope.SetTag("category", string(err.Category()))
		for k, v := range err.Context() {
			scope.SetContext(k, map[string]any{"value": v})
		}
		scope.AddBreadcrumb(&sentry.Breadcrumb{
			Category: err.Component(),
			Message:  err.Error(),
			Level:    level,
		}, 10)
		sentry.CaptureException(err)
	})
}

// Flush blocks up to timeout for any queued events to be delivered,
// called once during orderly shutdown.
func (r *Reporter) Flush(timeout time.Duration) {
	if r == nil || !r.enabled {
		return
	}
	sentry.Flush(timeout)
}
