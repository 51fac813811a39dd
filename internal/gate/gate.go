// Package gate implements the Silence Gate: a small worker pool that
// reads completed segments, measures audio activity, and either drops
// the file or forwards it to the Classifier Pool.
package gate

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/conf"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/httpapi"
	"github.com/livingstonekit-alt/feather-front/internal/ratelimit"
	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

// Backlog reports the Classifier Pool's current backlog so the gate can
// apply the MAX_ANALYSIS_BACKLOG cap before forwarding a segment.
type Backlog interface {
	Size() int
}

// Forwarder hands an active segment to the Classifier Pool's queue.
type Forwarder interface {
	Enqueue(seg segment.Segment) bool
}

// EventSink records operational events to the Persistent Store.
type EventSink interface {
	EmitEvent(eventType datastore.EventType, message string)
}

// Releaser clears a segment's in-flight marker on the queue the
// Dispatcher fed it from, once this worker is done with it one way or
// another.
type Releaser interface {
	Release(path string)
}

// Pool runs the configured number of gate workers against a shared
// input channel of candidate segments.
type Pool struct {
	store   *conf.Store
	backlog Backlog
	forward Forwarder
	events  EventSink
	release Releaser
	limiter *ratelimit.Limiter
	maxBack int
	metrics *httpapi.Metrics
	log     *slog.Logger
}

// New creates a gate worker pool. maxBacklog is the MAX_ANALYSIS_BACKLOG
// constant, passed in explicitly by the caller so this package holds no
// pipeline-wide limits of its own.
func New(store *conf.Store, backlog Backlog, forward Forwarder, events EventSink, release Releaser, maxBacklog int, metrics *httpapi.Metrics, log *slog.Logger) *Pool {
	return &Pool{
		store:   store,
		backlog: backlog,
		forward: forward,
		events:  events,
		release: release,
		limiter: ratelimit.New(10 * time.Second),
		maxBack: maxBacklog,
		metrics: metrics,
		log:     log,
	}
}

// Run starts numWorkers goroutines, each pulling segments from in
// until ctx is canceled or in is closed.
func (p *Pool) Run(ctx context.Context, numWorkers int, in <-chan segment.Segment) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		go p.worker(ctx, in)
	}
}

func (p *Pool) worker(ctx context.Context, in <-chan segment.Segment) {
	for {
		select {
		case <-ctx.Done():
			return
		case seg, ok := <-in:
			if !ok {
				return
			}
			p.handle(seg)
			p.release.Release(seg.Path)
		}
	}
}

func (p *Pool) handle(seg segment.Segment) {
	if !seg.Ready(time.Now()) {
		// Not quiet yet; the Dispatcher will re-offer it on a later pass.
		return
	}

	settings := p.store.Get()
	verdict, err := MeasureActivity(seg.Path, settings.SilenceThresholdDB, settings.SilenceMinSeconds)
	if err != nil {
		p.log.Warn("activity measurement failed", "path", seg.Path, "error", err)
		_ = os.Remove(seg.Path)
		return
	}

	if !verdict.Active {
		_ = os.Remove(seg.Path)
		p.metrics.SegmentsDropped.WithLabelValues("silent").Inc()
		p.events.EmitEvent(datastore.EventAnalysis, "segment silent, dropped")
		return
	}

	if p.backlog.Size() >= p.maxBack {
		_ = os.Remove(seg.Path)
		p.metrics.SegmentsDropped.WithLabelValues("backlog").Inc()
		if p.limiter.Allow("gate-backlog-drop") {
			p.events.EmitEvent(datastore.EventAnalysis, "dropped due to backlog")
		}
		return
	}

	if !p.forward.Enqueue(seg) {
		_ = os.Remove(seg.Path)
	}
}
