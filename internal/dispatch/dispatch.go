// Package dispatch implements the Segment Dispatcher: it reconciles
// the Segment Directory against the Silence Gate's in-flight set every
// tick, evicting aged-out or queue-cap-exceeding segments and handing
// freshly-ready ones to the gate.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/httpapi"
	"github.com/livingstonekit-alt/feather-front/internal/ratelimit"
	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

// EventSink records operational events to the Persistent Store.
type EventSink interface {
	EmitEvent(eventType datastore.EventType, message string)
}

// WorkerHealth lets the Dispatcher ask whether a GATE/CLS worker pool's
// workers are all alive, and restart any that died.
type WorkerHealth interface {
	Alive() bool
	Restart(ctx context.Context)
}

// Config bundles the tunables a Dispatcher needs from the pipeline's
// fixed limits (see internal/pipeline.Limits), kept here as plain
// fields so this package has no import-cycle-prone dependency on the
// pipeline package.
type Config struct {
	SegDir          string
	MaxSegmentAge   time.Duration
	MaxQueueLen     int
	Tick            time.Duration
	WatchdogTick    time.Duration
	StatusMinPeriod time.Duration
}

// GateQueue is the bounded hand-off the Dispatcher feeds ready segments
// into.
type GateQueue interface {
	TryEnqueue(seg segment.Segment) bool
	InFlight() map[string]struct{}
}

// Stats reports the observable tuple the Dispatcher watches for change
// before emitting a "Status" event.
type Stats struct {
	FilesInDir  int
	GatePending int
	GateQueue   int
	ClsQueue    int
	ClsActive   int
	OldestAge   time.Duration
}

func (s Stats) equal(o Stats) bool {
	return s.FilesInDir == o.FilesInDir &&
		s.GatePending == o.GatePending &&
		s.GateQueue == o.GateQueue &&
		s.ClsQueue == o.ClsQueue &&
		s.ClsActive == o.ClsActive &&
		s.OldestAge == o.OldestAge
}

// StatsSource supplies the live numbers for the status tuple.
type StatsSource interface {
	Stats() Stats
}

// Dispatcher runs the reconciliation loop.
type Dispatcher struct {
	cfg     Config
	gate    GateQueue
	events  EventSink
	stats   StatsSource
	workers []WorkerHealth
	limiter *ratelimit.Limiter
	metrics *httpapi.Metrics
	log     *slog.Logger

	mu       sync.Mutex
	lastSeen Stats
	haveSeen bool
}

func New(cfg Config, gate GateQueue, events EventSink, stats StatsSource, workers []WorkerHealth, metrics *httpapi.Metrics, log *slog.Logger) *Dispatcher {
	return &Dispatcher{
		cfg:     cfg,
		gate:    gate,
		events:  events,
		stats:   stats,
		workers: workers,
		limiter: ratelimit.New(cfg.StatusMinPeriod),
		metrics: metrics,
		log:     log,
	}
}

// Run executes the reconciliation loop until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	tick := time.NewTicker(d.cfg.Tick)
	defer tick.Stop()
	watchdog := time.NewTicker(d.cfg.WatchdogTick)
	defer watchdog.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			d.reconcile()
		case <-watchdog.C:
			d.checkWorkers(ctx)
			d.emitStatusIfChanged()
		}
	}
}

func (d *Dispatcher) reconcile() {
	segs, err := segment.Dir(d.cfg.SegDir)
	if err != nil {
		return
	}

	now := time.Now()
	inFlight := d.gate.InFlight()

	var remaining []segment.Segment
	for _, seg := range segs {
		if _, claimed := inFlight[seg.Path]; claimed {
			remaining = append(remaining, seg)
			continue
		}
		if now.Sub(seg.ModTime) > d.cfg.MaxSegmentAge {
			_ = os.Remove(seg.Path)
			d.metrics.SegmentsDropped.WithLabelValues("stale").Inc()
			if d.limiter.Allow("dispatch-stale") {
				d.events.EmitEvent(datastore.EventAnalysis, "stale segment evicted")
			}
			continue
		}
		remaining = append(remaining, seg)
	}

	segment.ByAgeAscending(remaining)
	if excess := len(remaining) - d.cfg.MaxQueueLen; excess > 0 {
		evicted := 0
		var kept []segment.Segment
		for _, seg := range remaining {
			if _, claimed := inFlight[seg.Path]; !claimed && evicted < excess {
				_ = os.Remove(seg.Path)
				evicted++
				continue
			}
			kept = append(kept, seg)
		}
		remaining = kept
		if evicted > 0 {
			d.metrics.SegmentsDropped.WithLabelValues("queue_cap").Add(float64(evicted))
			if d.limiter.Allow("dispatch-queue-cap") {
				d.events.EmitEvent(datastore.EventAnalysis, fmt.Sprintf("queue cap exceeded, evicted %d", evicted))
			}
		}
	}

	d.metrics.QueuePending.Set(float64(len(remaining)))

	for _, seg := range remaining {
		if _, already := inFlight[seg.Path]; already {
			continue
		}
		if !seg.Ready(now) {
			continue
		}
		d.gate.TryEnqueue(seg)
	}
}

func (d *Dispatcher) checkWorkers(ctx context.Context) {
	for _, w := range d.workers {
		if !w.Alive() {
			d.log.Error("worker died, restarting")
			d.events.EmitEvent(datastore.EventError, "worker died, restarting")
			w.Restart(ctx)
		}
	}
}

func (d *Dispatcher) emitStatusIfChanged() {
	current := d.stats.Stats()
	d.mu.Lock()
	changed := !d.haveSeen || !current.equal(d.lastSeen)
	d.lastSeen = current
	d.haveSeen = true
	d.mu.Unlock()

	if changed {
		d.events.EmitEvent(datastore.EventAnalysis, "Status")
	}
}
