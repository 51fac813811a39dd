package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/livingstonekit-alt/feather-front/internal/bestclip"
	"github.com/livingstonekit-alt/feather-front/internal/capture"
	"github.com/livingstonekit-alt/feather-front/internal/classify"
	"github.com/livingstonekit-alt/feather-front/internal/conf"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/dispatch"
	"github.com/livingstonekit-alt/feather-front/internal/gate"
	"github.com/livingstonekit-alt/feather-front/internal/httpapi"
	"github.com/livingstonekit-alt/feather-front/internal/logging"
	"github.com/livingstonekit-alt/feather-front/internal/segment"
	"github.com/livingstonekit-alt/feather-front/internal/telemetry"
)

// Paths collects the filesystem layout a Pipeline is rooted at.
type Paths struct {
	DataDir          string // holds overlay.db, latest.json, clips.json, clips/, icons/
	SegDir           string // tmp/ for in-flight segments
	SettingsPath     string
	LegacyConfigPath string

	// SentryDSN enables telemetry reporting of error-class events when
	// non-empty; empty disables it entirely.
	SentryDSN string
	Release   string
}

// Pipeline owns every long-lived component and their wiring.
type Pipeline struct {
	ConfStore *conf.Store
	Store     *datastore.Store
	Snapshot  *datastore.SnapshotWriter
	ClipIndex *datastore.ClipIndexStore
	Archive   *bestclip.Archive

	supervisor *capture.Supervisor
	gatePool   *gate.Pool
	clsPool    *classify.Pool
	dispatcher *dispatch.Dispatcher

	gateQueue *segmentQueue
	clsQueue  *segmentQueue

	HTTP *httpapi.Server

	telemetry *telemetry.Reporter
	paths     Paths
	log       *slog.Logger
}

// New constructs a Pipeline rooted at paths, opening the Persistent
// Store and loading the Configuration Store, but does not start any
// goroutines yet (see Run).
func New(paths Paths) (*Pipeline, error) {
	log := logging.For("pipeline")

	settings, err := conf.Load(paths.SettingsPath, paths.LegacyConfigPath)
	if err != nil {
		return nil, err
	}
	confStore := conf.NewStore(settings, paths.SettingsPath, paths.LegacyConfigPath)
	confStore.ApplyEnvOverlay()

	if vr := validateSettings(confStore.Get()); vr.HasIssues() {
		for _, w := range vr.Warnings {
			log.Warn("configuration warning", "detail", w)
		}
		for _, e := range vr.Errors {
			log.Error("configuration error", "detail", e)
		}
	}

	if err := os.MkdirAll(paths.SegDir, 0o755); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(paths.DataDir, 0o755); err != nil {
		return nil, err
	}

	store, err := datastore.Open(filepath.Join(paths.DataDir, "overlay.db"))
	if err != nil {
		return nil, err
	}

	snapshot := datastore.NewSnapshotWriter(filepath.Join(paths.DataDir, "latest.json"))
	clipIndex := datastore.NewClipIndexStore(filepath.Join(paths.DataDir, "clips.json"))
	archive := bestclip.NewArchive(filepath.Join(paths.DataDir, "clips"), clipIndex)

	reporter, err := telemetry.New(paths.SentryDSN, paths.Release)
	if err != nil {
		log.Warn("telemetry disabled: failed to initialize", "error", err)
		reporter = &telemetry.Reporter{}
	}

	registry := prometheus.NewRegistry()
	metrics, err := httpapi.NewMetrics(registry)
	if err != nil {
		return nil, err
	}

	rec := newRecorder(store, snapshot, archive, reporter, metrics, log)

	gateQueue := newSegmentQueue(MaxQueueSegments)
	clsQueue := newSegmentQueue(MaxQueueSegments)

	gatePool := gate.New(confStore, clsQueue, clsQueue, rec, gateQueue, MaxAnalysisBacklog, metrics, logging.For("gate"))
	clsPool := classify.New(confStore, rec, clsQueue, filepath.Join(paths.DataDir, "classifier-out"), metrics, logging.For("classify"))

	supervisor := capture.New(confStore, paths.SegDir, rec)

	stats := &liveStats{gateQueue: gateQueue, clsQueue: clsQueue, clsPool: clsPool, segDir: paths.SegDir}
	dispatcher := dispatch.New(dispatch.Config{
		SegDir:          paths.SegDir,
		MaxSegmentAge:   MaxSegmentAge,
		MaxQueueLen:     MaxQueueSegments,
		Tick:            DispatchTick,
		WatchdogTick:    WatchdogTick,
		StatusMinPeriod: StatusEventMinInterval,
	}, gateQueue, rec, stats, nil, metrics, logging.For("dispatch"))

	httpServer := httpapi.New(confStore, store, snapshot, clipIndex, filepath.Join(paths.DataDir, "clips"), paths.SegDir, registry, logging.For("httpapi"))

	return &Pipeline{
		ConfStore:  confStore,
		Store:      store,
		Snapshot:   snapshot,
		ClipIndex:  clipIndex,
		Archive:    archive,
		supervisor: supervisor,
		gatePool:   gatePool,
		clsPool:    clsPool,
		dispatcher: dispatcher,
		gateQueue:  gateQueue,
		clsQueue:   clsQueue,
		HTTP:       httpServer,
		telemetry:  reporter,
		paths:      paths,
		log:        log,
	}, nil
}

// Run starts every component and blocks until ctx is canceled, then
// performs an orderly shutdown: the Dispatcher and worker pools exit at
// their next suspension point, the capture child is terminated, and the
// database WAL is checkpointed before returning.
func (p *Pipeline) Run(ctx context.Context) {
	p.gatePool.Run(ctx, GateWorkers, p.gateQueue.Chan())
	p.clsPool.Run(ctx, ClassifierWorkers, p.clsQueue.Chan())
	go p.dispatcher.Run(ctx)

	addr := fmt.Sprintf(":%d", p.ConfStore.Get().HTTPPort)
	go func() {
		if err := p.HTTP.Start(addr); err != nil && err != http.ErrServerClosed {
			p.log.Error("http server exited", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := p.HTTP.Shutdown(shutdownCtx); err != nil {
			p.log.Warn("http server shutdown error", "error", err)
		}
	}()

	p.supervisor.Run(ctx)

	if err := p.Store.CheckpointWAL(); err != nil {
		p.log.Warn("WAL checkpoint failed during shutdown", "error", err)
	}
	if err := p.Store.Close(); err != nil {
		p.log.Warn("failed to close datastore during shutdown", "error", err)
	}
	p.telemetry.Flush(2 * time.Second)
}

// liveStats implements dispatch.StatsSource over the live queues.
type liveStats struct {
	gateQueue *segmentQueue
	clsQueue  *segmentQueue
	clsPool   *classify.Pool
	segDir    string
}

func (s *liveStats) Stats() dispatch.Stats {
	filesInDir := 0
	var oldestAge time.Duration
	if segs, err := segment.Dir(s.segDir); err == nil {
		filesInDir = len(segs)
		now := time.Now()
		for _, seg := range segs {
			if age := seg.Age(now); age > oldestAge {
				oldestAge = age
			}
		}
	}
	return dispatch.Stats{
		FilesInDir:  filesInDir,
		GatePending: s.gateQueue.QueuedLen(),
		GateQueue:   s.gateQueue.Size(),
		ClsQueue:    s.clsQueue.Size(),
		ClsActive:   s.clsPool.Size(),
		OldestAge:   oldestAge,
	}
}
