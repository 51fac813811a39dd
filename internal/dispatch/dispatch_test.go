package dispatch

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/goleak"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/httpapi"
	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testMetrics(t *testing.T) *httpapi.Metrics {
	t.Helper()
	m, err := httpapi.NewMetrics(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	return m
}

type fakeGate struct {
	enqueued []string
}

func (g *fakeGate) TryEnqueue(seg segment.Segment) bool {
	g.enqueued = append(g.enqueued, seg.Path)
	return true
}
func (g *fakeGate) InFlight() map[string]struct{} { return map[string]struct{}{} }

type fakeEvents struct{ messages []string }

func (e *fakeEvents) EmitEvent(eventType datastore.EventType, message string) {
	e.messages = append(e.messages, message)
}

type fakeStats struct{}

func (fakeStats) Stats() Stats { return Stats{} }

func writeSegmentFile(t *testing.T, dir string, index int, age time.Duration) string {
	t.Helper()
	path := filepath.Join(dir, segment.FileName(index))
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	modTime := time.Now().Add(-age)
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestDispatcher(t *testing.T, gate *fakeGate, events *fakeEvents, cfg Config) *Dispatcher {
	t.Helper()
	if cfg.Tick == 0 {
		cfg.Tick = 200 * time.Millisecond
	}
	if cfg.WatchdogTick == 0 {
		cfg.WatchdogTick = 5 * time.Second
	}
	if cfg.StatusMinPeriod == 0 {
		cfg.StatusMinPeriod = 5 * time.Second
	}
	return New(cfg, gate, events, fakeStats{}, nil, testMetrics(t), slog.Default())
}

func TestReconcileEvictsStaleSegments(t *testing.T) {
	dir := t.TempDir()
	path := writeSegmentFile(t, dir, 1, 40*time.Second)

	gate := &fakeGate{}
	events := &fakeEvents{}
	d := newTestDispatcher(t, gate, events, Config{SegDir: dir, MaxSegmentAge: 30 * time.Second, MaxQueueLen: 60})

	d.reconcile()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected stale segment to be deleted")
	}
	if len(gate.enqueued) != 0 {
		t.Fatalf("expected no enqueue for stale segment, got %v", gate.enqueued)
	}
}

func TestReconcileEnqueuesReadyFreshSegment(t *testing.T) {
	dir := t.TempDir()
	writeSegmentFile(t, dir, 1, 1*time.Second)

	gate := &fakeGate{}
	events := &fakeEvents{}
	d := newTestDispatcher(t, gate, events, Config{SegDir: dir, MaxSegmentAge: 30 * time.Second, MaxQueueLen: 60})

	d.reconcile()

	if len(gate.enqueued) != 1 {
		t.Fatalf("expected segment to be enqueued, got %v", gate.enqueued)
	}
}

func TestReconcileDoesNotEnqueueNotYetReadySegment(t *testing.T) {
	dir := t.TempDir()
	writeSegmentFile(t, dir, 1, 100*time.Millisecond)

	gate := &fakeGate{}
	events := &fakeEvents{}
	d := newTestDispatcher(t, gate, events, Config{SegDir: dir, MaxSegmentAge: 30 * time.Second, MaxQueueLen: 60})

	d.reconcile()

	if len(gate.enqueued) != 0 {
		t.Fatalf("expected no enqueue for too-fresh segment, got %v", gate.enqueued)
	}
}

func TestReconcileEnforcesQueueCap(t *testing.T) {
	dir := t.TempDir()
	for i := 1; i <= 5; i++ {
		writeSegmentFile(t, dir, i, time.Duration(5-i+1)*time.Second)
	}

	gate := &fakeGate{}
	events := &fakeEvents{}
	d := newTestDispatcher(t, gate, events, Config{SegDir: dir, MaxSegmentAge: 30 * time.Second, MaxQueueLen: 3})

	d.reconcile()

	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		t.Fatalf("expected 3 files remaining after queue-cap eviction, got %d", len(entries))
	}
}
