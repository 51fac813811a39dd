package datastore

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	st, err := Open(filepath.Join(dir, "overlay.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func conf(v float64) *float64 { return &v }

func TestAppendDetectionBumpsRevisionAndAggregates(t *testing.T) {
	st := newTestStore(t)
	before := st.Revision()

	d, err := st.AppendDetection(Detection{Timestamp: NowUTC(), Species: "American Robin", Confidence: conf(0.9)})
	if err != nil {
		t.Fatalf("AppendDetection: %v", err)
	}
	if d.ID == "" {
		t.Fatalf("expected derived id")
	}
	if st.Revision() <= before {
		t.Fatalf("revision did not advance: before=%d after=%d", before, st.Revision())
	}
	if st.SpeciesCounts()["American Robin"] != 1 {
		t.Fatalf("species count not updated")
	}
}

func TestDeleteDetectionRebuildsAggregates(t *testing.T) {
	st := newTestStore(t)
	d1, _ := st.AppendDetection(Detection{Timestamp: NowUTC(), Species: "Robin", Confidence: conf(0.5)})
	_, _ = st.AppendDetection(Detection{Timestamp: NowUTC(), Species: "Robin", Confidence: conf(0.6)})

	existed, err := st.DeleteDetection(d1.ID)
	if err != nil {
		t.Fatalf("DeleteDetection: %v", err)
	}
	if !existed {
		t.Fatalf("expected delete to report existed=true")
	}
	if st.SpeciesCounts()["Robin"] != 1 {
		t.Fatalf("expected count to drop to 1 after delete, got %d", st.SpeciesCounts()["Robin"])
	}

	existed, err = st.DeleteDetection("does-not-exist")
	if err != nil {
		t.Fatalf("DeleteDetection missing id: %v", err)
	}
	if existed {
		t.Fatalf("deleting a missing id should report existed=false")
	}
}

func TestListDetectionsOrderedOldestFirst(t *testing.T) {
	st := newTestStore(t)
	_, _ = st.AppendDetection(Detection{Timestamp: "2024-01-01T00:00:00Z", Species: "A", Confidence: conf(0.5)})
	_, _ = st.AppendDetection(Detection{Timestamp: "2024-01-02T00:00:00Z", Species: "B", Confidence: conf(0.6)})

	rows, err := st.ListDetections(10)
	if err != nil {
		t.Fatalf("ListDetections: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	if rows[0].Species != "A" || rows[1].Species != "B" {
		t.Fatalf("expected oldest-first order, got %v", rows)
	}
}

func TestConfidenceNormalizationOnAppend(t *testing.T) {
	st := newTestStore(t)
	d, _ := st.AppendDetection(Detection{Timestamp: NowUTC(), Species: "X", Confidence: conf(91)})
	if d.Confidence == nil || *d.Confidence != 0.91 {
		t.Fatalf("confidence = %v, want 0.91", d.Confidence)
	}

	d2, _ := st.AppendDetection(Detection{Timestamp: NowUTC(), Species: "Y", Confidence: conf(-5)})
	if d2.Confidence == nil || *d2.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", d2.Confidence)
	}
}

func TestSummaryCacheValidOnlyAtCurrentRevision(t *testing.T) {
	st := newTestStore(t)
	_, _ = st.AppendDetection(Detection{Timestamp: NowUTC(), Species: "A", Confidence: conf(0.5)})

	if err := st.SetSummaryCache(`{"A":1}`); err != nil {
		t.Fatalf("SetSummaryCache: %v", err)
	}
	payload, ok, err := st.SummaryCache()
	if err != nil || !ok || payload != `{"A":1}` {
		t.Fatalf("expected fresh cache hit, got ok=%v payload=%q err=%v", ok, payload, err)
	}

	_, _ = st.AppendDetection(Detection{Timestamp: NowUTC(), Species: "B", Confidence: conf(0.4)})
	_, ok, err = st.SummaryCache()
	if err != nil {
		t.Fatalf("SummaryCache: %v", err)
	}
	if ok {
		t.Fatalf("expected cache to be stale after a new write bumped the revision")
	}
}

func TestSnapshotWriterAtomicRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewSnapshotWriter(filepath.Join(dir, "latest.json"))

	if err := w.Write(LatestSnapshot{Species: "Robin", Status: StatusListening, LogRevision: 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	snap, ok, err := w.Read()
	if err != nil || !ok {
		t.Fatalf("Read: ok=%v err=%v", ok, err)
	}
	if snap.Species != "Robin" || snap.LogRevision != 5 {
		t.Fatalf("round-tripped snapshot mismatch: %+v", snap)
	}
}

func TestDeriveIDIsDeterministic(t *testing.T) {
	c := 0.42
	id1 := DeriveID("2024-01-01T00:00:00Z", "Robin", &c)
	id2 := DeriveID("2024-01-01T00:00:00Z", "Robin", &c)
	if id1 != id2 {
		t.Fatalf("DeriveID not deterministic: %q vs %q", id1, id2)
	}
	if len(id1) != 12 {
		t.Fatalf("DeriveID length = %d, want 12", len(id1))
	}
}
