package httpapi

import (
	"testing"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

func TestClampDays(t *testing.T) {
	cases := map[int]int{0: 7, -5: 7, 1: 1, 30: 30, 31: 30, 15: 15}
	for in, want := range cases {
		if got := clampDays(in); got != want {
			t.Fatalf("clampDays(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestBucketOf(t *testing.T) {
	t1 := time.Date(2026, 1, 1, 13, 45, 0, 0, time.Local)
	if got := bucketOf(t1); got != 27 {
		t.Fatalf("bucketOf(13:45) = %d, want 27", got)
	}
	t2 := time.Date(2026, 1, 1, 0, 10, 0, 0, time.Local)
	if got := bucketOf(t2); got != 0 {
		t.Fatalf("bucketOf(00:10) = %d, want 0", got)
	}
}

func TestBuildActivityHistogramFutureBucketsAreNil(t *testing.T) {
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)
	hist := BuildActivityHistogram(nil, 7, now)

	currentBucket := bucketOf(now)
	if hist.TodayPoints[currentBucket+1] != nil {
		t.Fatal("expected buckets after the current one to be nil")
	}
	if hist.TodayPoints[currentBucket] == nil {
		t.Fatal("expected the current bucket to be non-nil")
	}
	if currentBucket > 0 && hist.TodayPoints[currentBucket-1] == nil {
		t.Fatal("expected buckets before now to be non-nil")
	}
}

func TestBuildActivityHistogramAveragesOverDays(t *testing.T) {
	now := time.Date(2026, 1, 5, 20, 0, 0, 0, time.UTC)
	ts := now.Add(-2 * time.Hour).Format(time.RFC3339)
	detections := []datastore.Detection{
		{Timestamp: ts, Species: "robin"},
		{Timestamp: ts, Species: "robin"},
	}
	hist := BuildActivityHistogram(detections, 7, now)

	b := bucketOf(now.Add(-2 * time.Hour))
	if hist.Points[b] != 2.0/7.0 {
		t.Fatalf("expected bucket %d to average 2/7, got %v", b, hist.Points[b])
	}
}

func TestWriteDetectionsCSVHeaderAndRows(t *testing.T) {
	conf := 0.87
	rows := []datastore.Detection{
		{ID: "abc123", Timestamp: "2026-01-05T10:00:00Z", Species: "Robin", ScientificName: "Turdus migratorius", Confidence: &conf, Location: "yard"},
	}
	var buf stringWriter
	if err := WriteDetectionsCSV(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := buf.String()
	if got == "" {
		t.Fatal("expected non-empty CSV output")
	}
	wantHeader := "timestamp,species,scientific_name,confidence,location,id\n"
	if got[:len(wantHeader)] != wantHeader {
		t.Fatalf("unexpected header: %q", got[:len(wantHeader)])
	}
}

func TestIsPublicPaths(t *testing.T) {
	if !isPublic("/api/status") {
		t.Fatal("expected /api/status to be public")
	}
	if !isPublic("/icons/robin.png") {
		t.Fatal("expected /icons/* to be public")
	}
	if isPublic("/api/settings") {
		t.Fatal("expected /api/settings to require auth")
	}
}

func TestNormalizeManualTimestamp(t *testing.T) {
	if got := normalizeManualTimestamp(""); got == "" {
		t.Fatal("expected empty timestamp to default to now")
	}
	got := normalizeManualTimestamp("2026-01-05T10:00:00Z")
	if got != "2026-01-05T10:00:00Z" {
		t.Fatalf("expected round-trip, got %q", got)
	}
	if got := normalizeManualTimestamp("not a date"); got == "not a date" {
		t.Fatal("expected unparsable timestamp to fall back to now, not pass through")
	}
}

func TestNormalizeManualConfidence(t *testing.T) {
	if normalizeManualConfidence(nil) != nil {
		t.Fatal("expected nil confidence to stay nil")
	}
	got := normalizeManualConfidence("73%")
	if got == nil || *got != 0.73 {
		t.Fatalf("expected 73%% to normalize to 0.73, got %v", got)
	}
	got = normalizeManualConfidence(float64(87))
	if got == nil || *got != 0.87 {
		t.Fatalf("expected 87 to normalize as a percentage to 0.87, got %v", got)
	}
}

// stringWriter is a minimal io.Writer collecting bytes into a string,
// used instead of bytes.Buffer to keep this test file's imports narrow.
type stringWriter struct {
	data []byte
}

func (w *stringWriter) Write(p []byte) (int, error) {
	w.data = append(w.data, p...)
	return len(p), nil
}

func (w *stringWriter) String() string {
	return string(w.data)
}
