package telemetry

import (
	"testing"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

func TestNewWithEmptyDSNIsDisabled(t *testing.T) {
	r, err := New("", "feather-front@test")
	if err != nil {
		t.Fatalf("New returned error for empty dsn: %v", err)
	}
	if r.enabled {
		t.Fatal("expected reporter to be disabled without a dsn")
	}

	// A disabled reporter must be safe to use exactly like an enabled one.
	r.Report(apperr.New(nil).Component("gate").Category(apperr.CategoryGate).Build())
	r.Flush(time.Millisecond)
}

func TestNewWithDSNEnablesReporter(t *testing.T) {
	r, err := New("https://public@o0.ingest.sentry.io/0", "feather-front@test")
	if err != nil {
		t.Fatalf("New returned error for a well-formed dsn: %v", err)
	}
	if !r.enabled {
		t.Fatal("expected reporter to be enabled when a dsn is configured")
	}
}

func TestReportOnNilReporterIsNoop(t *testing.T) {
	var r *Reporter
	r.Report(apperr.New(nil).Component("capture").Category(apperr.CategoryCapture).Build())
	r.Flush(time.Millisecond)
}

func TestReportOnNilErrorIsNoop(t *testing.T) {
	r := &Reporter{enabled: true, lastSent: make(map[string]time.Time)}
	r.Report(nil)
	if len(r.lastSent) != 0 {
		t.Fatal("expected no dedupe entry for a nil error")
	}
}

func TestReportDedupesWithinWindow(t *testing.T) {
	r := &Reporter{enabled: true, lastSent: make(map[string]time.Time)}
	appErr := apperr.New(nil).Component("dispatch").Category(apperr.CategoryDispatch).Build()
	key := appErr.Component() + "|" + appErr.Error()

	r.Report(appErr)
	first, ok := r.lastSent[key]
	if !ok {
		t.Fatal("expected a dedupe entry after the first report")
	}

	r.Report(appErr)
	second := r.lastSent[key]
	if !first.Equal(second) {
		t.Fatal("expected a report within the dedupe window to leave the timestamp untouched")
	}
}

func TestReportResendsAfterWindowExpires(t *testing.T) {
	r := &Reporter{enabled: true, lastSent: make(map[string]time.Time)}
	appErr := apperr.New(nil).Component("classify").Category(apperr.CategoryClassifier).Build()
	key := appErr.Component() + "|" + appErr.Error()

	r.lastSent[key] = time.Now().Add(-(dedupeWindow + time.Minute))
	r.Report(appErr)

	if time.Since(r.lastSent[key]) > time.Second {
		t.Fatal("expected the dedupe entry to refresh once the window has elapsed")
	}
}

func TestFlushOnDisabledReporterIsNoop(t *testing.T) {
	r := &Reporter{}
	r.Flush(time.Millisecond)
}
