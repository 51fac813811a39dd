package ratelimit

import (
	"testing"
	"time"
)

func TestAllowAtThrottles(t *testing.T) {
	l := New(10 * time.Second)
	base := time.Unix(1000, 0)

	if !l.AllowAt("capture-restart", base) {
		t.Fatalf("first call should be allowed")
	}
	if l.AllowAt("capture-restart", base.Add(5*time.Second)) {
		t.Fatalf("call within interval should be throttled")
	}
	if !l.AllowAt("capture-restart", base.Add(11*time.Second)) {
		t.Fatalf("call past interval should be allowed")
	}
}

func TestAllowAtIsPerKey(t *testing.T) {
	l := New(time.Minute)
	base := time.Unix(0, 0)

	if !l.AllowAt("a", base) || !l.AllowAt("b", base) {
		t.Fatalf("distinct keys should not throttle each other")
	}
}

func TestCleanupRemovesStaleKeys(t *testing.T) {
	l := New(time.Minute)
	l.AllowAt("old", time.Now().Add(-time.Hour))
	l.AllowAt("fresh", time.Now())

	removed := l.Cleanup(10 * time.Minute)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}
