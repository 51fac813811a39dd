package pipeline

import (
	"testing"

	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

func TestSegmentQueueTryEnqueueMarksInFlight(t *testing.T) {
	q := newSegmentQueue(4)
	seg := segment.Segment{Path: "/tmp/segment_000001.wav"}

	if !q.TryEnqueue(seg) {
		t.Fatal("expected enqueue to succeed")
	}
	if _, ok := q.InFlight()[seg.Path]; !ok {
		t.Fatal("expected segment to be marked in-flight")
	}
	if q.QueuedLen() != 1 {
		t.Fatalf("expected queue length 1, got %d", q.QueuedLen())
	}
}

func TestSegmentQueueReleaseClearsInFlight(t *testing.T) {
	q := newSegmentQueue(4)
	seg := segment.Segment{Path: "/tmp/segment_000002.wav"}
	q.TryEnqueue(seg)
	<-q.Chan()

	q.Release(seg.Path)
	if _, ok := q.InFlight()[seg.Path]; ok {
		t.Fatal("expected segment to no longer be in-flight after release")
	}
}

func TestSegmentQueueTryEnqueueIdempotentWhileInFlight(t *testing.T) {
	q := newSegmentQueue(4)
	seg := segment.Segment{Path: "/tmp/segment_000003.wav"}
	q.TryEnqueue(seg)

	if !q.TryEnqueue(seg) {
		t.Fatal("re-enqueueing an already in-flight segment should be a no-op success")
	}
	if q.QueuedLen() != 1 {
		t.Fatalf("expected no duplicate channel entry, got queue length %d", q.QueuedLen())
	}
}

func TestSegmentQueueFullFailsWithoutMarkingInFlight(t *testing.T) {
	q := newSegmentQueue(1)
	q.TryEnqueue(segment.Segment{Path: "/tmp/a.wav"})

	seg := segment.Segment{Path: "/tmp/b.wav"}
	if q.TryEnqueue(seg) {
		t.Fatal("expected enqueue to fail when channel is full")
	}
	if _, ok := q.InFlight()[seg.Path]; ok {
		t.Fatal("a failed enqueue must not leave a stale in-flight marker")
	}
}
