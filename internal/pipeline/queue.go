package pipeline

import (
	"sync"

	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

// segmentQueue is the bounded hand-off between the Dispatcher and a
// worker pool (Silence Gate or Classifier Pool): a buffered channel
// workers read from, plus an in-flight set so the Dispatcher knows
// which on-disk segments are already claimed and must not be evicted
// or re-offered.
type segmentQueue struct {
	ch chan segment.Segment

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func newSegmentQueue(capacity int) *segmentQueue {
	return &segmentQueue{
		ch:       make(chan segment.Segment, capacity),
		inFlight: make(map[string]struct{}),
	}
}

// Chan exposes the channel a Pool's Run method reads from.
func (q *segmentQueue) Chan() <-chan segment.Segment {
	return q.ch
}

// TryEnqueue attempts a non-blocking send, marking the segment
// in-flight on success. Used by the Dispatcher, which must never block
// its reconciliation loop on a full downstream queue.
func (q *segmentQueue) TryEnqueue(seg segment.Segment) bool {
	q.mu.Lock()
	if _, already := q.inFlight[seg.Path]; already {
		q.mu.Unlock()
		return true
	}
	q.inFlight[seg.Path] = struct{}{}
	q.mu.Unlock()

	select {
	case q.ch <- seg:
		return true
	default:
		q.mu.Lock()
		delete(q.inFlight, seg.Path)
		q.mu.Unlock()
		return false
	}
}

// Enqueue is TryEnqueue under the name the Silence Gate's Forwarder
// interface expects when handing an active segment to the Classifier
// Pool's queue.
func (q *segmentQueue) Enqueue(seg segment.Segment) bool {
	return q.TryEnqueue(seg)
}

// Release clears a segment's in-flight marker once a worker has
// finished with it (dropped, classified, or errored out).
func (q *segmentQueue) Release(path string) {
	q.mu.Lock()
	delete(q.inFlight, path)
	q.mu.Unlock()
}

// InFlight returns a snapshot of the currently-claimed paths.
func (q *segmentQueue) InFlight() map[string]struct{} {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make(map[string]struct{}, len(q.inFlight))
	for k := range q.inFlight {
		out[k] = struct{}{}
	}
	return out
}

// QueuedLen is how many segments are sitting in the channel buffer,
// not yet picked up by a worker.
func (q *segmentQueue) QueuedLen() int {
	return len(q.ch)
}

// Size is the Silence Gate's Backlog figure for this queue on its own:
// queued-but-unpicked entries plus everything marked in-flight.
func (q *segmentQueue) Size() int {
	q.mu.Lock()
	n := len(q.inFlight)
	q.mu.Unlock()
	return n + q.QueuedLen()
}
