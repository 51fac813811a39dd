package capture

import (
	"sync"

	"github.com/smallnest/ringbuffer"
)

// stderrTail keeps the last N bytes of the capture child's stderr
// around for diagnostics, so the stall warning logged before a restart
// can include what the tool was complaining about instead of discarding
// it silently.
type stderrTail struct {
	mu  sync.Mutex
	buf *ringbuffer.RingBuffer
}

func newStderrTail(capacity int) *stderrTail {
	return &stderrTail{buf: ringbuffer.New(capacity)}
}

// Write implements io.Writer so it can be plugged directly into
// exec.Cmd.Stderr.
func (t *stderrTail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	// A full ring buffer returns an error on Write; we only want the
	// most recent bytes, so clear the whole buffer and retry once.
	n, err := t.buf.Write(p)
	if err != nil {
		_ = t.buf.Reset()
		n, err = t.buf.Write(p)
	}
	return n, err
}

// String returns a snapshot of the retained tail without draining it.
func (t *stderrTail) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf.Bytes())
}
