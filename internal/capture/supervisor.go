// Package capture implements the Capture Supervisor: it launches and
// supervises the external audio-capture child process that writes
// segment files into the Segment Directory, with stall detection and
// orphan reaping.
package capture

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/livingstonekit-alt/feather-front/internal/conf"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/logging"
	"github.com/livingstonekit-alt/feather-front/internal/ratelimit"
	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

const (
	watchdogTick    = 5 * time.Second
	terminateWait   = 2 * time.Second
	restartLogEvery = 15 * time.Second
	minStallTimeout = 10 * time.Second
	stallResetCount = 3
)

// Publisher receives status updates the supervisor wants reflected in
// the LatestSnapshot, and operational events for the Persistent Store.
type Publisher interface {
	PublishStatus(status datastore.Status, message string)
	EmitEvent(eventType datastore.EventType, message string)
}

// Supervisor owns the capture child process end to end: one instance
// per pipeline, run via Run in its own goroutine.
type Supervisor struct {
	store   *conf.Store
	segDir  string
	publish Publisher
	limiter *ratelimit.Limiter
	log     *slog.Logger

	mu         sync.Mutex
	currentPid int
	stallCount int
}

// New creates a Supervisor for segDir, logging the host's logical core
// count once as a startup diagnostic (no behavior depends on it; the
// classifier runs out of process, so there is no worker-sizing decision
// left for it to inform).
func New(store *conf.Store, segDir string, publish Publisher) *Supervisor {
	log := logging.For("capture")
	log.Info("startup diagnostics", "logical_cores", cpuid.CPU.LogicalCores)
	return &Supervisor{
		store:   store,
		segDir:  segDir,
		publish: publish,
		limiter: ratelimit.New(restartLogEvery),
		log:     log,
	}
}

func stallTimeout(segmentSeconds int) time.Duration {
	d := time.Duration(segmentSeconds) * 5 * time.Second
	if d < minStallTimeout {
		return minStallTimeout
	}
	return d
}

// CurrentPID returns the pid of the currently-running capture child,
// or 0 if none is running.
func (s *Supervisor) CurrentPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentPid
}

func (s *Supervisor) setPID(pid int) {
	s.mu.Lock()
	s.currentPid = pid
	s.mu.Unlock()
}

// Run executes the supervisor's long-lived loop until ctx is canceled.
// Each iteration is one pass of the state machine described in the
// component design: resolve tool, build command, launch, watch, exit,
// sleep.
func (s *Supervisor) Run(ctx context.Context) {
	s.reapOrphansOnce()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s.runOnce(ctx)
	}
}

func (s *Supervisor) reapOrphansOnce() {
	ReapOrphans(s.segDir, int32(os.Getpid()))
}

func (s *Supervisor) runOnce(ctx context.Context) {
	tool, err := ResolveTool("ffmpeg")
	if err != nil {
		s.publish.PublishStatus(datastore.StatusError, "tool not found")
		return
	}

	settings := s.store.Get()
	args, err := BuildArgs(settings, s.segDir)
	if err != nil {
		s.publish.PublishStatus(datastore.StatusIdle, reasonOf(err))
		s.store.ConsumeRestart()
		select {
		case <-ctx.Done():
		case <-time.After(time.Second):
		}
		return
	}

	s.publish.PublishStatus(datastore.StatusListening, "Listening")

	tail := newStderrTail(8 * 1024)
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Stderr = tail

	if err := cmd.Start(); err != nil {
		s.publish.PublishStatus(datastore.StatusError, "failed to start capture tool")
		return
	}
	s.setPID(cmd.Process.Pid)

	exited := make(chan error, 1)
	go func() { exited <- cmd.Wait() }()

	lastActivity := s.newestSegmentMTime()
	watchdog := time.NewTicker(watchdogTick)
	defer watchdog.Stop()

	timeout := stallTimeout(settings.SegmentSeconds)

loop:
	for {
		select {
		case <-exited:
			break loop
		case <-ctx.Done():
			s.terminate(cmd)
			break loop
		case <-watchdog.C:
			if s.store.ConsumeRestart() {
				s.terminate(cmd)
				break loop
			}
			if mt := s.newestSegmentMTime(); !mt.IsZero() {
				lastActivity = mt
			}
			if time.Since(lastActivity) > timeout {
				s.onStall(tail.String())
				s.terminate(cmd)
				break loop
			}
		}
	}

	s.setPID(0)
	s.publish.PublishStatus(datastore.StatusIdle, "Input disconnected, retrying")
	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
	}
}

func (s *Supervisor) onStall(stderrTail string) {
	if s.limiter.Allow("capture-restart") {
		s.log.Warn("restarting capture", "reason", "stall", "stderr_tail", stderrTail)
		s.publish.EmitEvent(datastore.EventAnalysis, "restarting capture")
	}
	clearSegmentDir(s.segDir)

	s.mu.Lock()
	s.stallCount++
	reset := s.stallCount >= stallResetCount
	if reset {
		s.stallCount = 0
	}
	s.mu.Unlock()

	if reset {
		s.reapOrphansOnce()
	}
}

func (s *Supervisor) terminate(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = cmd.Process.Signal(os.Interrupt)
	done := make(chan struct{})
	go func() { _, _ = cmd.Process.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(terminateWait):
		_ = cmd.Process.Kill()
	}
}

func (s *Supervisor) newestSegmentMTime() time.Time {
	segs, err := segment.Dir(s.segDir)
	if err != nil || len(segs) == 0 {
		return time.Time{}
	}
	var newest time.Time
	for _, seg := range segs {
		if seg.ModTime.After(newest) {
			newest = seg.ModTime
		}
	}
	return newest
}

func clearSegmentDir(dir string) {
	segs, err := segment.Dir(dir)
	if err != nil {
		return
	}
	for _, seg := range segs {
		_ = os.Remove(seg.Path)
	}
}

func reasonOf(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
