// Package classify implements the Classifier Pool: a worker pool that
// invokes an external classifier binary per segment, parses its CSV
// output, and records detections.
package classify

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
	"github.com/livingstonekit-alt/feather-front/internal/conf"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/httpapi"
	"github.com/livingstonekit-alt/feather-front/internal/segment"
)

const invocationTimeout = 60 * time.Second

// Recorder is the subset of Persistent Store behavior the pool needs:
// appending detections, updating the LatestSnapshot, and evaluating the
// best-clip archive.
type Recorder interface {
	PublishStatus(status datastore.Status, message string)
	EmitEvent(eventType datastore.EventType, message string)
	RecordDetections(timestamp string, predictions []Prediction, belowThreshold bool) error
	ConsiderBestClip(segPath string, p Prediction, timestamp string) error
}

// Releaser clears a segment's in-flight marker on the queue the
// Dispatcher (via the Silence Gate) fed it from.
type Releaser interface {
	Release(path string)
}

// Pool runs N classifier workers, each consuming one segment at a time
// from a shared queue.
type Pool struct {
	store         *conf.Store
	recorder      Recorder
	release       Releaser
	outputBaseDir string
	metrics       *httpapi.Metrics
	log           *slog.Logger

	errMu   sync.Mutex
	lastErr string

	activeMu sync.Mutex
	active   map[string]struct{}
}

// New creates a classifier pool. outputBaseDir is the pipeline's fixed
// working directory for classifier output; {output} receives the CSV
// path resolveOutput derives beneath it for each invocation.
func New(store *conf.Store, recorder Recorder, release Releaser, outputBaseDir string, metrics *httpapi.Metrics, log *slog.Logger) *Pool {
	return &Pool{
		store:         store,
		recorder:      recorder,
		release:       release,
		outputBaseDir: outputBaseDir,
		metrics:       metrics,
		log:           log,
		active:        make(map[string]struct{}),
	}
}

// Size reports the number of segments currently being worked, the
// Classifier Pool half of the Silence Gate's backlog figure.
func (p *Pool) Size() int {
	p.activeMu.Lock()
	defer p.activeMu.Unlock()
	return len(p.active)
}

// Run starts numWorkers goroutines pulling from in until ctx is
// canceled or in is closed.
func (p *Pool) Run(ctx context.Context, numWorkers int, in <-chan segment.Segment) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		workerID := i + 1
		go p.worker(ctx, workerID, in)
	}
}

func (p *Pool) worker(ctx context.Context, id int, in <-chan segment.Segment) {
	for {
		select {
		case <-ctx.Done():
			return
		case seg, ok := <-in:
			if !ok {
				return
			}
			p.markActive(seg.Path)
			p.handle(ctx, id, seg)
			p.markDone(seg.Path)
			p.release.Release(seg.Path)
		}
	}
}

func (p *Pool) markActive(path string) {
	p.activeMu.Lock()
	p.active[path] = struct{}{}
	p.activeMu.Unlock()
}

func (p *Pool) markDone(path string) {
	p.activeMu.Lock()
	delete(p.active, path)
	p.activeMu.Unlock()
}

func (p *Pool) handle(ctx context.Context, workerID int, seg segment.Segment) {
	defer os.Remove(seg.Path)

	settings := p.store.Get()
	if settings.ClassifierTemplate == "" {
		p.recorder.PublishStatus(datastore.StatusIdle, "template not set")
		p.reportError("template not set")
		return
	}

	p.recorder.EmitEvent(datastore.EventAnalysis, workerLabel(workerID)+" analyzing segment")

	week := settings.EffectiveWeek(time.Now())
	out, err := resolveOutput(p.outputBaseDir, seg.Path)
	if err != nil {
		p.reportError(err.Error())
		return
	}
	if out.invocationDir != "" {
		if err := os.MkdirAll(out.invocationDir, 0o755); err != nil {
			p.reportError(err.Error())
			return
		}
		defer os.RemoveAll(out.invocationDir)
	}
	defer os.Remove(out.csvPath)

	vars := varsFrom(settings, seg.Path, out.csvPath, week)
	argv, err := Render(settings.ClassifierTemplate, vars)
	if err != nil {
		p.reportError(err.Error())
		return
	}
	if len(argv) == 0 {
		p.reportError("empty classifier command")
		return
	}

	result := p.invoke(ctx, argv, settings.ClassifierWorkDir)
	if result.err != nil {
		outcome := "error"
		var appErr *apperr.Error
		if errors.As(result.err, &appErr) && appErr.Category() == apperr.CategoryTimeout {
			outcome = "timeout"
		}
		p.metrics.ClassifierInvokes.WithLabelValues(outcome).Inc()
		p.reportError(result.err.Error())
		return
	}
	p.metrics.ClassifierInvokes.WithLabelValues("success").Inc()

	predictions, err := p.readResults(out.csvPath, result.exitedZero)
	if err != nil {
		p.reportError(err.Error())
		return
	}
	if len(predictions) == 0 {
		return
	}

	above, below := partition(predictions, settings.MinConfidence)
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if len(above) > 0 {
		if err := p.recorder.RecordDetections(timestamp, above, false); err != nil {
			p.log.Warn("failed to record detections", "error", err)
		}
		for _, pred := range above {
			if err := p.recorder.ConsiderBestClip(seg.Path, pred, timestamp); err != nil {
				p.log.Warn("best-clip evaluation failed", "species", pred.Species, "error", err)
			}
		}
		p.recorder.PublishStatus(datastore.StatusListening, "Detected")
	}
	if len(below) > 0 {
		if err := p.recorder.RecordDetections(timestamp, below, true); err != nil {
			p.log.Warn("failed to record below-threshold detections", "error", err)
		}
	}
}

func workerLabel(id int) string {
	return "Worker " + itoa(id)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

type invocationResult struct {
	err        error
	exitedZero bool
}

func (p *Pool) invoke(ctx context.Context, argv []string, workDir string) invocationResult {
	ctx, cancel := context.WithTimeout(ctx, invocationTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if workDir != "" {
		cmd.Dir = workDir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return invocationResult{err: apperr.New(nil).Component("classify").Category(apperr.CategoryTimeout).
			Context("reason", "timed out").Build()}
	}
	if errors.Is(err, exec.ErrNotFound) {
		return invocationResult{err: apperr.New(err).Component("classify").Category(apperr.CategoryClassifier).
			Context("reason", "command not found").Build()}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		msg := trimmed(stderr.String())
		if msg == "" {
			msg = "classifier failed"
		}
		return invocationResult{err: apperr.New(err).Component("classify").Category(apperr.CategoryClassifier).
			Context("reason", msg).Build()}
	}
	if err != nil {
		return invocationResult{err: apperr.New(err).Component("classify").Category(apperr.CategoryClassifier).Build()}
	}
	return invocationResult{exitedZero: true}
}

func trimmed(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r' || s[len(s)-1] == ' ') {
		s = s[:len(s)-1]
	}
	for len(s) > 0 && (s[0] == '\n' || s[0] == '\r' || s[0] == ' ') {
		s = s[1:]
	}
	return s
}

func (p *Pool) readResults(csvPath string, exitedZero bool) ([]Prediction, error) {
	f, err := os.Open(csvPath)
	if err != nil {
		if os.IsNotExist(err) && exitedZero {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return ParseCSV(f)
}

func partition(predictions []Prediction, minConfidence float64) (above, below []Prediction) {
	sorted := make([]Prediction, len(predictions))
	copy(sorted, predictions)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Confidence > sorted[j].Confidence })

	for _, p := range sorted {
		if p.Confidence >= minConfidence {
			if len(above) < 3 {
				above = append(above, p)
			}
		} else if len(below) < 3 {
			below = append(below, p)
		}
	}
	return above, below
}

func (p *Pool) reportError(msg string) {
	p.errMu.Lock()
	suppress := p.lastErr == msg
	p.lastErr = msg
	p.errMu.Unlock()

	p.recorder.PublishStatus(datastore.StatusError, msg)
	if !suppress {
		p.recorder.EmitEvent(datastore.EventError, msg)
	}
}
