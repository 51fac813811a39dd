package pipeline

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
	"github.com/livingstonekit-alt/feather-front/internal/bestclip"
	"github.com/livingstonekit-alt/feather-front/internal/classify"
	"github.com/livingstonekit-alt/feather-front/internal/datastore"
	"github.com/livingstonekit-alt/feather-front/internal/httpapi"
	"github.com/livingstonekit-alt/feather-front/internal/telemetry"
)

// recorder implements capture.Publisher, gate.EventSink, and
// classify.Recorder against a single Persistent Store plus its
// LatestSnapshot writer and Best-Clip archive, so every component
// drives the same snapshot-and-event machinery the same way. Every
// "error" event is additionally mirrored to telemetry, since that's
// the one event type every component funnels its failures through.
type recorder struct {
	store     *datastore.Store
	snapshot  *datastore.SnapshotWriter
	archive   *bestclip.Archive
	telemetry *telemetry.Reporter
	metrics   *httpapi.Metrics
	log       *slog.Logger
}

func newRecorder(store *datastore.Store, snapshot *datastore.SnapshotWriter, archive *bestclip.Archive, reporter *telemetry.Reporter, metrics *httpapi.Metrics, log *slog.Logger) *recorder {
	return &recorder{store: store, snapshot: snapshot, archive: archive, telemetry: reporter, metrics: metrics, log: log}
}

func (r *recorder) PublishStatus(status datastore.Status, message string) {
	snap, _, err := r.snapshot.Read()
	if err != nil {
		r.log.Warn("failed to read latest snapshot", "error", err)
	}
	snap.Status = status
	snap.StatusMessage = message
	snap.LogRevision = r.store.Revision()
	if err := r.snapshot.Write(snap); err != nil {
		r.log.Warn("failed to write latest snapshot", "error", err)
	}
}

func (r *recorder) EmitEvent(eventType datastore.EventType, message string) {
	evt := datastore.Event{
		ID:        datastore.NewOpaqueID(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Type:      eventType,
		Message:   message,
	}
	if err := r.store.AppendEvent(evt); err != nil {
		r.log.Warn("failed to append event", "error", err)
	}
	if eventType == datastore.EventError {
		r.telemetry.Report(apperr.New(nil).Component("pipeline").Category(apperr.CategorySystem).
			Priority(apperr.PriorityHigh).Context("message", message).Build())
	}
}

func (r *recorder) RecordDetections(timestamp string, predictions []classify.Prediction, belowThreshold bool) error {
	var top []datastore.Prediction
	for _, p := range predictions {
		conf := p.Confidence
		d := datastore.Detection{
			Timestamp:      timestamp,
			Species:        p.Species,
			ScientificName: p.ScientificName,
			Confidence:     &conf,
		}
		stored, err := r.store.AppendDetection(d)
		if err != nil {
			return err
		}

		eventType := datastore.EventDetection
		msg := stored.Species
		if belowThreshold {
			msg = stored.Species + " (below threshold)"
		}
		r.EmitEvent(eventType, msg)
		r.metrics.DetectionsTotal.WithLabelValues(strconv.FormatBool(!belowThreshold)).Inc()

		top = append(top, datastore.Prediction{
			Species:        stored.Species,
			ScientificName: stored.ScientificName,
			Confidence:     stored.Confidence,
		})
	}

	if belowThreshold || len(top) == 0 {
		return nil
	}

	snap, _, err := r.snapshot.Read()
	if err != nil {
		r.log.Warn("failed to read latest snapshot", "error", err)
	}
	snap.Timestamp = timestamp
	snap.Species = top[0].Species
	snap.TopPredictions = top
	snap.SpeciesCount = r.store.SpeciesCount()
	snap.LogRevision = r.store.Revision()
	return r.snapshot.Write(snap)
}

func (r *recorder) ConsiderBestClip(segPath string, p classify.Prediction, timestamp string) error {
	return r.archive.Consider(segPath, p.Species, p.ScientificName, p.Confidence, timestamp)
}
