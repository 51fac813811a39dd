package datastore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// Status is the coarse operational status shown on the dashboard.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusListening Status = "listening"
	StatusError     Status = "error"
)

// Prediction is one classifier output, as surfaced in LatestSnapshot's
// top_predictions list.
type Prediction struct {
	Species        string   `json:"species"`
	ScientificName string   `json:"scientific_name"`
	Confidence     *float64 `json:"confidence"`
}

// LatestSnapshot is the single "what to show right now" record,
// rewritten whenever capture or classification status changes.
type LatestSnapshot struct {
	Timestamp       string       `json:"timestamp"`
	Species         string       `json:"species"`
	Status          Status       `json:"status"`
	StatusMessage   string       `json:"status_message"`
	TopPredictions  []Prediction `json:"top_predictions"`
	LastDetection   *Detection   `json:"last_detection,omitempty"`
	SpeciesCount    int          `json:"species_count"`
	LogRevision     int64        `json:"log_revision"`
	ConfigProjection map[string]any `json:"config"`
}

// BestClipEntry is one species' best-known segment.
type BestClipEntry struct {
	Species        string  `json:"species"`
	ScientificName string  `json:"scientific_name"`
	Confidence     float64 `json:"confidence"`
	SNRdB          *float64 `json:"snr_db"`
	Score          float64 `json:"score"`
	Timestamp      string  `json:"timestamp"`
	Filename       string  `json:"filename"`
}

// BestClipIndex maps species -> best clip entry.
type BestClipIndex map[string]BestClipEntry

// SnapshotWriter serializes writes of latest.json behind a single
// dedicated lock, satisfying the "atomic with respect to crash" and
// "dedicated write lock" invariants.
type SnapshotWriter struct {
	mu   sync.Mutex
	path string
}

func NewSnapshotWriter(path string) *SnapshotWriter {
	return &SnapshotWriter{path: path}
}

// Write persists snap via write-temp-then-rename within the same
// directory, so a crash mid-write never leaves a corrupt latest.json.
func (w *SnapshotWriter) Write(snap LatestSnapshot) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return atomicWriteJSON(w.path, snap)
}

// Read loads the current latest.json, if present.
func (w *SnapshotWriter) Read() (LatestSnapshot, bool, error) {
	var snap LatestSnapshot
	data, err := os.ReadFile(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return snap, false, nil
		}
		return snap, false, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	if err := json.Unmarshal(data, &snap); err != nil {
		return snap, false, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	return snap, true, nil
}

// ClipIndexStore persists the best-clip index JSON sidecar.
type ClipIndexStore struct {
	mu   sync.Mutex
	path string
}

func NewClipIndexStore(path string) *ClipIndexStore {
	return &ClipIndexStore{path: path}
}

func (c *ClipIndexStore) Load() (BestClipIndex, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := BestClipIndex{}
	data, err := os.ReadFile(c.path)
	if err != nil {
		if os.IsNotExist(err) {
			return idx, nil
		}
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	if err := json.Unmarshal(data, &idx); err != nil {
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	return idx, nil
}

func (c *ClipIndexStore) Save(idx BestClipIndex) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return atomicWriteJSON(c.path, idx)
}

// atomicWriteJSON writes v as indented JSON to a temp file in the same
// directory as path, then renames it over path.
func atomicWriteJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup if rename succeeds first

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	if err := tmp.Close(); err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	return nil
}
