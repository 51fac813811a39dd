package datastore

import (
	"encoding/json"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// AppendDetection inserts-or-replaces d by id in a single transaction,
// then updates in-memory aggregates, bumps the revision, and
// invalidates the summary cache. If d.ID is empty it is derived from
// (timestamp, species, confidence).
func (s *Store) AppendDetection(d Detection) (Detection, error) {
	d.Confidence = NormalizeConfidence(d.Confidence)
	if d.ID == "" {
		d.ID = DeriveID(d.Timestamp, d.Species, d.Confidence)
	}

	if err := s.db.Save(&d).Error; err != nil {
		return d, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).
			Context("id", d.ID).Build()
	}

	s.aggMu.Lock()
	s.speciesCounts[d.Species]++
	s.aggMu.Unlock()

	s.bumpRevision()
	s.invalidateSummaryCache()
	return d, nil
}

// DeleteDetection removes the row by id. If it existed, the species
// aggregates are rebuilt from a full scan, the revision bumps, and the
// summary cache is invalidated.
func (s *Store) DeleteDetection(id string) (existed bool, err error) {
	res := s.db.Delete(&Detection{}, "id = ?", id)
	if res.Error != nil {
		return false, apperr.New(res.Error).Component("datastore").Category(apperr.CategoryDatabase).
			Context("id", id).Build()
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	if err := s.rebuildAggregates(); err != nil {
		return true, err
	}
	s.bumpRevision()
	s.invalidateSummaryCache()
	return true, nil
}

// ListDetections returns the most recent limit detections (clamped to
// [0,1000], default 200 when limit<=0), ordered oldest-first as callers
// expect chronological output.
func (s *Store) ListDetections(limit int) ([]Detection, error) {
	limit = clampLimit(limit)
	var rows []Detection
	if err := s.db.Order("timestamp DESC, rowid DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	reverse(rows)
	return rows, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 200
	}
	if limit > 1000 {
		return 1000
	}
	return limit
}

func reverse(rows []Detection) {
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
}

// SpeciesCount returns the number of distinct species across all
// detections.
func (s *Store) SpeciesCount() int {
	s.aggMu.Lock()
	defer s.aggMu.Unlock()
	return len(s.speciesCounts)
}

// SpeciesCounts returns a snapshot copy of the per-species count map.
func (s *Store) SpeciesCounts() map[string]int {
	s.aggMu.Lock()
	defer s.aggMu.Unlock()
	out := make(map[string]int, len(s.speciesCounts))
	for k, v := range s.speciesCounts {
		out[k] = v
	}
	return out
}

// rebuildAggregates recomputes the species set/count map from a full
// scan, used on startup and after any delete.
func (s *Store) rebuildAggregates() error {
	var rows []Detection
	if err := s.db.Select("species").Find(&rows).Error; err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Species]++
	}
	s.aggMu.Lock()
	s.speciesCounts = counts
	s.aggMu.Unlock()
	return nil
}

// NowUTC formats the current time per the pipeline's timestamp
// convention: UTC, RFC3339, trailing Z.
func NowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05Z")
}

// RawRecord unmarshals a detection's raw JSON blob, tolerating missing
// or malformed content by returning a minimal record with just the id
// and timestamp.
func RawRecord(d Detection) map[string]any {
	out := map[string]any{"id": d.ID, "timestamp": d.Timestamp}
	if d.RawJSON == "" {
		return out
	}
	var full map[string]any
	if err := json.Unmarshal([]byte(d.RawJSON), &full); err != nil {
		return out
	}
	return full
}
