package datastore

import (
	"encoding/json"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// SpeciesSummary is one row of the per-species aggregate the
// /api/log/summary endpoint serves.
type SpeciesSummary struct {
	Species        string   `json:"species"`
	ScientificName string   `json:"scientific_name"`
	Count          int      `json:"count"`
	LastTimestamp  string   `json:"last_timestamp"`
	AvgConfidence  *float64 `json:"avg_confidence"`
}

// Summary returns the per-species aggregate, using SummaryCache when it
// is valid at the current log revision and rebuilding (then populating
// the cache) otherwise.
func (s *Store) Summary() ([]SpeciesSummary, error) {
	if payload, ok, err := s.SummaryCache(); err != nil {
		return nil, err
	} else if ok {
		var rows []SpeciesSummary
		if err := json.Unmarshal([]byte(payload), &rows); err == nil {
			return rows, nil
		}
	}

	rows, err := s.buildSummary()
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(rows); err == nil {
		_ = s.SetSummaryCache(string(payload))
	}
	return rows, nil
}

func (s *Store) buildSummary() ([]SpeciesSummary, error) {
	type row struct {
		Species        string
		ScientificName string
		Count          int
		LastTimestamp  string
		AvgConfidence  *float64
	}
	var out []row
	err := s.db.Model(&Detection{}).
		Select("species, scientific_name, count(*) as count, max(timestamp) as last_timestamp, avg(confidence) as avg_confidence").
		Group("species, scientific_name").
		Order("count desc").
		Scan(&out).Error
	if err != nil {
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}

	summaries := make([]SpeciesSummary, len(out))
	for i, r := range out {
		summaries[i] = SpeciesSummary{
			Species:        r.Species,
			ScientificName: r.ScientificName,
			Count:          r.Count,
			LastTimestamp:  r.LastTimestamp,
			AvgConfidence:  r.AvgConfidence,
		}
	}
	return summaries, nil
}

// DetectionsSince returns every detection whose stored timestamp is at
// or after since, used by the activity histogram. The comparison is a
// text comparison against since formatted as UTC RFC3339; timestamps
// are not parsed here, so a malformed one is not skipped.
func (s *Store) DetectionsSince(since time.Time) ([]Detection, error) {
	var rows []Detection
	if err := s.db.Where("timestamp >= ?", since.UTC().Format(time.RFC3339)).Find(&rows).Error; err != nil {
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	return rows, nil
}
