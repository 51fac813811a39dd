package datastore

import (
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// invalidateSummaryCache is a no-op placeholder for symmetry with the
// write protocol description: validity is entirely determined by
// comparing the stored revision to the current one in SummaryCache, so
// there is nothing to eagerly clear.
func (s *Store) invalidateSummaryCache() {}

// SummaryCache returns the cached payload iff it was built against the
// current log revision; the second return value reports a cache hit.
func (s *Store) SummaryCache() (payload string, ok bool, err error) {
	var row SummaryCacheRow
	res := s.db.Where("cache_key = ?", SummaryCacheKey).First(&row)
	if res.Error != nil {
		if res.RowsAffected == 0 {
			return "", false, nil
		}
		return "", false, apperr.New(res.Error).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	if row.LogRevision != s.Revision() {
		return "", false, nil
	}
	return row.PayloadJSON, true, nil
}

// SetSummaryCache stores payload against the current revision as the
// single summary_cache row.
func (s *Store) SetSummaryCache(payload string) error {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	row := SummaryCacheRow{
		CacheKey:    SummaryCacheKey,
		LogRevision: s.Revision(),
		PayloadJSON: payload,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.db.Save(&row).Error; err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	return nil
}
