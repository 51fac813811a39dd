package datastore

import "github.com/livingstonekit-alt/feather-front/internal/apperr"

// AppendEvent inserts-or-replaces the event by id. Events are never
// mutated after insertion in normal operation; Save is used for
// insert-or-replace semantics consistent with detections.
func (s *Store) AppendEvent(e Event) error {
	if err := s.db.Save(&e).Error; err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).
			Context("id", e.ID).Build()
	}
	return nil
}

// ListEvents returns the most recent limit events (clamped [0,1000],
// default 200), ordered oldest-first.
func (s *Store) ListEvents(limit int) ([]Event, error) {
	limit = clampLimit(limit)
	var rows []Event
	if err := s.db.Order("timestamp DESC, rowid DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
		rows[i], rows[j] = rows[j], rows[i]
	}
	return rows, nil
}
