package datastore

import (
	"strings"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// UpsertSpeciesIcon records the icon filename for a species, keyed by
// a lowercased, trimmed form of the species name.
func (s *Store) UpsertSpeciesIcon(speciesName, filename string) error {
	icon := SpeciesIcon{
		SpeciesKey:  normalizeSpeciesKey(speciesName),
		SpeciesName: speciesName,
		Filename:    filename,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := s.db.Save(&icon).Error; err != nil {
		return apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	return nil
}

// RemoveSpeciesIcon deletes the icon mapping for a species, if any.
func (s *Store) RemoveSpeciesIcon(speciesName string) error {
	res := s.db.Delete(&SpeciesIcon{}, "species_key = ?", normalizeSpeciesKey(speciesName))
	if res.Error != nil {
		return apperr.New(res.Error).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	return nil
}

// SpeciesIconFilename returns the icon filename for a species, if one
// has been recorded.
func (s *Store) SpeciesIconFilename(speciesName string) (string, bool) {
	var icon SpeciesIcon
	res := s.db.Where("species_key = ?", normalizeSpeciesKey(speciesName)).First(&icon)
	if res.Error != nil {
		return "", false
	}
	return icon.Filename, true
}

func normalizeSpeciesKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
