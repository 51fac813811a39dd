package datastore

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/livingstonekit-alt/feather-front/internal/apperr"
)

// legacyDetection mirrors the line-delimited JSON log format the
// original implementation wrote, one object per line.
type legacyDetection struct {
	ID             string   `json:"id"`
	Timestamp      string   `json:"timestamp"`
	Species        string   `json:"species"`
	ScientificName string   `json:"scientific_name"`
	Confidence     *float64 `json:"confidence"`
	Location       string   `json:"location"`
}

// MigrateLegacyDetections imports a pre-existing line-delimited JSON
// detection log, but only when the detections table is currently
// empty, matching the one-shot-on-empty migration policy.
func (s *Store) MigrateLegacyDetections(path string) (int, error) {
	var count int64
	if err := s.db.Model(&Detection{}).Count(&count).Error; err != nil {
		return 0, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	if count > 0 {
		return 0, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	defer f.Close()

	imported := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ld legacyDetection
		if err := json.Unmarshal(line, &ld); err != nil {
			continue
		}
		raw, _ := json.Marshal(ld)
		if _, err := s.AppendDetection(Detection{
			ID:             ld.ID,
			Timestamp:      ld.Timestamp,
			Species:        ld.Species,
			ScientificName: ld.ScientificName,
			Confidence:     ld.Confidence,
			Location:       ld.Location,
			RawJSON:        string(raw),
		}); err != nil {
			continue
		}
		imported++
	}
	return imported, nil
}

// legacyIconIndex mirrors the original icons.json shape: a flat map of
// species name to icon filename.
type legacyIconIndex map[string]string

// MigrateLegacyIcons imports a pre-existing icon-index JSON file, only
// when the species_icons table is currently empty.
func (s *Store) MigrateLegacyIcons(path string) (int, error) {
	var count int64
	if err := s.db.Model(&SpeciesIcon{}).Count(&count).Error; err != nil {
		return 0, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	if count > 0 {
		return 0, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	var idx legacyIconIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		return 0, apperr.New(err).Component("datastore").Category(apperr.CategoryDatabase).Build()
	}
	imported := 0
	for species, filename := range idx {
		if err := s.UpsertSpeciesIcon(species, filename); err != nil {
			continue
		}
		imported++
	}
	return imported, nil
}
