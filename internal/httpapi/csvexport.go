package httpapi

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

var csvHeader = []string{"timestamp", "species", "scientific_name", "confidence", "location", "id"}

// WriteDetectionsCSV writes rows in the fixed column order the export
// contract promises, UTF-8 with no BOM (encoding/csv never emits one).
func WriteDetectionsCSV(w io.Writer, rows []datastore.Detection) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, d := range rows {
		confidence := ""
		if d.Confidence != nil {
			confidence = strconv.FormatFloat(*d.Confidence, 'f', -1, 64)
		}
		record := []string{d.Timestamp, d.Species, d.ScientificName, confidence, d.Location, d.ID}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
