package httpapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/livingstonekit-alt/feather-front/internal/datastore"
)

// normalizeManualTimestamp applies the manual-entry contract: empty
// becomes now, a parseable ISO-8601 value is kept (converted to UTC),
// and anything unparseable falls back to now rather than failing the
// request. The result always carries a trailing "Z".
func normalizeManualTimestamp(raw string) string {
	if raw == "" {
		return datastore.NowUTC()
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return datastore.NowUTC()
	}
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// normalizeManualConfidence parses a confidence value that may arrive
// as a bare number, a "73%" string, or be absent entirely (nil). A
// trailing "%" is stripped before parsing; datastore.NormalizeConfidence
// handles the >1-as-percent and <0-floor conventions afterward.
func normalizeManualConfidence(raw any) *float64 {
	if raw == nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		return datastore.NormalizeConfidence(&v)
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(v), "%")
		if s == "" {
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return datastore.NormalizeConfidence(&f)
	default:
		return nil
	}
}
