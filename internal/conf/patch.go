package conf

import "strings"

// field describes one allow-listed, patchable setting: how to pull its
// raw value out of a patch map, cast/clamp it, and apply it to a
// Settings value. Modeled on the teacher's per-key env-binding table,
// generalized from "env var -> validate" to "patch value -> cast, clamp,
// apply".
type field struct {
	key     string
	apply   func(s *Settings, raw any) bool // returns true if the value was valid and applied
}

// allowList is the fixed set of keys a settings patch may touch. Any
// key outside this list is ignored entirely (not an error).
func allowList() []field {
	return []field{
		{"input_mode", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			switch InputMode(v) {
			case InputModeDevice, InputModeStream:
				s.InputMode = InputMode(v)
				return true
			}
			return false
		}},
		{"input_device", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			s.InputDevice = v
			return true
		}},
		{"stream_url", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			s.StreamURL = v
			return true
		}},
		{"segment_seconds", func(s *Settings, raw any) bool {
			v, ok := asInt(raw)
			if !ok || v < 1 {
				return false
			}
			s.SegmentSeconds = clampInt(v, 1, 3600)
			return true
		}},
		{"min_confidence", func(s *Settings, raw any) bool {
			v, ok := asFloat(raw)
			if !ok {
				return false
			}
			s.MinConfidence = clampFloat(v, 0, 1)
			return true
		}},
		{"silence_threshold_db", func(s *Settings, raw any) bool {
			v, ok := asFloat(raw)
			if !ok {
				return false
			}
			s.SilenceThresholdDB = clampFloat(v, -120, 0)
			return true
		}},
		{"silence_min_seconds", func(s *Settings, raw any) bool {
			v, ok := asFloat(raw)
			if !ok || v < 0 {
				return false
			}
			s.SilenceMinSeconds = v
			return true
		}},
		{"overlay_hold_seconds", func(s *Settings, raw any) bool {
			v, ok := asInt(raw)
			if !ok || v < 0 {
				return false
			}
			s.OverlayHoldSeconds = v
			return true
		}},
		{"overlay_sticky", func(s *Settings, raw any) bool {
			v, ok := raw.(bool)
			if !ok {
				return false
			}
			s.OverlaySticky = v
			return true
		}},
		{"classifier_template", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			s.ClassifierTemplate = v
			return true
		}},
		{"classifier_workdir", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			s.ClassifierWorkDir = v
			return true
		}},
		{"location", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			s.Location = v
			return true
		}},
		{"latitude", func(s *Settings, raw any) bool {
			v, ok := asFloat(raw)
			if !ok {
				return false
			}
			s.Latitude = clampFloat(v, -90, 90)
			return true
		}},
		{"longitude", func(s *Settings, raw any) bool {
			v, ok := asFloat(raw)
			if !ok {
				return false
			}
			s.Longitude = clampFloat(v, -180, 180)
			return true
		}},
		{"week", func(s *Settings, raw any) bool {
			v, ok := asInt(raw)
			if !ok {
				return false
			}
			s.Week = clampInt(v, 1, 48)
			return true
		}},
		{"auto_week", func(s *Settings, raw any) bool {
			v, ok := raw.(bool)
			if !ok {
				return false
			}
			s.AutoWeek = v
			return true
		}},
		{"weather_location", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			s.WeatherLocation = v
			return true
		}},
		{"weather_unit", func(s *Settings, raw any) bool {
			v, ok := asString(raw)
			if !ok {
				return false
			}
			v = strings.ToLower(v)
			if v != "metric" && v != "imperial" {
				return false
			}
			s.WeatherUnit = v
			return true
		}},
		{"http_port", func(s *Settings, raw any) bool {
			v, ok := asInt(raw)
			if !ok {
				return false
			}
			s.HTTPPort = clampInt(v, 1, 65535)
			return true
		}},
	}
}

// ApplyPatch applies raw against the allow-list, returning the keys
// that were actually changed (present, valid, and different from the
// current value) and whether a capture restart must be signaled.
func (st *Store) ApplyPatch(raw map[string]any) (changed []string, restart bool) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range allowList() {
		v, present := raw[f.key]
		if !present {
			continue
		}
		before := st.settings
		if !f.apply(&st.settings, v) {
			continue
		}
		if settingsFieldEqual(before, st.settings, f.key) {
			continue
		}
		changed = append(changed, f.key)
		if captureAffecting[f.key] {
			restart = true
		}
	}
	if restart {
		st.RequestRestart()
	}
	return changed, restart
}

// settingsFieldEqual reports whether the named field is unchanged
// between before and after, used only to decide membership in the
// "changed" list returned to callers.
func settingsFieldEqual(before, after Settings, key string) bool {
	switch key {
	case "input_mode":
		return before.InputMode == after.InputMode
	case "input_device":
		return before.InputDevice == after.InputDevice
	case "stream_url":
		return before.StreamURL == after.StreamURL
	case "segment_seconds":
		return before.SegmentSeconds == after.SegmentSeconds
	case "min_confidence":
		return before.MinConfidence == after.MinConfidence
	case "silence_threshold_db":
		return before.SilenceThresholdDB == after.SilenceThresholdDB
	case "silence_min_seconds":
		return before.SilenceMinSeconds == after.SilenceMinSeconds
	case "overlay_hold_seconds":
		return before.OverlayHoldSeconds == after.OverlayHoldSeconds
	case "overlay_sticky":
		return before.OverlaySticky == after.OverlaySticky
	case "classifier_template":
		return before.ClassifierTemplate == after.ClassifierTemplate
	case "classifier_workdir":
		return before.ClassifierWorkDir == after.ClassifierWorkDir
	case "location":
		return before.Location == after.Location
	case "latitude":
		return before.Latitude == after.Latitude
	case "longitude":
		return before.Longitude == after.Longitude
	case "week":
		return before.Week == after.Week
	case "auto_week":
		return before.AutoWeek == after.AutoWeek
	case "weather_location":
		return before.WeatherLocation == after.WeatherLocation
	case "weather_unit":
		return before.WeatherUnit == after.WeatherUnit
	case "http_port":
		return before.HTTPPort == after.HTTPPort
	}
	return true
}

func asString(raw any) (string, bool) {
	v, ok := raw.(string)
	return v, ok
}

func asFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

func asInt(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
