package conf

import (
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding pairs a settings key with the environment variable that
// overlays it (no per-key validator), mirroring the project's own
// env-binding table, generalized from BirdNET-model keys to this
// pipeline's allow-listed settings keys.
type envBinding struct {
	Key    string
	EnvVar string
}

func envBindings() []envBinding {
	return []envBinding{
		{"input_mode", "FEATHER_INPUT_MODE"},
		{"input_device", "FEATHER_INPUT_DEVICE"},
		{"stream_url", "FEATHER_STREAM_URL"},
		{"segment_seconds", "FEATHER_SEGMENT_SECONDS"},
		{"min_confidence", "FEATHER_MIN_CONFIDENCE"},
		{"silence_threshold_db", "FEATHER_SILENCE_THRESHOLD_DB"},
		{"silence_min_seconds", "FEATHER_SILENCE_MIN_SECONDS"},
		{"classifier_template", "FEATHER_CLASSIFIER_TEMPLATE"},
		{"classifier_workdir", "FEATHER_CLASSIFIER_WORKDIR"},
		{"location", "FEATHER_LOCATION"},
		{"latitude", "FEATHER_LATITUDE"},
		{"longitude", "FEATHER_LONGITUDE"},
		{"http_port", "FEATHER_HTTP_PORT"},
	}
}

// ApplyEnvOverlay reads FEATHER_* environment variables through viper
// and applies any that are set through the same allow-listed patch path
// as an HTTP settings update, except that env changes never trigger the
// in-process restart signal at startup (the pipeline hasn't started
// yet).
func (st *Store) ApplyEnvOverlay() {
	viper.AutomaticEnv()
	viper.SetEnvPrefix("FEATHER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	patch := map[string]any{}
	for _, b := range envBindings() {
		raw := viper.GetString(b.EnvVar)
		if raw == "" {
			continue
		}
		patch[b.Key] = coerceEnvValue(b.Key, raw)
	}
	if len(patch) == 0 {
		return
	}
	st.mu.Lock()
	for _, f := range allowList() {
		v, present := patch[f.key]
		if !present {
			continue
		}
		f.apply(&st.settings, v)
	}
	st.mu.Unlock()
}

// coerceEnvValue converts a raw string env value to the type ApplyPatch
// expects for that key (string fields pass through unchanged).
func coerceEnvValue(key, raw string) any {
	switch key {
	case "segment_seconds", "http_port":
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
		return raw
	case "min_confidence", "silence_threshold_db", "silence_min_seconds", "latitude", "longitude":
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
		return raw
	default:
		return raw
	}
}
