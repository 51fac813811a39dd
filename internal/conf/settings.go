// Package conf implements the Configuration Store: the live tunable
// settings for the pipeline, persisted to a single JSON file and
// overlaid with environment-variable overrides.
package conf

import "sync"

// InputMode selects how the Capture Supervisor sources audio.
type InputMode string

const (
	InputModeDevice InputMode = "device"
	InputModeStream InputMode = "stream"
)

// Settings holds every live-tunable field. All access goes through
// Store, which guards the struct with a mutex; Settings itself is a
// plain value so callers can't accidentally bypass the lock.
type Settings struct {
	InputMode      InputMode `json:"input_mode"`
	InputDevice    string    `json:"input_device"`
	StreamURL      string    `json:"stream_url"`
	SegmentSeconds int       `json:"segment_seconds"`

	MinConfidence      float64 `json:"min_confidence"`
	SilenceThresholdDB float64 `json:"silence_threshold_db"`
	SilenceMinSeconds  float64 `json:"silence_min_seconds"`

	OverlayHoldSeconds int  `json:"overlay_hold_seconds"`
	OverlaySticky      bool `json:"overlay_sticky"`

	ClassifierTemplate string `json:"classifier_template"`
	ClassifierWorkDir  string `json:"classifier_workdir"`

	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Week      int     `json:"week"`
	AutoWeek  bool     `json:"auto_week"`

	WeatherLocation string `json:"weather_location"`
	WeatherUnit     string `json:"weather_unit"`

	HTTPPort int `json:"http_port"`

	AuthUser         string `json:"auth_user,omitempty"`
	AuthPasswordHash string `json:"auth_password_hash,omitempty"`

	Debug bool `json:"debug"`
}

// Default returns the built-in defaults used when no settings file
// exists yet.
func Default() Settings {
	return Settings{
		InputMode:          InputModeDevice,
		SegmentSeconds:     15,
		MinConfidence:      0.25,
		SilenceThresholdDB: -45,
		SilenceMinSeconds:  0.2,
		OverlayHoldSeconds: 30,
		OverlaySticky:      false,
		ClassifierWorkDir:  "",
		Location:           "",
		Week:               1,
		AutoWeek:           true,
		WeatherUnit:        "metric",
		HTTPPort:           8080,
	}
}

// Store is the mutex-guarded singleton holding the current Settings
// plus the edge-triggered capture-restart flag.
type Store struct {
	mu       sync.RWMutex
	settings Settings

	restartMu sync.Mutex
	restart   bool

	path       string
	legacyPath string
}

// NewStore creates a Store seeded with s, reading/writing at path with
// legacyPath as the read-only fallback.
func NewStore(s Settings, path, legacyPath string) *Store {
	return &Store{settings: s, path: path, legacyPath: legacyPath}
}

// Get returns a copy of the current settings.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.settings
}

// replace atomically swaps in a whole new Settings value (used by Load).
func (st *Store) replace(s Settings) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.settings = s
}

// RequestRestart sets the edge-triggered capture-restart flag.
func (st *Store) RequestRestart() {
	st.restartMu.Lock()
	defer st.restartMu.Unlock()
	st.restart = true
}

// ConsumeRestart reports whether a restart was requested, clearing the
// flag in the same step (edge-triggered: each request is observed once).
func (st *Store) ConsumeRestart() bool {
	st.restartMu.Lock()
	defer st.restartMu.Unlock()
	if st.restart {
		st.restart = false
		return true
	}
	return false
}

// captureAffecting is the set of keys whose change must trigger a
// capture restart (spec: input mode, input device, stream URL, segment
// seconds).
var captureAffecting = map[string]bool{
	"input_mode":      true,
	"input_device":    true,
	"stream_url":      true,
	"segment_seconds": true,
}
