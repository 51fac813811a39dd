package conf

import "time"

// Snapshot is the read-only view of Settings returned to HTTP callers:
// it never carries the password hash and adds the computed current
// week number.
type Snapshot struct {
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
	AutoWeek  bool    `json:"auto_week"`

	WeatherLocation string `json:"weather_location"`
	WeatherUnit     string `json:"weather_unit"`

	HTTPPort int `json:"http_port"`

	AuthUser string `json:"auth_user,omitempty"`

	Debug bool `json:"debug"`

	CurrentWeek int `json:"current_week"`
}

// CurrentWeek returns the ISO-week-ish bucket used for the classifier's
// {week} substitution: 1..48, derived from the day of year, clamped.
func CurrentWeek(now time.Time) int {
	week := ((now.YearDay() - 1) / 7) + 1
	if week < 1 {
		return 1
	}
	if week > 48 {
		return 48
	}
	return week
}

// EffectiveWeek returns the configured week unless AutoWeek is set, in
// which case it returns CurrentWeek(now).
func (s Settings) EffectiveWeek(now time.Time) int {
	if s.AutoWeek {
		return CurrentWeek(now)
	}
	return s.Week
}

// Snapshot builds the externally-visible view of the current settings.
func (st *Store) Snapshot() Snapshot {
	s := st.Get()
	return Snapshot{
		InputMode:          s.InputMode,
		InputDevice:        s.InputDevice,
		StreamURL:          s.StreamURL,
		SegmentSeconds:     s.SegmentSeconds,
		MinConfidence:      s.MinConfidence,
		SilenceThresholdDB: s.SilenceThresholdDB,
		SilenceMinSeconds:  s.SilenceMinSeconds,
		OverlayHoldSeconds: s.OverlayHoldSeconds,
		OverlaySticky:      s.OverlaySticky,
		ClassifierTemplate: s.ClassifierTemplate,
		ClassifierWorkDir:  s.ClassifierWorkDir,
		Location:           s.Location,
		Latitude:           s.Latitude,
		Longitude:          s.Longitude,
		Week:               s.Week,
		AutoWeek:           s.AutoWeek,
		WeatherLocation:    s.WeatherLocation,
		WeatherUnit:        s.WeatherUnit,
		HTTPPort:           s.HTTPPort,
		AuthUser:           s.AuthUser,
		Debug:              s.Debug,
		CurrentWeek:        CurrentWeek(time.Now()),
	}
}
