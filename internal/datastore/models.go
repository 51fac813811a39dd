// Package datastore implements the Persistent Store: a single embedded
// SQL database holding detections, events, species icons, and a
// materialized summary cache, plus JSON sidecars for the latest
// snapshot and best-clip index.
package datastore

import "time"

// Detection is one species-level prediction written by the Classifier
// Pool. Rows are inserted once and never mutated.
type Detection struct {
	ID             string  `gorm:"primaryKey;size:32" json:"id"`
	Timestamp      string  `gorm:"index;not null" json:"timestamp"`
	Species        string  `gorm:"index;not null" json:"species"`
	ScientificName string  `json:"scientific_name"`
	Confidence     *float64 `json:"confidence"`
	Location       string  `json:"location"`
	RawJSON        string  `gorm:"type:text" json:"-"`
}

func (Detection) TableName() string { return "detections" }

// EventType enumerates the operational log record kinds.
type EventType string

const (
	EventServer    EventType = "server"
	EventAnalysis  EventType = "analysis"
	EventDetection EventType = "detection"
	EventError     EventType = "error"
	EventManual    EventType = "manual"
)

// Event is an operational log record. Rows are inserted once and never
// mutated.
type Event struct {
	ID        string    `gorm:"primaryKey;size:32" json:"id"`
	Timestamp string    `gorm:"index;not null" json:"timestamp"`
	Type      EventType `gorm:"index;not null" json:"type"`
	Message   string    `json:"message"`
	ExtrasJSON string   `gorm:"type:text" json:"extras,omitempty"`
}

func (Event) TableName() string { return "events" }

// SpeciesIcon maps a species to the icon filename the dashboard shows
// for it.
type SpeciesIcon struct {
	SpeciesKey  string    `gorm:"primaryKey;size:128" json:"species_key"`
	SpeciesName string    `json:"species_name"`
	Filename    string    `json:"filename"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SpeciesIcon) TableName() string { return "species_icons" }

// SummaryCacheKey is the sole row key summary_cache ever holds.
const SummaryCacheKey = "log_summary"

// SummaryCacheRow is the single-row materialized per-species aggregate.
type SummaryCacheRow struct {
	CacheKey    string    `gorm:"primaryKey;size:32" json:"cache_key"`
	LogRevision int64     `json:"log_revision"`
	PayloadJSON string    `gorm:"type:text" json:"payload"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (SummaryCacheRow) TableName() string { return "summary_cache" }
