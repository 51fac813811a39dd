// Package pipeline wires the Configuration Store, Persistent Store,
// Segment Directory, Capture Supervisor, Silence Gate, Classifier Pool,
// Segment Dispatcher, Best-Clip Selector, and HTTP Surface into one
// running process.
package pipeline

import "time"

// These are fixed operational limits, not live-tunable settings: the
// component design calls them out as defaults with no corresponding
// configuration-store entry, so they live here as package constants
// rather than in conf.Settings.
const (
	// MaxAnalysisBacklog bounds the Classifier Pool's queue+in-flight
	// size the Silence Gate checks against before forwarding a segment.
	MaxAnalysisBacklog = 24

	// MaxQueueSegments bounds how many not-yet-claimed segment files the
	// Dispatcher lets accumulate before evicting the oldest excess.
	MaxQueueSegments = 60

	// MaxSegmentAge is the age past which an unclaimed segment file is
	// deleted outright regardless of queue size.
	MaxSegmentAge = 30 * time.Second

	// GateWorkers is the Silence Gate's worker pool size.
	GateWorkers = 1

	// ClassifierWorkers is the Classifier Pool's default worker pool
	// size.
	ClassifierWorkers = 3

	// DispatchTick is how often the Dispatcher reconciles the Segment
	// Directory against the in-flight sets.
	DispatchTick = 200 * time.Millisecond

	// WatchdogTick is how often the Dispatcher verifies worker liveness.
	WatchdogTick = 5 * time.Second

	// StatusEventMinInterval bounds how often the Dispatcher emits a
	// "Status" event when the observable tuple changes.
	StatusEventMinInterval = 5 * time.Second
)
