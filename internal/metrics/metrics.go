// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Broadcast outcomes.
const (
	BroadcastSent    = "sent"
	BroadcastSkipped = "skipped"
	BroadcastFailed  = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Subscription metrics
	IncSubscribed()
	IncUnsubscribed()
	IncConflict()

	// Auth metrics
	IncAuthFailure()
	IncKeyRegistered()

	// Broadcast metrics
	IncBroadcast(outcome string) // outcome: "sent", "skipped", "failed"
	ObserveRecipients(count int)
	ObserveSendDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
