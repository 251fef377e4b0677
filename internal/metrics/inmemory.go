package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	Subscribed          uint64
	Unsubscribed        uint64
	Conflicts           uint64
	AuthFailures        uint64
	KeysRegistered      uint64
	BroadcastsSent      uint64
	BroadcastsSkipped   uint64
	BroadcastsFailed    uint64
	RecipientsTotal     uint64
	SendDurationCount   uint64
	SendDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint
// and is used directly in tests.
type InMemoryRecorder struct {
	subscribed          atomic.Uint64
	unsubscribed        atomic.Uint64
	conflicts           atomic.Uint64
	authFailures        atomic.Uint64
	keysRegistered      atomic.Uint64
	broadcastsSent      atomic.Uint64
	broadcastsSkipped   atomic.Uint64
	broadcastsFailed    atomic.Uint64
	recipientsTotal     atomic.Uint64
	sendDurationCount   atomic.Uint64
	sendDurationTotalNs atomic.Int64
}

var (
	_ Recorder    = (*InMemoryRecorder)(nil)
	_ Snapshotter = (*InMemoryRecorder)(nil)
)

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		Subscribed:          m.subscribed.Load(),
		Unsubscribed:        m.unsubscribed.Load(),
		Conflicts:           m.conflicts.Load(),
		AuthFailures:        m.authFailures.Load(),
		KeysRegistered:      m.keysRegistered.Load(),
		BroadcastsSent:      m.broadcastsSent.Load(),
		BroadcastsSkipped:   m.broadcastsSkipped.Load(),
		BroadcastsFailed:    m.broadcastsFailed.Load(),
		RecipientsTotal:     m.recipientsTotal.Load(),
		SendDurationCount:   m.sendDurationCount.Load(),
		SendDurationTotalNs: m.sendDurationTotalNs.Load(),
	}
}

func (m *InMemoryRecorder) IncSubscribed()    { m.subscribed.Add(1) }
func (m *InMemoryRecorder) IncUnsubscribed()  { m.unsubscribed.Add(1) }
func (m *InMemoryRecorder) IncConflict()      { m.conflicts.Add(1) }
func (m *InMemoryRecorder) IncAuthFailure()   { m.authFailures.Add(1) }
func (m *InMemoryRecorder) IncKeyRegistered() { m.keysRegistered.Add(1) }

// IncBroadcast counts a broadcast by outcome. Unknown outcomes are ignored.
func (m *InMemoryRecorder) IncBroadcast(outcome string) {
	switch outcome {
	case BroadcastSent:
		m.broadcastsSent.Add(1)
	case BroadcastSkipped:
		m.broadcastsSkipped.Add(1)
	case BroadcastFailed:
		m.broadcastsFailed.Add(1)
	}
}

// ObserveRecipients adds the size of one broadcast's recipient list.
func (m *InMemoryRecorder) ObserveRecipients(count int) {
	if count > 0 {
		m.recipientsTotal.Add(uint64(count))
	}
}

// ObserveSendDuration records how long one transport call took.
func (m *InMemoryRecorder) ObserveSendDuration(duration time.Duration) {
	m.sendDurationCount.Add(1)
	m.sendDurationTotalNs.Add(duration.Nanoseconds())
}
