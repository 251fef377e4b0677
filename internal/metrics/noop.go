package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncSubscribed()                             {}
func (n *NoopRecorder) IncUnsubscribed()                           {}
func (n *NoopRecorder) IncConflict()                               {}
func (n *NoopRecorder) IncAuthFailure()                            {}
func (n *NoopRecorder) IncKeyRegistered()                          {}
func (n *NoopRecorder) IncBroadcast(outcome string)                {}
func (n *NoopRecorder) ObserveRecipients(count int)                {}
func (n *NoopRecorder) ObserveSendDuration(duration time.Duration) {}
