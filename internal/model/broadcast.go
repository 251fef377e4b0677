package model

// Broadcast is a single message a tenant sends to all of its subscribers.
type Broadcast struct {
	Subject  string `json:"subject"`
	BodyText string `json:"bodyText"`
	BodyHTML string `json:"bodyHTML"`
}

// DispatchResult reports the outcome of a broadcast.
// Sent is false when there was nobody to send to.
type DispatchResult struct {
	ID         string `json:"broadcast_id,omitempty"`
	Sent       bool   `json:"sent"`
	Recipients int    `json:"recipients"`
	Transport  string `json:"transport,omitempty"`
	Message    string `json:"message"`
}
