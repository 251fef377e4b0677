package model

import "slices"

// Tenant is an account identified by one API key. It owns a sender identity
// and an ordered, duplicate-free list of subscriber emails.
type Tenant struct {
	APIKey           APIKey   `json:"-"`
	SenderEmail      string   `json:"sender_email"`
	SenderCredential string   `json:"-"` // Never serialize
	Subscribers      []string `json:"subscribers"`
}

// HasSubscriber reports whether email is present in the subscriber list.
// Comparison is exact; callers trim beforehand.
func (t *Tenant) HasSubscriber(email string) bool {
	return slices.Contains(t.Subscribers, email)
}

// Clone returns a deep copy so callers never share the subscriber slice
// with the directory.
func (t *Tenant) Clone() Tenant {
	c := *t
	c.Subscribers = slices.Clone(t.Subscribers)
	if c.Subscribers == nil {
		c.Subscribers = []string{}
	}
	return c
}

// SubscriberCount returns the number of subscribers.
func (t *Tenant) SubscriberCount() int {
	return len(t.Subscribers)
}
