// Package model defines domain entities for the application.
package model

// APIKey is the opaque token a tenant presents on every request.
// It doubles as the tenant identifier.
type APIKey string

// String returns the key as a plain string.
func (k APIKey) String() string {
	return string(k)
}

// Prefix returns the first characters of the key for log correlation.
// The full key is never logged.
func (k APIKey) Prefix() string {
	const n = 6
	if len(k) <= n {
		return string(k)
	}
	return string(k[:n])
}
