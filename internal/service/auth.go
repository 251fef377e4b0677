package service

import (
	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/metrics"
	"github.com/mailcast/mailcast/internal/model"
)

// AuthGate decides whether a presented API key is registered.
type AuthGate struct {
	keys    *directory.KeyStore
	metrics metrics.Recorder
}

// NewAuthGate creates a new AuthGate.
func NewAuthGate(keys *directory.KeyStore, recorder metrics.Recorder) *AuthGate {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthGate{keys: keys, metrics: recorder}
}

// Authorize returns the key when it is registered and ErrUnauthorized
// otherwise. The match is exact; header whitespace is stripped by the
// middleware. Missing and unknown keys are indistinguishable to the caller.
func (g *AuthGate) Authorize(presented string) (model.APIKey, error) {
	key := model.APIKey(presented)
	if key == "" || !g.keys.IsValid(key) {
		g.metrics.IncAuthFailure()
		return "", ErrUnauthorized
	}
	return key, nil
}
