package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mailcast/mailcast/internal/auth"
	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/metrics"
	"github.com/mailcast/mailcast/internal/model"
)

const maxKeyRetries = 3

// RegistrationService issues API keys and creates the matching tenant.
type RegistrationService struct {
	keys     *directory.KeyStore
	tenants  *directory.TenantDirectory
	metrics  metrics.Recorder
	generate func() (model.APIKey, error)
}

// NewRegistrationService creates a new RegistrationService.
func NewRegistrationService(keys *directory.KeyStore, tenants *directory.TenantDirectory, recorder metrics.Recorder) *RegistrationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RegistrationService{
		keys:     keys,
		tenants:  tenants,
		metrics:  recorder,
		generate: auth.GenerateAPIKey,
	}
}

// Register creates a tenant for the given sender identity and returns its
// new key. The key and the tenant are written together; if the tenant
// cannot be stored the key is withdrawn.
func (s *RegistrationService) Register(ctx context.Context, senderEmail, senderCredential string) (model.APIKey, error) {
	senderEmail = strings.TrimSpace(senderEmail)
	senderCredential = strings.TrimSpace(senderCredential)
	if senderEmail == "" || senderCredential == "" {
		return "", ErrSenderRequired
	}

	key, err := s.uniqueKey()
	if err != nil {
		return "", err
	}

	if err := directory.Provision(ctx, s.keys, s.tenants, key, senderEmail, senderCredential); err != nil {
		return "", fmt.Errorf("register key: %w", err)
	}

	s.metrics.IncKeyRegistered()
	return key, nil
}

// uniqueKey generates a key that is not registered yet.
func (s *RegistrationService) uniqueKey() (model.APIKey, error) {
	for i := 0; i < maxKeyRetries; i++ {
		key, err := s.generate()
		if err != nil {
			return "", err
		}
		if !s.keys.IsValid(key) {
			return key, nil
		}
	}
	return "", errors.New("failed to generate unique API key after retries")
}
