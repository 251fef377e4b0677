package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/metrics"
	"github.com/mailcast/mailcast/internal/model"
)

// SubscriptionService manages a tenant's subscriber list.
type SubscriptionService struct {
	tenants *directory.TenantDirectory
	metrics metrics.Recorder
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(tenants *directory.TenantDirectory, recorder metrics.Recorder) *SubscriptionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SubscriptionService{tenants: tenants, metrics: recorder}
}

// Subscribe adds an email to the tenant's list and returns it trimmed.
// A missing tenant for an authorized key is an internal inconsistency and
// surfaces as a wrapped directory.ErrTenantNotFound.
func (s *SubscriptionService) Subscribe(ctx context.Context, key model.APIKey, rawEmail string) (string, error) {
	email := normalizeEmail(rawEmail)
	if email == "" {
		return "", ErrEmailRequired
	}

	added, err := s.tenants.AddSubscriberIfAbsent(ctx, key, email)
	if err != nil {
		return "", fmt.Errorf("subscribe: %w", err)
	}
	if !added {
		s.metrics.IncConflict()
		return "", ErrAlreadySubscribed
	}

	s.metrics.IncSubscribed()
	return email, nil
}

// Unsubscribe removes an email from the tenant's list and returns it trimmed.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, key model.APIKey, rawEmail string) (string, error) {
	email := normalizeEmail(rawEmail)
	if email == "" {
		return "", ErrEmailRequired
	}

	err := s.tenants.RemoveSubscriber(ctx, key, email)
	switch {
	case err == nil:
	case errors.Is(err, directory.ErrSubscriberNotFound), errors.Is(err, directory.ErrTenantNotFound):
		s.metrics.IncConflict()
		return "", ErrNotSubscribed
	default:
		return "", fmt.Errorf("unsubscribe: %w", err)
	}

	s.metrics.IncUnsubscribed()
	return email, nil
}

// List returns a copy of the tenant's subscribers in insertion order.
// As with Subscribe, a registered key without a tenant is reported as a
// wrapped directory.ErrTenantNotFound.
func (s *SubscriptionService) List(ctx context.Context, key model.APIKey) ([]string, error) {
	subs, err := s.tenants.Subscribers(key)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	return subs, nil
}

// normalizeEmail trims surrounding whitespace. No further validation is
// applied.
func normalizeEmail(raw string) string {
	return strings.TrimSpace(raw)
}
