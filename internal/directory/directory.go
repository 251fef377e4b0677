// Package directory owns the in-memory key registry and tenant directory.
//
// Both structures are loaded once from a persistence backend at startup and
// written back as full snapshots after every mutation. A mutation is only
// applied in memory once its snapshot has been persisted, so a failed write
// leaves the previous state in place.
package directory

import (
	"context"
	"errors"

	"github.com/mailcast/mailcast/internal/model"
)

// Sentinel errors for directory operations.
var (
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrSubscriberNotFound = errors.New("subscriber not found")
	ErrPersistence        = errors.New("persistence failure")
)

// KeyPersister is the part of a backend the KeyStore needs.
type KeyPersister interface {
	LoadKeys(ctx context.Context) ([]model.APIKey, error)
	SaveKeys(ctx context.Context, keys []model.APIKey) error
}

// TenantPersister is the part of a backend the TenantDirectory needs.
type TenantPersister interface {
	LoadTenants(ctx context.Context) ([]model.Tenant, error)
	SaveTenants(ctx context.Context, tenants []model.Tenant) error
}
