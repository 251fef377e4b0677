package directory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mailcast/mailcast/internal/model"
)

// KeyStore is the registry of valid API keys.
type KeyStore struct {
	mu      sync.RWMutex
	keys    []model.APIKey
	index   map[model.APIKey]struct{}
	persist KeyPersister
}

// LoadKeyStore builds a KeyStore from the persisted registry.
func LoadKeyStore(ctx context.Context, persist KeyPersister) (*KeyStore, error) {
	keys, err := persist.LoadKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("load key registry: %w", err)
	}

	s := &KeyStore{
		keys:    make([]model.APIKey, 0, len(keys)),
		index:   make(map[model.APIKey]struct{}, len(keys)),
		persist: persist,
	}
	for _, k := range keys {
		if _, dup := s.index[k]; dup {
			continue
		}
		s.index[k] = struct{}{}
		s.keys = append(s.keys, k)
	}
	return s, nil
}

// IsValid reports whether key is registered.
func (s *KeyStore) IsValid(key model.APIKey) bool {
	if key == "" {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[key]
	return ok
}

// Register appends key to the registry and persists the full registry.
// Registering an existing key is a no-op.
func (s *KeyStore) Register(ctx context.Context, key model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[key]; ok {
		return nil
	}

	next := append(slices.Clone(s.keys), key)
	if err := s.persist.SaveKeys(ctx, next); err != nil {
		return fmt.Errorf("%w: save key registry: %v", ErrPersistence, err)
	}

	s.keys = next
	s.index[key] = struct{}{}
	return nil
}

// Revoke removes key from the registry and persists the full registry.
// Revoking an unknown key is a no-op.
func (s *KeyStore) Revoke(ctx context.Context, key model.APIKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.keys, key)
	if i < 0 {
		return nil
	}

	next := slices.Delete(slices.Clone(s.keys), i, i+1)
	if err := s.persist.SaveKeys(ctx, next); err != nil {
		return fmt.Errorf("%w: save key registry: %v", ErrPersistence, err)
	}

	s.keys = next
	delete(s.index, key)
	return nil
}

// Len returns the number of registered keys.
func (s *KeyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.keys)
}
