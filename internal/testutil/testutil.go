// Package testutil provides shared fakes and helpers for tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mailcast/mailcast/internal/mailer"
	"github.com/mailcast/mailcast/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// MemoryBackend is an in-memory persistence backend with failure injection.
type MemoryBackend struct {
	mu          sync.Mutex
	keys        []model.APIKey
	tenants     []model.Tenant
	keySaves    int
	tenantSaves int

	// FailKeys and FailTenants make the matching Save call fail when set.
	FailKeys    error
	FailTenants error
}

// NewMemoryBackend returns an empty MemoryBackend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{}
}

// Seed preloads the backend as if it had been persisted earlier.
func (m *MemoryBackend) Seed(keys []model.APIKey, tenants []model.Tenant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append([]model.APIKey(nil), keys...)
	m.tenants = cloneTenants(tenants)
}

// SetFailures configures injected errors for subsequent saves.
func (m *MemoryBackend) SetFailures(keys, tenants error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailKeys = keys
	m.FailTenants = tenants
}

func (m *MemoryBackend) LoadKeys(ctx context.Context) ([]model.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.APIKey{}, m.keys...), nil
}

func (m *MemoryBackend) SaveKeys(ctx context.Context, keys []model.APIKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailKeys != nil {
		return m.FailKeys
	}
	m.keys = append([]model.APIKey(nil), keys...)
	m.keySaves++
	return nil
}

func (m *MemoryBackend) LoadTenants(ctx context.Context) ([]model.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTenants(m.tenants), nil
}

func (m *MemoryBackend) SaveTenants(ctx context.Context, tenants []model.Tenant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailTenants != nil {
		return m.FailTenants
	}
	m.tenants = cloneTenants(tenants)
	m.tenantSaves++
	return nil
}

func (m *MemoryBackend) Ping(ctx context.Context) error { return nil }

func (m *MemoryBackend) Close() error { return nil }

// Keys returns the last persisted registry.
func (m *MemoryBackend) Keys() []model.APIKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.APIKey{}, m.keys...)
}

// Tenants returns the last persisted directory.
func (m *MemoryBackend) Tenants() []model.Tenant {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneTenants(m.tenants)
}

// Saves returns how many successful key and tenant snapshot writes happened.
func (m *MemoryBackend) Saves() (keys, tenants int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.keySaves, m.tenantSaves
}

func cloneTenants(in []model.Tenant) []model.Tenant {
	out := make([]model.Tenant, 0, len(in))
	for i := range in {
		out = append(out, in[i].Clone())
	}
	return out
}

// RecordingSender is a mailer.Sender that records every call.
type RecordingSender struct {
	mu    sync.Mutex
	sent  []mailer.Message
	Err   error
	Delay time.Duration
}

// Name implements mailer.Sender.
func (s *RecordingSender) Name() string { return "recording" }

// SendBulk implements mailer.Sender.
func (s *RecordingSender) SendBulk(ctx context.Context, msg mailer.Message) error {
	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", mailer.ErrSendFailed, ctx.Err())
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msg.To = append([]string(nil), msg.To...)
	s.sent = append(s.sent, msg)
	if s.Err != nil {
		return s.Err
	}
	return nil
}

// Sent returns the recorded messages.
func (s *RecordingSender) Sent() []mailer.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]mailer.Message(nil), s.sent...)
}

// UniqueEmail generates a unique address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}
