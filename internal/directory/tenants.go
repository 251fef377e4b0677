package directory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/mailcast/mailcast/internal/model"
)

// TenantDirectory maps API keys to tenant records and owns every mutation
// of those records.
type TenantDirectory struct {
	mu      sync.RWMutex
	tenants map[model.APIKey]*model.Tenant
	persist TenantPersister
}

// LoadTenantDirectory builds a TenantDirectory from the persisted snapshot.
// Duplicate subscriber entries in stored data are collapsed on load.
func LoadTenantDirectory(ctx context.Context, persist TenantPersister) (*TenantDirectory, error) {
	stored, err := persist.LoadTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("load tenant directory: %w", err)
	}

	d := &TenantDirectory{
		tenants: make(map[model.APIKey]*model.Tenant, len(stored)),
		persist: persist,
	}
	for i := range stored {
		t := stored[i].Clone()
		t.Subscribers = dedupe(t.Subscribers)
		d.tenants[t.APIKey] = &t
	}
	return d, nil
}

// Create inserts a tenant with an empty subscriber list.
// An existing tenant under the same key is overwritten.
func (d *TenantDirectory) Create(ctx context.Context, key model.APIKey, senderEmail, senderCredential string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t := &model.Tenant{
		APIKey:           key,
		SenderEmail:      senderEmail,
		SenderCredential: senderCredential,
		Subscribers:      []string{},
	}
	return d.commit(ctx, key, t)
}

// Get returns a copy of the tenant registered under key.
func (d *TenantDirectory) Get(key model.APIKey) (model.Tenant, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.tenants[key]
	if !ok {
		return model.Tenant{}, ErrTenantNotFound
	}
	return t.Clone(), nil
}

// Subscribers returns a copy of the tenant's subscriber list.
func (d *TenantDirectory) Subscribers(key model.APIKey) ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	t, ok := d.tenants[key]
	if !ok {
		return nil, ErrTenantNotFound
	}
	out := slices.Clone(t.Subscribers)
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// AddSubscriber appends email to the tenant's list and persists.
// The caller guarantees email is not already present.
func (d *TenantDirectory) AddSubscriber(ctx context.Context, key model.APIKey, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tenants[key]
	if !ok {
		return ErrTenantNotFound
	}
	return d.commit(ctx, key, withSubscriber(t, email))
}

// AddSubscriberIfAbsent appends email unless it is already present.
// It returns false without writing when the email exists. The presence
// check and the append happen under one lock.
func (d *TenantDirectory) AddSubscriberIfAbsent(ctx context.Context, key model.APIKey, email string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tenants[key]
	if !ok {
		return false, ErrTenantNotFound
	}
	if t.HasSubscriber(email) {
		return false, nil
	}
	if err := d.commit(ctx, key, withSubscriber(t, email)); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveSubscriber removes the first matching entry and persists.
func (d *TenantDirectory) RemoveSubscriber(ctx context.Context, key model.APIKey, email string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	t, ok := d.tenants[key]
	if !ok {
		return ErrTenantNotFound
	}
	i := slices.Index(t.Subscribers, email)
	if i < 0 {
		return ErrSubscriberNotFound
	}

	next := t.Clone()
	next.Subscribers = slices.Delete(next.Subscribers, i, i+1)
	return d.commit(ctx, key, &next)
}

// Drop deletes a tenant. It exists to undo a half-finished registration.
func (d *TenantDirectory) Drop(ctx context.Context, key model.APIKey) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.tenants[key]; !ok {
		return nil
	}
	return d.commit(ctx, key, nil)
}

// Len returns the number of tenants.
func (d *TenantDirectory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.tenants)
}

// commit persists the directory with key replaced by t (or removed when t
// is nil) and applies the change in memory once the write succeeded.
// Callers hold the write lock.
func (d *TenantDirectory) commit(ctx context.Context, key model.APIKey, t *model.Tenant) error {
	snapshot := make([]model.Tenant, 0, len(d.tenants)+1)
	for k, existing := range d.tenants {
		if k == key {
			continue
		}
		snapshot = append(snapshot, *existing)
	}
	if t != nil {
		snapshot = append(snapshot, *t)
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].APIKey < snapshot[j].APIKey })

	if err := d.persist.SaveTenants(ctx, snapshot); err != nil {
		return fmt.Errorf("%w: save tenant directory: %v", ErrPersistence, err)
	}

	if t == nil {
		delete(d.tenants, key)
	} else {
		d.tenants[key] = t
	}
	return nil
}

func withSubscriber(t *model.Tenant, email string) *model.Tenant {
	next := t.Clone()
	next.Subscribers = append(next.Subscribers, email)
	return &next
}

func dedupe(emails []string) []string {
	seen := make(map[string]struct{}, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}
