package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailcast/mailcast/internal/directory"
)

func TestSubscriptionService_Subscribe(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewSubscriptionService(f.tenants, f.metrics)
	ctx := context.Background()

	email, err := svc.Subscribe(ctx, "K1", "  a@x.com \n")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	list, err := svc.List(ctx, "K1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com"}, list)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Subscribed)
}

func TestSubscriptionService_SubscribeConflict(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a@x.com")
	svc := NewSubscriptionService(f.tenants, f.metrics)
	ctx := context.Background()

	_, err := svc.Subscribe(ctx, "K1", " a@x.com")
	assert.ErrorIs(t, err, ErrAlreadySubscribed)

	list, err := svc.List(ctx, "K1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Conflicts)
}

func TestSubscriptionService_EmptyEmail(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewSubscriptionService(f.tenants, f.metrics)
	ctx := context.Background()

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := svc.Subscribe(ctx, "K1", raw)
		assert.ErrorIs(t, err, ErrEmailRequired)
		_, err = svc.Unsubscribe(ctx, "K1", raw)
		assert.ErrorIs(t, err, ErrEmailRequired)
	}

	_, tenantSaves := f.backend.Saves()
	assert.Zero(t, tenantSaves)
}

func TestSubscriptionService_CaseSensitive(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a@x.com")
	svc := NewSubscriptionService(f.tenants, f.metrics)

	_, err := svc.Subscribe(context.Background(), "K1", "A@x.com")
	require.NoError(t, err)

	list, err := svc.List(context.Background(), "K1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a@x.com", "A@x.com"}, list)
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	t.Parallel()

	f := newFixture(t, "a@x.com", "b@x.com")
	svc := NewSubscriptionService(f.tenants, f.metrics)
	ctx := context.Background()

	email, err := svc.Unsubscribe(ctx, "K1", "a@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", email)

	list, err := svc.List(ctx, "K1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b@x.com"}, list)

	_, err = svc.Unsubscribe(ctx, "K1", "a@x.com")
	assert.ErrorIs(t, err, ErrNotSubscribed)
	assert.Equal(t, uint64(1), f.metrics.Snapshot().Unsubscribed)
}

func TestSubscriptionService_UnsubscribeUnknownTenant(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewSubscriptionService(f.tenants, f.metrics)

	_, err := svc.Unsubscribe(context.Background(), "ghost", "a@x.com")
	assert.ErrorIs(t, err, ErrNotSubscribed)
}

func TestSubscriptionService_SubscribeMissingTenant(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewSubscriptionService(f.tenants, f.metrics)

	_, err := svc.Subscribe(context.Background(), "ghost", "a@x.com")
	assert.ErrorIs(t, err, directory.ErrTenantNotFound)
}

func TestSubscriptionService_PersistenceFailure(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewSubscriptionService(f.tenants, f.metrics)
	f.backend.SetFailures(nil, errors.New("read-only filesystem"))

	_, err := svc.Subscribe(context.Background(), "K1", "a@x.com")
	assert.ErrorIs(t, err, directory.ErrPersistence)

	list, err := svc.List(context.Background(), "K1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSubscriptionService_ListMissingTenant(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := NewSubscriptionService(f.tenants, f.metrics)

	list, err := svc.List(context.Background(), "ghost")
	assert.ErrorIs(t, err, directory.ErrTenantNotFound)
	assert.Nil(t, list)
}
