package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/metrics"
	"github.com/mailcast/mailcast/internal/model"
	"github.com/mailcast/mailcast/internal/testutil"
)

type fixture struct {
	backend *testutil.MemoryBackend
	keys    *directory.KeyStore
	tenants *directory.TenantDirectory
	metrics *metrics.InMemoryRecorder
	sender  *testutil.RecordingSender
	logger  *slog.Logger
}

// newFixture seeds key K1 with sender s@x.com and the given subscribers.
func newFixture(t *testing.T, subscribers ...string) *fixture {
	t.Helper()

	backend := testutil.NewMemoryBackend()
	backend.Seed([]model.APIKey{"K1"}, []model.Tenant{{
		APIKey:           "K1",
		SenderEmail:      "s@x.com",
		SenderCredential: "pw",
		Subscribers:      subscribers,
	}})

	ctx := context.Background()
	keys, err := directory.LoadKeyStore(ctx, backend)
	require.NoError(t, err)
	tenants, err := directory.LoadTenantDirectory(ctx, backend)
	require.NoError(t, err)

	return &fixture{
		backend: backend,
		keys:    keys,
		tenants: tenants,
		metrics: metrics.NewInMemory(),
		sender:  &testutil.RecordingSender{},
		logger:  slog.New(slog.DiscardHandler),
	}
}
