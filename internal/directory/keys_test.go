package directory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/model"
	"github.com/mailcast/mailcast/internal/testutil"
)

func TestKeyStore_LoadAndIsValid(t *testing.T) {
	backend := testutil.NewMemoryBackend()
	backend.Seed([]model.APIKey{"K1", "K2", "K1"}, nil)

	store, err := directory.LoadKeyStore(context.Background(), backend)
	require.NoError(t, err)

	assert.Equal(t, 2, store.Len())
	assert.True(t, store.IsValid("K1"))
	assert.True(t, store.IsValid("K2"))
	assert.False(t, store.IsValid("K3"))
	assert.False(t, store.IsValid(""))
}

func TestKeyStore_RegisterPersistsBeforeCommit(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemoryBackend()
	store, err := directory.LoadKeyStore(ctx, backend)
	require.NoError(t, err)

	require.NoError(t, store.Register(ctx, "K1"))
	assert.True(t, store.IsValid("K1"))
	assert.Equal(t, []model.APIKey{"K1"}, backend.Keys())

	backend.SetFailures(errors.New("disk full"), nil)
	err = store.Register(ctx, "K2")
	require.Error(t, err)
	assert.ErrorIs(t, err, directory.ErrPersistence)
	assert.False(t, store.IsValid("K2"))
	assert.Equal(t, []model.APIKey{"K1"}, backend.Keys())
}

func TestKeyStore_RegisterExistingIsNoop(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemoryBackend()
	store, err := directory.LoadKeyStore(ctx, backend)
	require.NoError(t, err)

	require.NoError(t, store.Register(ctx, "K1"))
	require.NoError(t, store.Register(ctx, "K1"))

	keySaves, _ := backend.Saves()
	assert.Equal(t, 1, keySaves)
	assert.Equal(t, 1, store.Len())
}

func TestKeyStore_Revoke(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemoryBackend()
	backend.Seed([]model.APIKey{"K1", "K2"}, nil)
	store, err := directory.LoadKeyStore(ctx, backend)
	require.NoError(t, err)

	require.NoError(t, store.Revoke(ctx, "K1"))
	assert.False(t, store.IsValid("K1"))
	assert.Equal(t, []model.APIKey{"K2"}, backend.Keys())

	require.NoError(t, store.Revoke(ctx, "missing"))
}

func TestKeyStore_ConcurrentRegister(t *testing.T) {
	ctx := context.Background()
	backend := testutil.NewMemoryBackend()
	store, err := directory.LoadKeyStore(ctx, backend)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = store.Register(ctx, model.APIKey(fmt.Sprintf("key-%d", i)))
			_ = store.IsValid("key-0")
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 50, store.Len())
	assert.Len(t, backend.Keys(), 50)
}
