package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailcast/mailcast/internal/auth"
	"github.com/mailcast/mailcast/internal/directory"
	"github.com/mailcast/mailcast/internal/handler"
	"github.com/mailcast/mailcast/internal/metrics"
	"github.com/mailcast/mailcast/internal/middleware"
	"github.com/mailcast/mailcast/internal/model"
	"github.com/mailcast/mailcast/internal/service"
	"github.com/mailcast/mailcast/internal/testutil"
)

type liveServer struct {
	url     string
	keys    *directory.KeyStore
	tenants *directory.TenantDirectory
	backend *testutil.MemoryBackend
}

func newLiveServer(t *testing.T, adminHash string) *liveServer {
	t.Helper()

	ctx := context.Background()
	backend := testutil.NewMemoryBackend()
	keys, err := directory.LoadKeyStore(ctx, backend)
	require.NoError(t, err)
	tenants, err := directory.LoadTenantDirectory(ctx, backend)
	require.NoError(t, err)

	logger := slog.New(slog.DiscardHandler)
	admin := handler.NewAdminHandler(service.NewRegistrationService(keys, tenants, metrics.NewNoop()), logger)

	r := chi.NewRouter()
	r.With(middleware.AdminToken(adminHash, logger)).Post(registerPath, admin.RegisterKey)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return &liveServer{url: srv.URL, keys: keys, tenants: tenants, backend: backend}
}

func TestRun_RegistersThroughServer(t *testing.T) {
	t.Parallel()

	live := newLiveServer(t, "")

	var out bytes.Buffer
	err := run(context.Background(), []string{
		"--server", live.url,
		"--sender-email", "s@x.com",
		"--sender-password", "pw",
		"--format", "json",
	}, &out, nil)
	require.NoError(t, err)

	var got output
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.APIKey, auth.KeyLength)

	key := model.APIKey(got.APIKey)
	assert.True(t, live.keys.IsValid(key), "running server accepts the printed key")

	tenant, err := live.tenants.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "s@x.com", tenant.SenderEmail)

	// A later registration by the server keeps the key the command printed.
	_, err = service.NewRegistrationService(live.keys, live.tenants, metrics.NewNoop()).
		Register(context.Background(), "other@x.com", "pw2")
	require.NoError(t, err)

	persisted, err := live.backend.LoadKeys(context.Background())
	require.NoError(t, err)
	assert.Contains(t, persisted, key)
	assert.Len(t, persisted, 2)
}

func TestRun_AdminToken(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashToken("letmein")
	require.NoError(t, err)
	live := newLiveServer(t, hash)

	args := []string{"--server", live.url, "--sender-email", "s@x.com", "--sender-password", "pw"}

	var out bytes.Buffer
	err = run(context.Background(), append(args, "--admin-token", "wrong"), &out, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNAUTHORIZED")
	assert.Equal(t, 0, live.keys.Len())

	out.Reset()
	require.NoError(t, run(context.Background(), append(args, "--admin-token", "letmein"), &out, nil))
	assert.True(t, strings.HasPrefix(out.String(), "API key: "))
	assert.Equal(t, 1, live.keys.Len())
}

func TestRun_ValidatesInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing sender", []string{"--sender-password", "pw"}, "required"},
		{"bad format", []string{"--format", "xml"}, "unsupported format"},
		{"extra argument", []string{"stray"}, "unexpected argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := run(context.Background(), tt.args, &bytes.Buffer{}, nil)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRun_HashAdminToken(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--hash-admin-token", "secret"}, &out, nil))

	ok, err := auth.VerifyToken("secret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.True(t, ok)
}
