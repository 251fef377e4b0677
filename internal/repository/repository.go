// Package repository provides the persistence backends for the key registry
// and the tenant directory.
//
// Every backend has load-all / save-all semantics: the directory hands over a
// full snapshot on each mutation and the backend replaces what it stored.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mailcast/mailcast/internal/model"
)

// Backend kinds accepted by Open.
const (
	KindFile     = "file"
	KindPostgres = "postgres"
	KindRedis    = "redis"
)

// ErrUnknownBackend is returned by Open for an unsupported kind.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend persists the two structures the service owns.
type Backend interface {
	LoadKeys(ctx context.Context) ([]model.APIKey, error)
	SaveKeys(ctx context.Context, keys []model.APIKey) error
	LoadTenants(ctx context.Context) ([]model.Tenant, error)
	SaveTenants(ctx context.Context, tenants []model.Tenant) error
	Ping(ctx context.Context) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Kind        string
	DataDir     string
	DatabaseURL string
	RedisURL    string
	Logger      *slog.Logger
}

// Open constructs the backend named by opts.Kind.
func Open(ctx context.Context, opts Options) (Backend, error) {
	switch opts.Kind {
	case KindFile, "":
		return NewFile(opts.DataDir)
	case KindPostgres:
		return NewPostgres(ctx, opts.DatabaseURL, opts.Logger)
	case KindRedis:
		return NewRedis(ctx, opts.RedisURL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Kind)
	}
}

// tenantRecord is the stored shape of a tenant. Field names follow the
// mailinglist.json layout so existing data files load unchanged.
type tenantRecord struct {
	Email         string   `json:"email"`
	EmailPassword string   `json:"email_password"`
	Clients       []string `json:"clients"`
}

func toRecord(t model.Tenant) tenantRecord {
	clients := t.Subscribers
	if clients == nil {
		clients = []string{}
	}
	return tenantRecord{
		Email:         t.SenderEmail,
		EmailPassword: t.SenderCredential,
		Clients:       clients,
	}
}

func fromRecord(key string, r tenantRecord) model.Tenant {
	clients := r.Clients
	if clients == nil {
		clients = []string{}
	}
	return model.Tenant{
		APIKey:           model.APIKey(key),
		SenderEmail:      r.Email,
		SenderCredential: r.EmailPassword,
		Subscribers:      clients,
	}
}

// tenantsFromRecords converts a keyed record map into a slice ordered by key.
func tenantsFromRecords(records map[string]tenantRecord) []model.Tenant {
	keys := make([]string, 0, len(records))
	for k := range records {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tenants := make([]model.Tenant, 0, len(keys))
	for _, k := range keys {
		tenants = append(tenants, fromRecord(k, records[k]))
	}
	return tenants
}

func keyStrings(keys []model.APIKey) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

var (
	_ Backend = (*File)(nil)
	_ Backend = (*Postgres)(nil)
	_ Backend = (*Redis)(nil)
)
