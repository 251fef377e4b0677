package repository

import (
	"context"
	"embed"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/mailcast/mailcast/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Postgres stores keys and tenants in PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects, verifies the connection and applies migrations.
func NewPostgres(ctx context.Context, databaseURL string, logger *slog.Logger) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return &Postgres{pool: pool}, nil
}

// migrate applies the embedded goose migrations through a database/sql
// bridge over the pgx pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(gooseLogger{logger: logger})

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// gooseLogger routes goose output through slog.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...), slog.String("component", "migrations"))
}

// LoadKeys returns all registered keys in registration order.
func (p *Postgres) LoadKeys(ctx context.Context) ([]model.APIKey, error) {
	rows, err := p.pool.Query(ctx, `SELECT api_key FROM api_keys ORDER BY position, api_key`)
	if err != nil {
		return nil, fmt.Errorf("failed to load API keys: %w", err)
	}
	defer rows.Close()

	keys := []model.APIKey{}
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("failed to scan API key: %w", err)
		}
		keys = append(keys, model.APIKey(k))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating API keys: %w", err)
	}
	return keys, nil
}

// SaveKeys replaces the stored registry in one transaction.
func (p *Postgres) SaveKeys(ctx context.Context, keys []model.APIKey) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		for i, k := range keys {
			_, err := tx.Exec(ctx, `
				INSERT INTO api_keys (api_key, position)
				VALUES ($1, $2)
				ON CONFLICT (api_key) DO UPDATE SET position = EXCLUDED.position
			`, string(k), i)
			if err != nil {
				return fmt.Errorf("failed to save API key: %w", err)
			}
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM api_keys WHERE NOT (api_key = ANY($1))`,
			pq.Array(keyStrings(keys)),
		); err != nil {
			return fmt.Errorf("failed to prune API keys: %w", err)
		}
		return nil
	})
}

// LoadTenants returns all tenants ordered by key.
func (p *Postgres) LoadTenants(ctx context.Context) ([]model.Tenant, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT api_key, sender_email, sender_credential, subscribers
		FROM tenants
		ORDER BY api_key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenants: %w", err)
	}
	defer rows.Close()

	tenants := []model.Tenant{}
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, tenant)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tenants: %w", err)
	}
	return tenants, nil
}

// SaveTenants replaces the stored directory in one transaction.
func (p *Postgres) SaveTenants(ctx context.Context, tenants []model.Tenant) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		keys := make([]string, 0, len(tenants))
		for _, t := range tenants {
			rec := toRecord(t)
			_, err := tx.Exec(ctx, `
				INSERT INTO tenants (api_key, sender_email, sender_credential, subscribers, updated_at)
				VALUES ($1, $2, $3, $4, now())
				ON CONFLICT (api_key) DO UPDATE
				SET sender_email = EXCLUDED.sender_email,
				    sender_credential = EXCLUDED.sender_credential,
				    subscribers = EXCLUDED.subscribers,
				    updated_at = now()
			`, string(t.APIKey), rec.Email, rec.EmailPassword, pq.Array(rec.Clients))
			if err != nil {
				return fmt.Errorf("failed to save tenant: %w", err)
			}
			keys = append(keys, string(t.APIKey))
		}

		if _, err := tx.Exec(ctx,
			`DELETE FROM tenants WHERE NOT (api_key = ANY($1))`,
			pq.Array(keys),
		); err != nil {
			return fmt.Errorf("failed to prune tenants: %w", err)
		}
		return nil
	})
}

// Ping checks database connectivity.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the connection pool.
func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Postgres.
func (p *Postgres) Pool() *pgxpool.Pool {
	return p.pool
}

func scanTenant(row pgx.Row) (model.Tenant, error) {
	var key string
	var rec tenantRecord

	if err := row.Scan(&key, &rec.Email, &rec.EmailPassword, pq.Array(&rec.Clients)); err != nil {
		return model.Tenant{}, fmt.Errorf("failed to scan tenant: %w", err)
	}
	return fromRecord(key, rec), nil
}
