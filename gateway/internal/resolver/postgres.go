package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresResolver resolves subdomains against the projects table.
type PostgresResolver struct {
	pool *pgxpool.Pool
}

func NewPostgresResolver(ctx context.Context, connString string) (*PostgresResolver, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

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

	return &PostgresResolver{pool: pool}, nil
}

func (r *PostgresResolver) Resolve(ctx context.Context, subdomain string) (string, error) {
	query := `SELECT id FROM projects WHERE subdomain = $1`

	var projectID string
	err := r.pool.QueryRow(ctx, query, subdomain).Scan(&projectID)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve subdomain: %w", err)
	}

	return projectID, nil
}

func (r *PostgresResolver) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresResolver) Close() {
	r.pool.Close()
}
