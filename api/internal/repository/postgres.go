package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skydock-systems/skydock-stack/api/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(ctx context.Context, connString string) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) CreateProject(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (id, name, repo_url, subdomain, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		project.ID, project.Name, project.RepoURL, project.Subdomain, project.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505 = unique_violation on the subdomain constraint
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrSubdomainTaken
		}
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	query := `
		SELECT id, name, repo_url, subdomain, created_at
		FROM projects
		WHERE id = $1
	`

	project := &models.Project{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&project.ID, &project.Name, &project.RepoURL, &project.Subdomain, &project.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) GetProjectBySubdomain(ctx context.Context, subdomain string) (*models.Project, error) {
	query := `
		SELECT id, name, repo_url, subdomain, created_at
		FROM projects
		WHERE subdomain = $1
	`

	project := &models.Project{}
	err := r.pool.QueryRow(ctx, query, subdomain).Scan(
		&project.ID, &project.Name, &project.RepoURL, &project.Subdomain, &project.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project by subdomain: %w", err)
	}

	return project, nil
}

func (r *PostgresRepository) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM projects WHERE subdomain = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, subdomain).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check subdomain: %w", err)
	}
	return exists, nil
}

func (r *PostgresRepository) CreateDeployment(ctx context.Context, deployment *models.Deployment) error {
	query := `
		INSERT INTO deployments (id, project_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		deployment.ID, deployment.ProjectID, deployment.Status,
		deployment.CreatedAt, deployment.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23503 = foreign_key_violation on project_id
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to create deployment: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	query := `
		SELECT id, project_id, status, created_at, updated_at
		FROM deployments
		WHERE id = $1
	`

	deployment := &models.Deployment{}
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&deployment.ID, &deployment.ProjectID, &deployment.Status,
		&deployment.CreatedAt, &deployment.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDeploymentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get deployment: %w", err)
	}

	return deployment, nil
}

func (r *PostgresRepository) UpdateDeploymentStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE deployments
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update deployment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDeploymentNotFound
	}

	return nil
}

func (r *PostgresRepository) ListDeployments(ctx context.Context, projectID string) ([]*models.Deployment, error) {
	query := `
		SELECT id, project_id, status, created_at, updated_at
		FROM deployments
		WHERE project_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list deployments: %w", err)
	}
	defer rows.Close()

	var out []*models.Deployment
	for rows.Next() {
		d := &models.Deployment{}
		if err := rows.Scan(&d.ID, &d.ProjectID, &d.Status, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan deployment: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read deployments: %w", err)
	}

	return out, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}
