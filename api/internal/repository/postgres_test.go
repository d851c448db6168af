package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/skydock-systems/skydock-stack/api/internal/models"
)

// setupTestDatabase creates a PostgreSQL testcontainer and runs migrations.
func setupTestDatabase(t *testing.T) *PostgresRepository {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("skydock_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, runMigrations(connStr))

	repo, err := NewPostgresRepository(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(repo.Close)

	return repo
}

func runMigrations(connStr string) error {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	dir := filepath.Join("..", "..", "migrations")
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations dir: %w", err)
	}

	var ups []string
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".up.sql") {
			ups = append(ups, e.Name())
		}
	}
	sort.Strings(ups)

	for _, name := range ups {
		migrationSQL, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", name, err)
		}
		if _, err := db.Exec(string(migrationSQL)); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", name, err)
		}
	}

	return nil
}

func TestPostgresProjects(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	project := &models.Project{
		ID:        "11111111-1111-1111-1111-111111111111",
		Name:      "My Blog",
		RepoURL:   "https://github.com/user/blog",
		Subdomain: "my-blog",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateProject(ctx, project))

	got, err := repo.GetProject(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, "my-blog", got.Subdomain)
	assert.Equal(t, "My Blog", got.Name)

	bySub, err := repo.GetProjectBySubdomain(ctx, "my-blog")
	require.NoError(t, err)
	assert.Equal(t, project.ID, bySub.ID)

	exists, err := repo.SubdomainExists(ctx, "my-blog")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.SubdomainExists(ctx, "no-such-site")
	require.NoError(t, err)
	assert.False(t, exists)

	dup := &models.Project{
		ID:        "22222222-2222-2222-2222-222222222222",
		Name:      "Another",
		RepoURL:   "https://github.com/user/other",
		Subdomain: "my-blog",
		CreatedAt: time.Now().UTC(),
	}
	assert.ErrorIs(t, repo.CreateProject(ctx, dup), ErrSubdomainTaken)

	_, err = repo.GetProject(ctx, "33333333-3333-3333-3333-333333333333")
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestPostgresDeployments(t *testing.T) {
	repo := setupTestDatabase(t)
	ctx := context.Background()

	project := &models.Project{
		ID:        "11111111-1111-1111-1111-111111111111",
		Name:      "My Blog",
		RepoURL:   "https://github.com/user/blog",
		Subdomain: "my-blog",
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.CreateProject(ctx, project))

	now := time.Now().UTC()
	deployment := &models.Deployment{
		ID:        "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa",
		ProjectID: project.ID,
		Status:    models.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, repo.CreateDeployment(ctx, deployment))

	orphan := &models.Deployment{
		ID:        "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb",
		ProjectID: "99999999-9999-9999-9999-999999999999",
		Status:    models.StatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}
	assert.ErrorIs(t, repo.CreateDeployment(ctx, orphan), ErrProjectNotFound)

	require.NoError(t, repo.UpdateDeploymentStatus(ctx, deployment.ID, models.StatusBuilding))

	got, err := repo.GetDeployment(ctx, deployment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusBuilding, got.Status)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt) || got.UpdatedAt.Equal(got.CreatedAt))

	err = repo.UpdateDeploymentStatus(ctx, "cccccccc-cccc-cccc-cccc-cccccccccccc", models.StatusFailed)
	assert.ErrorIs(t, err, ErrDeploymentNotFound)

	list, err := repo.ListDeployments(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, deployment.ID, list[0].ID)
}
