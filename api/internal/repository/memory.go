package repository

import (
	"context"
	"sync"
	"time"

	"github.com/skydock-systems/skydock-stack/api/internal/models"
)

type InMemoryRepository struct {
	projects            map[string]*models.Project
	projectsBySubdomain map[string]*models.Project
	deployments         map[string]*models.Deployment
	mu                  sync.RWMutex
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		projects:            make(map[string]*models.Project),
		projectsBySubdomain: make(map[string]*models.Project),
		deployments:         make(map[string]*models.Deployment),
	}
}

func (r *InMemoryRepository) CreateProject(ctx context.Context, project *models.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projectsBySubdomain[project.Subdomain]; exists {
		return ErrSubdomainTaken
	}

	r.projects[project.ID] = project
	r.projectsBySubdomain[project.Subdomain] = project
	return nil
}

func (r *InMemoryRepository) GetProject(ctx context.Context, id string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projects[id]
	if !exists {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (r *InMemoryRepository) GetProjectBySubdomain(ctx context.Context, subdomain string) (*models.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projectsBySubdomain[subdomain]
	if !exists {
		return nil, ErrProjectNotFound
	}
	return project, nil
}

func (r *InMemoryRepository) SubdomainExists(ctx context.Context, subdomain string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.projectsBySubdomain[subdomain]
	return exists, nil
}

func (r *InMemoryRepository) CreateDeployment(ctx context.Context, deployment *models.Deployment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.projects[deployment.ProjectID]; !exists {
		return ErrProjectNotFound
	}

	r.deployments[deployment.ID] = deployment
	return nil
}

func (r *InMemoryRepository) GetDeployment(ctx context.Context, id string) (*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	deployment, exists := r.deployments[id]
	if !exists {
		return nil, ErrDeploymentNotFound
	}
	return deployment, nil
}

func (r *InMemoryRepository) UpdateDeploymentStatus(ctx context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	deployment, exists := r.deployments[id]
	if !exists {
		return ErrDeploymentNotFound
	}

	deployment.Status = status
	deployment.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *InMemoryRepository) ListDeployments(ctx context.Context, projectID string) ([]*models.Deployment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*models.Deployment
	for _, d := range r.deployments {
		if d.ProjectID == projectID {
			out = append(out, d)
		}
	}
	return out, nil
}
