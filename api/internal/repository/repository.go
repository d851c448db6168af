package repository

import (
	"context"
	"errors"

	"github.com/skydock-systems/skydock-stack/api/internal/models"
)

var (
	ErrProjectNotFound    = errors.New("project not found")
	ErrDeploymentNotFound = errors.New("deployment not found")
	ErrSubdomainTaken     = errors.New("subdomain already taken")
)

type Repository interface {
	CreateProject(ctx context.Context, project *models.Project) error
	GetProject(ctx context.Context, id string) (*models.Project, error)
	GetProjectBySubdomain(ctx context.Context, subdomain string) (*models.Project, error)
	SubdomainExists(ctx context.Context, subdomain string) (bool, error)

	CreateDeployment(ctx context.Context, deployment *models.Deployment) error
	GetDeployment(ctx context.Context, id string) (*models.Deployment, error)
	UpdateDeploymentStatus(ctx context.Context, id, status string) error
	ListDeployments(ctx context.Context, projectID string) ([]*models.Deployment, error)
}
