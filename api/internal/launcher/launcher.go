// Package launcher starts build workers for queued deployments.
package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"sync"

	"github.com/skydock-systems/skydock-stack/common/logging"
)

// LaunchParams carries everything a worker needs to build one deployment.
type LaunchParams struct {
	DeploymentID string
	ProjectID    string
	RepoURL      string
}

// Launcher starts a build worker. Implementations decide what a worker is:
// a local process in development, a container task in production.
type Launcher interface {
	Launch(ctx context.Context, params LaunchParams) error
}

// ExecLauncher spawns the worker command as a detached local process with
// the deployment's identity in its environment. The builder clones
// GIT_REPOSITORY_URL into its workdir before running the build.
type ExecLauncher struct {
	command string
	args    []string
	logger  *logging.Logger
}

func NewExecLauncher(command string, args []string, logger *logging.Logger) *ExecLauncher {
	return &ExecLauncher{command: command, args: args, logger: logger}
}

func (l *ExecLauncher) Launch(ctx context.Context, params LaunchParams) error {
	cmd := exec.Command(l.command, l.args...)
	cmd.Env = append(cmd.Environ(),
		"DEPLOYMENT_ID="+params.DeploymentID,
		"PROJECT_ID="+params.ProjectID,
		"GIT_REPOSITORY_URL="+params.RepoURL,
	)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start worker: %w", err)
	}

	l.logger.Info("launched build worker",
		logging.DeploymentID(params.DeploymentID),
		logging.ProjectID(params.ProjectID),
	)

	// The worker outlives the request; reap it in the background so it
	// does not linger as a zombie.
	go cmd.Wait()

	return nil
}

// RecordingLauncher captures launches for tests.
type RecordingLauncher struct {
	mu       sync.Mutex
	Launches []LaunchParams
	Err      error
}

func (l *RecordingLauncher) Launch(ctx context.Context, params LaunchParams) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.Err != nil {
		return l.Err
	}
	l.Launches = append(l.Launches, params)
	return nil
}
