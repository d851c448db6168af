package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/skydock-systems/skydock-stack/builder/internal/config"
	"github.com/skydock-systems/skydock-stack/builder/internal/producer"
	"github.com/skydock-systems/skydock-stack/builder/internal/runner"
	"github.com/skydock-systems/skydock-stack/builder/internal/uploader"
	"github.com/skydock-systems/skydock-stack/common/blob"
	"github.com/skydock-systems/skydock-stack/common/logging"
	"github.com/skydock-systems/skydock-stack/common/models"

	natsclient "github.com/skydock-systems/skydock-stack/common/messaging/nats"
)

func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(
		logging.Service("builder"),
		logging.DeploymentID(cfg.DeploymentID),
	)
	logging.SetDefault(logger)

	slog.Info("Starting build",
		slog.String("project_id", cfg.ProjectID),
		slog.String("workdir", cfg.WorkDir),
		slog.String("command", cfg.BuildCommand),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	natsCfg := natsclient.DefaultConfig()
	natsCfg.URL = cfg.NATS.URL
	natsCfg.Name = "skydock-builder-" + cfg.DeploymentID
	jsClient, err := natsclient.NewJetStreamClient(natsCfg)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer jsClient.Drain()

	if _, err := jsClient.CreateOrUpdateStream(ctx, natsclient.BuildLogsStream); err != nil {
		log.Fatalf("Failed to create stream: %v", err)
	}

	store, err := newBlobStore(cfg.Blob)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}

	prod := producer.New(cfg.DeploymentID, cfg.ProjectID, jsClient, logger)
	prod.EmitPhase(ctx, "Build Started...", models.PhaseBuildStarted)

	if cfg.RepoURL != "" {
		prod.Emit(ctx, "Cloning "+cfg.RepoURL)
		if err := checkout(ctx, cfg.RepoURL, cfg.WorkDir, func(line string) {
			prod.Emit(ctx, line)
		}); err != nil {
			prod.Emit(ctx, fmt.Sprintf("error: clone failed: %v", err))
			prod.EmitPhase(ctx, "Build Failed", models.PhaseBuildFailed)
			finish(prod)
			os.Exit(1)
		}
	}

	buildErr := runner.Run(ctx, cfg.WorkDir, cfg.BuildCommand, func(line string) {
		prod.Emit(ctx, line)
	})
	if buildErr != nil {
		prod.Emit(ctx, fmt.Sprintf("error: %v", buildErr))
		prod.EmitPhase(ctx, "Build Failed", models.PhaseBuildFailed)
		finish(prod)
		os.Exit(1)
	}

	prod.EmitPhase(ctx, "Build Complete", models.PhaseBuildComplete)
	prod.EmitPhase(ctx, "Starting to upload", models.PhaseUploadStarted)

	outputDir := filepath.Join(cfg.WorkDir, cfg.OutputDir)
	up := uploader.New(store, cfg.ProjectID)
	count, err := up.Upload(ctx, outputDir,
		func(rel string) { prod.Emit(ctx, "uploading "+rel) },
		func(rel string) { prod.Emit(ctx, "uploaded "+rel) },
	)
	if err != nil {
		prod.Emit(ctx, fmt.Sprintf("error: upload failed: %v", err))
		prod.EmitPhase(ctx, "Build Failed", models.PhaseBuildFailed)
		finish(prod)
		os.Exit(1)
	}

	prod.EmitPhase(ctx, fmt.Sprintf("uploaded %d files", count), models.PhaseUploadFinished)
	prod.EmitPhase(ctx, "Done...", models.PhaseDone)
	finish(prod)

	slog.Info("Build finished",
		slog.Int("files_uploaded", count),
		slog.Uint64("log_events", prod.Sequence()),
	)
}

// checkout clones the repository into workdir, streaming git's output
// through onLine like build output. The URL is passed to git directly, never
// through a shell.
func checkout(ctx context.Context, repoURL, workdir string, onLine func(string)) error {
	if err := os.MkdirAll(workdir, 0o755); err != nil {
		return fmt.Errorf("failed to create workdir: %w", err)
	}
	return runner.RunCommand(ctx, workdir, "git", []string{"clone", "--depth", "1", repoURL, "."}, onLine)
}

func newBlobStore(cfg config.BlobConfig) (blob.Store, error) {
	switch cfg.Backend {
	case "azure":
		return blob.NewAzureStore(blob.AzureConfig{
			AccountName: cfg.AccountName,
			AccessKey:   cfg.AccessKey,
			Container:   cfg.Container,
		})
	case "fs":
		return blob.NewFSStore(cfg.Dir)
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.Backend)
	}
}

func finish(prod *producer.Producer) {
	if dropped := prod.Dropped(); dropped > 0 {
		slog.Warn("log stream incomplete", slog.Uint64("dropped_events", dropped))
	}
}
