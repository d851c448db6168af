// Package config reads the builder's environment. The builder runs once per
// deployment inside an ephemeral worker, so all configuration arrives through
// environment variables set by the launcher.
package config

import (
	"fmt"
	"os"
	"strings"
)

type Config struct {
	DeploymentID string
	ProjectID    string

	// RepoURL is the git repository to check out into WorkDir before the
	// build. Empty means the workdir is pre-populated by the worker image.
	RepoURL string

	// WorkDir is the checked-out source tree the build command runs in.
	WorkDir string

	// BuildCommand is executed through the shell, e.g. "npm install && npm run build".
	BuildCommand string

	// OutputDir is the artifact tree to upload, relative to WorkDir.
	OutputDir string

	NATS NATSConfig
	Blob BlobConfig

	Logging LoggingConfig
}

type NATSConfig struct {
	URL string
}

// BlobConfig selects the artifact store backend.
type BlobConfig struct {
	// Backend is "azure" or "fs".
	Backend string

	// FS backend.
	Dir string

	// Azure backend.
	AccountName string
	AccessKey   string
	Container   string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		DeploymentID: os.Getenv("DEPLOYMENT_ID"),
		ProjectID:    os.Getenv("PROJECT_ID"),
		RepoURL:      os.Getenv("GIT_REPOSITORY_URL"),
		WorkDir:      envOr("BUILD_WORKDIR", "/home/app/output"),
		BuildCommand: envOr("BUILD_COMMAND", "npm install && npm run build"),
		OutputDir:    envOr("BUILD_OUTPUT_DIR", "dist"),
		NATS: NATSConfig{
			URL: envOr("NATS_URL", "nats://localhost:4222"),
		},
		Blob: BlobConfig{
			Backend:     strings.ToLower(envOr("BLOB_BACKEND", "fs")),
			Dir:         envOr("BLOB_DIR", "/var/lib/skydock/blobs"),
			AccountName: os.Getenv("AZURE_STORAGE_ACCOUNT"),
			AccessKey:   os.Getenv("AZURE_STORAGE_KEY"),
			Container:   envOr("AZURE_STORAGE_CONTAINER", "skydock-artifacts"),
		},
		Logging: LoggingConfig{
			Level:  envOr("LOG_LEVEL", "info"),
			Format: envOr("LOG_FORMAT", "json"),
		},
	}

	if cfg.DeploymentID == "" {
		return nil, fmt.Errorf("DEPLOYMENT_ID is required")
	}
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("PROJECT_ID is required")
	}
	if cfg.Blob.Backend == "azure" && (cfg.Blob.AccountName == "" || cfg.Blob.AccessKey == "") {
		return nil, fmt.Errorf("azure blob backend requires AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY")
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
