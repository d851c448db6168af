package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9001 {
		t.Errorf("expected default port 9001, got %d", cfg.Server.Port)
	}
	if cfg.OpenSearch.IndexName != "skydock-build-logs" {
		t.Errorf("unexpected index name %q", cfg.OpenSearch.IndexName)
	}
	if cfg.OpenSearch.QueryLimit != 1000 {
		t.Errorf("unexpected query limit %d", cfg.OpenSearch.QueryLimit)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  port: 9100
nats:
  url: nats://bus:4222
opensearch:
  index_name: custom-logs
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("expected port 9100, got %d", cfg.Server.Port)
	}
	if cfg.NATS.URL != "nats://bus:4222" {
		t.Errorf("unexpected NATS URL %q", cfg.NATS.URL)
	}
	if cfg.OpenSearch.IndexName != "custom-logs" {
		t.Errorf("unexpected index name %q", cfg.OpenSearch.IndexName)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("NATS_URL", "nats://env:4222")
	t.Setenv("OPENSEARCH_URL", "http://env:9200")
	t.Setenv("SKYDOCK_API_URL", "http://env-api:8000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.NATS.URL != "nats://env:4222" {
		t.Errorf("env override not applied to NATS URL: %q", cfg.NATS.URL)
	}
	if cfg.OpenSearch.URL != "http://env:9200" {
		t.Errorf("env override not applied to OpenSearch URL: %q", cfg.OpenSearch.URL)
	}
	if cfg.API.URL != "http://env-api:8000" {
		t.Errorf("env override not applied to API URL: %q", cfg.API.URL)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}
