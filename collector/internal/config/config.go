package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	NATS       NATSConfig       `yaml:"nats"`
	OpenSearch OpenSearchConfig `yaml:"opensearch"`
	API        APIConfig        `yaml:"api"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type NATSConfig struct {
	URL string `yaml:"url"`
}

type OpenSearchConfig struct {
	URL        string `yaml:"url"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	Insecure   bool   `yaml:"insecure"`
	IndexName  string `yaml:"index_name"`
	QueryLimit int    `yaml:"query_limit"`
}

type APIConfig struct {
	URL string `yaml:"url"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(configPath string) (*Config, error) {
	cfg := defaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if url := os.Getenv("NATS_URL"); url != "" {
		cfg.NATS.URL = url
	}
	if url := os.Getenv("OPENSEARCH_URL"); url != "" {
		cfg.OpenSearch.URL = url
	}
	if username := os.Getenv("OPENSEARCH_USERNAME"); username != "" {
		cfg.OpenSearch.Username = username
	}
	if password := os.Getenv("OPENSEARCH_PASSWORD"); password != "" {
		cfg.OpenSearch.Password = password
	}
	if url := os.Getenv("SKYDOCK_API_URL"); url != "" {
		cfg.API.URL = url
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         9001,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		NATS: NATSConfig{
			URL: "nats://localhost:4222",
		},
		OpenSearch: OpenSearchConfig{
			URL:        "http://opensearch:9200",
			Username:   "admin",
			Password:   "admin",
			Insecure:   true,
			IndexName:  "skydock-build-logs",
			QueryLimit: 1000,
		},
		API: APIConfig{
			URL: "http://api:9000",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
