package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Origin   OriginConfig   `yaml:"origin"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// ConnString builds a pgx-compatible connection string.
func (d DatabaseConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled bool          `yaml:"enabled"`
	URL     string        `yaml:"url"`
	TTL     time.Duration `yaml:"ttl"`
}

// OriginConfig points the proxy at the artifact store front.
type OriginConfig struct {
	// URL is the base URL serving deployed artifacts.
	URL string `yaml:"url"`

	// PathPrefix is prepended to the project id when building upstream
	// paths, e.g. __outputs.
	PathPrefix string `yaml:"path_prefix"`

	// Timeout bounds a single upstream fetch.
	Timeout time.Duration `yaml:"timeout"`
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

	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		cfg.Database.Host = host
	}
	if user := os.Getenv("POSTGRES_USER"); user != "" {
		cfg.Database.User = user
	}
	if password := os.Getenv("POSTGRES_PASSWORD"); password != "" {
		cfg.Database.Password = password
	}
	if db := os.Getenv("POSTGRES_DB"); db != "" {
		cfg.Database.Database = db
	}
	if url := os.Getenv("REDIS_URL"); url != "" {
		cfg.Redis.URL = url
	}
	if url := os.Getenv("ORIGIN_URL"); url != "" {
		cfg.Origin.URL = url
	}

	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         8000,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "skydock",
			Password: "skydock",
			Database: "skydock",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Enabled: true,
			URL:     "redis://localhost:6379/0",
			TTL:     30 * time.Second,
		},
		Origin: OriginConfig{
			URL:        "http://localhost:9100",
			PathPrefix: "__outputs",
			Timeout:    10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}
