// Package config loads skyctl's user configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// APIURL is the control-plane base URL.
	APIURL string `yaml:"api_url" mapstructure:"api_url"`

	// CollectorURL is the log service base URL (HTTP and websocket).
	CollectorURL string `yaml:"collector_url" mapstructure:"collector_url"`

	path string
}

func Default() *Config {
	return &Config{
		APIURL:       "http://localhost:9000",
		CollectorURL: "http://localhost:9001",
	}
}

// Load reads $HOME/.skyctl/config.yaml (or cfgFile when given) with SKYCTL_*
// environment overrides. A missing file yields the defaults.
func Load(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine home directory: %w", err)
		}
		cfgFile = filepath.Join(home, ".skyctl", "config.yaml")
	}

	v := viper.New()
	v.SetDefault("api_url", "http://localhost:9000")
	v.SetDefault("collector_url", "http://localhost:9001")

	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SKYCTL")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	_ = v.BindEnv("api_url", "SKYCTL_API_URL")
	_ = v.BindEnv("collector_url", "SKYCTL_COLLECTOR_URL")

	// The file may not exist yet; defaults and env still apply.
	_ = v.ReadInConfig()

	cfg := Default()
	cfg.path = cfgFile
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

func (c *Config) Save() error {
	if c.path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(home, ".skyctl", "config.yaml")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0700); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(c.path, data, 0600)
}
