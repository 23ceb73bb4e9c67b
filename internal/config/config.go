package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config covers both binaries: the client reads APIBaseURL, CredentialsFile
// and LogLevel; the dev server reads Port and JWTSecret.
type Config struct {
	APIBaseURL      string `envconfig:"API_BASE_URL" default:"http://localhost:8081/api/v1"`
	CredentialsFile string `envconfig:"CREDENTIALS_FILE"`
	Port            string `envconfig:"PORT" default:"8081"`
	JWTSecret       string `envconfig:"JWT_SECRET" default:"dev-secret-change-in-production"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads .env if present, then binds WASHLINK_-prefixed environment
// variables. CredentialsFile defaults to ~/.washlink/credentials.json.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("washlink", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.CredentialsFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		cfg.CredentialsFile = filepath.Join(home, ".washlink", "credentials.json")
	}
	return &cfg, nil
}
