package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

const (
	// FileEnv overrides the location of the persisted configuration file
	FileEnv = "RE_CONFIG_FILE"
	// TokenKey is the key the GitHub token is persisted under
	TokenKey = "GITHUB_TOKEN"

	appDir   = "re-cli"
	fileName = ".env"
)

// ErrTokenMissing is returned when no GitHub token has been configured
var ErrTokenMissing = errors.New("github token is not configured")

// Config holds the settings read at startup
type Config struct {
	GitHubToken string `env:"GITHUB_TOKEN"`
	GitHubHost  string `env:"GITHUB_HOST" envDefault:"github.com"`
	LogLevel    string `env:"RE_LOG_LEVEL" envDefault:"warn"`

	// Templates replaces the built-in scaffold catalog, entries are name=url[#branch]
	Templates []string `env:"RE_TEMPLATES" envSeparator:","`
}

// RequireToken returns ErrTokenMissing when no token is configured
func (c Config) RequireToken() error {
	if c.GitHubToken == "" {
		return ErrTokenMissing
	}
	return nil
}

// DefaultPath returns the configuration file location, honouring RE_CONFIG_FILE
func DefaultPath() (string, error) {
	if path := os.Getenv(FileEnv); path != "" {
		return path, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(dir, appDir, fileName), nil
}

// Load reads the dotenv file at path and overlays non-empty process
// environment variables on top of it. A missing file is not an error.
func Load(path string) (Config, error) {
	values, err := readFile(path)
	if err != nil {
		return Config{}, err
	}

	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || value == "" {
			continue
		}
		values[key] = value
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: values}); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.GitHubToken = strings.TrimSpace(cfg.GitHubToken)
	cfg.GitHubHost = strings.TrimSpace(cfg.GitHubHost)

	return cfg, nil
}

// Save merges updates into the dotenv file at path. Existing keys are kept,
// empty update values are ignored.
func Save(path string, updates map[string]string) error {
	values, err := readFile(path)
	if err != nil {
		return err
	}

	for key, value := range updates {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		values[key] = value
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := godotenv.Write(values, path); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("failed to restrict config permissions: %w", err)
	}

	return nil
}

func readFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return values, nil
}
