// Package storage provides the filesystem workspace repository: config
// round trips and spec file discovery. The checkbox tracker writes spec
// files itself; this layer never writes back through it.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"gopkg.in/yaml.v3"
)

const SpecmarkDir = ".specmark"
const ConfigFile = "config.yaml"

// Config is the workspace configuration stored in .specmark/config.yaml.
type Config struct {
	// SpecGlobs are doublestar patterns, relative to the workspace root,
	// that locate spec files.
	SpecGlobs []string `yaml:"spec_globs"`
	// DiffContext is the context window for line-level diffs.
	DiffContext int `yaml:"diff_context"`
	// DashboardAddr is the default listen address for `specmark serve`.
	DashboardAddr string `yaml:"dashboard_addr"`
}

// DefaultConfig is used when the workspace carries no config file.
func DefaultConfig() *Config {
	return &Config{
		SpecGlobs:     []string{"specs/**/*.md"},
		DiffContext:   3,
		DashboardAddr: ":7317",
	}
}

type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// Root returns the workspace root directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .specmark directory and
// prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}
	baseDir := filepath.Join(r.root, SpecmarkDir)
	cleanPath := filepath.Clean(filepath.Join(baseDir, filename))
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}
	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, SpecmarkDir)
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .specmark directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, SpecmarkDir))
	return err == nil
}

// LoadConfig reads the workspace config, falling back to defaults when the
// file is absent.
func (r *FilesystemRepository) LoadConfig() (*Config, error) {
	retryer := retry.New[*Config](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*Config, error) {
		path, err := r.ResolvePath(ConfigFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return DefaultConfig(), nil
			}
			return nil, fmt.Errorf("failed to read config: %w", err)
		}

		cfg := DefaultConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}
		return cfg, nil
	})
}

func (r *FilesystemRepository) SaveConfig(cfg *Config) error {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0600)
}

// ReadSpec reads one spec file with the repository retry policy.
func (r *FilesystemRepository) ReadSpec(path string) (string, error) {
	retryer := retry.New[string](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (string, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(r.root, path)
		}
		// #nosec G304 -- Spec paths come from workspace discovery
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read spec file: %w", err)
		}
		return string(data), nil
	})
}
