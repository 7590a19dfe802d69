package config

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/catalystqa/e2eagent/internal/domain"
	"github.com/catalystqa/e2eagent/internal/pkg/filesystem"
	"github.com/catalystqa/e2eagent/internal/ports"
)

// FileLoader loads YAML configuration from ~/.e2eagent/config.yaml
// (overridable via E2EAGENT_CONFIG).
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := defaultConfig()
			if err := writeDefault(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, err
	}

	return hydrateDefaults(cfg), nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return l.overridePath
	}
	if custom := os.Getenv("E2EAGENT_CONFIG"); custom != "" {
		return expandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".e2eagent", "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeDefault(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

func defaultConfig() domain.Config {
	return domain.Config{
		ConfigFormatVersion: "1",
		Backend: domain.BackendConfig{
			Endpoint: domain.DefaultEndpoint,
			Timeout:  domain.DefaultRequestTimeout,
		},
		Polling: domain.PollingConfig{
			Interval: domain.DefaultPollInterval,
			Ceiling:  domain.DefaultPollCeiling,
		},
		Server: domain.ServerSettings{
			ListenAddr:              domain.DefaultListenAddr,
			TemplatesDir:            filepath.Join(filesystem.UserHomeDir(), ".e2eagent", "templates"),
			SessionTTL:              domain.DefaultSessionTTL,
			MaxConcurrentExecutions: domain.DefaultMaxConcurrentExecutions,
		},
	}
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.Backend.Endpoint == "" {
		cfg.Backend.Endpoint = domain.DefaultEndpoint
	}
	if cfg.Backend.Timeout == 0 {
		cfg.Backend.Timeout = domain.DefaultRequestTimeout
	}
	if cfg.Polling.Interval == 0 {
		cfg.Polling.Interval = domain.DefaultPollInterval
	}
	if cfg.Polling.Ceiling == 0 {
		cfg.Polling.Ceiling = domain.DefaultPollCeiling
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = domain.DefaultListenAddr
	}
	if cfg.Server.SessionTTL == 0 {
		cfg.Server.SessionTTL = domain.DefaultSessionTTL
	}
	if cfg.Server.MaxConcurrentExecutions == 0 {
		cfg.Server.MaxConcurrentExecutions = domain.DefaultMaxConcurrentExecutions
	}
	return cfg
}

func expandPath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if len(path) > 1 && path[:2] == "~/" {
		return filepath.Join(filesystem.UserHomeDir(), path[2:])
	}
	return filepath.Clean(path)
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
