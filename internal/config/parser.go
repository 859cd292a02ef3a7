package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/legl/legl-dev/internal/ctxlog"
)

const maxFileSize = 1024 * 1024

// UserDir is the per-user configuration directory under $HOME.
const UserDir = ".legl-dev"

// ProjectFiles are the project configuration names, in lookup order.
var ProjectFiles = []string{".legl-dev.yaml", ".legl-dev.yml", ".legl-dev.hcl"}

var userFiles = []string{"config.yaml", "config.yml", "config.hcl"}

// LoadOptions controls where Load looks for configuration layers.
type LoadOptions struct {
	// ExplicitPath is the --config file. It must exist when set.
	ExplicitPath string
	// HomeDir defaults to os.UserHomeDir.
	HomeDir string
	// WorkDir defaults to the current directory.
	WorkDir string
}

// Loaded is a validated configuration and the files it was merged from.
type Loaded struct {
	Config  *Config
	Sources []string
}

// Load resolves configuration from defaults, then the user file, then the
// project file, then an explicit path. Later layers win field by field.
func Load(ctx context.Context, opts LoadOptions) (*Loaded, error) {
	logger := ctxlog.FromContext(ctx)
	cfg := Defaults()
	loaded := &Loaded{Config: cfg}

	home := opts.HomeDir
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}
	if home != "" {
		path, err := mergeFirst(ctx, cfg, filepath.Join(home, UserDir), userFiles)
		if err != nil {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
		if path != "" {
			loaded.Sources = append(loaded.Sources, path)
		}
	}

	path, err := mergeFirst(ctx, cfg, opts.WorkDir, ProjectFiles)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}
	if path != "" {
		loaded.Sources = append(loaded.Sources, path)
	}

	if opts.ExplicitPath != "" {
		if err := mergeFile(ctx, cfg, opts.ExplicitPath); err != nil {
			return nil, err
		}
		loaded.Sources = append(loaded.Sources, filepath.Clean(opts.ExplicitPath))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Debug("Configuration loaded.", "sources", loaded.Sources, "pipelines", len(cfg.Pipelines))
	return loaded, nil
}

// LoadFromFile merges a single file onto the defaults and validates the result.
func LoadFromFile(ctx context.Context, filename string) (*Config, error) {
	cfg := Defaults()
	if err := mergeFile(ctx, cfg, filename); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Parse overlays data in the given format onto dst. filename is used only in
// diagnostics.
func Parse(ctx context.Context, dst *Config, data []byte, format FileFormat, filename string) error {
	if len(data) == 0 {
		return fmt.Errorf("configuration data is empty")
	}

	switch format {
	case FormatYAML:
		return mergeYAML(dst, data)
	case FormatHCL:
		return mergeHCL(ctx, dst, data, filename)
	default:
		return fmt.Errorf("unsupported config format %s", format)
	}
}

// mergeFirst merges the first candidate that exists in dir and returns its path.
func mergeFirst(ctx context.Context, dst *Config, dir string, names []string) (string, error) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := mergeFile(ctx, dst, path); err != nil {
			return "", err
		}
		return filepath.Clean(path), nil
	}
	return "", nil
}

func mergeFile(ctx context.Context, dst *Config, filename string) error {
	if err := FileExists(filename); err != nil {
		return err
	}
	cleanPath := filepath.Clean(filename)

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to access config file '%s': %w", cleanPath, err)
	}
	if fileInfo.Size() == 0 {
		return fmt.Errorf("config file '%s' is empty", cleanPath)
	}
	if fileInfo.Size() > maxFileSize {
		return fmt.Errorf("config file '%s' is too large (%d bytes), maximum allowed is %d bytes",
			cleanPath, fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to read config file '%s': %w", cleanPath, err)
	}

	format := DetectFileFormat(cleanPath, data)
	ctxlog.FromContext(ctx).Debug("Merging config file.", "path", cleanPath, "format", format.String())
	if err := Parse(ctx, dst, data, format, cleanPath); err != nil {
		return fmt.Errorf("error parsing config file '%s': %w", cleanPath, err)
	}
	return nil
}

func mergeYAML(dst *Config, data []byte) error {
	if err := yaml.Unmarshal(data, dst); err != nil {
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) {
			return fmt.Errorf("YAML type error: %w", err)
		}
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

// FileExists reports why filename cannot be used as a config file, if at all.
func FileExists(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	cleanPath := filepath.Clean(filename)

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("config file '%s' does not exist", cleanPath)
		}
		if os.IsPermission(err) {
			return fmt.Errorf("permission denied reading config file '%s'", cleanPath)
		}
		return fmt.Errorf("cannot access file '%s': %w", cleanPath, err)
	}

	if fileInfo.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", cleanPath)
	}

	return nil
}
