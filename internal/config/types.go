package config

import (
	"fmt"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/legl/legl-dev/internal/executor"
)

// Config is the merged legl-dev configuration.
type Config struct {
	// Compose is the compose invocation prefix, e.g. "docker compose".
	Compose           string              `yaml:"compose"`
	BackendService    string              `yaml:"backend_service"`
	FrontendService   string              `yaml:"frontend_service"`
	LogDir            string              `yaml:"log_dir"`
	Shell             []string            `yaml:"shell"`
	OpenCommand       string              `yaml:"open_command"`
	ProtectedBranches []string            `yaml:"protected_branches"`
	LogLevel          string              `yaml:"log_level"`
	LogFormat         string              `yaml:"log_format"`
	Pipelines         map[string]Pipeline `yaml:"pipelines"`
}

// Pipeline is a user-defined, named list of steps.
type Pipeline struct {
	Description string       `yaml:"description,omitempty"`
	Concurrent  bool         `yaml:"concurrent,omitempty"`
	Steps       []StepConfig `yaml:"steps"`
}

// StepConfig describes one pipeline step. In YAML a step is either a plain
// string, taken as an argv command, or a mapping with the fields below.
type StepConfig struct {
	Command     string            `yaml:"command"`
	Shell       bool              `yaml:"shell,omitempty"`
	Description string            `yaml:"description,omitempty"`
	Log         string            `yaml:"log,omitempty"`
	Verbose     *bool             `yaml:"verbose,omitempty"`
	ExitPolicy  string            `yaml:"exit_policy,omitempty"`
	Env         map[string]string `yaml:"env,omitempty"`
	WorkDir     string            `yaml:"workdir,omitempty"`
}

// UnmarshalYAML accepts both the string and the mapping form of a step.
func (s *StepConfig) UnmarshalYAML(node *yaml.Node) error {
	format, err := DetectStepFormat(node)
	if err != nil {
		return err
	}

	switch format {
	case StepFormatString:
		var command string
		if err := node.Decode(&command); err != nil {
			return err
		}
		*s = StepConfig{Command: command}
	case StepFormatObject:
		type plain StepConfig
		var p plain
		if err := node.Decode(&p); err != nil {
			return err
		}
		*s = StepConfig(p)
	default:
		return fmt.Errorf("line %d: unsupported step format", node.Line)
	}
	return nil
}

// PipelineNames returns the configured pipeline names in sorted order.
func (c *Config) PipelineNames() []string {
	names := make([]string, 0, len(c.Pipelines))
	for name := range c.Pipelines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Pipeline looks up a configured pipeline by name.
func (c *Config) Pipeline(name string) (Pipeline, bool) {
	p, ok := c.Pipelines[name]
	return p, ok
}

// Clone returns a deep copy so callers can adjust a loaded config freely.
func (c *Config) Clone() *Config {
	out := *c
	out.Shell = slices.Clone(c.Shell)
	out.ProtectedBranches = slices.Clone(c.ProtectedBranches)
	if c.Pipelines != nil {
		out.Pipelines = make(map[string]Pipeline, len(c.Pipelines))
		for name, p := range c.Pipelines {
			steps := make([]StepConfig, len(p.Steps))
			for i, s := range p.Steps {
				if s.Env != nil {
					env := make(map[string]string, len(s.Env))
					for k, v := range s.Env {
						env[k] = v
					}
					s.Env = env
				}
				if s.Verbose != nil {
					v := *s.Verbose
					s.Verbose = &v
				}
				steps[i] = s
			}
			p.Steps = steps
			out.Pipelines[name] = p
		}
	}
	return &out
}

// Defaults returns the built-in configuration every layer is merged onto.
func Defaults() *Config {
	return &Config{
		Compose:           "docker compose",
		BackendService:    "backend",
		FrontendService:   "frontend",
		LogDir:            executor.DefaultLogDir,
		Shell:             executor.DefaultShell(),
		OpenCommand:       "open",
		ProtectedBranches: []string{"master", "dev"},
		LogLevel:          "info",
		LogFormat:         "text",
		Pipelines:         map[string]Pipeline{},
	}
}
