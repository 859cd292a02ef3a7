package config

import (
	"context"
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/legl/legl-dev/internal/ctxlog"
)

// hclDocument is the HCL form of Config. Pipelines are labeled blocks:
//
//	pipeline "lint" {
//	  step {
//	    command = "docker compose exec backend flake8"
//	  }
//	}
type hclDocument struct {
	Compose           string        `hcl:"compose,optional"`
	BackendService    string        `hcl:"backend_service,optional"`
	FrontendService   string        `hcl:"frontend_service,optional"`
	LogDir            string        `hcl:"log_dir,optional"`
	Shell             []string      `hcl:"shell,optional"`
	OpenCommand       string        `hcl:"open_command,optional"`
	ProtectedBranches []string      `hcl:"protected_branches,optional"`
	LogLevel          string        `hcl:"log_level,optional"`
	LogFormat         string        `hcl:"log_format,optional"`
	Pipelines         []hclPipeline `hcl:"pipeline,block"`
}

type hclPipeline struct {
	Name        string    `hcl:"name,label"`
	Description string    `hcl:"description,optional"`
	Concurrent  bool      `hcl:"concurrent,optional"`
	Steps       []hclStep `hcl:"step,block"`
}

type hclStep struct {
	Command     string            `hcl:"command"`
	Shell       bool              `hcl:"shell,optional"`
	Description string            `hcl:"description,optional"`
	Log         string            `hcl:"log,optional"`
	Verbose     *bool             `hcl:"verbose,optional"`
	ExitPolicy  string            `hcl:"exit_policy,optional"`
	Env         map[string]string `hcl:"env,optional"`
	WorkDir     string            `hcl:"workdir,optional"`
}

// mergeHCL decodes an HCL document and overlays every attribute it sets onto dst.
func mergeHCL(ctx context.Context, dst *Config, data []byte, filename string) error {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Decoding HCL config.", "path", filename)

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file %s: %s", filename, diags.Error())
	}

	var doc hclDocument
	diags = gohcl.DecodeBody(file.Body, nil, &doc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL file %s: %s", filename, diags.Error())
	}

	doc.applyTo(dst)
	logger.Debug("Successfully decoded HCL config.", "path", filename, "pipelines_found", len(doc.Pipelines))
	return nil
}

func (d *hclDocument) applyTo(dst *Config) {
	setString(&dst.Compose, d.Compose)
	setString(&dst.BackendService, d.BackendService)
	setString(&dst.FrontendService, d.FrontendService)
	setString(&dst.LogDir, d.LogDir)
	setString(&dst.OpenCommand, d.OpenCommand)
	setString(&dst.LogLevel, d.LogLevel)
	setString(&dst.LogFormat, d.LogFormat)
	if d.Shell != nil {
		dst.Shell = d.Shell
	}
	if d.ProtectedBranches != nil {
		dst.ProtectedBranches = d.ProtectedBranches
	}

	if len(d.Pipelines) > 0 && dst.Pipelines == nil {
		dst.Pipelines = make(map[string]Pipeline, len(d.Pipelines))
	}
	for _, p := range d.Pipelines {
		pipeline := Pipeline{
			Description: p.Description,
			Concurrent:  p.Concurrent,
			Steps:       make([]StepConfig, 0, len(p.Steps)),
		}
		for _, s := range p.Steps {
			pipeline.Steps = append(pipeline.Steps, StepConfig(s))
		}
		dst.Pipelines[p.Name] = pipeline
	}
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
