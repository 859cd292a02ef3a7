package config

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// TemplateGenerator writes an example project configuration.
type TemplateGenerator struct {
	OutputDir string
	Out       io.Writer
	// Force overwrites an existing project file.
	Force bool
}

func NewTemplateGenerator(outputDir string, out io.Writer) *TemplateGenerator {
	return &TemplateGenerator{OutputDir: outputDir, Out: out}
}

// Generate writes .legl-dev.<ext> for the given format and returns its path.
// An existing file is left alone unless Force is set.
func (tg *TemplateGenerator) Generate(format FileFormat) (string, error) {
	var content string
	switch format {
	case FormatYAML:
		content = yamlTemplate
	case FormatHCL:
		content = hclTemplate
	default:
		return "", fmt.Errorf("unsupported config format %s", format)
	}

	filename := ".legl-dev" + format.Extension()
	path := filepath.Join(tg.OutputDir, filename)

	if _, err := os.Stat(path); err == nil && !tg.Force {
		return path, fmt.Errorf("%s already exists (use --force to overwrite): %w", path, fs.ErrExist)
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	if tg.Out != nil {
		fmt.Fprintf(tg.Out, "✓ Created %s\n", path)
		fmt.Fprintf(tg.Out, "  Run a pipeline with: legl-dev run lint\n")
	}
	return path, nil
}

const yamlTemplate = `# legl-dev project configuration.
# Every field is optional; unset fields keep their built-in defaults.
compose: docker compose
backend_service: backend
frontend_service: frontend
log_dir: .legl-dev/logs
protected_branches: [master, dev]

pipelines:
  lint:
    description: Static checks for the backend
    steps:
      # A plain string is split on whitespace and run without a shell.
      - docker compose exec backend flake8
      - command: docker compose exec backend mypy .
        description: Type checking
        log: mypy
  services:
    description: Follow backend and frontend logs together
    concurrent: true
    steps:
      - command: docker compose logs -f backend
        verbose: true
      - command: docker compose logs -f frontend
        verbose: true
  clean:
    steps:
      - command: find . -name "*.pyc" -delete
        shell: true
        exit_policy: lenient
`

const hclTemplate = `# legl-dev project configuration.
# Every attribute is optional; unset attributes keep their built-in defaults.
compose            = "docker compose"
backend_service    = "backend"
frontend_service   = "frontend"
log_dir            = ".legl-dev/logs"
protected_branches = ["master", "dev"]

pipeline "lint" {
  description = "Static checks for the backend"

  step {
    command = "docker compose exec backend flake8"
  }

  step {
    command     = "docker compose exec backend mypy ."
    description = "Type checking"
    log         = "mypy"
  }
}

pipeline "services" {
  description = "Follow backend and frontend logs together"
  concurrent  = true

  step {
    command = "docker compose logs -f backend"
    verbose = true
  }

  step {
    command = "docker compose logs -f frontend"
    verbose = true
  }
}

pipeline "clean" {
  step {
    command     = "find . -name \"*.pyc\" -delete"
    shell       = true
    exit_policy = "lenient"
  }
}
`
