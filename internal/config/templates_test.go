package config

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateGenerator_GeneratedFilesLoad(t *testing.T) {
	for _, format := range []FileFormat{FormatYAML, FormatHCL} {
		t.Run(format.String(), func(t *testing.T) {
			dir := t.TempDir()
			var out bytes.Buffer

			path, err := NewTemplateGenerator(dir, &out).Generate(format)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, ".legl-dev"+format.Extension()), path)
			assert.Contains(t, out.String(), "Created")

			cfg, err := LoadFromFile(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, []string{"clean", "lint", "services"}, cfg.PipelineNames())
			assert.True(t, cfg.Pipelines["services"].Concurrent)
			assert.Equal(t, "mypy", cfg.Pipelines["lint"].Steps[1].Log)
			assert.Equal(t, "lenient", cfg.Pipelines["clean"].Steps[0].ExitPolicy)
			assert.Equal(t, `find . -name "*.pyc" -delete`, cfg.Pipelines["clean"].Steps[0].Command)
		})
	}
}

func TestTemplateGenerator_DoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, ".legl-dev.yaml")
	require.NoError(t, os.WriteFile(existing, []byte("compose: mine\n"), 0o644))

	_, err := NewTemplateGenerator(dir, nil).Generate(FormatYAML)
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrExist))

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "compose: mine\n", string(data))
}

func TestTemplateGenerator_Force(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, ".legl-dev.hcl")
	require.NoError(t, os.WriteFile(existing, []byte("compose = \"mine\"\n"), 0o644))

	tg := NewTemplateGenerator(dir, nil)
	tg.Force = true
	_, err := tg.Generate(FormatHCL)
	require.NoError(t, err)

	data, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Contains(t, string(data), `pipeline "lint"`)
}

func TestTemplateGenerator_UnknownFormat(t *testing.T) {
	_, err := NewTemplateGenerator(t.TempDir(), nil).Generate(FormatUnknown)
	assert.Error(t, err)
}
