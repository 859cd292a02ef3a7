package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDetectFileFormat(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		data     string
		expected FileFormat
	}{
		{name: "yaml extension", path: "a.yaml", data: `compose = "x"`, expected: FormatYAML},
		{name: "yml extension", path: "a.YML", expected: FormatYAML},
		{name: "hcl extension", path: "a.hcl", data: "compose: x", expected: FormatHCL},
		{name: "sniff yaml mapping", path: "config", data: "# comment\ncompose: docker compose\n", expected: FormatYAML},
		{name: "sniff yaml document marker", path: "config", data: "---\ncompose: x\n", expected: FormatYAML},
		{name: "sniff hcl assignment", path: "config", data: "\n// comment\ncompose = \"docker compose\"\n", expected: FormatHCL},
		{name: "sniff hcl block", path: "config", data: "pipeline \"lint\" {\n}\n", expected: FormatHCL},
		{name: "yaml value containing equals", path: "config", data: "pipelines:\n  env: A=b\n", expected: FormatYAML},
		{name: "empty defaults to yaml", path: "config", expected: FormatYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectFileFormat(tt.path, []byte(tt.data)))
		})
	}
}

func TestParseFileFormat(t *testing.T) {
	for input, want := range map[string]FileFormat{"yaml": FormatYAML, "YML": FormatYAML, " hcl ": FormatHCL} {
		got, err := ParseFileFormat(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseFileFormat("json")
	assert.Error(t, err)
}

func TestDetectStepFormat(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected StepFormat
		wantErr  string
	}{
		{name: "string", doc: `docker compose up`, expected: StepFormatString},
		{name: "quoted string", doc: `"git commit -m formatting"`, expected: StepFormatString},
		{name: "object", doc: "{command: ls, shell: true}", expected: StepFormatObject},
		{name: "object without command", doc: "{shell: true}", wantErr: "must have a 'command' field"},
		{name: "list", doc: "[docker, compose]", wantErr: "not a list"},
		{name: "null", doc: "~", wantErr: "cannot be null"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var doc yaml.Node
			require.NoError(t, yaml.Unmarshal([]byte(tt.doc), &doc))
			require.Len(t, doc.Content, 1)

			format, err := DetectStepFormat(doc.Content[0])
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Equal(t, StepFormatUnknown, format)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "yaml", FormatYAML.String())
	assert.Equal(t, "hcl", FormatHCL.String())
	assert.Equal(t, "unknown", FormatUnknown.String())
	assert.Equal(t, "string", StepFormatString.String())
	assert.Equal(t, "object", StepFormatObject.String())
	assert.Equal(t, ".hcl", FormatHCL.Extension())
	assert.Equal(t, ".yaml", FormatYAML.Extension())
}
