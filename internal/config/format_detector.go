package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileFormat is the syntax of a configuration file.
type FileFormat int

const (
	FormatUnknown FileFormat = iota
	FormatYAML
	FormatHCL
)

func (f FileFormat) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatHCL:
		return "hcl"
	default:
		return "unknown"
	}
}

// ParseFileFormat maps a user-supplied format name to a FileFormat.
func ParseFileFormat(name string) (FileFormat, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "yaml", "yml":
		return FormatYAML, nil
	case "hcl":
		return FormatHCL, nil
	default:
		return FormatUnknown, fmt.Errorf("unsupported config format %q (expected yaml or hcl)", name)
	}
}

// Extension returns the file extension used for the format.
func (f FileFormat) Extension() string {
	switch f {
	case FormatHCL:
		return ".hcl"
	default:
		return ".yaml"
	}
}

// DetectFileFormat picks the syntax of a configuration file, first from its
// extension and then by sniffing the content.
func DetectFileFormat(path string, data []byte) FileFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".hcl":
		return FormatHCL
	}
	return sniffFormat(data)
}

// sniffFormat treats content as HCL when its first significant line is an
// assignment or a block header, and as YAML otherwise.
func sniffFormat(data []byte) FileFormat {
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if line == "---" {
			return FormatYAML
		}
		if eq := strings.Index(line, "="); eq > 0 {
			colon := strings.Index(line, ":")
			if colon < 0 || eq < colon {
				return FormatHCL
			}
		}
		if strings.HasSuffix(line, "{") && !strings.Contains(line, ":") {
			return FormatHCL
		}
		return FormatYAML
	}
	return FormatYAML
}

// StepFormat is the shape of a pipeline step in YAML.
type StepFormat int

const (
	StepFormatUnknown StepFormat = iota
	StepFormatString             // "docker compose up"
	StepFormatObject             // {command: "git push", shell: true}
)

func (f StepFormat) String() string {
	switch f {
	case StepFormatString:
		return "string"
	case StepFormatObject:
		return "object"
	default:
		return "unknown"
	}
}

// DetectStepFormat reports which step shape a YAML node uses.
func DetectStepFormat(node *yaml.Node) (StepFormat, error) {
	if node == nil {
		return StepFormatUnknown, fmt.Errorf("step cannot be empty")
	}

	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return StepFormatUnknown, fmt.Errorf("line %d: step cannot be null", node.Line)
		}
		return StepFormatString, nil
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			if node.Content[i].Value == "command" {
				return StepFormatObject, nil
			}
		}
		return StepFormatUnknown, fmt.Errorf("line %d: object step must have a 'command' field", node.Line)
	case yaml.SequenceNode:
		return StepFormatUnknown, fmt.Errorf("line %d: a step is a command string or an object, not a list", node.Line)
	default:
		return StepFormatUnknown, fmt.Errorf("line %d: unsupported step format", node.Line)
	}
}
