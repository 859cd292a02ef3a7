package config

import (
	"fmt"
	"slices"
	"strings"
)

type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error in field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var messages []string
	for _, err := range e {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(messages, "; "))
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks the merged configuration and returns every problem found as
// ValidationErrors.
func (c *Config) Validate() error {
	if c == nil {
		return ValidationError{Message: "configuration cannot be nil"}
	}

	var errs ValidationErrors
	required := []struct {
		field, value string
	}{
		{"compose", c.Compose},
		{"backend_service", c.BackendService},
		{"frontend_service", c.FrontendService},
		{"log_dir", c.LogDir},
		{"open_command", c.OpenCommand},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, ValidationError{Field: r.field, Message: "value is required"})
		}
	}

	if len(c.Shell) == 0 || strings.TrimSpace(c.Shell[0]) == "" {
		errs = append(errs, ValidationError{Field: "shell", Value: c.Shell, Message: "shell must name an interpreter, e.g. [sh, -c]"})
	}

	for i, branch := range c.ProtectedBranches {
		if strings.TrimSpace(branch) == "" || strings.ContainsAny(branch, "|()") {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("protected_branches[%d]", i),
				Value:   branch,
				Message: "branch name cannot be empty or contain '|', '(' or ')'",
			})
		}
	}

	if c.LogLevel != "" && !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		errs = append(errs, ValidationError{
			Field: "log_level", Value: c.LogLevel,
			Message: fmt.Sprintf("must be one of %s", strings.Join(logLevels, ", ")),
		})
	}
	if c.LogFormat != "" && !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		errs = append(errs, ValidationError{
			Field: "log_format", Value: c.LogFormat,
			Message: fmt.Sprintf("must be one of %s", strings.Join(logFormats, ", ")),
		})
	}

	for _, name := range c.PipelineNames() {
		errs = append(errs, validatePipeline(name, c.Pipelines[name])...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validatePipeline(name string, p Pipeline) ValidationErrors {
	var errs ValidationErrors
	field := fmt.Sprintf("pipelines.%s", name)

	if strings.TrimSpace(name) == "" || strings.ContainsAny(name, " \t") {
		errs = append(errs, ValidationError{Field: field, Value: name, Message: "pipeline name cannot be empty or contain whitespace"})
	}
	if len(p.Steps) == 0 {
		errs = append(errs, ValidationError{Field: field + ".steps", Message: "at least one step is required"})
	}

	for i, s := range p.Steps {
		if _, err := s.Step(); err != nil {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("%s.steps[%d]", field, i),
				Value:   s.Command,
				Message: err.Error(),
			})
		}
	}
	return errs
}
