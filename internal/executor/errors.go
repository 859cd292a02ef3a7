package executor

import "fmt"

// InvalidStepError is returned when a step cannot be constructed.
type InvalidStepError struct {
	Command string
	Reason  string
}

// Error implements the error interface
func (e *InvalidStepError) Error() string {
	return fmt.Sprintf("invalid step %q: %s", e.Command, e.Reason)
}

// InvalidPolicyError is returned for an unknown exit policy name.
type InvalidPolicyError struct {
	Value string
}

func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("unknown exit policy %q, expected 'strict' or 'lenient'", e.Value)
}

// SpawnError represents a process that could not be launched at all, e.g. the
// executable is missing.
type SpawnError struct {
	CommandLine   string
	WorkingDir    string
	OriginalError error
}

// Error implements the error interface
func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %q: %v\n  Working Directory: %s",
		e.CommandLine, e.OriginalError, e.WorkingDir)
}

// Unwrap returns the original error for error unwrapping
func (e *SpawnError) Unwrap() error {
	return e.OriginalError
}

// CommandExecutionError represents a process that ran and signaled failure
// through its exit status, or was terminated by cancellation.
type CommandExecutionError struct {
	CommandLine   string
	WorkingDir    string
	ExitCode      int
	OriginalError error
}

// Error implements the error interface
func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("command failed: %v\n  Command: %s\n  Working Directory: %s\n  Exit Code: %d",
		e.OriginalError, e.CommandLine, e.WorkingDir, e.ExitCode)
}

// Unwrap returns the original error for error unwrapping
func (e *CommandExecutionError) Unwrap() error {
	return e.OriginalError
}

// LogError represents a failure to prepare the log file of a step.
type LogError struct {
	Target        string
	Path          string
	OriginalError error
}

// Error implements the error interface
func (e *LogError) Error() string {
	return fmt.Sprintf("cannot open log %q at %s: %v", e.Target, e.Path, e.OriginalError)
}

// Unwrap returns the original error for error unwrapping
func (e *LogError) Unwrap() error {
	return e.OriginalError
}
