package executor

import (
	"maps"
	"slices"
	"strings"
)

// Step is one external process invocation plus its execution policy. A Step is
// immutable once built and may be run any number of times; every run spawns a
// fresh process.
type Step struct {
	command     string
	shell       bool
	description string
	logTarget   string
	verbose     bool
	exitPolicy  ExitPolicy
	env         map[string]string
	workDir     string
}

// Option configures a Step under construction.
type Option func(*Step)

// WithShell makes the command run through the shell interpreter instead of
// being split into an argument vector.
func WithShell(shell bool) Option {
	return func(s *Step) { s.shell = shell }
}

// WithDescription sets the label shown by the progress display.
func WithDescription(description string) Option {
	return func(s *Step) { s.description = description }
}

// WithLogTarget names the log file slot that captures the step's output.
func WithLogTarget(target string) Option {
	return func(s *Step) { s.logTarget = target }
}

// WithVerbose attaches the process to the invoking terminal.
func WithVerbose(verbose bool) Option {
	return func(s *Step) { s.verbose = verbose }
}

// WithExitPolicy sets how a non-zero exit is reported.
func WithExitPolicy(policy ExitPolicy) Option {
	return func(s *Step) { s.exitPolicy = policy }
}

// WithEnv adds environment variables to the child process only.
func WithEnv(env map[string]string) Option {
	return func(s *Step) {
		if len(env) == 0 {
			return
		}
		if s.env == nil {
			s.env = make(map[string]string, len(env))
		}
		maps.Copy(s.env, env)
	}
}

// WithWorkDir sets the working directory of the child process.
func WithWorkDir(dir string) Option {
	return func(s *Step) { s.workDir = dir }
}

// New builds a Step. The command must be non-empty and, unless it runs through
// the shell, must contain at least one whitespace-separated token.
func New(command string, opts ...Option) (*Step, error) {
	s := &Step{command: command}
	for _, opt := range opts {
		opt(s)
	}

	if strings.TrimSpace(command) == "" {
		return nil, &InvalidStepError{Command: command, Reason: "command is required"}
	}
	if _, err := ParseExitPolicy(string(s.exitPolicy)); err != nil {
		return nil, &InvalidStepError{Command: command, Reason: err.Error()}
	}
	if strings.ContainsAny(s.logTarget, `/\`) || s.logTarget == "." || s.logTarget == ".." {
		return nil, &InvalidStepError{Command: command, Reason: "log target must be a plain name"}
	}

	return s, nil
}

// MustNew is like New but panics on invalid input. It is meant for fixed
// recipe tables whose commands are known at compile time.
func MustNew(command string, opts ...Option) *Step {
	s, err := New(command, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Step) Command() string        { return s.command }
func (s *Step) Shell() bool            { return s.shell }
func (s *Step) Description() string    { return s.description }
func (s *Step) LogTarget() string      { return s.logTarget }
func (s *Step) Verbose() bool          { return s.verbose }
func (s *Step) ExitPolicy() ExitPolicy { return s.exitPolicy }
func (s *Step) WorkDir() string        { return s.workDir }

// Env returns a copy of the step's extra environment.
func (s *Step) Env() map[string]string {
	return maps.Clone(s.env)
}

// Label is the text shown while the step runs.
func (s *Step) Label() string {
	if s.description != "" {
		return s.description
	}
	return s.command
}

// Argv returns the argument vector the step spawns. Shell steps pass the
// command unmodified as the last argument of shell; argv steps are split on
// whitespace only, so arguments containing spaces cannot be expressed.
func (s *Step) Argv(shell []string) []string {
	if s.shell {
		return append(slices.Clone(shell), s.command)
	}
	return strings.Fields(s.command)
}

// strict reports whether a non-zero exit is a hard failure. Captured argv
// steps are always strict.
func (s *Step) strict() bool {
	if !s.verbose && !s.shell {
		return true
	}
	return s.exitPolicy != ExitPolicyLenient
}

// environ renders the extra environment in a stable order.
func (s *Step) environ() []string {
	if len(s.env) == 0 {
		return nil
	}
	keys := slices.Sorted(maps.Keys(s.env))
	vars := make([]string, 0, len(keys))
	for _, k := range keys {
		vars = append(vars, k+"="+s.env[k])
	}
	return vars
}
