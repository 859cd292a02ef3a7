package config

import (
	"github.com/legl/legl-dev/internal/executor"
)

// Options converts the configured fields into executor options. An unset
// verbose flag falls back to defaultVerbose.
func (s StepConfig) Options(defaultVerbose bool) []executor.Option {
	verbose := defaultVerbose
	if s.Verbose != nil {
		verbose = *s.Verbose
	}

	opts := []executor.Option{
		executor.WithShell(s.Shell),
		executor.WithVerbose(verbose),
		executor.WithExitPolicy(executor.ExitPolicy(s.ExitPolicy)),
	}
	if s.Description != "" {
		opts = append(opts, executor.WithDescription(s.Description))
	}
	if s.Log != "" {
		opts = append(opts, executor.WithLogTarget(s.Log))
	}
	if len(s.Env) > 0 {
		opts = append(opts, executor.WithEnv(s.Env))
	}
	if s.WorkDir != "" {
		opts = append(opts, executor.WithWorkDir(s.WorkDir))
	}
	return opts
}

// Step builds the executable step described by s.
func (s StepConfig) Step(extra ...executor.Option) (*executor.Step, error) {
	return executor.New(s.Command, append(s.Options(false), extra...)...)
}

// Sequence builds an executor sequence from a configured pipeline. Verbose
// overrides every step's verbose flag when non-nil.
func (p Pipeline) Sequence(verbose *bool) (*executor.Sequence, error) {
	seq := executor.NewSequence(executor.WithConcurrency(p.Concurrent))
	for _, sc := range p.Steps {
		var extra []executor.Option
		if verbose != nil {
			extra = append(extra, executor.WithVerbose(*verbose))
		}
		step, err := sc.Step(extra...)
		if err != nil {
			return nil, err
		}
		seq.Add(step)
	}
	return seq, nil
}
