// Package recipe turns legl-dev subcommands into executor pipelines.
//
// A recipe only assembles steps; nothing runs until the caller executes the
// returned Plan.
package recipe

import (
	"fmt"
	"strings"

	"github.com/legl/legl-dev/internal/config"
	"github.com/legl/legl-dev/internal/executor"
)

// Plan is an ordered list of stages. Each stage is awaited before the next
// one starts; a concurrent stage fans its steps out.
type Plan struct {
	Name   string
	Stages []*executor.Sequence
	// Done is printed once every stage has finished.
	Done string
}

// Len returns the total number of steps across stages.
func (p *Plan) Len() int {
	n := 0
	for _, s := range p.Stages {
		n += s.Len()
	}
	return n
}

// Steps returns every step in execution order.
func (p *Plan) Steps() []*executor.Step {
	var steps []*executor.Step
	for _, s := range p.Stages {
		steps = append(steps, s.Steps()...)
	}
	return steps
}

// Builder assembles plans from the loaded configuration.
type Builder struct {
	cfg     *config.Config
	verbose *bool
}

// NewBuilder returns a Builder. A non-nil verbose overrides every recipe's
// default verbosity.
func NewBuilder(cfg *config.Config, verbose *bool) *Builder {
	if cfg == nil {
		cfg = config.Defaults()
	}
	return &Builder{cfg: cfg, verbose: verbose}
}

func (b *Builder) verbosity(def bool) bool {
	if b.verbose != nil {
		return *b.verbose
	}
	return def
}

// compose joins the compose prefix and args into one argv command line.
func (b *Builder) compose(args ...string) string {
	return join(append([]string{b.cfg.Compose}, args...)...)
}

// manage runs a Django management command in the backend service.
func (b *Builder) manage(args ...string) string {
	return b.compose(append([]string{"exec", b.cfg.BackendService, "python", "manage.py"}, args...)...)
}

// step builds a captured-by-default step logged under target.
func (b *Builder) step(command, description, target string, defVerbose bool, opts ...executor.Option) (*executor.Step, error) {
	base := []executor.Option{
		executor.WithDescription(description),
		executor.WithLogTarget(target),
		executor.WithVerbose(b.verbosity(defVerbose)),
	}
	step, err := executor.New(command, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("building step %q: %w", description, err)
	}
	return step, nil
}

// join concatenates non-empty words with single spaces.
func join(words ...string) string {
	parts := make([]string, 0, len(words))
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			parts = append(parts, w)
		}
	}
	return strings.Join(parts, " ")
}

// stepList collects steps and keeps the first construction error.
type stepList struct {
	b     *Builder
	def   bool
	steps []*executor.Step
	err   error
}

func (b *Builder) list(defVerbose bool) *stepList {
	return &stepList{b: b, def: defVerbose}
}

func (l *stepList) add(command, description, target string, opts ...executor.Option) {
	if l.err != nil {
		return
	}
	step, err := l.b.step(command, description, target, l.def, opts...)
	if err != nil {
		l.err = err
		return
	}
	l.steps = append(l.steps, step)
}

// plan wraps the collected steps in a single sequential stage.
func (l *stepList) plan(name string) (*Plan, error) {
	if l.err != nil {
		return nil, l.err
	}
	seq := executor.NewSequence(executor.WithSteps(l.steps...))
	return &Plan{Name: name, Stages: []*executor.Sequence{seq}}, nil
}
