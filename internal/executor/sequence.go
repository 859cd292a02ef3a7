package executor

import (
	"context"
	"slices"
	"sync"

	"github.com/legl/legl-dev/internal/ctxlog"
)

// Sequence is an ordered pipeline of steps with one execution mode.
type Sequence struct {
	steps      []*Step
	concurrent bool
}

// SequenceOption configures a Sequence under construction.
type SequenceOption func(*Sequence)

// WithSteps pre-seeds the sequence.
func WithSteps(steps ...*Step) SequenceOption {
	return func(s *Sequence) { s.Add(steps...) }
}

// WithConcurrency selects concurrent dispatch instead of one-after-another.
func WithConcurrency(concurrent bool) SequenceOption {
	return func(s *Sequence) { s.concurrent = concurrent }
}

// NewSequence creates an empty sequence that owns its own step list.
func NewSequence(opts ...SequenceOption) *Sequence {
	s := &Sequence{steps: make([]*Step, 0)}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends one step or a batch (seq.Add(batch...)) in order. The caller's
// slice is copied, never retained. Nil steps are skipped.
func (s *Sequence) Add(steps ...*Step) {
	for _, step := range steps {
		if step != nil {
			s.steps = append(s.steps, step)
		}
	}
}

// Steps returns a copy of the steps in execution order.
func (s *Sequence) Steps() []*Step {
	return slices.Clone(s.steps)
}

// Len returns the number of steps.
func (s *Sequence) Len() int {
	return len(s.steps)
}

// Concurrent reports the execution mode.
func (s *Sequence) Concurrent() bool {
	return s.concurrent
}

// Run executes every step. Sequentially, it returns once the last step has
// returned, each step starting only after the previous one finished. In
// concurrent mode it starts every step on its own goroutine and returns
// without waiting; the returned Execution can be awaited or cancelled.
// A failing step never stops the remaining ones.
func (s *Sequence) Run(ctx context.Context, rt *Runtime) *Execution {
	rt = rt.withDefaults()
	runCtx, cancel := context.WithCancel(ctx)
	steps := s.Steps()

	execution := &Execution{
		tasks:  make([]*Task, len(steps)),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	for i, step := range steps {
		execution.tasks[i] = &Task{step: step, done: make(chan struct{})}
	}

	ctxlog.FromContext(ctx).Debug("Running sequence.", "steps", len(steps), "concurrent", s.concurrent)

	if !s.concurrent {
		for _, task := range execution.tasks {
			task.run(runCtx, rt)
		}
		cancel()
		close(execution.done)
		return execution
	}

	var wg sync.WaitGroup
	for _, task := range execution.tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			task.run(runCtx, rt)
		}()
	}
	go func() {
		wg.Wait()
		cancel()
		close(execution.done)
	}()
	return execution
}

// Execution is the handle of one Sequence.Run.
type Execution struct {
	tasks  []*Task
	cancel context.CancelFunc
	done   chan struct{}
}

// Tasks returns the per-step handles in sequence order.
func (e *Execution) Tasks() []*Task {
	return slices.Clone(e.tasks)
}

// Done is closed when every task has finished.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Wait blocks until every task has finished and returns their results in
// sequence order.
func (e *Execution) Wait() []Result {
	<-e.done
	results := make([]Result, len(e.tasks))
	for i, t := range e.tasks {
		results[i] = t.result
	}
	return results
}

// Cancel terminates the processes of every task still running. Tasks not yet
// started report a cancelled failure.
func (e *Execution) Cancel() {
	e.cancel()
}

// Task is the handle of one step inside an Execution.
type Task struct {
	step   *Step
	done   chan struct{}
	result Result
}

func (t *Task) run(ctx context.Context, rt *Runtime) {
	defer close(t.done)
	t.result = t.step.Run(ctx, rt)
}

// Step returns the step this task runs.
func (t *Task) Step() *Step {
	return t.step
}

// Done is closed when the step has finished.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the step has finished.
func (t *Task) Wait() Result {
	<-t.done
	return t.result
}

// Result returns the outcome without blocking; ok is false while the step is
// still running.
func (t *Task) Result() (result Result, ok bool) {
	select {
	case <-t.done:
		return t.result, true
	default:
		return Result{Status: StatusRunning}, false
	}
}
