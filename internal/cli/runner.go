package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/legl/legl-dev/internal/ctxlog"
	"github.com/legl/legl-dev/internal/executor"
	"github.com/legl/legl-dev/internal/recipe"
)

// builder returns a recipe builder honoring an explicit --verbose.
func (a *App) builder(cmd *cobra.Command) (*recipe.Builder, error) {
	cfg, err := a.mustConfig()
	if err != nil {
		return nil, err
	}
	var verbose *bool
	if cmd.Flags().Changed("verbose") {
		v := a.opts.Verbose
		verbose = &v
	}
	return recipe.NewBuilder(cfg, verbose), nil
}

// runtime assembles the executor runtime for this invocation.
func (a *App) runtime() *executor.Runtime {
	logDir := a.config.LogDir
	if a.WorkDir != "" && !filepath.IsAbs(logDir) {
		logDir = filepath.Join(a.WorkDir, logDir)
	}

	var reporter executor.Reporter
	if a.interactive() {
		reporter = executor.NewSpinnerReporter(a.stdout())
	} else {
		reporter = executor.NewLineReporter(a.stdout())
	}

	return &executor.Runtime{
		Stdin:    a.stdin(),
		Stdout:   a.stdout(),
		Stderr:   a.stderr(),
		Launcher: a.Launcher,
		Logs:     executor.NewLogStore(logDir),
		Reporter: reporter,
		Shell:    a.config.Shell,
	}
}

func (a *App) interactive() bool {
	if a.Interactive != nil {
		return *a.Interactive
	}
	f, ok := a.stdout().(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// runPlan executes every stage of plan in order and reports the outcome.
// Step failures never abort the plan; they only affect the exit status
// when --fail-on-error is set.
func (a *App) runPlan(ctx context.Context, plan *recipe.Plan) error {
	logger := ctxlog.FromContext(ctx)
	rt := a.runtime()

	logger.Debug("Running plan.", "plan", plan.Name, "stages", len(plan.Stages), "steps", plan.Len())

	var results []executor.Result
	for i, stage := range plan.Stages {
		if ctx.Err() != nil {
			logger.Debug("Skipping remaining stages.", "plan", plan.Name, "stage", i)
			break
		}
		results = append(results, stage.Run(ctx, rt).Wait()...)
	}

	summary := executor.Summarize(results)
	if sr, ok := rt.Reporter.(executor.SummaryReporter); ok && summary.Total > 1 {
		sr.ReportSummary(summary)
	}

	if ctx.Err() != nil {
		logger.Info("Interrupted.", "plan", plan.Name)
	} else if plan.Done != "" && !summary.HasFailures() {
		fmt.Fprintln(a.stdout(), plan.Done)
	}

	logger.Debug("Plan finished.", "plan", plan.Name, "succeeded", summary.Succeeded,
		"warnings", summary.Warnings, "failed", summary.Failed, "duration", summary.Duration)

	if a.opts.FailOnError && summary.HasFailures() {
		return &ExitError{Code: 1, Summary: summary}
	}
	return nil
}
