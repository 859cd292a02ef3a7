package cli

import (
	"github.com/spf13/cobra"

	"github.com/legl/legl-dev/internal/recipe"
)

// planFunc builds the plan a recipe command runs.
type planFunc func(b *recipe.Builder, args []string) (*recipe.Plan, error)

// recipeRunE adapts a planFunc into a cobra RunE.
func recipeRunE(app *App, build planFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		b, err := app.builder(cmd)
		if err != nil {
			return err
		}
		plan, err := build(b, args)
		if err != nil {
			return err
		}
		return app.runPlan(cmd.Context(), plan)
	}
}

func newStartCmd(app *App) *cobra.Command {
	var opts recipe.StartOptions
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the dev environment",
		Long: `Start the docker compose stack in the foreground.

With --logs the stack is started detached and the logs of the listed
services are followed side by side until interrupted.`,
		Args: cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			return b.Start(opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.HTTPS, "https", false, "serve the frontend over HTTPS")
	cmd.Flags().StringSliceVar(&opts.Logs, "logs", nil, "services whose logs to follow, comma separated")
	return cmd
}

func newBuildCmd(app *App) *cobra.Command {
	var opts recipe.BuildOptions
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Rebuild the local environment",
		Args:  cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			return b.Build(opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "build images without the layer cache")
	return cmd
}

func newPytestCmd(app *App) *cobra.Command {
	var opts recipe.PytestOptions
	var noGUI bool
	cmd := &cobra.Command{
		Use:   "pytest [path]",
		Short: "Run the backend pytest unit tests",
		Long: `Run the backend pytest unit tests and open the HTML report.

path selects a single test in the form "<file path>::<class name>::<function name>".`,
		Args: cobra.MaximumNArgs(1),
		RunE: recipeRunE(app, func(b *recipe.Builder, args []string) (*recipe.Plan, error) {
			if len(args) == 1 {
				opts.Path = args[0]
			}
			opts.GUI = !noGUI
			return b.Pytest(opts)
		}),
	}
	f := cmd.Flags()
	f.BoolVar(&opts.FullDiff, "full-diff", false, "show the full diff in failures")
	f.BoolVar(&opts.CreateDB, "create-db", false, "recreate the test database")
	f.BoolVar(&opts.LastFailed, "last-failed", false, "rerun only the tests that failed last time")
	f.BoolVar(&opts.Warnings, "warnings", false, "show warnings in the output")
	f.BoolVar(&noGUI, "no-gui", false, "do not open the HTML report")
	f.BoolVar(&opts.SnapshotUpdate, "snapshot-update", false, "update snapshots")
	f.BoolVar(&opts.ShowCapture, "show-capture", false, "show captured stdout")
	f.BoolVar(&opts.Parallel, "parallel", false, "run tests in parallel")
	f.BoolVar(&opts.AllLogs, "all-logs", false, "show print output as well as logs")
	return cmd
}

func newFormatCmd(app *App) *cobra.Command {
	var opts recipe.FormatOptions
	cmd := &cobra.Command{
		Use:   "format",
		Short: "Format the code with isort, black and prettier",
		Args:  cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			return b.Format(opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.Push, "push", false, "commit and push the formatting changes")
	return cmd
}

func newCypressCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cypress",
		Short: "Open the Cypress e2e tests",
		Args:  cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			return b.Cypress()
		}),
	}
}

func newMigrateCmd(app *App) *cobra.Command {
	var opts recipe.MigrateOptions
	var noRun bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create and run migrations",
		Args:  cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			opts.Run = !noRun
			return b.Migrate(opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.Merge, "merge", false, "run a migration merge first")
	cmd.Flags().BoolVar(&opts.Make, "make", false, "run makemigrations before migrating")
	cmd.Flags().BoolVar(&noRun, "no-run", false, "do not apply migrations")
	return cmd
}

func newFactoriesCmd(app *App) *cobra.Command {
	var noEmails bool
	cmd := &cobra.Command{
		Use:   "factories",
		Short: "Clean out and create new factories",
		Args:  cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			return b.Factories(recipe.FactoriesOptions{Emails: !noEmails})
		}),
	}
	cmd.Flags().BoolVar(&noEmails, "no-emails", false, "skip generating factory emails")
	return cmd
}

func newGitCleanCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "gitclean",
		Short: "Delete local branches that are already merged",
		Args:  cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			return b.GitClean()
		}),
	}
}

func newJSTestCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "jstest",
		Short: "Run the JS unit tests",
		Args:  cobra.NoArgs,
		RunE: recipeRunE(app, func(b *recipe.Builder, _ []string) (*recipe.Plan, error) {
			return b.JSTest()
		}),
	}
}

func newInstallCmd(app *App) *cobra.Command {
	var opts recipe.InstallOptions
	cmd := &cobra.Command{
		Use:   "install <package>",
		Short: "Install a package into the backend or frontend container",
		Args:  cobra.ExactArgs(1),
		RunE: recipeRunE(app, func(b *recipe.Builder, args []string) (*recipe.Plan, error) {
			opts.Package = args[0]
			return b.Install(opts)
		}),
	}
	cmd.Flags().BoolVar(&opts.Pip, "pip", false, "install with pip in the backend and pin it in requirements.txt")
	cmd.Flags().BoolVar(&opts.Yarn, "yarn", false, "install with yarn in the frontend")
	cmd.Flags().BoolVar(&opts.Upgrade, "upgrade", false, "upgrade an already installed package")
	cmd.MarkFlagsMutuallyExclusive("pip", "yarn")
	cmd.MarkFlagsOneRequired("pip", "yarn")
	return cmd
}

func newRemoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remote [service]",
		Short: "Open a shell in a service container",
		Args:  cobra.MaximumNArgs(1),
		RunE: recipeRunE(app, func(b *recipe.Builder, args []string) (*recipe.Plan, error) {
			service := ""
			if len(args) == 1 {
				service = args[0]
			}
			return b.Remote(service)
		}),
	}
}
