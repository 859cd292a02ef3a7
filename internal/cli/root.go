package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/legl/legl-dev/internal/config"
	"github.com/legl/legl-dev/internal/ctxlog"
)

// skipConfig marks commands that must work without a loadable configuration.
const skipConfig = "legl-dev/skip-config"

// Execute builds the command tree and runs it with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(&App{}).ExecuteContext(ctx)
}

// NewRootCommand returns the legl-dev command tree bound to app.
func NewRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "legl-dev",
		Short: "Developer workflow runner for the Legl stack",
		Long: `legl-dev wraps the day-to-day docker compose, git, pytest and yarn
invocations of the Legl stack into named pipelines.

Captured steps show a progress line and write their output to a log file;
verbose steps stream straight to the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
	}

	rootCmd.SetIn(app.stdin())
	rootCmd.SetOut(app.stdout())
	rootCmd.SetErr(app.stderr())

	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&app.opts.Verbose, "verbose", "v", false, "stream command output instead of capturing it")
	flags.StringVar(&app.opts.ConfigFile, "config", "", "extra configuration file merged over the user and project files")
	flags.StringVar(&app.opts.LogLevel, "log-level", "", "log level (debug, info, warn, error)")
	flags.StringVar(&app.opts.LogFormat, "log-format", "", "log format (text, json)")
	flags.BoolVar(&app.opts.FailOnError, "fail-on-error", false, "exit non-zero when any step fails")

	rootCmd.AddCommand(
		newStartCmd(app),
		newBuildCmd(app),
		newPytestCmd(app),
		newFormatCmd(app),
		newCypressCmd(app),
		newMigrateCmd(app),
		newFactoriesCmd(app),
		newGitCleanCmd(app),
		newJSTestCmd(app),
		newInstallCmd(app),
		newRemoteCmd(app),
		newRunCmd(app),
		newPipelinesCmd(app),
		newInitCmd(app),
		newVersionCmd(),
	)
	return rootCmd
}

// setup installs the logger and loads configuration before any subcommand runs.
func (a *App) setup(cmd *cobra.Command) error {
	level, format := a.opts.LogLevel, a.opts.LogFormat
	logger := newLogger(level, format, a.stderr())
	ctx := ctxlog.WithLogger(cmd.Context(), logger)

	if cmd.Annotations[skipConfig] != "true" {
		loaded, err := config.Load(ctx, config.LoadOptions{
			ExplicitPath: a.opts.ConfigFile,
			HomeDir:      a.HomeDir,
			WorkDir:      a.WorkDir,
		})
		if err != nil {
			return err
		}
		a.config = loaded.Config

		// Config file log settings apply unless overridden on the command line.
		if level == "" {
			level = a.config.LogLevel
		}
		if format == "" {
			format = a.config.LogFormat
		}
		logger = newLogger(level, format, a.stderr())
		ctx = ctxlog.WithLogger(cmd.Context(), logger)
		logger.Debug("Configuration resolved.", "sources", loaded.Sources)
	}

	cmd.SetContext(ctx)
	return nil
}

func (a *App) mustConfig() (*config.Config, error) {
	if a.config == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return a.config, nil
}
