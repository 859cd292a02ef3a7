package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/legl/legl-dev/internal/config"
	"github.com/legl/legl-dev/internal/recipe"
)

func newRunCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "run <pipeline>",
		Short: "Run a pipeline defined in the configuration",
		Args:  cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			if len(args) > 0 {
				return nil, cobra.ShellCompDirectiveNoFileComp
			}
			loaded, err := config.Load(cmd.Context(), config.LoadOptions{
				ExplicitPath: app.opts.ConfigFile,
				HomeDir:      app.HomeDir,
				WorkDir:      app.WorkDir,
			})
			if err != nil {
				return nil, cobra.ShellCompDirectiveError
			}
			return loaded.Config.PipelineNames(), cobra.ShellCompDirectiveNoFileComp
		},
		RunE: recipeRunE(app, func(b *recipe.Builder, args []string) (*recipe.Plan, error) {
			return b.Pipeline(args[0])
		}),
	}
}

func newPipelinesCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "pipelines",
		Short: "List the pipelines defined in the configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.mustConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			names := cfg.PipelineNames()
			if len(names) == 0 {
				fmt.Fprintln(out, "No pipelines configured. Run `legl-dev init` to create an example.")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSTEPS\tMODE\tDESCRIPTION")
			for _, name := range names {
				p := cfg.Pipelines[name]
				mode := "sequential"
				if p.Concurrent {
					mode = "concurrent"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\n", name, len(p.Steps), mode, p.Description)
			}
			return w.Flush()
		},
	}
}

func newInitCmd(app *App) *cobra.Command {
	var formatName string
	var force bool
	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Write an example project configuration",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := config.ParseFileFormat(formatName)
			if err != nil {
				return err
			}
			dir := app.WorkDir
			if dir == "" {
				dir = "."
			}
			tg := config.NewTemplateGenerator(dir, cmd.OutOrStdout())
			tg.Force = force
			_, err = tg.Generate(format)
			return err
		},
	}
	cmd.Flags().StringVar(&formatName, "format", "yaml", "configuration format (yaml or hcl)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing project file")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the version",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "legl-dev %s\n", Version)
		},
	}
}
