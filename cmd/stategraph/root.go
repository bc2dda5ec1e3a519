package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leofalp/stategraph/internal/config"
	"github.com/leofalp/stategraph/patterns/graph"
	"github.com/leofalp/stategraph/providers/observability/slogobs"
)

// app holds what the persistent flags resolve to.
type app struct {
	configPath string
	dotenvPath string
	logLevel   string
	trace      bool

	config       *config.Config
	observer     *slogobs.Observer
	modelFactory modelFactory
}

func newRootCommand(factory modelFactory) *cobra.Command {
	application := &app{modelFactory: factory}

	root := &cobra.Command{
		Use:           "stategraph",
		Short:         "Run state graphs and the ReAct agent",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return application.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&application.configPath, "config", "", "HCL configuration file")
	flags.StringVar(&application.dotenvPath, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringVar(&application.logLevel, "log-level", "", "log level: trace, debug, info, warn or error")
	flags.BoolVar(&application.trace, "trace", false, "print the state diff after every step")

	root.AddCommand(
		newCalcCommand(application),
		newShapesCommand(application),
		newAgentCommand(application),
	)
	return root
}

func (application *app) setup(cmd *cobra.Command) error {
	loaded, err := config.Load(application.configPath, application.dotenvPath)
	if err != nil {
		return err
	}
	if application.logLevel != "" {
		loaded.Log.Level = application.logLevel
	}
	application.config = loaded

	level := slog.LevelWarn
	if loaded.Log.Level != "" {
		level = slogobs.ParseLogLevel(loaded.Log.Level)
	}
	application.observer = slogobs.New(
		slogobs.WithLevel(level),
		slogobs.WithFormat(slogobs.ParseFormat(loaded.Log.Format)),
		slogobs.WithOutput(cmd.ErrOrStderr()),
	)
	return nil
}

// graphOptions returns the observer and, with --trace, the diff printer.
func (application *app) graphOptions(cmd *cobra.Command) []graph.Option {
	options := []graph.Option{graph.WithObserver(application.observer)}
	if application.trace {
		options = append(options, graph.WithStepHook(newStepTracer(cmd.OutOrStdout()).hook))
	}
	return options
}
