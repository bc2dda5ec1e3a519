package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tmc/langchaingo/llms"

	"github.com/leofalp/stategraph/internal/config"
	"github.com/leofalp/stategraph/patterns/graph"
	"github.com/leofalp/stategraph/patterns/react"
	"github.com/leofalp/stategraph/providers/ai"
	"github.com/leofalp/stategraph/providers/ai/gemini"
	"github.com/leofalp/stategraph/providers/ai/langchain"
	"github.com/leofalp/stategraph/providers/ai/middleware"
	"github.com/leofalp/stategraph/providers/tool"
	"github.com/leofalp/stategraph/providers/tool/calculator"
	"github.com/leofalp/stategraph/providers/tool/duckduckgo"
	"github.com/leofalp/stategraph/providers/tool/webfetch"
)

// modelFactory builds the chat model selected by the configuration.
type modelFactory func(ctx context.Context, cfg *config.Config) (ai.ToolCallingModel, error)

func defaultModelFactory(ctx context.Context, cfg *config.Config) (ai.ToolCallingModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("no API key: set %s or %s", config.EnvGeminiAPIKey, config.EnvGoogleAPIKey)
	}

	switch cfg.Model.Provider {
	case config.ProviderGoogleAI:
		var opts []llms.CallOption
		if cfg.Model.Temperature != nil {
			opts = append(opts, llms.WithTemperature(*cfg.Model.Temperature))
		}
		return langchain.NewGoogleAI(ctx, cfg.APIKey, cfg.Model.Name, opts...)
	default:
		opts := []gemini.Option{gemini.WithAPIKey(cfg.APIKey), gemini.WithModel(cfg.Model.Name)}
		if cfg.Model.Temperature != nil {
			opts = append(opts, gemini.WithTemperature(*cfg.Model.Temperature))
		}
		return gemini.New(opts...)
	}
}

// wrapModel bounds every model call by the configured timeout and logs it.
func (application *app) wrapModel(model ai.ToolCallingModel) *middleware.Model {
	return middleware.Wrap(model,
		middleware.Timeout(application.config.Model.Timeout),
		middleware.Logging(application.observer.Logger(), middleware.LogLevelStandard),
	)
}

func newAgentCommand(application *app) *cobra.Command {
	var prompt string
	var withWeb bool

	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Answer a prompt with the tool-calling ReAct agent",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if prompt == "" {
				return errors.New("--prompt is required")
			}

			base, err := application.modelFactory(cmd.Context(), application.config)
			if err != nil {
				return err
			}
			model := application.wrapModel(base)

			tools := []tool.Tool{calculator.NewAdditionTool(), calculator.NewCalculatorTool()}
			if withWeb {
				tools = append(tools, duckduckgo.NewSearchTool(), webfetch.NewWebFetchTool())
			}
			registry, err := tool.NewRegistry(tools...)
			if err != nil {
				return err
			}

			options := []react.Option{
				react.WithSystemPrompt(application.config.Agent.SystemPrompt),
				react.WithMaxSteps(application.config.Agent.MaxSteps),
				react.WithObserver(application.observer),
			}
			if application.trace {
				options = append(options, react.WithStepHook(newStepTracer(cmd.OutOrStdout()).hook))
			}

			agent, err := react.NewAgent(model, registry, options...)
			if err != nil {
				return err
			}

			answer, err := react.Ask(cmd.Context(), agent, prompt)
			var limit *graph.RecursionLimitError
			if errors.As(err, &limit) {
				return fmt.Errorf("agent gave no answer within %d steps: %w", limit.Limit, err)
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), answer)
			return err
		},
	}

	cmd.Flags().StringVarP(&prompt, "prompt", "p", "", "question for the agent")
	cmd.Flags().BoolVar(&withWeb, "web", true, "enable the web_search and webfetch tools")
	return cmd
}
