package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/stategraph/internal/tutorials"
)

func newShapesCommand(application *app) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:   "shapes",
		Short: "Run the graph with separate input, output and overall shapes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			compiled, err := tutorials.NewShapesGraph(application.graphOptions(cmd)...)
			if err != nil {
				return err
			}

			final, err := compiled.Invoke(cmd.Context(), map[string]any{"user_input": input})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), final.String("graph_output"))
			return err
		},
	}

	cmd.Flags().StringVar(&input, "input", "My", "value of user_input")
	return cmd
}
