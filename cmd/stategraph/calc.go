package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leofalp/stategraph/internal/tutorials"
)

func newCalcCommand(application *app) *cobra.Command {
	var first, second float64

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Add two numbers and double the sum",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			compiled, err := tutorials.NewCalculatorGraph(application.graphOptions(cmd)...)
			if err != nil {
				return err
			}

			final, err := compiled.Invoke(cmd.Context(), map[string]any{
				"firstNumber":  first,
				"secondNumber": second,
			})
			if err != nil {
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "output: %g\n", final.Float("output"))
			return err
		},
	}

	cmd.Flags().Float64Var(&first, "first", 2, "first number")
	cmd.Flags().Float64Var(&second, "second", 4, "second number")
	return cmd
}
