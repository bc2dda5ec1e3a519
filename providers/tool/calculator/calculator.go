package calculator

import (
	"context"
	"fmt"
	"math"

	"github.com/Knetic/govaluate"

	"github.com/leofalp/stategraph/providers/tool"
)

// AdditionToolName is the registry name of the addition tool.
const AdditionToolName = "addition_tool"

// AdditionInput holds the two addends.
type AdditionInput struct {
	A float64 `json:"a" jsonschema:"description=First number"`
	B float64 `json:"b" jsonschema:"description=Second number"`
}

// NewAdditionTool returns a tool that adds two numbers.
func NewAdditionTool() *tool.Typed[AdditionInput, float64] {
	return tool.MustNewTool(AdditionToolName, Add, tool.WithDescription("when given 2 numbers add them"))
}

// Add returns input.A + input.B.
func Add(_ context.Context, input AdditionInput) (float64, error) {
	return input.A + input.B, nil
}

// ExpressionInput is the argument of the calculator tool.
type ExpressionInput struct {
	Expression string `json:"expression" jsonschema:"description=Arithmetic expression such as (2 + 4) * 2"`
}

// ExpressionOutput is the calculator result.
type ExpressionOutput struct {
	Expression string  `json:"expression"`
	Result     float64 `json:"result"`
}

// NewCalculatorTool returns a tool that evaluates arithmetic expressions.
func NewCalculatorTool() *tool.Typed[ExpressionInput, ExpressionOutput] {
	return tool.MustNewTool("calculator", Evaluate,
		tool.WithDescription("Evaluates an arithmetic expression using + - * / % ** and parentheses and returns the numeric result"))
}

// Evaluate computes input.Expression. Expressions must be numeric and must
// not reference variables; division by zero is reported as an error.
//
// Example:
//
//	out, err := calculator.Evaluate(ctx, calculator.ExpressionInput{Expression: "(2 + 4) * 2"})
//	// out.Result == 12
func Evaluate(_ context.Context, input ExpressionInput) (ExpressionOutput, error) {
	expression, err := govaluate.NewEvaluableExpression(input.Expression)
	if err != nil {
		return ExpressionOutput{}, fmt.Errorf("invalid expression %q: %w", input.Expression, err)
	}
	if variables := expression.Vars(); len(variables) > 0 {
		return ExpressionOutput{}, fmt.Errorf("expression %q references unknown variables %v", input.Expression, variables)
	}

	value, err := expression.Evaluate(nil)
	if err != nil {
		return ExpressionOutput{}, fmt.Errorf("failed to evaluate %q: %w", input.Expression, err)
	}

	number, isNumber := value.(float64)
	if !isNumber {
		return ExpressionOutput{}, fmt.Errorf("expression %q does not produce a number (got %T)", input.Expression, value)
	}
	if math.IsInf(number, 0) || math.IsNaN(number) {
		return ExpressionOutput{}, fmt.Errorf("expression %q has no finite result", input.Expression)
	}

	return ExpressionOutput{Expression: input.Expression, Result: number}, nil
}
