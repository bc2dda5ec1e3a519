// Package calculator provides in-process arithmetic tools: [NewAdditionTool]
// adds two numbers, and [NewCalculatorTool] evaluates an arithmetic
// expression with govaluate.
package calculator
