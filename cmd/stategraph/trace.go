package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"golang.org/x/term"

	"github.com/leofalp/stategraph/patterns/graph"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
)

// stepTracer prints a line diff of the State after every step.
type stepTracer struct {
	out      io.Writer
	colors   bool
	previous string
}

func newStepTracer(out io.Writer) *stepTracer {
	colors := false
	if file, ok := out.(*os.File); ok {
		colors = term.IsTerminal(int(file.Fd()))
	}
	return &stepTracer{out: out, colors: colors, previous: "{}"}
}

func (tracer *stepTracer) hook(_ context.Context, step graph.Step) {
	encoded, err := json.MarshalIndent(step.State, "", "  ")
	if err != nil {
		fmt.Fprintf(tracer.out, "step %d %s: cannot encode state: %v\n", step.Index, step.Node, err)
		return
	}

	current := string(encoded)
	fmt.Fprintf(tracer.out, "%s--- step %d: %s%s\n", tracer.color(colorBlue), step.Index, step.Node, tracer.color(colorReset))
	for _, line := range diffLines(tracer.previous, current) {
		switch line.op {
		case diffmatchpatch.DiffInsert:
			fmt.Fprintf(tracer.out, "%s+ %s%s\n", tracer.color(colorGreen), line.text, tracer.color(colorReset))
		case diffmatchpatch.DiffDelete:
			fmt.Fprintf(tracer.out, "%s- %s%s\n", tracer.color(colorRed), line.text, tracer.color(colorReset))
		default:
			fmt.Fprintf(tracer.out, "  %s\n", line.text)
		}
	}
	tracer.previous = current
}

func (tracer *stepTracer) color(code string) string {
	if tracer.colors {
		return code
	}
	return ""
}

type diffLine struct {
	op   diffmatchpatch.Operation
	text string
}

// diffLines computes a line-level diff.
func diffLines(before, after string) []diffLine {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(beforeChars, afterChars, false), lines)

	var result []diffLine
	for _, diff := range diffs {
		text := strings.TrimSuffix(diff.Text, "\n")
		for _, line := range strings.Split(text, "\n") {
			result = append(result, diffLine{op: diff.Type, text: line})
		}
	}
	return result
}
