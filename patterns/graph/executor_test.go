package graph

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leofalp/stategraph/providers/observability"
)

func calcGraph(t *testing.T, opts ...Option) *CompiledGraph {
	t.Helper()
	shape := NewShape("calc", Number("firstNumber"), Number("secondNumber"), Number("output"))
	compiled, err := NewStateGraph(append([]Option{WithName("calc"), WithStateShape(shape)}, opts...)...).
		AddNodeFunc("add", func(ctx context.Context, state State) (Update, error) {
			return Update{"output": state.Float("firstNumber") + state.Float("secondNumber")}, nil
		}).
		AddNodeFunc("multi", func(ctx context.Context, state State) (Update, error) {
			return Update{"output": state.Float("output") * 2}, nil
		}).
		AddEdge(Start, "add").
		AddEdge("add", "multi").
		AddEdge("multi", End).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return compiled
}

func TestInvoke_Linear(t *testing.T) {
	compiled := calcGraph(t)

	result, err := compiled.Run(context.Background(), map[string]any{"firstNumber": 2, "secondNumber": 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.State.Float("output"); got != 12 {
		t.Errorf("output = %v, want 12", got)
	}
	if !reflect.DeepEqual(result.Path, []string{"add", "multi"}) || result.Steps != 2 {
		t.Errorf("path = %v, steps = %d", result.Path, result.Steps)
	}
	if result.RunID == "" {
		t.Error("expected a run id")
	}
	if result.State.Float("firstNumber") != 2 {
		t.Error("input key was lost")
	}
}

func TestInvoke_InputAndOutputShapes(t *testing.T) {
	input := NewShape("input", String("name"))
	output := NewShape("output", String("output"))
	overall := NewShape("overall", String("name"), String("output"), String("greeting"))

	compiled, err := NewStateGraph(WithStateShape(overall), WithInputShape(input), WithOutputShape(output)).
		AddNodeFunc("node1", func(ctx context.Context, state State) (Update, error) {
			return Update{"greeting": "my name is " + state.String("name")}, nil
		}).
		AddNodeFunc("node2", func(ctx context.Context, state State) (Update, error) {
			return Update{"output": strings.Replace(state.String("greeting"), "name", " name", 1)}, nil
		}).
		AddEdge(Start, "node1").
		AddEdge("node1", "node2").
		AddEdge("node2", End).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	final, err := compiled.Invoke(context.Background(), map[string]any{"name": "Lance"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := final.Keys(); !reflect.DeepEqual(got, []string{"output"}) {
		t.Errorf("keys = %v, want [output]", got)
	}
	if got := final.String("output"); got != "my  name is Lance" {
		t.Errorf("output = %q", got)
	}

	_, err = compiled.Invoke(context.Background(), map[string]any{"greeting": "hi"})
	var invalid *InvalidUpdateError
	if !errors.As(err, &invalid) || invalid.Node != Start {
		t.Errorf("expected input rejection, got %v", err)
	}
}

func TestInvoke_UnionShapeWhenOverallMissing(t *testing.T) {
	compiled, err := NewStateGraph(
		WithInputShape(NewShape("in", Number("x"))),
		WithOutputShape(NewShape("out", Number("y"))),
	).
		AddNodeFunc("double", func(ctx context.Context, state State) (Update, error) {
			return Update{"y": state.Float("x") * 2}, nil
		}).
		AddEdge(Start, "double").
		AddEdge("double", End).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if compiled.StateShape() == nil || !compiled.StateShape().Has("x") || !compiled.StateShape().Has("y") {
		t.Fatal("expected the union of input and output shapes")
	}

	final, err := compiled.Invoke(context.Background(), map[string]any{"x": 21})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Float("y") != 42 || final.Has("x") {
		t.Errorf("final = %v", final.Map())
	}
}

func routingGraph(t *testing.T, router Router) *CompiledGraph {
	t.Helper()
	shape := NewShape("route", String("input"), String("result"))
	mark := func(label string) NodeFunc {
		return func(ctx context.Context, state State) (Update, error) {
			return Update{"result": label}, nil
		}
	}
	compiled, err := NewStateGraph(WithStateShape(shape)).
		AddNode("classify", NodeFunc(func(ctx context.Context, state State) (Update, error) {
			return Update{}, nil
		})).
		AddNode("left", mark("left")).
		AddNode("right", mark("right")).
		AddEdge(Start, "classify").
		AddConditionalEdges("classify", router, map[string]string{
			"go_left":  "left",
			"go_right": "right",
			"stop":     End,
		}).
		AddEdge("left", End).
		AddEdge("right", End).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return compiled
}

func TestInvoke_ConditionalRouting(t *testing.T) {
	compiled := routingGraph(t, func(state State) string {
		switch state.String("input") {
		case "l":
			return "go_left"
		case "r":
			return "go_right"
		default:
			return "stop"
		}
	})

	tests := []struct {
		input string
		want  string
		path  []string
	}{
		{input: "l", want: "left", path: []string{"classify", "left"}},
		{input: "r", want: "right", path: []string{"classify", "right"}},
		{input: "x", want: "", path: []string{"classify"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := compiled.Run(context.Background(), map[string]any{"input": tt.input})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := result.State.String("result"); got != tt.want {
				t.Errorf("result = %q, want %q", got, tt.want)
			}
			if !reflect.DeepEqual(result.Path, tt.path) {
				t.Errorf("path = %v, want %v", result.Path, tt.path)
			}
		})
	}
}

func TestInvoke_UnknownOutcome(t *testing.T) {
	compiled := routingGraph(t, func(State) string { return "sideways" })

	_, err := compiled.Invoke(context.Background(), map[string]any{"input": "l"})
	var unknown *UnknownOutcomeError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownOutcomeError, got %v", err)
	}
	if unknown.Node != "classify" || unknown.Outcome != "sideways" {
		t.Errorf("unexpected error fields: %+v", unknown)
	}
	if !reflect.DeepEqual(unknown.Known, []string{"go_left", "go_right", "stop"}) {
		t.Errorf("Known = %v", unknown.Known)
	}
}

func counterGraph(t *testing.T, stopAt float64, opts ...Option) *CompiledGraph {
	t.Helper()
	shape := NewShape("counter", Number("count"))
	compiled, err := NewStateGraph(append([]Option{WithStateShape(shape)}, opts...)...).
		AddNodeFunc("increment", func(ctx context.Context, state State) (Update, error) {
			return Update{"count": state.Float("count") + 1}, nil
		}).
		AddEdge(Start, "increment").
		AddConditionalEdges("increment", func(state State) string {
			if state.Float("count") >= stopAt {
				return "done"
			}
			return "again"
		}, map[string]string{"again": "increment", "done": End}).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return compiled
}

func TestInvoke_BoundedLoop(t *testing.T) {
	result, err := counterGraph(t, 5).Run(context.Background(), map[string]any{"count": 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.State.Float("count") != 5 || result.Steps != 5 {
		t.Errorf("count = %v, steps = %d", result.State.Float("count"), result.Steps)
	}
}

func TestInvoke_RecursionLimit(t *testing.T) {
	_, err := counterGraph(t, 100, WithRecursionLimit(3)).Invoke(context.Background(), map[string]any{"count": 0})

	var limit *RecursionLimitError
	if !errors.As(err, &limit) {
		t.Fatalf("expected RecursionLimitError, got %v", err)
	}
	if limit.Limit != 3 || limit.Node != "increment" {
		t.Errorf("unexpected error fields: %+v", limit)
	}
}

func TestInvoke_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	compiled, err := NewStateGraph().
		AddNodeFunc("loop", func(ctx context.Context, state State) (Update, error) {
			calls++
			if calls == 3 {
				cancel()
			}
			return Update{}, nil
		}).
		AddEdge(Start, "loop").
		AddConditionalEdges("loop", func(State) string { return "again" }, map[string]string{"again": "loop", "stop": End}).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	_, err = compiled.Invoke(ctx, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestInvoke_NodeErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	reached := false
	compiled, err := NewStateGraph().
		AddNodeFunc("fail", func(ctx context.Context, state State) (Update, error) {
			return Update{"x": 1}, boom
		}).
		AddNodeFunc("after", func(ctx context.Context, state State) (Update, error) {
			reached = true
			return nil, nil
		}).
		AddEdge(Start, "fail").
		AddEdge("fail", "after").
		AddEdge("after", End).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	final, err := compiled.Invoke(context.Background(), nil)
	var nodeErr *NodeError
	if !errors.As(err, &nodeErr) || nodeErr.Node != "fail" || nodeErr.Step != 1 {
		t.Fatalf("expected NodeError for fail, got %v", err)
	}
	if !errors.Is(err, boom) {
		t.Error("NodeError should unwrap to the node's error")
	}
	if reached || final.Len() != 0 {
		t.Error("run should stop without a state")
	}
}

func TestInvoke_InvalidUpdate(t *testing.T) {
	shape := NewShape("s", Number("n"))
	compiled, err := NewStateGraph(WithStateShape(shape)).
		AddNodeFunc("bad", func(ctx context.Context, state State) (Update, error) {
			return Update{"n": "not a number"}, nil
		}).
		AddEdge(Start, "bad").
		AddEdge("bad", End).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	_, err = compiled.Invoke(context.Background(), nil)
	var invalid *InvalidUpdateError
	if !errors.As(err, &invalid) || invalid.Node != "bad" || invalid.Key != "n" {
		t.Fatalf("expected InvalidUpdateError from bad, got %v", err)
	}
}

func TestInvoke_StepHooks(t *testing.T) {
	var steps []Step
	compiled := calcGraph(t, WithStepHook(func(ctx context.Context, step Step) {
		steps = append(steps, step)
	}))

	result, err := compiled.Run(context.Background(), map[string]any{"firstNumber": 1, "secondNumber": 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps[0].Node != "add" || steps[0].Index != 1 || steps[0].State.Float("output") != 3 {
		t.Errorf("unexpected first step: %+v", steps[0])
	}
	if steps[1].Node != "multi" || steps[1].Update["output"] != 6.0 || steps[1].RunID != result.RunID {
		t.Errorf("unexpected second step: %+v", steps[1])
	}
}

func TestInvoke_Concurrent(t *testing.T) {
	compiled := calcGraph(t)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			final, err := compiled.Invoke(context.Background(), map[string]any{"firstNumber": i, "secondNumber": 1})
			if err != nil {
				errs <- err
				return
			}
			if want := float64((i + 1) * 2); final.Float("output") != want {
				errs <- fmt.Errorf("run %d: output = %v, want %v", i, final.Float("output"), want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

// --- observer ---

type recordingSpan struct {
	name   string
	status observability.StatusCode
	ended  bool
	errs   []error
}

func (s *recordingSpan) End() { s.ended = true }
func (s *recordingSpan) SetAttributes(attrs ...observability.Attribute) {}
func (s *recordingSpan) SetStatus(code observability.StatusCode, _ string) { s.status = code }
func (s *recordingSpan) RecordError(err error) { s.errs = append(s.errs, err) }
func (s *recordingSpan) AddEvent(name string, attrs ...observability.Attribute) {}

type recordingCounter struct{ total *int64 }

func (c recordingCounter) Add(ctx context.Context, value int64, attrs ...observability.Attribute) {
	*c.total += value
}

type recordingHistogram struct{ values *[]float64 }

func (h recordingHistogram) Record(ctx context.Context, value float64, attrs ...observability.Attribute) {
	*h.values = append(*h.values, value)
}

type recordingObserver struct {
	mu         sync.Mutex
	spans      []*recordingSpan
	counters   map[string]*int64
	histograms map[string]*[]float64
	messages   []string
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{counters: map[string]*int64{}, histograms: map[string]*[]float64{}}
}

func (o *recordingObserver) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	o.mu.Lock()
	defer o.mu.Unlock()
	span := &recordingSpan{name: name}
	o.spans = append(o.spans, span)
	return observability.ContextWithSpan(ctx, span), span
}

func (o *recordingObserver) Counter(name string) observability.Counter {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.counters[name] == nil {
		o.counters[name] = new(int64)
	}
	return recordingCounter{total: o.counters[name]}
}

func (o *recordingObserver) Histogram(name string) observability.Histogram {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.histograms[name] == nil {
		o.histograms[name] = new([]float64)
	}
	return recordingHistogram{values: o.histograms[name]}
}

func (o *recordingObserver) log(msg string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.messages = append(o.messages, msg)
}

func (o *recordingObserver) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(msg)
}
func (o *recordingObserver) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(msg)
}
func (o *recordingObserver) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(msg)
}
func (o *recordingObserver) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(msg)
}
func (o *recordingObserver) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.log(msg)
}

func TestInvoke_Observer(t *testing.T) {
	observer := newRecordingObserver()
	compiled := counterGraph(t, 2, WithObserver(observer))

	if _, err := compiled.Invoke(context.Background(), map[string]any{"count": 0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// one run span plus one span per step
	if len(observer.spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(observer.spans))
	}
	if observer.spans[0].name != observability.SpanGraphInvoke || observer.spans[1].name != observability.SpanGraphNode {
		t.Errorf("unexpected span names: %s, %s", observer.spans[0].name, observer.spans[1].name)
	}
	for _, span := range observer.spans {
		if !span.ended || span.status != observability.StatusOK {
			t.Errorf("span %s: ended=%v status=%v", span.name, span.ended, span.status)
		}
	}
	if got := *observer.counters[observability.MetricGraphNodeCount]; got != 2 {
		t.Errorf("node count = %d, want 2", got)
	}
	if !strings.Contains(strings.Join(observer.messages, "\n"), "node visited again") {
		t.Errorf("expected a cycle notice, got %v", observer.messages)
	}
}

func TestInvoke_ObserverFromContextAndFailure(t *testing.T) {
	observer := newRecordingObserver()
	compiled, err := NewStateGraph().
		AddNodeFunc("fail", func(ctx context.Context, state State) (Update, error) {
			if observability.ObserverFromContext(ctx) == nil {
				t.Error("node context should carry the observer")
			}
			time.Sleep(time.Millisecond)
			return nil, errors.New("boom")
		}).
		AddEdge(Start, "fail").
		AddEdge("fail", End).
		Compile()
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ctx := observability.ContextWithObserver(context.Background(), observer)
	if _, err := compiled.Invoke(ctx, nil); err == nil {
		t.Fatal("expected an error")
	}

	if len(observer.spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(observer.spans))
	}
	for _, span := range observer.spans {
		if span.status != observability.StatusError || len(span.errs) != 1 || !span.ended {
			t.Errorf("span %s: status=%v errs=%d ended=%v", span.name, span.status, len(span.errs), span.ended)
		}
	}
}
