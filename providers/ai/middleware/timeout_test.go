package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leofalp/stategraph/providers/ai"
)

// slowModel waits for sleep or the context, whichever ends first.
func slowModel(sleep time.Duration) ai.ChatModel {
	return ai.ChatModelFunc(func(ctx context.Context, _ []ai.Message) (*ai.Response, error) {
		select {
		case <-time.After(sleep):
			return &ai.Response{Content: "ok"}, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	})
}

func TestTimeout_CompletesBeforeDeadline(t *testing.T) {
	response, err := Wrap(slowModel(0), Timeout(100*time.Millisecond)).Invoke(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if response.Content != "ok" {
		t.Errorf("expected content %q, got %q", "ok", response.Content)
	}
}

func TestTimeout_ExceedsDeadline(t *testing.T) {
	_, err := Wrap(slowModel(time.Second), Timeout(10*time.Millisecond)).Invoke(context.Background(), nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
}

// TestTimeout_ExistingShorterDeadline verifies the caller's shorter deadline
// is kept.
func TestTimeout_ExistingShorterDeadline(t *testing.T) {
	var deadline time.Time
	probe := ai.ChatModelFunc(func(ctx context.Context, _ []ai.Message) (*ai.Response, error) {
		deadline, _ = ctx.Deadline()
		return &ai.Response{}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	callerDeadline, _ := ctx.Deadline()

	if _, err := Wrap(probe, Timeout(time.Hour)).Invoke(ctx, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !deadline.Equal(callerDeadline) {
		t.Errorf("expected deadline %v, got %v", callerDeadline, deadline)
	}
}

func TestTimeout_NonPositiveDisables(t *testing.T) {
	if Timeout(0) != nil || Timeout(-time.Second) != nil {
		t.Error("expected a nil middleware for a non-positive timeout")
	}
}
