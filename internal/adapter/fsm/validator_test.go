package fsm_test

import (
	"context"
	"errors"
	"testing"

	adapter "github.com/aureonlegal/caseflow/internal/adapter/fsm"
	"github.com/aureonlegal/caseflow/internal/domain"
)

func TestValidator_AllTransitions(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	for _, tr := range domain.InstanceTransitions {
		dst, err := v.Apply(ctx, tr.Src, tr.Event)
		if err != nil {
			t.Errorf("Apply(%q, %q) unexpected error: %v", tr.Src, tr.Event, err)
			continue
		}
		if dst != tr.Dst {
			t.Errorf("Apply(%q, %q) = %q, want %q", tr.Src, tr.Event, dst, tr.Dst)
		}
	}
}

func TestValidator_CannotReopenPending(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	_, err := v.Apply(ctx, domain.InstancePending, domain.EventReopen)
	var trErr *domain.StatusTransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected StatusTransitionError, got %v", err)
	}
	if trErr.Event != domain.EventReopen {
		t.Errorf("event = %q, want %q", trErr.Event, domain.EventReopen)
	}
	if trErr.Current != domain.InstancePending {
		t.Errorf("current = %q, want %q", trErr.Current, domain.InstancePending)
	}
}

func TestValidator_CannotCompleteDone(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	_, err := v.Apply(ctx, domain.InstanceDone, domain.EventComplete)
	var trErr *domain.StatusTransitionError
	if !errors.As(err, &trErr) {
		t.Fatalf("expected StatusTransitionError, got %v", err)
	}
}

func TestValidator_CompleteReopenRoundTrip(t *testing.T) {
	v := adapter.New()
	ctx := context.Background()

	done, err := v.Apply(ctx, domain.InstancePending, domain.EventComplete)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done != domain.InstanceDone {
		t.Errorf("got %q, want %q", done, domain.InstanceDone)
	}

	pending, err := v.Apply(ctx, done, domain.EventReopen)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if pending != domain.InstancePending {
		t.Errorf("got %q, want %q", pending, domain.InstancePending)
	}
}
