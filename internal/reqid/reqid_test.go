package reqid

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestContextRoundTrip(t *testing.T) {
	ctx, id := NewContext(context.Background())
	got, ok := FromContext(ctx)
	if !ok || got != id {
		t.Fatalf("expected %s from context, got %s ok=%v", id, got, ok)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("id %q is not a UUID: %v", id, err)
	}
	if _, ok := FromContext(context.Background()); ok {
		t.Fatalf("unexpected id in empty context")
	}
}

func TestEnsureKeepsExistingID(t *testing.T) {
	ctx, id := NewContext(context.Background())
	same, got := Ensure(ctx)
	if got != id || same != ctx {
		t.Fatalf("Ensure replaced existing id %s with %s", id, got)
	}
	_, fresh := Ensure(context.Background())
	if fresh == "" || fresh == id {
		t.Fatalf("expected a fresh id, got %q", fresh)
	}
}

func TestWithExecutionIsUniquePerCall(t *testing.T) {
	shared, id := NewContext(context.Background())
	a, ta := WithExecution(shared)
	b, tb := WithExecution(shared)
	if ta == tb {
		t.Fatalf("expected distinct tokens, got %d twice", ta)
	}
	if got, _ := ExecutionFromContext(a); got != ta {
		t.Fatalf("expected token %d, got %d", ta, got)
	}
	if got, _ := FromContext(b); got != id {
		t.Fatalf("request id changed: %s != %s", got, id)
	}
	if _, ok := ExecutionFromContext(shared); ok {
		t.Fatalf("unexpected token in parent context")
	}
}
