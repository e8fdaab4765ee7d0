package ctxutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func TestWithRunID_And_RunIDFromCtx(t *testing.T) {
	t.Parallel()

	id := NewRunID()
	ctx := WithRunID(context.Background(), id)

	if got := RunIDFromCtx(ctx); got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("NewRunID() = %q is not a uuid: %v", id, err)
	}
}

func TestRunIDFromCtx_EmptyContext(t *testing.T) {
	t.Parallel()

	if got := RunIDFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}

func TestRunIDFromCtx_WrongType(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), runIDKey, 42)
	if got := RunIDFromCtx(ctx); got != "" {
		t.Fatalf("expected empty string for wrong type, got %q", got)
	}
}

func TestNewRunID_Unique(t *testing.T) {
	t.Parallel()

	if NewRunID() == NewRunID() {
		t.Fatal("expected distinct run ids")
	}
}

func TestWithCommand_And_CommandFromCtx(t *testing.T) {
	t.Parallel()

	ctx := WithCommand(context.Background(), "seed")
	if got := CommandFromCtx(ctx); got != "seed" {
		t.Fatalf("expected seed, got %q", got)
	}
	if got := CommandFromCtx(context.Background()); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
