package observability

import (
	"context"
	"testing"
)

func TestNewWalkID(t *testing.T) {
	id1 := NewWalkID()
	id2 := NewWalkID()

	if id1 == "" {
		t.Error("expected non-empty walk ID")
	}
	if id1 == id2 {
		t.Error("expected unique walk IDs")
	}
}

func TestContextWithWalkID(t *testing.T) {
	ctx := context.Background()
	walkID := "test-walk-123"

	ctx = ContextWithWalkID(ctx, walkID)
	extracted := WalkIDFromContext(ctx)

	if extracted != walkID {
		t.Errorf("expected %q, got %q", walkID, extracted)
	}
}

func TestWalkIDFromContext_Empty(t *testing.T) {
	ctx := context.Background()
	extracted := WalkIDFromContext(ctx)

	if extracted != "" {
		t.Errorf("expected empty string, got %q", extracted)
	}
}

func TestGetOrCreateWalkID_Existing(t *testing.T) {
	existingID := "existing-id"
	ctx := ContextWithWalkID(context.Background(), existingID)

	newCtx, id := GetOrCreateWalkID(ctx)

	if id != existingID {
		t.Errorf("expected existing ID %q, got %q", existingID, id)
	}
	if WalkIDFromContext(newCtx) != existingID {
		t.Error("context should have existing ID")
	}
}

func TestGetOrCreateWalkID_New(t *testing.T) {
	ctx := context.Background()

	newCtx, id := GetOrCreateWalkID(ctx)

	if id == "" {
		t.Error("expected generated ID")
	}
	if WalkIDFromContext(newCtx) != id {
		t.Error("context should have generated ID")
	}
}
