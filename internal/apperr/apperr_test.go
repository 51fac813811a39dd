package apperr

import (
	"errors"
	"testing"
)

func TestBuilderChain(t *testing.T) {
	cause := errors.New("disk full")
	err := New(cause).
		Component("datastore").
		Category(CategoryDatabase).
		Priority(PriorityHigh).
		Context("path", "/data/segments.db").
		Build()

	if err.Category() != CategoryDatabase {
		t.Fatalf("category = %v, want %v", err.Category(), CategoryDatabase)
	}
	if err.Component() != "datastore" {
		t.Fatalf("component = %q", err.Component())
	}
	if err.Priority() != PriorityHigh {
		t.Fatalf("priority = %v", err.Priority())
	}
	if err.Context()["path"] != "/data/segments.db" {
		t.Fatalf("context not set")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("Unwrap chain broken")
	}
}

func TestIsMatchesCategory(t *testing.T) {
	a := New(nil).Category(CategoryCapture).Build()
	b := New(errors.New("x")).Category(CategoryCapture).Build()
	c := New(nil).Category(CategoryGate).Build()

	if !errors.Is(a, b) {
		t.Fatalf("expected same-category errors to match")
	}
	if errors.Is(a, c) {
		t.Fatalf("expected different-category errors not to match")
	}
}
