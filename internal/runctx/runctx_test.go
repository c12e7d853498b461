package runctx

import (
	"context"
	"testing"
)

func TestWithRunContext_AssignsDistinctIDs(t *testing.T) {
	a := Get(WithRunContext(context.Background()))
	b := Get(WithRunContext(context.Background()))

	if a.RunID == "" || a.RunID == "unknown" {
		t.Fatalf("expected generated run id, got %q", a.RunID)
	}
	if a.RunID == b.RunID {
		t.Errorf("run ids should differ, both %q", a.RunID)
	}
}

func TestGet_WithoutScope(t *testing.T) {
	rc := Get(context.Background())
	if rc.RunID != "unknown" {
		t.Errorf("RunID = %q, want unknown", rc.RunID)
	}
	if Logger(context.Background()) == nil {
		t.Error("Logger should fall back to the global logger")
	}
}
