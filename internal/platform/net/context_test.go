package net

import (
	"context"
	"testing"
)

func TestWithRequestRoundTrip(t *testing.T) {
	ctx := WithRequest(context.Background(), "req-1", "inv-1")
	if got := RequestID(ctx); got != "req-1" {
		t.Fatalf("RequestID = %q", got)
	}
	if got := InvocationID(ctx); got != "inv-1" {
		t.Fatalf("InvocationID = %q", got)
	}
}

func TestEmptyValuesAreNotStored(t *testing.T) {
	ctx := WithRequest(context.Background(), "", "")
	if RequestID(ctx) != "" || InvocationID(ctx) != "" {
		t.Fatalf("empty ids should stay empty")
	}
}
