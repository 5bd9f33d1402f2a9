package scope_test

import (
	"context"
	"testing"

	"github.com/imarval/mele-sap-adapter/scope"
)

func TestCaptureEmpty(t *testing.T) {
	tenantID, correlationID := scope.Capture(context.Background())
	if tenantID != "" || correlationID != "" {
		t.Fatalf("expected empty scope, got %q %q", tenantID, correlationID)
	}
}

func TestRestoreCapture(t *testing.T) {
	ctx := scope.Restore(context.Background(), "200", "corr-1")

	tenantID, correlationID := scope.Capture(ctx)
	if tenantID != "200" || correlationID != "corr-1" {
		t.Fatalf("round trip lost values: %q %q", tenantID, correlationID)
	}
}

// Empty values must not clobber what a parent context already carries.
func TestRestoreKeepsExisting(t *testing.T) {
	ctx := scope.Restore(context.Background(), "200", "corr-1")
	ctx = scope.Restore(ctx, "", "")

	tenantID, correlationID := scope.Capture(ctx)
	if tenantID != "200" || correlationID != "corr-1" {
		t.Fatalf("empty restore clobbered values: %q %q", tenantID, correlationID)
	}
}

func TestEnsureCorrelation(t *testing.T) {
	ctx, minted := scope.EnsureCorrelation(context.Background())
	if minted == "" {
		t.Fatal("expected a correlation ID to be minted")
	}

	// Idempotent: a present ID is kept.
	_, again := scope.EnsureCorrelation(ctx)
	if again != minted {
		t.Fatalf("expected %q to be kept, got %q", minted, again)
	}

	ctx = scope.Restore(context.Background(), "", "corr-9")
	_, kept := scope.EnsureCorrelation(ctx)
	if kept != "corr-9" {
		t.Fatalf("expected hub-supplied ID kept, got %q", kept)
	}
}
