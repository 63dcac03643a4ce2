package types

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewTransient(ErrExpertTimeout, "expert timed out").
		WithCause(root).
		WithExpert(ExpertPattern)

	if GetErrorCode(err) != ErrExpertTimeout {
		t.Fatalf("expected code %s, got %s", ErrExpertTimeout, GetErrorCode(err))
	}
	if !IsRetryable(err) {
		t.Fatalf("expected retryable")
	}
	if !errors.Is(err, root) {
		t.Fatalf("expected errors.Is unwrap to root")
	}
	if got := err.Error(); got == "" {
		t.Fatalf("expected non-empty error string")
	}
}

func TestError_WrappedCodeExtraction(t *testing.T) {
	t.Parallel()

	inner := NewError(ErrNoCandidates, "all experts failed")
	wrapped := fmt.Errorf("resolve: %w", inner)

	if !IsNoCandidates(wrapped) {
		t.Fatalf("expected NO_CANDIDATES through wrap")
	}
	if IsRetryable(wrapped) {
		t.Fatalf("zero-candidate fatality must not be retryable")
	}
}

func TestError_ConfigurationFault(t *testing.T) {
	t.Parallel()

	err := NewError(ErrDimensionMismatch, "embedding length 8, want 16")
	if !IsConfigurationFault(err) {
		t.Fatalf("expected configuration fault")
	}
	if IsRetryable(err) {
		t.Fatalf("configuration faults must not be retryable")
	}
}
