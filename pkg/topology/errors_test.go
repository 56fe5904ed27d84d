package topology

import (
	"errors"
	"testing"
)

func TestParameterErrorUnwraps(t *testing.T) {
	err := ParameterError("Generate", "routers", "must be non-negative")
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatal("parameter error does not unwrap to ErrInvalidParameter")
	}
	if errors.Is(err, ErrInvariantViolation) {
		t.Fatal("parameter error should not match ErrInvariantViolation")
	}
}

func TestPhaseErrorPreservesCause(t *testing.T) {
	cause := ExhaustedError("AllocateSegment", "prefix full")
	err := PhaseError("Generate", "allocate", cause)

	if !errors.Is(err, ErrAddressSpaceExhausted) {
		t.Fatal("wrapped exhaustion not visible through PhaseError")
	}
	var serr *SynthesisError
	if !errors.As(err, &serr) {
		t.Fatal("PhaseError is not a *SynthesisError")
	}
	if serr.Phase != "allocate" {
		t.Fatalf("Phase = %q, want allocate", serr.Phase)
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(InvariantError("connectivity", "split graph")) {
		t.Fatal("invariant violation must be fatal")
	}
	if IsFatal(ParameterError("Generate", "hosts", "negative")) {
		t.Fatal("parameter error must not be fatal")
	}
	if IsFatal(nil) {
		t.Fatal("nil error must not be fatal")
	}
}
