package topology

import (
	"errors"
	"fmt"
)

// Common sentinel errors for the synthesis pipeline
var (
	// ErrInvalidParameter reports out-of-range or malformed caller input.
	// It is raised eagerly, before any allocation work.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrInvalidConfiguration reports an unknown archetype or bad engine config
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrAddressSpaceExhausted reports that the requested scale exceeds the
	// capacity of the configured address space
	ErrAddressSpaceExhausted = errors.New("address space exhausted")

	// ErrInvariantViolation reports a post-build consistency defect. It is
	// always fatal: no topology is handed back alongside it.
	ErrInvariantViolation = errors.New("internal invariant violation")

	// ErrOptimizationBudget reports that the optimization pass ran out of
	// budget before converging. Non-fatal; the best-found variant is kept.
	ErrOptimizationBudget = errors.New("optimization budget exceeded")
)

// SynthesisError provides structured error information for synthesis phases.
type SynthesisError struct {
	Op     string // Operation that failed (e.g., "Generate", "Allocate")
	Phase  string // Pipeline phase (e.g., "devices", "addressing", "links")
	Detail string // Additional context
	Cause  error  // Underlying error
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	if e.Phase != "" {
		if e.Detail != "" {
			return fmt.Sprintf("%s [%s] (%s): %v", e.Op, e.Phase, e.Detail, e.Cause)
		}
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Phase, e.Cause)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s (%s): %v", e.Op, e.Detail, e.Cause)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for error chain support.
func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target error matches this error or its cause.
func (e *SynthesisError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.Cause, target)
}

// ParameterError creates an invalid-parameter error with field context.
func ParameterError(op, field string, detail string) error {
	return &SynthesisError{
		Op:     op,
		Detail: fmt.Sprintf("%s: %s", field, detail),
		Cause:  ErrInvalidParameter,
	}
}

// ConfigurationError creates an invalid-configuration error.
func ConfigurationError(op, detail string) error {
	return &SynthesisError{Op: op, Detail: detail, Cause: ErrInvalidConfiguration}
}

// ExhaustedError creates an address-space-exhausted error.
func ExhaustedError(op, detail string) error {
	return &SynthesisError{Op: op, Detail: detail, Cause: ErrAddressSpaceExhausted}
}

// InvariantError creates a fatal invariant-violation error.
func InvariantError(phase, detail string) error {
	return &SynthesisError{Op: "Validate", Phase: phase, Detail: detail, Cause: ErrInvariantViolation}
}

// PhaseError wraps a lower-level error with pipeline phase context.
func PhaseError(op, phase string, cause error) error {
	return &SynthesisError{Op: op, Phase: phase, Cause: cause}
}

// IsFatal returns true if the error signals an engine defect rather than
// bad input or an exhausted budget.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvariantViolation)
}
