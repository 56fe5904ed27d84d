package validation

import (
	"errors"
	"testing"
	"time"
)

func TestValidatorPassesCleanConfig(t *testing.T) {
	err := NewConfigValidator("engine").
		Required("name", "netforge").
		Positive("workers", 4).
		NonNegative("retries", 0).
		RangeInt("reserved", 3, 3, 16).
		MinDuration("timeout", time.Second, time.Millisecond).
		CIDR("base", "10.0.0.0/8").
		Validate()
	if err != nil {
		t.Fatalf("clean config rejected: %v", err)
	}
}

func TestValidatorCollectsAllErrors(t *testing.T) {
	cv := NewConfigValidator("engine").
		Required("name", "").
		Positive("workers", 0).
		CIDR("base", "not-a-cidr")

	if !cv.HasErrors() {
		t.Fatal("expected errors")
	}
	if got := len(cv.Errors()); got != 3 {
		t.Fatalf("collected %d errors, want 3", got)
	}
	if err := cv.Validate(); err == nil {
		t.Fatal("Validate returned nil despite errors")
	}
}

func TestCIDRRejectsIPv6(t *testing.T) {
	err := NewConfigValidator("engine").CIDR("base", "2001:db8::/32").Validate()
	if err == nil {
		t.Fatal("IPv6 prefix accepted")
	}
}

func TestCustomValidation(t *testing.T) {
	boom := errors.New("boom")
	err := NewConfigValidator("engine").
		Custom("field", func() error { return boom }).
		Validate()
	if err == nil {
		t.Fatal("custom failure ignored")
	}
}

func TestValidateConfigRejectsNil(t *testing.T) {
	if err := ValidateConfig(nil); err == nil {
		t.Fatal("nil config accepted")
	}
}

func TestDefaultOr(t *testing.T) {
	if got := DefaultOr("", "fallback"); got != "fallback" {
		t.Fatalf("DefaultOr empty = %q", got)
	}
	if got := DefaultOr("set", "fallback"); got != "set" {
		t.Fatalf("DefaultOr set = %q", got)
	}
	if got := DefaultOr(0, 42); got != 42 {
		t.Fatalf("DefaultOr zero int = %d", got)
	}
}
