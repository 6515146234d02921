package domainerr

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundMessage(t *testing.T) {
	err := NotFound("patient", "abc-123")
	if err.Error() != "patient abc-123 not found" {
		t.Errorf("unexpected message: %s", err.Error())
	}
}

func TestKindOf(t *testing.T) {
	err := InvalidInput("base price must not be negative")
	k, ok := KindOf(err)
	if !ok {
		t.Fatal("expected a domain kind")
	}
	if k != KindInvalidInput {
		t.Errorf("expected invalid_input, got %s", k)
	}
}

func TestKindOf_Wrapped(t *testing.T) {
	inner := InvalidState("appointment already completed")
	err := fmt.Errorf("confirm appointment: %w", inner)
	k, ok := KindOf(err)
	if !ok {
		t.Fatal("expected a domain kind through wrapping")
	}
	if k != KindInvalidState {
		t.Errorf("expected invalid_state, got %s", k)
	}
}

func TestKindOf_PlainError(t *testing.T) {
	_, ok := KindOf(errors.New("boom"))
	if ok {
		t.Error("plain error must not carry a kind")
	}
}

func TestIsNotFound(t *testing.T) {
	if !IsNotFound(NotFound("doctor", "x")) {
		t.Error("expected IsNotFound true")
	}
	if IsNotFound(DoctorUnavailable("overlap")) {
		t.Error("expected IsNotFound false for conflict")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := &Error{Kind: KindInvalidInput, Msg: "decode body", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
}
