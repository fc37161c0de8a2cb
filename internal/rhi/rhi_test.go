package rhi

import "testing"

func TestErrorUnwrap(t *testing.T) {
	inner := &Error{Kind: ErrOutOfMemory, Op: "CreateBuffer"}
	wrapped := &Error{Kind: ErrInvalidParams, Op: "CreateTexture2D", Err: inner}

	if wrapped.Unwrap() != inner {
		t.Fatal("Unwrap should return the wrapped error")
	}
	if wrapped.Error() == "" {
		t.Fatal("Error() should not be empty")
	}
}

func TestInvalidHandleIsZero(t *testing.T) {
	if InvalidHandle != 0 {
		t.Fatal("InvalidHandle must be the zero Handle")
	}
}
