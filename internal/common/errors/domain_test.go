package commonerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestDomainError_Accessors(t *testing.T) {
	err := NewDomainError("TEST_CODE", CategoryConflict, http.StatusBadRequest, "test message")

	if err.Code() != "TEST_CODE" {
		t.Errorf("expected code TEST_CODE, got %s", err.Code())
	}
	if err.Category() != CategoryConflict {
		t.Errorf("expected CONFLICT category, got %s", err.Category())
	}
	if err.HTTPStatus() != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", err.HTTPStatus())
	}
	if err.Message() != "test message" {
		t.Errorf("expected message preserved, got %q", err.Message())
	}
	if err.Error() != "test message" {
		t.Errorf("expected Error() to match message, got %q", err.Error())
	}
}

func TestDomainError_WithCause(t *testing.T) {
	base := NewDomainError("TEST_CODE", CategoryInternal, http.StatusInternalServerError, "wrapped failure")
	cause := errors.New("disk full")

	wrapped := base.WithCause(cause)

	if !errors.Is(wrapped, cause) {
		t.Error("expected errors.Is to reach the cause")
	}
	if wrapped.Message() != "wrapped failure" {
		t.Errorf("expected message unchanged, got %q", wrapped.Message())
	}
	if wrapped.Error() != fmt.Sprintf("wrapped failure: %v", cause) {
		t.Errorf("unexpected Error(): %q", wrapped.Error())
	}
	if base.Unwrap() != nil {
		t.Error("expected WithCause to leave the original untouched")
	}
}

func TestAsDomainError(t *testing.T) {
	base := NewDomainError("TEST_CODE", CategoryValidation, http.StatusBadRequest, "bad input")
	wrapped := fmt.Errorf("handler: %w", base)

	de, ok := AsDomainError(wrapped)
	if !ok {
		t.Fatal("expected AsDomainError to match through wrapping")
	}
	if de.Code() != "TEST_CODE" {
		t.Errorf("expected TEST_CODE, got %s", de.Code())
	}

	if !IsDomainError(wrapped) {
		t.Error("expected IsDomainError true")
	}
	if IsDomainError(errors.New("plain")) {
		t.Error("expected IsDomainError false for plain error")
	}
}
