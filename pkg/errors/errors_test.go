package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	t.Parallel()

	cases := map[Code]int{
		CodeValidation: http.StatusBadRequest,
		CodeEmptyCart:  http.StatusConflict,
		CodeNotFound:   http.StatusNotFound,
		CodeConflict:   http.StatusConflict,
		CodeInternal:   http.StatusInternalServerError,
		CodeDependency: http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("code %s: expected status %d, got %d", code, status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "saving order")
	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsThroughChains(t *testing.T) {
	t.Parallel()

	inner := New(CodeEmptyCart, "cart is empty")
	outer := fmt.Errorf("commit: %w", inner)

	typed := As(outer)
	if typed == nil || typed.Code() != CodeEmptyCart {
		t.Fatalf("expected EMPTY_CART, got %v", typed)
	}
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
}

func TestWithDetails(t *testing.T) {
	t.Parallel()

	details := map[string]string{"billing_email": "must be a valid email"}
	err := New(CodeValidation, "validation failed").WithDetails(details)
	if err.Details() == nil {
		t.Fatal("expected details to be attached")
	}
}
