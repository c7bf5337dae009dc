package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCode(t *testing.T) {
	meta := MetadataFor(CodeStateConflict)
	if meta.HTTPStatus != http.StatusUnprocessableEntity {
		t.Fatalf("unexpected status %d", meta.HTTPStatus)
	}
	if !meta.DetailsAllowed {
		t.Fatalf("state conflict should allow details")
	}
}

func TestMetadataForUnknownCodeFallsBack(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback status %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(CodeDependency, cause, "loading rate")
	if !errors.Is(err, cause) {
		t.Fatalf("cause not preserved")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsThroughFmtErrorf(t *testing.T) {
	inner := New(CodeConflict, "already assigned")
	wrapped := fmt.Errorf("coordinator: %w", inner)

	typed := As(wrapped)
	if typed == nil {
		t.Fatalf("expected typed error")
	}
	if typed.Code() != CodeConflict {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeValidation, errors.New("quantity must be positive"), "calculate quote")
	dump := Dump(err)
	if dump.Code != CodeValidation {
		t.Fatalf("unexpected code %s", dump.Code)
	}
	if len(dump.Chain) != 2 {
		t.Fatalf("expected 2 chain entries, got %d", len(dump.Chain))
	}
}
