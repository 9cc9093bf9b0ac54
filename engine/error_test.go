package engine

import (
	"errors"
	"testing"
)

func TestNewTransportErrorWrapsDescription(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("fetch read error", cause, nil)

	if err.Type != "TransportError" {
		t.Fatalf("Type = %q, want %q", err.Type, "TransportError")
	}
	if err.Error() != "fetch read error" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "fetch read error")
	}
	if !errors.Is(err, cause) {
		t.Fatalf("errors.Is(err, cause) = false, want true")
	}
}
