package services_test

import (
	"errors"
	"strings"
	"testing"

	"xlate/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrBackendRequest, "translate", "chunk", "request failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrBackendRequest) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"translate", "chunk", "request failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "translate", "", "", nil)
	if !errors.Is(err, services.ErrBackendRequest) {
		t.Fatalf("expected default marker, got %v", err)
	}
}

func TestIsFatal(t *testing.T) {
	cfgErr := services.Wrap(services.ErrConfiguration, "config", "load", "no backends", nil)
	if !services.IsFatal(cfgErr) {
		t.Fatalf("expected configuration error to be fatal: %v", cfgErr)
	}
	reqErr := services.Wrap(services.ErrBackendRequest, "translate", "chunk", "timeout", nil)
	if services.IsFatal(reqErr) {
		t.Fatalf("expected request error to be non-fatal: %v", reqErr)
	}
	if services.IsFatal(nil) {
		t.Fatal("nil error should not be fatal")
	}
}
