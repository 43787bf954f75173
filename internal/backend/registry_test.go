package backend_test

import (
	"errors"
	"strings"
	"testing"

	"xlate/internal/backend"
	"xlate/internal/config"
	"xlate/internal/logging"
	"xlate/internal/services"
)

func registryConfig(entries ...config.Backend) *config.Config {
	cfg := config.Default()
	cfg.Backends = entries
	return &cfg
}

func TestFromConfigBuildsEnabledBackendsInOrder(t *testing.T) {
	t.Setenv("SILICONFLOW_API_KEY", "key-a")
	t.Setenv("DEEPSEEK_API_KEY", "key-b")
	cfg := registryConfig(
		config.Backend{Name: "siliconflow", Model: "m1", Enabled: true, ContextSize: 16000},
		config.Backend{Name: "deepseek", Model: "m2", Enabled: true, ContextSize: 8000},
		config.Backend{Name: "gemini", Model: "m3", Enabled: false},
	)

	backends, err := backend.FromConfig(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer backend.CloseAll(backends, logging.NewNop())

	if len(backends) != 2 {
		t.Fatalf("expected 2 backends, got %d", len(backends))
	}
	if backends[0].Name() != "siliconflow" || backends[1].Name() != "deepseek" {
		t.Fatalf("failover order lost: %s, %s", backends[0].Name(), backends[1].Name())
	}
	if backends[0].ContextSize() != 16000 {
		t.Fatalf("context size lost: %d", backends[0].ContextSize())
	}
}

func TestFromConfigSkipsMissingCredential(t *testing.T) {
	t.Setenv("SILICONFLOW_API_KEY", "key-a")
	t.Setenv("DEEPSEEK_API_KEY", "")
	cfg := registryConfig(
		config.Backend{Name: "deepseek", Model: "m2", Enabled: true},
		config.Backend{Name: "siliconflow", Model: "m1", Enabled: true},
	)

	backends, err := backend.FromConfig(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer backend.CloseAll(backends, logging.NewNop())

	if len(backends) != 1 || backends[0].Name() != "siliconflow" {
		t.Fatalf("expected only siliconflow, got %v", backends)
	}
}

func TestFromConfigSkipsUnknownName(t *testing.T) {
	t.Setenv("SILICONFLOW_API_KEY", "key-a")
	cfg := registryConfig(
		config.Backend{Name: "mysterybox", Model: "m", Enabled: true},
		config.Backend{Name: "siliconflow", Model: "m1", Enabled: true},
	)

	backends, err := backend.FromConfig(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer backend.CloseAll(backends, logging.NewNop())

	if len(backends) != 1 || backends[0].Name() != "siliconflow" {
		t.Fatalf("expected only siliconflow, got %v", backends)
	}
}

func TestFromConfigZeroUsableBackendsIsConfigurationError(t *testing.T) {
	t.Setenv("SILICONFLOW_API_KEY", "")
	cfg := registryConfig(config.Backend{Name: "siliconflow", Model: "m1", Enabled: true})

	_, err := backend.FromConfig(cfg, logging.NewNop(), "")
	if err == nil {
		t.Fatal("expected error with zero usable backends")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestFromConfigRestrictToOneBackend(t *testing.T) {
	t.Setenv("SILICONFLOW_API_KEY", "key-a")
	t.Setenv("DEEPSEEK_API_KEY", "key-b")
	cfg := registryConfig(
		config.Backend{Name: "siliconflow", Model: "m1", Enabled: true},
		config.Backend{Name: "deepseek", Model: "m2", Enabled: true},
	)

	backends, err := backend.FromConfig(cfg, logging.NewNop(), "deepseek")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer backend.CloseAll(backends, logging.NewNop())

	if len(backends) != 1 || backends[0].Name() != "deepseek" {
		t.Fatalf("expected restriction to deepseek, got %v", backends)
	}
}

func TestFromConfigRestrictUnknownListsAvailable(t *testing.T) {
	t.Setenv("SILICONFLOW_API_KEY", "key-a")
	cfg := registryConfig(config.Backend{Name: "siliconflow", Model: "m1", Enabled: true})

	_, err := backend.FromConfig(cfg, logging.NewNop(), "gemini")
	if err == nil {
		t.Fatal("expected error for unusable restriction")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "siliconflow") {
		t.Fatalf("expected available backends in message, got %v", err)
	}
}

func TestCredentialEnv(t *testing.T) {
	env, ok := backend.CredentialEnv("gemini")
	if !ok || env != "GEMINI_API_KEY" {
		t.Fatalf("unexpected credential env: %q ok=%v", env, ok)
	}
	if _, ok := backend.CredentialEnv("nope"); ok {
		t.Fatal("unknown name must not resolve")
	}
}

func TestKnownNamesSorted(t *testing.T) {
	names := backend.KnownNames()
	if len(names) != 5 {
		t.Fatalf("expected 5 known backends, got %v", names)
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("names not sorted: %v", names)
		}
	}
}
