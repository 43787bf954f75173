package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"xlate/internal/backend"
	"xlate/internal/config"
	"xlate/internal/logging"
	"xlate/internal/services"
)

func openAIBackendFor(t *testing.T, serverURL string, entry config.Backend) backend.Backend {
	t.Helper()
	t.Setenv("SILICONFLOW_API_KEY", "secret-key")
	entry.Name = "siliconflow"
	entry.Enabled = true
	entry.BaseURL = serverURL
	if entry.Model == "" {
		entry.Model = "test-model"
	}
	cfg := registryConfig(entry)

	backends, err := backend.FromConfig(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("construct backend: %v", err)
	}
	t.Cleanup(func() { backend.CloseAll(backends, logging.NewNop()) })
	return backends[0]
}

func TestOpenAITranslateSuccess(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		payload, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(payload, &gotBody)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"你好。"}}]}`))
	}))
	defer server.Close()

	b := openAIBackendFor(t, server.URL, config.Backend{
		MaxOutputTokens: 4000,
		Temperature:     0.7,
		ExtraParams:     map[string]any{"top_p": 0.9},
	})

	text, err := b.Translate(context.Background(), "translate me", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "你好。" {
		t.Fatalf("unexpected content: %q", text)
	}
	if gotPath != "/chat/completions" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotAuth != "Bearer secret-key" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody["model"] != "test-model" {
		t.Fatalf("unexpected model: %v", gotBody["model"])
	}
	if gotBody["max_tokens"] != float64(4000) {
		t.Fatalf("expected configured output budget, got %v", gotBody["max_tokens"])
	}
	if gotBody["top_p"] != 0.9 {
		t.Fatalf("extra params not merged: %v", gotBody)
	}
}

func TestOpenAITranslateStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`rate limited`))
	}))
	defer server.Close()

	b := openAIBackendFor(t, server.URL, config.Backend{})
	_, err := b.Translate(context.Background(), "x", 0)
	if err == nil {
		t.Fatal("expected error for 429 response")
	}
	if !errors.Is(err, services.ErrBackendRequest) {
		t.Fatalf("expected backend request error, got %v", err)
	}
	if !strings.Contains(err.Error(), "429") {
		t.Fatalf("expected status in error, got %v", err)
	}
}

func TestOpenAITranslateAPIErrorObject(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded"}}`))
	}))
	defer server.Close()

	b := openAIBackendFor(t, server.URL, config.Backend{})
	_, err := b.Translate(context.Background(), "x", 0)
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("expected api error message, got %v", err)
	}
}

func TestOpenAITranslateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":""}}]}`))
	}))
	defer server.Close()

	b := openAIBackendFor(t, server.URL, config.Backend{})
	_, err := b.Translate(context.Background(), "x", 0)
	if err == nil || !errors.Is(err, services.ErrBackendRequest) {
		t.Fatalf("expected backend request error for empty content, got %v", err)
	}
}

func TestOpenAITranslateDeltaFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"delta":{"content":"streamed anyway"}}]}`))
	}))
	defer server.Close()

	b := openAIBackendFor(t, server.URL, config.Backend{})
	text, err := b.Translate(context.Background(), "x", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "streamed anyway" {
		t.Fatalf("unexpected content: %q", text)
	}
}

func TestGeminiTranslateSuccess(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"翻译结果"}]}}]}`))
	}))
	defer server.Close()

	t.Setenv("GEMINI_API_KEY", "gem-key")
	cfg := registryConfig(config.Backend{
		Name: "gemini", Model: "gemini-2.0-flash", Enabled: true, BaseURL: server.URL,
	})
	backends, err := backend.FromConfig(cfg, logging.NewNop(), "")
	if err != nil {
		t.Fatalf("construct backend: %v", err)
	}
	defer backend.CloseAll(backends, logging.NewNop())

	text, err := backends[0].Translate(context.Background(), "translate me", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "翻译结果" {
		t.Fatalf("unexpected content: %q", text)
	}
	if !strings.HasSuffix(gotPath, "/models/gemini-2.0-flash:generateContent") {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotKey != "gem-key" {
		t.Fatalf("expected key query parameter, got %q", gotKey)
	}
}
