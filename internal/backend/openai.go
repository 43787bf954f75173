package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"xlate/internal/config"
	"xlate/internal/services"
)

const defaultHTTPTimeout = 60 * time.Second

// openaiBackend speaks the OpenAI-compatible chat-completions wire shared by
// SiliconFlow, Alibaba, DeepSeek, and OpenRouter. Each call is single-shot;
// retry policy lives in the Executor.
type openaiBackend struct {
	name            string
	model           string
	contextSize     int
	maxOutputTokens int
	temperature     float64
	extraParams     map[string]any

	endpoint   string
	apiKey     string
	referer    string
	title      string
	httpClient *http.Client
}

func newOpenAIBackend(cfg config.Backend, apiKey, baseURL string, timeout time.Duration, referer, title string) (*openaiBackend, error) {
	endpoint, err := url.JoinPath(baseURL, "chat", "completions")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, cfg.Name, "build endpoint", baseURL, err)
	}
	client, err := newHTTPClient(cfg.Proxy, timeout)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, cfg.Name, "configure proxy", cfg.Proxy, err)
	}
	return &openaiBackend{
		name:            cfg.Name,
		model:           cfg.Model,
		contextSize:     cfg.ContextSize,
		maxOutputTokens: cfg.MaxOutputTokens,
		temperature:     cfg.Temperature,
		extraParams:     cfg.ExtraParams,
		endpoint:        endpoint,
		apiKey:          strings.TrimSpace(apiKey),
		referer:         referer,
		title:           title,
		httpClient:      client,
	}, nil
}

func newHTTPClient(proxy string, timeout time.Duration) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &http.Client{Timeout: timeout}
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	return client, nil
}

func (b *openaiBackend) Name() string     { return b.name }
func (b *openaiBackend) Model() string    { return b.model }
func (b *openaiBackend) ContextSize() int { return b.contextSize }

func (b *openaiBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatCompletionMessage `json:"message"`
		// Some providers mistakenly return the streaming schema (delta) even
		// when stream=false, so tolerate it as a fallback.
		Delta chatCompletionMessage `json:"delta"`
		// Legacy "text" field (completion-style responses).
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatCompletionMessage struct {
	Content string `json:"content"`
	Refusal string `json:"refusal"`
}

func (b *openaiBackend) Translate(ctx context.Context, prompt string, maxOutput int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "empty prompt", nil)
	}
	if maxOutput <= 0 {
		maxOutput = b.maxOutputTokens
	}

	body := map[string]any{
		"model":       b.model,
		"messages":    []chatMessage{{Role: "user", Content: prompt}},
		"temperature": b.temperature,
	}
	if maxOutput > 0 {
		body["max_tokens"] = maxOutput
	}
	for key, value := range b.extraParams {
		body[key] = value
	}

	encoded, err := json.Marshal(body)
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "new request", err)
	}
	req.Header.Set("Authorization", "Bearer "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")
	if b.referer != "" {
		req.Header.Set("HTTP-Referer", b.referer)
		req.Header.Set("Referer", b.referer)
	}
	if b.title != "" {
		req.Header.Set("X-Title", b.title)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "http error", err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "", &statusError{StatusCode: resp.StatusCode, Body: string(payload)})
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(payload, &completion); err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "decode response", err)
	}
	if completion.Error != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "api error: "+strings.TrimSpace(completion.Error.Message), nil)
	}

	content := extractCompletionContent(completion)
	if content == "" {
		detail := "empty content"
		if refusal := extractCompletionRefusal(completion); refusal != "" {
			detail = "refusal: " + refusal
		}
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", detail, nil)
	}
	return content, nil
}

func extractCompletionContent(completion chatCompletionResponse) string {
	for _, choice := range completion.Choices {
		if content := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); content != "" {
			return content
		}
	}
	return ""
}

func extractCompletionRefusal(completion chatCompletionResponse) string {
	for _, choice := range completion.Choices {
		if refusal := firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal); refusal != "" {
			return refusal
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
