package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"xlate/internal/config"
	"xlate/internal/services"
)

// geminiBackend speaks the Google Generative Language generateContent wire.
// The credential travels as a key query parameter, not a bearer header.
type geminiBackend struct {
	name            string
	model           string
	contextSize     int
	maxOutputTokens int
	temperature     float64

	endpoint   string
	httpClient *http.Client
}

func newGeminiBackend(cfg config.Backend, apiKey, baseURL string, timeout time.Duration) (*geminiBackend, error) {
	endpoint, err := url.JoinPath(baseURL, "models", cfg.Model+":generateContent")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, cfg.Name, "build endpoint", baseURL, err)
	}
	endpoint += "?key=" + url.QueryEscape(strings.TrimSpace(apiKey))
	client, err := newHTTPClient(cfg.Proxy, timeout)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, cfg.Name, "configure proxy", cfg.Proxy, err)
	}
	return &geminiBackend{
		name:            cfg.Name,
		model:           cfg.Model,
		contextSize:     cfg.ContextSize,
		maxOutputTokens: cfg.MaxOutputTokens,
		temperature:     cfg.Temperature,
		endpoint:        endpoint,
		httpClient:      client,
	}, nil
}

func (b *geminiBackend) Name() string     { return b.name }
func (b *geminiBackend) Model() string    { return b.model }
func (b *geminiBackend) ContextSize() int { return b.contextSize }

func (b *geminiBackend) Close() error {
	b.httpClient.CloseIdleConnections()
	return nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (b *geminiBackend) Translate(ctx context.Context, prompt string, maxOutput int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "empty prompt", nil)
	}
	if maxOutput <= 0 {
		maxOutput = b.maxOutputTokens
	}

	payload := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     b.temperature,
			MaxOutputTokens: maxOutput,
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "encode body", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "new request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "http error", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "read body", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "", &statusError{StatusCode: resp.StatusCode, Body: string(body)})
	}

	var parsed geminiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "decode response", err)
	}
	if parsed.Error != nil {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "api error: "+strings.TrimSpace(parsed.Error.Message), nil)
	}

	var sb strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
		if sb.Len() > 0 {
			break
		}
	}
	content := strings.TrimSpace(sb.String())
	if content == "" {
		return "", services.Wrap(services.ErrBackendRequest, b.name, "translate", "empty content", nil)
	}
	return content, nil
}
