package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel   = "gpt-4o"
	defaultTemperature   = 0.7
	defaultMaxTokens     = 4096
)

// OpenAIClient calls an OpenAI-compatible Chat Completions API.
// The base URL can be overridden to point at any compatible endpoint.
type OpenAIClient struct {
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

// NewOpenAIClient creates a client. If apiKey is empty it falls back to
// OPENAI_API_KEY; an absent key is a ConfigurationError, not a degraded mode.
func NewOpenAIClient(apiKey, model string) (*OpenAIClient, error) {
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, &ConfigurationError{Key: "OPENAI_API_KEY"}
	}
	if model == "" {
		model = defaultOpenAIModel
	}
	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIClient{
		http:    &http.Client{Timeout: 120 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
	}, nil
}

func (c *OpenAIClient) Name() string { return "OpenAI:" + c.model }
func (c *OpenAIClient) Close() error { return nil }

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float32           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateJSON sends the prompt as the system message and the serialized
// input as the user message, requesting a JSON object back.
func (c *OpenAIClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	content, err := c.complete(ctx, prompt, input, true)
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(content)
	var scratch any
	if err := json.Unmarshal(raw, &scratch); err != nil {
		return nil, ErrInvalidJSON
	}
	return raw, nil
}

// GenerateText is the same call without the JSON response format.
func (c *OpenAIClient) GenerateText(ctx context.Context, prompt string, input any) (string, error) {
	return c.complete(ctx, prompt, input, false)
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string, input any, structured bool) (string, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt},
			{Role: "user", Content: string(in)},
		},
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	if structured {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}
	b, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		uerr := &UpstreamError{Provider: "openai", Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return "", NewPermanentError(uerr)
		}
		return "", uerr
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &UpstreamError{Provider: "openai", Body: "unparsable response body"}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == "" {
		return "", ErrInvalidJSON
	}
	return out.Choices[0].Message.Content, nil
}
