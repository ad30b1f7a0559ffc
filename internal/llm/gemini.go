package llm

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client.
// It is selected with LLM_PROVIDER=gemini; the default provider is OpenAI.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	if strings.TrimSpace(os.Getenv("GEMINI_API_KEY")) == "" && strings.TrimSpace(os.Getenv("GOOGLE_API_KEY")) == "" {
		return nil, &ConfigurationError{Key: "GEMINI_API_KEY"}
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

func (g *GeminiClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	txt, err := g.generate(ctx, prompt, input, "application/json")
	if err != nil {
		return nil, err
	}
	raw := json.RawMessage(txt)
	var scratch any
	if err := json.Unmarshal(raw, &scratch); err != nil {
		return nil, ErrInvalidJSON
	}
	return raw, nil
}

func (g *GeminiClient) GenerateText(ctx context.Context, prompt string, input any) (string, error) {
	return g.generate(ctx, prompt, input, "")
}

func (g *GeminiClient) generate(ctx context.Context, prompt string, input any, mime string) (string, error) {
	in, _ := json.MarshalIndent(input, "", "  ")
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)
	cfg := &genai.GenerateContentConfig{}
	if mime != "" {
		cfg.ResponseMIMEType = mime
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}}, cfg)
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", ErrInvalidJSON
	}
	return resp.Candidates[0].Content.Parts[0].Text, nil
}
