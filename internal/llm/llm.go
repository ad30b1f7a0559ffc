package llm

import (
	"context"
	"encoding/json"
)

// Client is the single abstraction every stage and agent talks to.
// GenerateJSON must return a syntactically valid JSON object;
// GenerateText returns the raw completion text.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error)
	GenerateText(ctx context.Context, prompt string, input any) (string, error)
	Close() error
}
