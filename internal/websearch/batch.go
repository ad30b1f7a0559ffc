package websearch

import (
	"context"
	"fmt"
	"sync"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
)

// SearchMany issues all queries concurrently, then runs one synthesis call
// over the combined results. A failing query never aborts the batch: its
// entry carries the error with empty results. The synthesis call waits for
// every query to finish; there is no partial synthesis.
func (c *Client) SearchMany(ctx context.Context, queries []string, opts Options) (BatchResponse, error) {
	responses := make([]Response, len(queries))
	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			resp, err := c.Search(ctx, q, opts)
			if err != nil {
				responses[i] = Response{Query: q, Results: []Result{}, Err: err.Error()}
				return
			}
			responses[i] = resp
		}(i, q)
	}
	wg.Wait()

	synthesis, err := c.synthesize(ctx, responses)
	if err != nil {
		return BatchResponse{}, err
	}
	return BatchResponse{IndividualResults: responses, Synthesis: synthesis}, nil
}

func (c *Client) synthesize(ctx context.Context, responses []Response) (*Synthesis, error) {
	ctx = llm.WithStage(ctx, "search-synthesis")
	raw, err := c.llm.GenerateJSON(ctx, synthesisPrompt, map[string]any{
		"individual_results": responses,
	})
	if err != nil {
		return nil, err
	}
	var out Synthesis
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		return nil, fmt.Errorf("websearch: invalid synthesis: %w", err)
	}
	return &out, nil
}
