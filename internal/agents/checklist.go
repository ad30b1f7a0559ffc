package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Item is one entry of a fixed, enumerable checklist. Each agent declares a
// closed set of items; dispatch is an explicit map with a declared default,
// so the checklist is exhaustive and statically visible.
type Item string

// Handler produces the per-item result for one checklist item.
type Handler func(ctx context.Context, input map[string]any) (json.RawMessage, error)

// Checklist fans one completion (or search+completion) call out per item and
// joins the results. Unlike batched web search, a single failing item aborts
// the whole invocation.
type Checklist struct {
	Items    []Item
	Handlers map[Item]Handler
	Default  Handler
}

// Run dispatches every item concurrently and waits for all of them.
// The result map is keyed by item name and complete on success.
func (c *Checklist) Run(ctx context.Context, input map[string]any) (map[Item]json.RawMessage, error) {
	if c.Default == nil {
		return nil, fmt.Errorf("agents: checklist has no default handler")
	}

	results := make([]json.RawMessage, len(c.Items))
	errs := make([]error, len(c.Items))
	var wg sync.WaitGroup
	for i, item := range c.Items {
		handler := c.Handlers[item]
		if handler == nil {
			handler = c.Default
		}
		wg.Add(1)
		go func(i int, item Item, handler Handler) {
			defer wg.Done()
			itemInput := make(map[string]any, len(input)+1)
			for k, v := range input {
				itemInput[k] = v
			}
			itemInput["checklist_item"] = string(item)
			results[i], errs[i] = handler(ctx, itemInput)
		}(i, item, handler)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("agents: item %q: %w", c.Items[i], err)
		}
	}
	out := make(map[Item]json.RawMessage, len(c.Items))
	for i, item := range c.Items {
		out[item] = results[i]
	}
	return out, nil
}
