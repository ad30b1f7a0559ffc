package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// FakeClient returns canned payloads per stage tag for offline runs and tests.
// Responses are keyed by the stage set with WithStage; the zero key ("") acts
// as the fallback. Err, when set, fails every call.
type FakeClient struct {
	mu        sync.Mutex
	Responses map[string]any
	Err       error
	Calls     []string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Responses: map[string]any{}}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// Respond registers the canned object returned for calls tagged with stage.
func (f *FakeClient) Respond(stage string, obj any) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Responses[stage] = obj
	return f
}

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	stage := StageFrom(ctx)
	f.mu.Lock()
	f.Calls = append(f.Calls, stage)
	err := f.Err
	obj, ok := f.Responses[stage]
	if !ok {
		obj = f.Responses[""]
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	if obj == nil {
		obj = map[string]any{}
	}
	if raw, isRaw := obj.(json.RawMessage); isRaw {
		return raw, nil
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}

func (f *FakeClient) GenerateText(ctx context.Context, prompt string, input any) (string, error) {
	raw, err := f.GenerateJSON(ctx, prompt, input)
	if err != nil {
		return "", err
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s, nil
	}
	return string(raw), nil
}
