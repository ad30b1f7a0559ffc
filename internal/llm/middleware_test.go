package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ahmadnish/lets-vibe/internal/tester"
)

// flakyClient fails the first failures calls, then succeeds.
type flakyClient struct {
	failures int
	calls    int
	err      error
}

func (f *flakyClient) Name() string { return "flaky" }
func (f *flakyClient) Close() error { return nil }

func (f *flakyClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, f.err
	}
	return json.RawMessage(`{}`), nil
}

func (f *flakyClient) GenerateText(ctx context.Context, prompt string, input any) (string, error) {
	raw, err := f.GenerateJSON(ctx, prompt, input)
	return string(raw), err
}

func TestStageTag_RoundTrip(t *testing.T) {
	ctx := WithStage(context.Background(), "interpret")
	tester.Eq(t, StageFrom(ctx), "interpret")
	tester.Eq(t, StageFrom(context.Background()), "unknown")
}

func TestWrap_Order(t *testing.T) {
	fake := NewFakeClient()
	var order []string
	tag := func(name string) Middleware {
		return func(next Client) Client {
			return &tagged{next: next, name: name, order: &order}
		}
	}
	cli := Wrap(fake, tag("outer"), tag("inner"))
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, order, []string{"outer", "inner"})
}

type tagged struct {
	next  Client
	name  string
	order *[]string
}

func (c *tagged) Name() string { return c.next.Name() }
func (c *tagged) Close() error { return c.next.Close() }
func (c *tagged) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	*c.order = append(*c.order, c.name)
	return c.next.GenerateJSON(ctx, prompt, input)
}
func (c *tagged) GenerateText(ctx context.Context, prompt string, input any) (string, error) {
	*c.order = append(*c.order, c.name)
	return c.next.GenerateText(ctx, prompt, input)
}

func TestRetry_RecoversFromTransientError(t *testing.T) {
	inner := &flakyClient{failures: 2, err: fmt.Errorf("upstream hiccup")}
	cli := Wrap(inner, Retry(3, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.NoErr(t, err)
	tester.Eq(t, inner.calls, 3)
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	inner := &flakyClient{failures: 10, err: fmt.Errorf("upstream down")}
	cli := Wrap(inner, Retry(2, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	tester.ErrContains(t, err, "upstream down")
	tester.Eq(t, inner.calls, 2)
}

func TestRetry_StopsOnPermanentError(t *testing.T) {
	inner := &flakyClient{failures: 10, err: NewPermanentError(&UpstreamError{Provider: "openai", Status: 400})}
	cli := Wrap(inner, Retry(5, time.Millisecond))
	_, err := cli.GenerateJSON(context.Background(), "p", nil)
	var pErr *PermanentError
	tester.True(t, errors.As(err, &pErr), "expected permanent error")
	tester.Eq(t, inner.calls, 1)
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	fake := NewFakeClient().Respond("", map[string]string{"ok": "yes"})
	cli := Wrap(fake, RateLimit(0, 0))
	t.Cleanup(func() { _ = cli.Close() })

	start := time.Now()
	for i := 0; i < 10; i++ {
		_, err := cli.GenerateJSON(context.Background(), "p", nil)
		tester.NoErr(t, err)
	}
	tester.True(t, time.Since(start) < time.Second, "disabled limiter must not delay")
}

func TestFakeClient_StageRouting(t *testing.T) {
	fake := NewFakeClient().
		Respond("interpret", map[string]string{"title": "X"}).
		Respond("", map[string]string{"fallback": "true"})

	raw, err := fake.GenerateJSON(WithStage(context.Background(), "interpret"), "p", nil)
	tester.NoErr(t, err)
	var out map[string]string
	tester.NoErr(t, json.Unmarshal(raw, &out))
	tester.Eq(t, out["title"], "X")

	raw, err = fake.GenerateJSON(WithStage(context.Background(), "other"), "p", nil)
	tester.NoErr(t, err)
	tester.NoErr(t, json.Unmarshal(raw, &out))
	tester.Eq(t, out["fallback"], "true")

	tester.Eq(t, fake.Calls, []string{"interpret", "other"})
}

func TestConfigurationError_Message(t *testing.T) {
	err := &ConfigurationError{Key: "OPENAI_API_KEY"}
	tester.ErrContains(t, err, "OPENAI_API_KEY")
}
