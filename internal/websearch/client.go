package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ahmadnish/lets-vibe/internal/jsonutil"
	"github.com/ahmadnish/lets-vibe/internal/llm"
	"github.com/ahmadnish/lets-vibe/internal/llmtool"
)

const (
	defaultSearchEndpoint = "https://google.serper.dev/search"
	topN                  = 5
	cacheSize             = 512
)

// unavailableHint is the summary returned in degraded mode. Tests and
// callers key off "SERPER_API_KEY" to recognize it.
const unavailableHint = "Web search unavailable: set SERPER_API_KEY to enable live research."

var analysisPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Structure raw web search hits into research findings.",
	Background: "The hits come from a general-purpose search engine; snippets are short and may overlap.",
	OutputFields: []llmtool.PromptField{
		{Name: "key_insights", Type: "[]string", Required: true},
		{Name: "trends", Type: "[]string", Required: true},
		{Name: "recommendations", Type: "[]string", Required: true},
		{Name: "technical_details", Type: "[]string", Required: true},
		{Name: "market_data", Type: "[]string", Required: true},
		{Name: "competitors", Type: "[]string", Required: true},
		{Name: "technologies", Type: "[]string", Required: true},
		{Name: "summary", Type: "string", Required: true, Description: "2-3 sentence digest of the findings."},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON(), llmtool.PresetCautious()))

var synthesisPrompt = llmtool.MustRender(llmtool.ApplyPresets(llmtool.StructuredPromptSpec{
	Purpose:    "Synthesize findings across multiple related search queries.",
	Background: "Each entry holds one query with its hits and per-query analysis; some entries may carry errors and empty results.",
	OutputFields: []llmtool.PromptField{
		{Name: "themes", Type: "[]string", Required: true, Description: "Cross-query themes."},
		{Name: "contradictions", Type: "[]string", Required: true},
		{Name: "confidence", Type: "string", Required: true, Description: "low | medium | high."},
		{Name: "gaps", Type: "[]string", Required: true, Description: "Questions the results leave open."},
		{Name: "conclusions", Type: "[]string", Required: true},
	},
	OutputFormat: "JSON only.",
	Language:     "English",
}, llmtool.PresetStrictJSON()))

// Options tune one search call. They participate in the cache key.
type Options struct {
	Country string `json:"country,omitempty"`
	Locale  string `json:"locale,omitempty"`
}

// Client wraps a Serper-style search API and a completion client that
// structures the findings. An absent SERPER_API_KEY is not an error: the
// client degrades to empty results with an explanatory analysis.
type Client struct {
	http     *http.Client
	llm      llm.Client
	apiKey   string
	endpoint string
	cache    *lru.Cache[string, Response]
}

func NewClient(llmClient llm.Client, apiKey string) *Client {
	if apiKey == "" {
		apiKey = os.Getenv("SERPER_API_KEY")
	}
	endpoint := strings.TrimSpace(os.Getenv("SERPER_ENDPOINT"))
	if endpoint == "" {
		endpoint = defaultSearchEndpoint
	}
	cache, _ := lru.New[string, Response](cacheSize)
	return &Client{
		http:     &http.Client{Timeout: 30 * time.Second},
		llm:      llmClient,
		apiKey:   strings.TrimSpace(apiKey),
		endpoint: endpoint,
		cache:    cache,
	}
}

// Available reports whether a search credential is configured.
func (c *Client) Available() bool { return c.apiKey != "" }

// Search runs one query and structures the findings. Identical query+options
// pairs within process lifetime hit the cache; there is no TTL.
func (c *Client) Search(ctx context.Context, query string, opts Options) (Response, error) {
	key := cacheKey(query, opts)
	if cached, ok := c.cache.Get(key); ok {
		return cached, nil
	}

	if !c.Available() {
		resp := Response{
			Query:   query,
			Results: []Result{},
			Analysis: &Analysis{
				KeyInsights:      []string{},
				Trends:           []string{},
				Recommendations:  []string{},
				TechnicalDetails: []string{},
				MarketData:       []string{},
				Competitors:      []string{},
				Technologies:     []string{},
				Summary:          unavailableHint,
			},
		}
		c.cache.Add(key, resp)
		return resp, nil
	}

	results, err := c.query(ctx, query, opts)
	if err != nil {
		return Response{}, err
	}
	analysis, err := c.analyze(ctx, query, results)
	if err != nil {
		return Response{}, err
	}
	resp := Response{Query: query, Results: results, Analysis: analysis}
	c.cache.Add(key, resp)
	return resp, nil
}

func (c *Client) query(ctx context.Context, query string, opts Options) ([]Result, error) {
	body := map[string]any{"q": query, "num": topN}
	if opts.Country != "" {
		body["gl"] = opts.Country
	}
	if opts.Locale != "" {
		body["hl"] = opts.Locale
	}
	b, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("websearch: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
			Link    string `json:"link"`
			Date    string `json:"date"`
		} `json:"organic"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("websearch: unparsable response: %w", err)
	}

	results := make([]Result, 0, topN)
	for _, hit := range raw.Organic {
		results = append(results, Result{Title: hit.Title, Snippet: hit.Snippet, URL: hit.Link, Date: hit.Date})
		if len(results) == topN {
			break
		}
	}
	return results, nil
}

func (c *Client) analyze(ctx context.Context, query string, results []Result) (*Analysis, error) {
	ctx = llm.WithStage(ctx, "search-analysis")
	raw, err := c.llm.GenerateJSON(ctx, analysisPrompt, map[string]any{
		"query":   query,
		"results": results,
	})
	if err != nil {
		return nil, err
	}
	var out Analysis
	if err := jsonutil.UnmarshalRaw(raw, &out); err != nil {
		return nil, fmt.Errorf("websearch: invalid analysis: %w", err)
	}
	return &out, nil
}

func cacheKey(query string, opts Options) string {
	b, _ := json.Marshal(opts)
	return query + "|" + string(b)
}
