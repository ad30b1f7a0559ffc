package websearch

// Result is one normalized hit from the underlying provider.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
	Date    string `json:"date,omitempty"`
}

// Analysis is the structured read of one query's results, produced by a
// completion call over the raw hits.
type Analysis struct {
	KeyInsights      []string `json:"key_insights"`
	Trends           []string `json:"trends"`
	Recommendations  []string `json:"recommendations"`
	TechnicalDetails []string `json:"technical_details"`
	MarketData       []string `json:"market_data"`
	Competitors      []string `json:"competitors"`
	Technologies     []string `json:"technologies"`
	Summary          string   `json:"summary"`
}

// Response bundles a query with its hits and analysis.
type Response struct {
	Query    string    `json:"query"`
	Results  []Result  `json:"results"`
	Analysis *Analysis `json:"analysis"`
	Err      string    `json:"error,omitempty"`
}

// Synthesis is the cross-query aggregation over a batch.
type Synthesis struct {
	Themes         []string `json:"themes"`
	Contradictions []string `json:"contradictions"`
	Confidence     string   `json:"confidence"`
	Gaps           []string `json:"gaps"`
	Conclusions    []string `json:"conclusions"`
}

// BatchResponse is what SearchMany returns: one entry per input query plus
// one synthesis over all of them.
type BatchResponse struct {
	IndividualResults []Response `json:"individual_results"`
	Synthesis         *Synthesis `json:"synthesis"`
}
