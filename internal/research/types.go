// Package research implements the deep-research engine: a web_search
// fan-out over a bounded number of result pages, each summarized by an
// LLM, plus the registry that tracks one research session per
// (connection, task number) pair.
package research

import "time"

// Options tunes a single research run.
type Options struct {
	MaxPages       int    `json:"max_pages"`
	MaxDepth       int    `json:"max_depth"`
	SearchEngine   string `json:"search_engine"`
	IncludeLinks   bool   `json:"include_links"`
	ExtractTables  bool   `json:"extract_tables"`
	ExtractImages  bool   `json:"extract_images"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// DefaultOptions mirrors the config.yaml defaults.
func DefaultOptions() Options {
	return Options{
		MaxPages:       5,
		MaxDepth:       2,
		SearchEngine:   "google",
		IncludeLinks:   true,
		ExtractTables:  true,
		ExtractImages:  false,
		TimeoutSeconds: 60,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MaxPages <= 0 {
		o.MaxPages = d.MaxPages
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = d.MaxDepth
	}
	if o.SearchEngine == "" {
		o.SearchEngine = d.SearchEngine
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = d.TimeoutSeconds
	}
	return o
}

// Result is one page's extracted, summarized content. Immutable once
// appended to a Session.
type Result struct {
	URL       string            `json:"url"`
	Title     string            `json:"title"`
	RawText   string            `json:"raw_text"`
	Summary   string            `json:"summary"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}
