package tools

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/logging"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	// MaxResults caps the number of search results returned.
	MaxResults = 10
	// MaxRetries bounds backoff retries on extraction failure.
	MaxRetries = 3
)

// WebSearch drives a search-engine results page via the shared browser
// and extracts an ordered {title, url, snippet} list, retrying with
// backoff up to MaxRetries times if the results page fails to parse.
func WebSearch(ctx context.Context, mgr *browser.Manager, log *logging.Logger, engine, query string) ([]SearchResult, error) {
	searchURL := buildSearchURL(engine, query)

	var lastErr error
	backoff := 500 * time.Millisecond
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			log.Warn("retrying web search", zap.String("query", query), zap.Int("attempt", attempt))
			timer := time.NewTimer(backoff)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
			backoff *= 2
		}

		if _, err := Navigate(ctx, mgr, NavigateArgs{URL: searchURL, TimeoutMs: int(NavigationTimeoutDefault / time.Millisecond)}); err != nil {
			lastErr = err
			continue
		}

		results, err := extractSearchResults(ctx, mgr, engine)
		if err != nil {
			lastErr = err
			continue
		}
		if len(results) > MaxResults {
			results = results[:MaxResults]
		}
		return results, nil
	}

	return nil, fmt.Errorf("web_search for %q failed after %d attempts: %w", query, MaxRetries+1, lastErr)
}

func buildSearchURL(engine, query string) string {
	q := url.QueryEscape(query)
	if engine == "duckduckgo" {
		return fmt.Sprintf("https://duckduckgo.com/html/?q=%s", q)
	}
	return fmt.Sprintf("https://www.google.com/search?q=%s", q)
}

func extractSearchResults(ctx context.Context, mgr *browser.Manager, engine string) ([]SearchResult, error) {
	selector := "div.g a"
	itemScript := `Array.from(document.querySelectorAll('div.g')).map(g => {
		const a = g.querySelector('a');
		const h3 = g.querySelector('h3');
		const snippet = g.querySelector('div[data-sncf], .VwiC3b');
		return {title: h3 ? h3.innerText : '', url: a ? a.href : '', snippet: snippet ? snippet.innerText : ''};
	}).filter(r => r.url)`
	if engine == "duckduckgo" {
		selector = "div.result"
		itemScript = `Array.from(document.querySelectorAll('div.result')).map(g => {
			const a = g.querySelector('a.result__a');
			const snippet = g.querySelector('.result__snippet');
			return {title: a ? a.innerText : '', url: a ? a.href : '', snippet: snippet ? snippet.innerText : ''};
		}).filter(r => r.url)`
	}

	var results []SearchResult
	err := mgr.Run(ctx, InteractionTimeoutDefault, func(runCtx context.Context) error {
		if err := WaitForElement(runCtx, selector, InteractionTimeoutDefault); err != nil {
			return fmt.Errorf("search results page for selector %q did not render: %w", selector, err)
		}
		return chromedp.Run(runCtx, chromedp.Evaluate(itemScript, &results))
	})
	if err != nil {
		return nil, fmt.Errorf("could not extract search results: %w", err)
	}
	return results, nil
}
