package research

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/llm"
	"github.com/browserd/browserd/internal/logging"
	"github.com/browserd/browserd/internal/tools"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// maxConcurrentPages bounds how many dedicated page contexts (each its
// own CDP target via browser.Manager.NewPage, never the shared single
// current page interactive tool calls operate on) are open against the
// browser's one allocator at once.
const maxConcurrentPages = 3

const summarizeTruncateScalars = 8000

const summarizeSystemPrompt = "You are an AI research assistant. Summarize the " +
	"following page content accurately, concisely, and factually. Do not " +
	"invent facts not present in the content."

// ResultSink receives completed page results as they finish, so a running
// session's result list grows incrementally rather than all at once.
type ResultSink func(Result)

// Engine drives one web_search → fan-out-extract → summarize pipeline.
// Temperature and MaxTokens are captured once at construction and apply
// to every summarization call an Engine makes.
type Engine struct {
	browser     *browser.Manager
	llmClient   llm.Client
	log         *logging.Logger
	temperature float64
	maxTokens   int
}

// NewEngine builds a research engine bound to the shared browser and an
// LLM client used for per-page summarization.
func NewEngine(mgr *browser.Manager, llmClient llm.Client, log *logging.Logger, temperature float64, maxTokens int) *Engine {
	return &Engine{
		browser:     mgr,
		llmClient:   llmClient,
		log:         log,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// Run performs one research pass: search, then fan out over the top
// MaxPages results with a concurrency ceiling of maxConcurrentPages,
// calling sink for each page as it finishes. Per-page failures are
// logged and skipped; Run itself only returns an error for search
// failure, since that leaves nothing to fan out over.
func (e *Engine) Run(ctx context.Context, query string, opts Options, sink ResultSink) error {
	searchResults, err := tools.WebSearch(ctx, e.browser, e.log, opts.SearchEngine, query)
	if err != nil {
		return fmt.Errorf("research query %q: web search failed: %w", query, err)
	}

	if len(searchResults) > opts.MaxPages {
		searchResults = searchResults[:opts.MaxPages]
	}

	sem := semaphore.NewWeighted(int64(maxConcurrentPages))
	var visited sync.Map
	var wg sync.WaitGroup

	for _, sr := range searchResults {
		url := sr.URL
		if _, dup := visited.LoadOrStore(url, true); dup {
			continue
		}

		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}

		wg.Add(1)
		go func(url string) {
			defer wg.Done()
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					e.log.Error("research subtask panicked", zap.String("url", url), zap.Any("panic", r))
				}
			}()

			result, err := e.processPage(ctx, url)
			if err != nil {
				e.log.Warn("research page failed, continuing", zap.String("url", url), zap.Error(err))
				return
			}
			sink(result)
		}(url)
	}

	wg.Wait()
	return nil
}

// processPage opens a page context dedicated to url — never the shared
// single current page interactive tool calls operate on — so concurrent
// workers can never cross-contaminate each other's navigation mid-extraction.
func (e *Engine) processPage(ctx context.Context, url string) (Result, error) {
	pageCtx, cancel, err := e.browser.NewPage(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("open dedicated page: %w", err)
	}
	defer cancel()

	if _, err := tools.NavigateDedicatedPage(ctx, pageCtx, tools.NavigateArgs{URL: url}); err != nil {
		return Result{}, fmt.Errorf("navigate: %w", err)
	}

	title, metadata, err := e.extractPageInfo(pageCtx)
	if err != nil {
		return Result{}, fmt.Errorf("extract page info: %w", err)
	}

	extracted, err := tools.ExtractTextDedicatedPage(ctx, pageCtx, tools.ExtractTextArgs{})
	if err != nil {
		return Result{}, fmt.Errorf("extract text: %w", err)
	}

	summary, err := e.summarize(ctx, truncateScalars(extracted.Text, summarizeTruncateScalars))
	if err != nil {
		return Result{}, fmt.Errorf("summarize: %w", err)
	}

	return Result{
		URL:       url,
		Title:     title,
		RawText:   extracted.Text,
		Summary:   summary,
		Timestamp: time.Now(),
		Metadata:  metadata,
	}, nil
}

// extractPageInfo runs the title and meta-description evals concurrently
// via errgroup, since they're independent round trips to the same
// caller-owned page context.
func (e *Engine) extractPageInfo(pageCtx context.Context) (string, map[string]string, error) {
	var title, description string

	runCtx, cancel := context.WithTimeout(pageCtx, tools.InteractionTimeoutDefault)
	defer cancel()

	g, gCtx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		return chromedp.Run(gCtx, chromedp.Evaluate(`document.title`, &title))
	})
	g.Go(func() error {
		return chromedp.Run(gCtx, chromedp.Evaluate(`(() => { const m = document.querySelector('meta[name="description"]'); return m ? m.content : ''; })()`, &description))
	})
	if err := g.Wait(); err != nil {
		return "", nil, err
	}

	metadata := map[string]string{}
	if description != "" {
		metadata["description"] = description
	}
	return title, metadata, nil
}

func (e *Engine) summarize(ctx context.Context, content string) (string, error) {
	req := llm.Request{
		System:      summarizeSystemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: content}},
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	}
	ch, err := e.llmClient.Stream(ctx, req)
	if err != nil {
		return "", err
	}
	return llm.CollectStream(ctx, ch)
}

// truncateScalars truncates by Unicode scalar count, not bytes, so a
// multi-byte rune never gets split at the boundary.
func truncateScalars(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
