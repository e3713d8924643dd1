package tools

import (
	"context"
	"fmt"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/browserd/browserd/internal/browser"
	"github.com/chromedp/chromedp"
)

// ExtractTextArgs are the inputs to ExtractText.
type ExtractTextArgs struct {
	Selector string
}

// ExtractText returns innerText of the selector (or document.body when
// none is given). If body innerText comes back empty — an SPA that has
// not yet populated it — this falls back to fetching the full rendered
// HTML and converting it to markdown, the canonical SPA-safe path.
func ExtractText(ctx context.Context, mgr *browser.Manager, args ExtractTextArgs) (ExtractTextResult, error) {
	var result ExtractTextResult
	err := mgr.Run(ctx, InteractionTimeoutDefault, func(runCtx context.Context) error {
		r, err := extractTextSteps(runCtx, args.Selector)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return ExtractTextResult{}, err
	}
	return result, nil
}

// ExtractTextDedicatedPage is ExtractText against a caller-owned page
// context (see browser.Manager.NewPage) instead of the shared browser's
// single current page. Used by the research engine's concurrent per-URL
// workers.
func ExtractTextDedicatedPage(ctx context.Context, pageCtx context.Context, args ExtractTextArgs) (ExtractTextResult, error) {
	runCtx, cancel := context.WithTimeout(pageCtx, InteractionTimeoutDefault)
	defer cancel()
	return extractTextSteps(runCtx, args.Selector)
}

// extractTextSteps runs the innerText-then-markdown-fallback sequence
// against an already-resolved page context.
func extractTextSteps(runCtx context.Context, selector string) (ExtractTextResult, error) {
	target := selector
	if target == "" {
		target = "body"
	}

	var innerText string
	script := fmt.Sprintf(`(() => { const el = document.querySelector(%q); return el ? el.innerText : ''; })()`, target)
	if err := chromedp.Run(runCtx, chromedp.Evaluate(script, &innerText)); err != nil {
		return ExtractTextResult{}, fmt.Errorf("could not extract text from %q: %w", target, err)
	}

	if innerText != "" {
		return ExtractTextResult{
			Success:  true,
			Text:     innerText,
			Length:   len(innerText),
			Selector: selector,
			Source:   "inner_text",
			Message:  "extracted innerText",
		}, nil
	}

	// innerText fallback: empty means the SPA hasn't hydrated this node
	// yet by innerText's rules (e.g. it's display:none or script-only
	// content) — fetch the raw rendered HTML and convert it instead.
	var html string
	var err error
	if selector != "" {
		err = chromedp.Run(runCtx, chromedp.OuterHTML(selector, &html))
	} else {
		err = chromedp.Run(runCtx, chromedp.OuterHTML("html", &html))
	}
	if err != nil {
		return ExtractTextResult{}, fmt.Errorf("could not extract HTML from %q: %w", target, err)
	}

	converter := md.NewConverter("", true, nil)
	markdown, err := converter.ConvertString(html)
	if err != nil {
		return ExtractTextResult{}, fmt.Errorf("could not convert HTML to markdown for %q: %w", target, err)
	}

	return ExtractTextResult{
		Success:  true,
		Text:     markdown,
		Length:   len(markdown),
		Selector: selector,
		Source:   "html_fallback",
		Message:  "innerText was empty; converted rendered HTML to markdown",
	}, nil
}
