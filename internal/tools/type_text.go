package tools

import (
	"context"
	"fmt"

	"github.com/browserd/browserd/internal/browser"
	"github.com/chromedp/chromedp"
)

// TypeTextArgs are the inputs to TypeText.
type TypeTextArgs struct {
	Selector  string
	Text      string
	Clear     bool
	TimeoutMs int
}

// TypeText resolves and focuses selector the same way Click does (polling
// + scroll + point-click to focus), optionally clears its value, then
// types the given string.
func TypeText(ctx context.Context, mgr *browser.Manager, args TypeTextArgs) (TypeTextResult, error) {
	timeout := clampInteractionTimeout(args.TimeoutMs)

	err := mgr.Run(ctx, timeout, func(runCtx context.Context) error {
		if err := WaitForElement(runCtx, args.Selector, timeout); err != nil {
			return err
		}
		if err := chromedp.Run(runCtx, chromedp.ScrollIntoView(args.Selector)); err != nil {
			return fmt.Errorf("could not scroll %q into view: %w", args.Selector, err)
		}
		x, y, err := elementCenter(runCtx, args.Selector)
		if err != nil {
			return err
		}
		if err := clickPoint(runCtx, x, y); err != nil {
			return fmt.Errorf("could not focus %q: %w", args.Selector, err)
		}
		if args.Clear {
			script := fmt.Sprintf(`(() => { const el = document.querySelector(%q); if (el) el.value = ''; })()`, args.Selector)
			if err := chromedp.Run(runCtx, chromedp.Evaluate(script, nil)); err != nil {
				return fmt.Errorf("could not clear %q: %w", args.Selector, err)
			}
		}
		if err := chromedp.Run(runCtx, chromedp.SendKeys(args.Selector, args.Text)); err != nil {
			return fmt.Errorf("could not type into %q: %w", args.Selector, err)
		}
		return nil
	})
	if err != nil {
		return TypeTextResult{}, err
	}

	return TypeTextResult{Success: true, Selector: args.Selector, Message: fmt.Sprintf("typed text into %q", args.Selector)}, nil
}
