package tools

import (
	"context"
	"fmt"

	"github.com/browserd/browserd/internal/browser"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/chromedp"
)

// ClickArgs are the inputs to Click.
type ClickArgs struct {
	Selector          string
	TimeoutMs         int
	WaitForNavigation bool
}

// Click resolves selector with exponential-backoff polling, scrolls it
// into view, resolves a clickable point, and clicks that point directly
// via CDP input events rather than calling element.click(). The two-step
// "point then click" is deliberate: element.click() hangs on pages that
// intersect-observe their own clickable elements.
func Click(ctx context.Context, mgr *browser.Manager, args ClickArgs) (ClickResult, error) {
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
			return fmt.Errorf("click on %q failed: %w", args.Selector, err)
		}

		if args.WaitForNavigation {
			return chromedp.Run(runCtx, chromedp.WaitReady("body"))
		}
		return nil
	})
	if err != nil {
		return ClickResult{}, err
	}

	return ClickResult{Success: true, Selector: args.Selector, Message: fmt.Sprintf("clicked %q", args.Selector)}, nil
}

// elementCenter returns the viewport-relative center point of selector's
// bounding rect, computed in-page so it accounts for current scroll.
func elementCenter(ctx context.Context, selector string) (float64, float64, error) {
	var point struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
	}
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return null;
		const r = el.getBoundingClientRect();
		return {x: r.left + r.width / 2, y: r.top + r.height / 2};
	})()`, selector)
	if err := chromedp.Run(ctx, chromedp.Evaluate(script, &point)); err != nil {
		return 0, 0, fmt.Errorf("could not resolve a clickable point for %q: %w", selector, err)
	}
	return point.X, point.Y, nil
}

// clickPoint dispatches a synthetic mouse press+release at (x, y),
// bypassing any JS click handler (and any IntersectionObserver gating it).
func clickPoint(ctx context.Context, x, y float64) error {
	return chromedp.Run(ctx,
		input.DispatchMouseEvent(input.MousePressed, x, y).WithButton(input.Left).WithClickCount(1),
		input.DispatchMouseEvent(input.MouseReleased, x, y).WithButton(input.Left).WithClickCount(1),
	)
}
