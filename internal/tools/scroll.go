package tools

import (
	"context"
	"fmt"

	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/logging"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// ScrollArgs are the inputs to Scroll. Either Selector is set (scroll the
// element into view) or X/Y are set (programmatic window.scrollBy).
type ScrollArgs struct {
	Selector string
	X        int
	Y        int
}

const scrollClamp = 10000

// Scroll either scrolls a selector into view, or performs a programmatic
// window.scrollBy(x, y) with both coordinates clamped to ±10,000px.
// Out-of-range values are clamped and warned about, not rejected.
func Scroll(ctx context.Context, mgr *browser.Manager, log *logging.Logger, args ScrollArgs) (ScrollResult, error) {
	if args.Selector != "" {
		err := mgr.Run(ctx, InteractionTimeoutDefault, func(runCtx context.Context) error {
			if err := WaitForElement(runCtx, args.Selector, InteractionTimeoutDefault); err != nil {
				return err
			}
			return chromedp.Run(runCtx, chromedp.ScrollIntoView(args.Selector))
		})
		if err != nil {
			return ScrollResult{}, err
		}
		return ScrollResult{Success: true, Message: fmt.Sprintf("scrolled %q into view", args.Selector)}, nil
	}

	x, y := clampScroll(log, "x", args.X), clampScroll(log, "y", args.Y)
	script := fmt.Sprintf(`window.scrollBy(%d, %d)`, x, y)
	err := mgr.Run(ctx, InteractionTimeoutDefault, func(runCtx context.Context) error {
		return chromedp.Run(runCtx, chromedp.Evaluate(script, nil))
	})
	if err != nil {
		return ScrollResult{}, err
	}
	return ScrollResult{Success: true, X: x, Y: y, Message: fmt.Sprintf("scrolled by (%d, %d)", x, y)}, nil
}

func clampScroll(log *logging.Logger, axis string, v int) int {
	if v > scrollClamp {
		log.Warn("scroll amount clamped", zap.String("axis", axis), zap.Int("requested", v), zap.Int("clamped", scrollClamp))
		return scrollClamp
	}
	if v < -scrollClamp {
		log.Warn("scroll amount clamped", zap.String("axis", axis), zap.Int("requested", v), zap.Int("clamped", -scrollClamp))
		return -scrollClamp
	}
	return v
}
