// Package tools implements the stateless page-operation adapters
// (navigate, click, type_text, scroll, screenshot, extract_text,
// web_search) and the element-polling wait utility they share.
package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

const (
	// InteractionTimeoutDefault bounds click/type_text/scroll polling.
	InteractionTimeoutDefault = 5 * time.Second
	// InteractionTimeoutMax is the hard cap on interaction timeouts.
	InteractionTimeoutMax = 30 * time.Second
	// NavigationTimeoutDefault bounds navigate / wait-for-selector.
	NavigationTimeoutDefault = 30 * time.Second
	// NavigationTimeoutMax is the hard cap on navigation timeouts.
	NavigationTimeoutMax = 5 * time.Minute

	waitPollStart = 100 * time.Millisecond
	waitPollCap   = 1 * time.Second
)

// WaitForElement polls for selector's presence in the DOM, doubling the
// poll interval from 100ms up to a 1s cap, until deadline elapses.
func WaitForElement(ctx context.Context, selector string, deadline time.Duration) error {
	waitCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	interval := waitPollStart
	for {
		var count int
		err := chromedp.Run(waitCtx, chromedp.Evaluate(
			fmt.Sprintf(`document.querySelectorAll(%q).length`, selector), &count))
		if err == nil && count > 0 {
			return nil
		}

		timer := time.NewTimer(interval)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			return fmt.Errorf(
				"element %q did not appear within %s: verify the selector in dev tools; ensure the page has finished loading; increase the timeout if the content loads slowly",
				selector, deadline)
		case <-timer.C:
		}

		interval *= 2
		if interval > waitPollCap {
			interval = waitPollCap
		}
	}
}

// clampInteractionTimeout applies the default/max interaction timeout bounds.
func clampInteractionTimeout(ms int) time.Duration {
	if ms <= 0 {
		return InteractionTimeoutDefault
	}
	d := time.Duration(ms) * time.Millisecond
	if d > InteractionTimeoutMax {
		return InteractionTimeoutMax
	}
	return d
}

// clampNavigationTimeout applies the default/max navigation timeout bounds.
func clampNavigationTimeout(ms int) time.Duration {
	if ms <= 0 {
		return NavigationTimeoutDefault
	}
	d := time.Duration(ms) * time.Millisecond
	if d > NavigationTimeoutMax {
		return NavigationTimeoutMax
	}
	return d
}
