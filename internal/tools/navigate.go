package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/browserd/browserd/internal/browser"
	"github.com/chromedp/chromedp"
)

// NavigateArgs are the inputs to Navigate.
type NavigateArgs struct {
	URL             string
	WaitForSelector string
	TimeoutMs       int
}

// Navigate enforces the single-tab invariant: it launches the shared
// browser on first use, resets it to a fresh page — closing every
// existing target, since a closed CDP target cannot be reused for a
// subsequent navigation — then navigates that new page to URL, awaits
// navigation completion, and optionally awaits a selector afterward.
func Navigate(ctx context.Context, mgr *browser.Manager, args NavigateArgs) (NavigateResult, error) {
	if !strings.HasPrefix(args.URL, "http://") && !strings.HasPrefix(args.URL, "https://") {
		return NavigateResult{}, browser.ErrInvalidScheme
	}

	timeout := clampNavigationTimeout(args.TimeoutMs)

	if _, err := mgr.GetOrLaunch(ctx); err != nil {
		return NavigateResult{}, err
	}
	if _, err := mgr.ResetPage(ctx); err != nil {
		return NavigateResult{}, err
	}

	var finalURL string
	err := mgr.Run(ctx, timeout, func(runCtx context.Context) error {
		return navigateSteps(runCtx, args, timeout, &finalURL)
	})
	if err != nil {
		return NavigateResult{}, err
	}

	return NavigateResult{
		Success:      true,
		URL:          finalURL,
		RequestedURL: args.URL,
		Redirected:   finalURL != args.URL,
		TimeoutMs:    int(timeout / time.Millisecond),
		Message:      fmt.Sprintf("navigated to %s", finalURL),
	}, nil
}

// NavigateDedicatedPage runs the same navigate/wait/location sequence as
// Navigate, but against a caller-owned page context (see
// browser.Manager.NewPage) instead of the shared browser's single current
// page. Used by the research engine's concurrent per-URL workers, each of
// which owns its own target rather than contending for the one tab
// interactive tool calls operate on.
func NavigateDedicatedPage(ctx context.Context, pageCtx context.Context, args NavigateArgs) (NavigateResult, error) {
	if !strings.HasPrefix(args.URL, "http://") && !strings.HasPrefix(args.URL, "https://") {
		return NavigateResult{}, browser.ErrInvalidScheme
	}

	timeout := clampNavigationTimeout(args.TimeoutMs)
	runCtx, cancel := context.WithTimeout(pageCtx, timeout)
	defer cancel()

	var finalURL string
	if err := navigateSteps(runCtx, args, timeout, &finalURL); err != nil {
		return NavigateResult{}, err
	}

	return NavigateResult{
		Success:      true,
		URL:          finalURL,
		RequestedURL: args.URL,
		Redirected:   finalURL != args.URL,
		TimeoutMs:    int(timeout / time.Millisecond),
		Message:      fmt.Sprintf("navigated to %s", finalURL),
	}, nil
}

// navigateSteps runs the navigate/wait-for-selector/location sequence
// against an already-resolved page context.
func navigateSteps(runCtx context.Context, args NavigateArgs, timeout time.Duration, finalURL *string) error {
	if err := chromedp.Run(runCtx, chromedp.Navigate(args.URL)); err != nil {
		return fmt.Errorf("navigation to %q failed: %w", args.URL, err)
	}
	if args.WaitForSelector != "" {
		if err := WaitForElement(runCtx, args.WaitForSelector, timeout); err != nil {
			return err
		}
	}
	return chromedp.Run(runCtx, chromedp.Location(finalURL))
}
