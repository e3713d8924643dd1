package tools

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/browserd/browserd/internal/browser"
	"github.com/chromedp/chromedp"
)

// ScreenshotArgs are the inputs to Screenshot.
type ScreenshotArgs struct {
	Selector string
	Format   string // "png" (default) or "jpeg"
}

// Screenshot captures the full page or a single element, encoded as
// base64 PNG (default) or JPEG.
func Screenshot(ctx context.Context, mgr *browser.Manager, args ScreenshotArgs) (ScreenshotResult, error) {
	format := args.Format
	if format == "" {
		format = "png"
	}

	var buf []byte
	err := mgr.Run(ctx, InteractionTimeoutDefault, func(runCtx context.Context) error {
		var action chromedp.Action
		switch {
		case args.Selector != "":
			if err := WaitForElement(runCtx, args.Selector, InteractionTimeoutDefault); err != nil {
				return err
			}
			// Element captures are always PNG; CDP has no per-node JPEG
			// encode path, so format only affects full-page captures.
			action = chromedp.Screenshot(args.Selector, &buf, chromedp.NodeVisible)
			format = "png"
		default:
			// FullScreenshot encodes PNG at quality 100 and JPEG at any
			// lower quality.
			quality := 100
			if format == "jpeg" {
				quality = 90
			} else {
				format = "png"
			}
			action = chromedp.FullScreenshot(&buf, quality)
		}
		if err := chromedp.Run(runCtx, action); err != nil {
			return fmt.Errorf("screenshot failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return ScreenshotResult{}, err
	}

	return ScreenshotResult{
		Success:   true,
		Image:     base64.StdEncoding.EncodeToString(buf),
		Format:    format,
		SizeBytes: len(buf),
		Message:   "screenshot captured",
	}, nil
}
