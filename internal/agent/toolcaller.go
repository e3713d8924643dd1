package agent

import (
	"context"
	"strconv"

	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/logging"
	"github.com/browserd/browserd/internal/tools"
)

// ToolCaller dispatches one action's translated tool call and returns its
// result. Some browser-automation agent designs route this as a loopback
// HTTP round trip back through the server's own MCP endpoint; here it is
// an in-process call straight into internal/tools against the same
// shared browser instead — same concurrency discipline and error model,
// one fewer serialization hop.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]string) ActionResult
}

// BrowserToolCaller is the concrete ToolCaller backing a live browser.
type BrowserToolCaller struct {
	Browser *browser.Manager
	Log     *logging.Logger
}

func (c *BrowserToolCaller) CallTool(ctx context.Context, name string, args map[string]string) ActionResult {
	switch name {
	case "browser_navigate":
		timeoutMs, _ := strconv.Atoi(args["timeout_ms"])
		res, err := tools.Navigate(ctx, c.Browser, tools.NavigateArgs{
			URL:       args["url"],
			TimeoutMs: timeoutMs,
		})
		if err != nil {
			return ActionResult{Error: err.Error()}
		}
		return ActionResult{Success: res.Success, ExtractedContent: res.Message}

	case "browser_click":
		timeoutMs, _ := strconv.Atoi(args["timeout_ms"])
		res, err := tools.Click(ctx, c.Browser, tools.ClickArgs{
			Selector:  args["selector"],
			TimeoutMs: timeoutMs,
		})
		if err != nil {
			return ActionResult{Error: err.Error()}
		}
		return ActionResult{Success: res.Success, ExtractedContent: res.Message}

	case "browser_type_text":
		clear := args["clear"] == "true"
		res, err := tools.TypeText(ctx, c.Browser, tools.TypeTextArgs{
			Selector: args["selector"],
			Text:     args["text"],
			Clear:    clear,
		})
		if err != nil {
			return ActionResult{Error: err.Error()}
		}
		return ActionResult{Success: res.Success, ExtractedContent: res.Message}

	case "browser_scroll":
		x, _ := strconv.Atoi(args["x"])
		y, _ := strconv.Atoi(args["y"])
		res, err := tools.Scroll(ctx, c.Browser, c.Log, tools.ScrollArgs{X: x, Y: y})
		if err != nil {
			return ActionResult{Error: err.Error()}
		}
		return ActionResult{Success: res.Success, ExtractedContent: res.Message}

	case "browser_extract_text":
		res, err := tools.ExtractText(ctx, c.Browser, tools.ExtractTextArgs{})
		if err != nil {
			return ActionResult{Error: err.Error()}
		}
		return ActionResult{Success: res.Success, ExtractedContent: res.Text}

	default:
		return ActionResult{Error: "unknown tool: " + name}
	}
}
