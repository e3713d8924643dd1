package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/browserd/browserd/internal/agent"
	"github.com/browserd/browserd/internal/connection"
	"github.com/browserd/browserd/internal/logging"
	"github.com/browserd/browserd/internal/research"
	"github.com/browserd/browserd/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

func registerTools(s *server.MCPServer, deps Deps, log *logging.Logger) {
	s.AddTool(
		mcp.NewTool("browser_navigate",
			mcp.WithDescription("Navigate the shared browser to a URL. Closes any other open tabs first, enforcing a single-tab session."),
			mcp.WithString("url", mcp.Required(), mcp.Description("The http:// or https:// URL to navigate to")),
			mcp.WithString("wait_for_selector", mcp.Description("Optional CSS selector to wait for after navigation completes")),
			mcp.WithNumber("timeout_ms", mcp.Description("Navigation timeout in milliseconds (default 30000, max 300000)")),
		),
		navigateHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("browser_click",
			mcp.WithDescription("Click an element, resolving its clickable point and dispatching a native click instead of relying on element.click()."),
			mcp.WithString("selector", mcp.Required(), mcp.Description("CSS selector of the element to click")),
			mcp.WithNumber("timeout_ms", mcp.Description("Interaction timeout in milliseconds (default 5000, max 30000)")),
			mcp.WithBoolean("wait_for_navigation", mcp.Description("Wait for the document to finish loading after the click")),
		),
		clickHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("browser_type_text",
			mcp.WithDescription("Focus an element by clicking its resolved point, then type text into it."),
			mcp.WithString("selector", mcp.Required(), mcp.Description("CSS selector of the element to type into")),
			mcp.WithString("text", mcp.Required(), mcp.Description("Text to type")),
			mcp.WithBoolean("clear", mcp.Description("Clear the field's existing value before typing")),
			mcp.WithNumber("timeout_ms", mcp.Description("Interaction timeout in milliseconds (default 5000, max 30000)")),
		),
		typeTextHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("browser_scroll",
			mcp.WithDescription("Scroll a selector into view, or scroll the window by (x, y), clamped to ±10000px."),
			mcp.WithString("selector", mcp.Description("CSS selector to scroll into view")),
			mcp.WithNumber("x", mcp.Description("Horizontal scroll offset, used when selector is omitted")),
			mcp.WithNumber("y", mcp.Description("Vertical scroll offset, used when selector is omitted")),
		),
		scrollHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("browser_screenshot",
			mcp.WithDescription("Capture a screenshot of the full page or a single element, base64-encoded."),
			mcp.WithString("selector", mcp.Description("CSS selector to screenshot; omit for full page")),
			mcp.WithString("format", mcp.Description("png (default) or jpeg")),
		),
		screenshotHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("browser_extract_text",
			mcp.WithDescription("Extract visible text from a selector (or the whole page). Falls back to HTML-to-markdown conversion when innerText is empty."),
			mcp.WithString("selector", mcp.Description("CSS selector to extract from; omit for document.body")),
		),
		extractTextHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("web_search",
			mcp.WithDescription("Run a web search against the configured search engine and return an ordered list of results."),
			mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
		),
		webSearchHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("browser_research",
			mcp.WithDescription(
				"Run or inspect a deep-research session: searches the web, opens the top results "+
					"concurrently, and summarizes each page with an LLM. action is one of EXEC, READ, LIST, KILL.",
			),
			mcp.WithString("action", mcp.Required(), mcp.Description("EXEC, READ, LIST, or KILL")),
			mcp.WithNumber("session", mcp.Description("Client-chosen session number; required for EXEC/READ/KILL")),
			mcp.WithString("query", mcp.Description("The research query; required for EXEC")),
			mcp.WithObject("options", mcp.Description("Optional ResearchOptions overrides (max_pages, max_depth, search_engine, timeout_seconds, ...)")),
		),
		researchHandler(deps, log),
	)

	s.AddTool(
		mcp.NewTool("browser_agent",
			mcp.WithDescription(
				"Run or inspect an autonomous browser agent: an LLM-driven perceive-decide-act loop "+
					"that drives the shared browser toward a stated task. action is one of EXEC, READ, LIST, KILL.",
			),
			mcp.WithString("action", mcp.Required(), mcp.Description("EXEC, READ, LIST, or KILL")),
			mcp.WithNumber("number", mcp.Description("Client-chosen task number; required for EXEC/READ/KILL")),
			mcp.WithString("task", mcp.Description("The task for the agent to accomplish; required for EXEC")),
			mcp.WithString("start_url", mcp.Description("Optional URL navigated before the agent starts")),
			mcp.WithNumber("max_steps", mcp.Description("Maximum steps the run may take (default 10)")),
			mcp.WithNumber("temperature", mcp.Description("LLM sampling temperature (default 0.7)")),
			mcp.WithNumber("max_tokens", mcp.Description("LLM max tokens per call (default 2048)")),
			mcp.WithNumber("max_actions_per_step", mcp.Description("Cap on actions executed per step (default 5)")),
			mcp.WithNumber("vision_timeout_secs", mcp.Description("Vision-describe deadline in seconds (default 30)")),
			mcp.WithNumber("llm_timeout_secs", mcp.Description("Decide-step deadline in seconds (default 120)")),
			mcp.WithString("additional_info", mcp.Description("Extra context appended to every decide-step prompt")),
		),
		agentHandler(deps, log),
	)

	log.Info("registered MCP tools", zap.Int("count", 9))
}

func navigateHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		url, err := req.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := tools.Navigate(ctx, deps.Browser, tools.NavigateArgs{
			URL:             url,
			WaitForSelector: req.GetString("wait_for_selector", ""),
			TimeoutMs:       int(req.GetFloat("timeout_ms", 0)),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func clickHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		selector, err := req.RequireString("selector")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := tools.Click(ctx, deps.Browser, tools.ClickArgs{
			Selector:          selector,
			TimeoutMs:         int(req.GetFloat("timeout_ms", 0)),
			WaitForNavigation: req.GetBool("wait_for_navigation", false),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func typeTextHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		selector, err := req.RequireString("selector")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		text, err := req.RequireString("text")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result, err := tools.TypeText(ctx, deps.Browser, tools.TypeTextArgs{
			Selector:  selector,
			Text:      text,
			Clear:     req.GetBool("clear", false),
			TimeoutMs: int(req.GetFloat("timeout_ms", 0)),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func scrollHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := tools.Scroll(ctx, deps.Browser, log, tools.ScrollArgs{
			Selector: req.GetString("selector", ""),
			X:        int(req.GetFloat("x", 0)),
			Y:        int(req.GetFloat("y", 0)),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func screenshotHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := tools.Screenshot(ctx, deps.Browser, tools.ScreenshotArgs{
			Selector: req.GetString("selector", ""),
			Format:   req.GetString("format", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func extractTextHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		result, err := tools.ExtractText(ctx, deps.Browser, tools.ExtractTextArgs{
			Selector: req.GetString("selector", ""),
		})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(result)
	}
}

func webSearchHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		engine := deps.Config.SearchEngine
		results, err := tools.WebSearch(ctx, deps.Browser, log, engine, query)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return jsonResult(results)
	}
}

func researchHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := connection.FromContext(ctx)
		if info.ConnID == "" {
			return mcp.NewToolResultError("missing " + connection.HeaderConnectionID + " header: this tool requires a registry key"), nil
		}

		action, err := req.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		switch action {
		case "EXEC":
			query, err := req.RequireString("query")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			number := uint32(req.GetFloat("session", 0))
			key := connection.Key{ConnID: info.ConnID, Number: number}

			opts := research.DefaultOptions()
			if raw, ok := req.GetArguments()["options"]; ok {
				applyResearchOptions(raw, &opts)
			}

			session := deps.ResearchReg.FindOrCreate(key, query, opts)
			deps.ResearchReg.Start(ctx, key)
			results, completed, sessionErr := session.Snapshot()
			return jsonResult(researchView(query, results, completed, sessionErr))

		case "READ":
			number := uint32(req.GetFloat("session", 0))
			key := connection.Key{ConnID: info.ConnID, Number: number}
			results, completed, sessionErr, ok := deps.ResearchReg.Read(key)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("no research session %d for this connection", number)), nil
			}
			return jsonResult(researchView("", results, completed, sessionErr))

		case "LIST":
			return jsonResult(deps.ResearchReg.List(info.ConnID))

		case "KILL":
			number := uint32(req.GetFloat("session", 0))
			key := connection.Key{ConnID: info.ConnID, Number: number}
			ok := deps.ResearchReg.Kill(key)
			return jsonResult(map[string]bool{"killed": ok})

		default:
			return mcp.NewToolResultError("unknown action: " + action), nil
		}
	}
}

func applyResearchOptions(raw interface{}, opts *research.Options) {
	encoded, err := json.Marshal(raw)
	if err != nil {
		return
	}
	_ = json.Unmarshal(encoded, opts)
}

func researchView(query string, results []research.Result, completed bool, err error) map[string]interface{} {
	view := map[string]interface{}{
		"query":     query,
		"results":   results,
		"completed": completed,
	}
	if err != nil {
		view["error"] = err.Error()
	}
	return view
}

func agentHandler(deps Deps, log *logging.Logger) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		info := connection.FromContext(ctx)
		if info.ConnID == "" {
			return mcp.NewToolResultError("missing " + connection.HeaderConnectionID + " header: this tool requires a registry key"), nil
		}

		action, err := req.RequireString("action")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		switch action {
		case "EXEC":
			task, err := req.RequireString("task")
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			number := uint32(req.GetFloat("number", 0))
			key := connection.Key{ConnID: info.ConnID, Number: number}

			if startURL := req.GetString("start_url", ""); startURL != "" {
				if _, err := tools.Navigate(ctx, deps.Browser, tools.NavigateArgs{URL: startURL}); err != nil {
					return mcp.NewToolResultError(fmt.Sprintf("start_url navigation failed: %v", err)), nil
				}
			}

			maxSteps := int(req.GetFloat("max_steps", 10))
			tunables := agent.Tunables{
				Temperature:       req.GetFloat("temperature", 0),
				MaxTokens:         int(req.GetFloat("max_tokens", 0)),
				MaxActionsPerStep: int(req.GetFloat("max_actions_per_step", 0)),
				VisionTimeoutSecs: int(req.GetFloat("vision_timeout_secs", 0)),
				LLMTimeoutSecs:    int(req.GetFloat("llm_timeout_secs", 0)),
				AdditionalInfo:    req.GetString("additional_info", ""),
			}

			session := deps.AgentReg.FindOrCreate(key, task, tunables.AdditionalInfo, maxSteps, tunables)
			deps.AgentReg.Start(ctx, key)
			history, completed, sessionErr := session.Snapshot()
			return jsonResult(agentView(task, history, completed, sessionErr))

		case "READ":
			number := uint32(req.GetFloat("number", 0))
			key := connection.Key{ConnID: info.ConnID, Number: number}
			history, completed, sessionErr, ok := deps.AgentReg.Read(key)
			if !ok {
				return mcp.NewToolResultError(fmt.Sprintf("no agent session %d for this connection", number)), nil
			}
			return jsonResult(agentView("", history, completed, sessionErr))

		case "LIST":
			return jsonResult(deps.AgentReg.List(info.ConnID))

		case "KILL":
			number := uint32(req.GetFloat("number", 0))
			key := connection.Key{ConnID: info.ConnID, Number: number}
			ok := deps.AgentReg.Kill(key)
			return jsonResult(map[string]bool{"killed": ok})

		default:
			return mcp.NewToolResultError("unknown action: " + action), nil
		}
	}
}

func agentView(task string, history agent.HistoryList, completed bool, err error) map[string]interface{} {
	view := map[string]interface{}{
		"task":      task,
		"history":   history,
		"completed": completed,
		"success":   history.IsComplete(),
	}
	if err != nil {
		view["error"] = err.Error()
	}
	return view
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("could not encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
