package agent

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// translateAndAct walks one step's action list, translating each
// ActionModel into a loopback tool call, and running it. A per-action
// failure is recorded in ActionResult and appended to errs; it never
// aborts the step, and the remaining actions still run.
func translateAndAct(ctx context.Context, caller ToolCaller, actions []ActionModel, maxActionsPerStep int) ([]ActionModel, []ActionResult, []string) {
	if len(actions) > maxActionsPerStep {
		actions = actions[:maxActionsPerStep]
	}

	results := make([]ActionResult, 0, len(actions))
	var errs []string

	for _, action := range actions {
		if strings.EqualFold(action.Name, "done") {
			results = append(results, doneResult(action))
			continue
		}

		toolName, toolArgs, err := translate(action)
		if err != nil {
			results = append(results, ActionResult{Error: err.Error()})
			errs = append(errs, err.Error())
			continue
		}

		result := caller.CallTool(ctx, toolName, toolArgs)
		results = append(results, result)
		if !result.Success && result.Error != "" {
			errs = append(errs, result.Error)
		}
	}

	return actions, results, errs
}

func doneResult(action ActionModel) ActionResult {
	content := action.Params["result"]
	if content == "" {
		content = "Task completed"
	}
	return ActionResult{Success: true, ExtractedContent: content}
}

// translate converts one model-chosen action into the tool name and
// string-keyed argument map a ToolCaller expects.
func translate(action ActionModel) (string, map[string]string, error) {
	switch action.Name {
	case "go_to_url":
		return "browser_navigate", map[string]string{
			"url":        action.Params["url"],
			"timeout_ms": "30000",
		}, nil

	case "click_element":
		selector, err := selectorOrIndex(action.Params)
		if err != nil {
			return "", nil, err
		}
		return "browser_click", map[string]string{
			"selector":   selector,
			"timeout_ms": "5000",
		}, nil

	case "input_text":
		selector, err := selectorOrIndex(action.Params)
		if err != nil {
			return "", nil, err
		}
		return "browser_type_text", map[string]string{
			"selector": selector,
			"text":     action.Params["text"],
			"clear":    "true",
		}, nil

	case "scroll":
		direction := action.Params["direction"]
		if direction == "" {
			direction = "down"
		}
		amount := clampScrollAmount(action.Params["amount"])
		x, y := 0, 0
		switch direction {
		case "up":
			y = -amount
		case "down":
			y = amount
		case "left":
			x = -amount
		case "right":
			x = amount
		default:
			y = amount
		}
		return "browser_scroll", map[string]string{
			"x": strconv.Itoa(x),
			"y": strconv.Itoa(y),
		}, nil

	case "extract_page_content":
		return "browser_extract_text", map[string]string{}, nil

	default:
		return "", nil, fmt.Errorf("unknown action %q", action.Name)
	}
}

func selectorOrIndex(params map[string]string) (string, error) {
	if sel := params["selector"]; sel != "" {
		return sel, nil
	}
	if idx := params["index"]; idx != "" {
		if _, err := strconv.Atoi(idx); err != nil {
			return "", fmt.Errorf("index %q is not numeric", idx)
		}
		return fmt.Sprintf(`[data-mcp-index="%s"]`, idx), nil
	}
	return "", fmt.Errorf("action has neither selector nor index")
}

func clampScrollAmount(raw string) int {
	const defaultAmount = 500
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultAmount
	}
	if n > 10000 {
		return 10000
	}
	if n < 1 {
		return 1
	}
	return n
}
