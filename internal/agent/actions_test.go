package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToolCaller struct {
	calls []struct {
		name string
		args map[string]string
	}
	result ActionResult
}

func (f *fakeToolCaller) CallTool(ctx context.Context, name string, args map[string]string) ActionResult {
	f.calls = append(f.calls, struct {
		name string
		args map[string]string
	}{name, args})
	return f.result
}

func TestTranslate(t *testing.T) {
	t.Run("go_to_url", func(t *testing.T) {
		name, args, err := translate(ActionModel{Name: "go_to_url", Params: map[string]string{"url": "https://example.com"}})
		require.NoError(t, err)
		assert.Equal(t, "browser_navigate", name)
		assert.Equal(t, "https://example.com", args["url"])
	})

	t.Run("click_element by selector", func(t *testing.T) {
		name, args, err := translate(ActionModel{Name: "click_element", Params: map[string]string{"selector": "#go"}})
		require.NoError(t, err)
		assert.Equal(t, "browser_click", name)
		assert.Equal(t, "#go", args["selector"])
	})

	t.Run("click_element by index", func(t *testing.T) {
		name, args, err := translate(ActionModel{Name: "click_element", Params: map[string]string{"index": "3"}})
		require.NoError(t, err)
		assert.Equal(t, "browser_click", name)
		assert.Equal(t, `[data-mcp-index="3"]`, args["selector"])
	})

	t.Run("click_element with neither selector nor index fails", func(t *testing.T) {
		_, _, err := translate(ActionModel{Name: "click_element", Params: map[string]string{}})
		assert.Error(t, err)
	})

	t.Run("input_text clears by default", func(t *testing.T) {
		name, args, err := translate(ActionModel{Name: "input_text", Params: map[string]string{"selector": "#q", "text": "hello"}})
		require.NoError(t, err)
		assert.Equal(t, "browser_type_text", name)
		assert.Equal(t, "hello", args["text"])
		assert.Equal(t, "true", args["clear"])
	})

	t.Run("scroll down is positive", func(t *testing.T) {
		_, args, err := translate(ActionModel{Name: "scroll", Params: map[string]string{"amount": "300"}})
		require.NoError(t, err)
		assert.Equal(t, "300", args["y"])
	})

	t.Run("scroll up is negative", func(t *testing.T) {
		_, args, err := translate(ActionModel{Name: "scroll", Params: map[string]string{"direction": "up", "amount": "300"}})
		require.NoError(t, err)
		assert.Equal(t, "-300", args["y"])
	})

	t.Run("scroll amount clamps to the max", func(t *testing.T) {
		_, args, err := translate(ActionModel{Name: "scroll", Params: map[string]string{"amount": "999999"}})
		require.NoError(t, err)
		assert.Equal(t, "10000", args["y"])
	})

	t.Run("scroll with invalid amount defaults to 500", func(t *testing.T) {
		_, args, err := translate(ActionModel{Name: "scroll", Params: map[string]string{"amount": "not-a-number"}})
		require.NoError(t, err)
		assert.Equal(t, "500", args["y"])
	})

	t.Run("extract_page_content needs no params", func(t *testing.T) {
		name, args, err := translate(ActionModel{Name: "extract_page_content"})
		require.NoError(t, err)
		assert.Equal(t, "browser_extract_text", name)
		assert.Empty(t, args)
	})

	t.Run("unknown action errors", func(t *testing.T) {
		_, _, err := translate(ActionModel{Name: "fly_to_the_moon"})
		assert.Error(t, err)
	})
}

func TestTranslateAndAct(t *testing.T) {
	t.Run("done short-circuits without calling a tool", func(t *testing.T) {
		caller := &fakeToolCaller{result: ActionResult{Success: true}}
		actions := []ActionModel{{Name: "DONE", Params: map[string]string{"result": "all finished"}}}

		_, results, errs := translateAndAct(context.Background(), caller, actions, 5)

		assert.Empty(t, caller.calls)
		assert.Empty(t, errs)
		require.Len(t, results, 1)
		assert.True(t, results[0].Success)
		assert.Equal(t, "all finished", results[0].ExtractedContent)
	})

	t.Run("truncates to max actions per step", func(t *testing.T) {
		caller := &fakeToolCaller{result: ActionResult{Success: true}}
		actions := []ActionModel{
			{Name: "extract_page_content"},
			{Name: "extract_page_content"},
			{Name: "extract_page_content"},
		}

		truncated, results, _ := translateAndAct(context.Background(), caller, actions, 2)

		assert.Len(t, truncated, 2)
		assert.Len(t, results, 2)
		assert.Len(t, caller.calls, 2)
	})

	t.Run("an unknown action is recorded as an error but does not abort the step", func(t *testing.T) {
		caller := &fakeToolCaller{result: ActionResult{Success: true}}
		actions := []ActionModel{
			{Name: "nonsense"},
			{Name: "extract_page_content"},
		}

		_, results, errs := translateAndAct(context.Background(), caller, actions, 5)

		require.Len(t, results, 2)
		assert.NotEmpty(t, results[0].Error)
		assert.True(t, results[1].Success)
		assert.Len(t, errs, 1)
		assert.Len(t, caller.calls, 1)
	})
}
