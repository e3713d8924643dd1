package mcpserver

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/browserd/browserd/internal/agent"
	"github.com/browserd/browserd/internal/research"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyResearchOptions(t *testing.T) {
	opts := research.DefaultOptions()
	raw := map[string]interface{}{"max_pages": 2, "search_engine": "duckduckgo"}

	applyResearchOptions(raw, &opts)

	assert.Equal(t, 2, opts.MaxPages)
	assert.Equal(t, "duckduckgo", opts.SearchEngine)
}

func TestApplyResearchOptionsIgnoresUnmarshalableInput(t *testing.T) {
	opts := research.DefaultOptions()
	original := opts

	applyResearchOptions(make(chan int), &opts)

	assert.Equal(t, original, opts)
}

func TestResearchView(t *testing.T) {
	t.Run("without an error", func(t *testing.T) {
		view := researchView("query", []research.Result{{URL: "https://a"}}, true, nil)
		assert.Equal(t, "query", view["query"])
		assert.Equal(t, true, view["completed"])
		assert.NotContains(t, view, "error")
	})

	t.Run("with an error", func(t *testing.T) {
		view := researchView("query", nil, false, errors.New("boom"))
		assert.Equal(t, "boom", view["error"])
	})
}

func TestAgentView(t *testing.T) {
	t.Run("without an error", func(t *testing.T) {
		view := agentView("task", agent.HistoryList{}, false, nil)
		assert.Equal(t, "task", view["task"])
		assert.NotContains(t, view, "error")
	})

	t.Run("with an error", func(t *testing.T) {
		view := agentView("task", agent.HistoryList{}, true, errors.New("boom"))
		assert.Equal(t, "boom", view["error"])
	})

	t.Run("success reflects history completion, not the internal completed flag", func(t *testing.T) {
		view := agentView("task", agent.HistoryList{}, true, nil)
		assert.Equal(t, true, view["completed"])
		assert.Equal(t, false, view["success"], "an empty history never completed a done action")
	})

	t.Run("success is true once a step is marked done", func(t *testing.T) {
		history := agent.HistoryList{Items: []agent.HistoryItem{{IsComplete: true}}}
		view := agentView("task", history, true, nil)
		assert.Equal(t, true, view["success"])
	})
}

func TestJSONResult(t *testing.T) {
	result, err := jsonResult(map[string]string{"hello": "world"})
	require.NoError(t, err)
	require.NotNil(t, result)
	require.Len(t, result.Content, 1)

	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)

	var decoded map[string]string
	require.NoError(t, json.Unmarshal([]byte(textContent.Text), &decoded))
	assert.Equal(t, "world", decoded["hello"])
}

func TestJSONResultOnUnmarshalableValue(t *testing.T) {
	result, err := jsonResult(make(chan int))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
