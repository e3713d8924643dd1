package agent

import (
	"context"
	"testing"

	"github.com/browserd/browserd/internal/llm"
	"github.com/browserd/browserd/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLMClient struct {
	chunks []llm.StreamChunk
	err    error
}

func (f *scriptedLLMClient) Stream(ctx context.Context, req llm.Request) (<-chan llm.StreamChunk, error) {
	if f.err != nil {
		return nil, f.err
	}
	ch := make(chan llm.StreamChunk, len(f.chunks))
	for _, c := range f.chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(logging.Config{Level: "error", Format: "console", OutputPath: "stdout"})
	require.NoError(t, err)
	return log
}

func TestExtractJSON(t *testing.T) {
	t.Run("extracts the outermost object from surrounding prose", func(t *testing.T) {
		raw := `Sure, here you go:\n{"current_state":{},"action":[]}\nHope that helps!`
		got := extractJSON(raw)
		assert.Equal(t, `{"current_state":{},"action":[]}`, got)
	})

	t.Run("returns the raw string when no braces are found", func(t *testing.T) {
		raw := "no json here"
		assert.Equal(t, raw, extractJSON(raw))
	})
}

func TestTunablesWithDefaults(t *testing.T) {
	t.Run("zero-valued fields fall back to defaults", func(t *testing.T) {
		got := Tunables{}.withDefaults()
		want := DefaultTunables()
		assert.Equal(t, want, got)
	})

	t.Run("explicit values are preserved", func(t *testing.T) {
		got := Tunables{Temperature: 0.1, MaxTokens: 99, MaxActionsPerStep: 1, VisionTimeoutSecs: 5, LLMTimeoutSecs: 9}.withDefaults()
		assert.Equal(t, 0.1, got.Temperature)
		assert.Equal(t, 99, got.MaxTokens)
		assert.Equal(t, 1, got.MaxActionsPerStep)
		assert.Equal(t, 5, got.VisionTimeoutSecs)
		assert.Equal(t, 9, got.LLMTimeoutSecs)
	})
}

func TestInnerDecide(t *testing.T) {
	t.Run("parses a well-formed model response", func(t *testing.T) {
		fake := &scriptedLLMClient{chunks: []llm.StreamChunk{
			{Delta: `{"current_state":{"summary":"looking good"},"action":[{"name":"done","params":{"result":"ok"}}]}`},
			{FinishReason: "end_turn"},
		}}
		in := NewInner("find the price", "", Tunables{}, nil, nil, fake, testLogger(t))

		out, err := in.decide(context.Background(), "page content", "a screenshot of a page")
		require.NoError(t, err)
		assert.Equal(t, "looking good", out.CurrentState.Summary)
		require.Len(t, out.Action, 1)
		assert.Equal(t, "done", out.Action[0].Name)
	})

	t.Run("truncates actions beyond max_actions_per_step", func(t *testing.T) {
		fake := &scriptedLLMClient{chunks: []llm.StreamChunk{
			{Delta: `{"current_state":{},"action":[{"name":"a"},{"name":"b"},{"name":"c"}]}`},
			{FinishReason: "end_turn"},
		}}
		in := NewInner("task", "", Tunables{MaxActionsPerStep: 2}, nil, nil, fake, testLogger(t))

		out, err := in.decide(context.Background(), "", "")
		require.NoError(t, err)
		assert.Len(t, out.Action, 2)
	})

	t.Run("returns an error when the model response is not valid JSON", func(t *testing.T) {
		fake := &scriptedLLMClient{chunks: []llm.StreamChunk{
			{Delta: "not json at all"},
			{FinishReason: "end_turn"},
		}}
		in := NewInner("task", "", Tunables{}, nil, nil, fake, testLogger(t))

		_, err := in.decide(context.Background(), "", "")
		assert.Error(t, err)
	})
}

func TestInnerDescribeVisionCachedPath(t *testing.T) {
	in := NewInner("task", "", Tunables{}, nil, nil, &scriptedLLMClient{}, testLogger(t))
	in.visionCache = "previously described page"

	got := in.describeVision(context.Background(), "")
	assert.Equal(t, "previously described page", got)
}

func TestInnerStopAndLastValidState(t *testing.T) {
	in := NewInner("task", "", Tunables{}, nil, nil, &scriptedLLMClient{}, testLogger(t))

	assert.Nil(t, in.LastValidState())
	assert.False(t, in.isStopped())

	in.Stop()
	assert.True(t, in.isStopped())

	_, _, err := in.ProcessStep(context.Background())
	assert.ErrorIs(t, err, errStopped)
}

func TestHistoryListIsComplete(t *testing.T) {
	t.Run("empty history is not complete", func(t *testing.T) {
		assert.False(t, HistoryList{}.IsComplete())
	})

	t.Run("reflects the last item only", func(t *testing.T) {
		h := HistoryList{Items: []HistoryItem{
			{IsComplete: true},
			{IsComplete: false},
		}}
		assert.False(t, h.IsComplete())
	})
}
