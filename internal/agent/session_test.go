package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainsDoneAction(t *testing.T) {
	t.Run("matches case-insensitively", func(t *testing.T) {
		assert.True(t, containsDoneAction([]ActionModel{{Name: "DoNe"}}))
	})

	t.Run("false when absent", func(t *testing.T) {
		assert.False(t, containsDoneAction([]ActionModel{{Name: "scroll"}, {Name: "click_element"}}))
	})

	t.Run("false on an empty action list", func(t *testing.T) {
		assert.False(t, containsDoneAction(nil))
	})
}

func TestSessionRunWithNonPositiveMaxSteps(t *testing.T) {
	s := NewSession("task", "", 0, Tunables{}, nil, &scriptedLLMClient{}, testLogger(t))

	s.Run(context.Background())

	history, completed, err := s.Snapshot()
	assert.True(t, completed)
	assert.NoError(t, err)
	assert.Empty(t, history.Items)
}
