package tools

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClampInteractionTimeout(t *testing.T) {
	t.Run("non-positive falls back to the default", func(t *testing.T) {
		assert.Equal(t, InteractionTimeoutDefault, clampInteractionTimeout(0))
		assert.Equal(t, InteractionTimeoutDefault, clampInteractionTimeout(-5))
	})

	t.Run("values within bounds pass through", func(t *testing.T) {
		assert.Equal(t, 2*time.Second, clampInteractionTimeout(2000))
	})

	t.Run("values over the max are clamped", func(t *testing.T) {
		assert.Equal(t, InteractionTimeoutMax, clampInteractionTimeout(60_000))
	})
}

func TestClampNavigationTimeout(t *testing.T) {
	t.Run("non-positive falls back to the default", func(t *testing.T) {
		assert.Equal(t, NavigationTimeoutDefault, clampNavigationTimeout(0))
	})

	t.Run("values within bounds pass through", func(t *testing.T) {
		assert.Equal(t, 45*time.Second, clampNavigationTimeout(45_000))
	})

	t.Run("values over the max are clamped", func(t *testing.T) {
		assert.Equal(t, NavigationTimeoutMax, clampNavigationTimeout(10*60*1000))
	})
}
