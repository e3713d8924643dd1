package tools

import (
	"testing"

	"github.com/browserd/browserd/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger(t *testing.T) *logging.Logger {
	t.Helper()
	log, err := logging.New(logging.Config{Level: "error", Format: "console", OutputPath: "stdout"})
	require.NoError(t, err)
	return log
}

func TestClampScroll(t *testing.T) {
	log := testLogger(t)

	t.Run("within bounds passes through", func(t *testing.T) {
		assert.Equal(t, 500, clampScroll(log, "y", 500))
	})

	t.Run("positive overflow clamps to the cap", func(t *testing.T) {
		assert.Equal(t, scrollClamp, clampScroll(log, "y", 999999))
	})

	t.Run("negative overflow clamps to the negative cap", func(t *testing.T) {
		assert.Equal(t, -scrollClamp, clampScroll(log, "x", -999999))
	})
}
