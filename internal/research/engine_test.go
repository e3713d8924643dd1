package research

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateScalars(t *testing.T) {
	t.Run("leaves short strings untouched", func(t *testing.T) {
		assert.Equal(t, "hello", truncateScalars("hello", 10))
	})

	t.Run("truncates by rune count, not byte count", func(t *testing.T) {
		// Each "é" is two bytes but one scalar; truncating to 3 scalars
		// must not split a multi-byte rune.
		s := strings.Repeat("é", 5)
		got := truncateScalars(s, 3)
		assert.Equal(t, strings.Repeat("é", 3)+"...", got)
	})

	t.Run("exact-length strings are not truncated", func(t *testing.T) {
		s := "exact"
		assert.Equal(t, s, truncateScalars(s, len([]rune(s))))
	})
}
