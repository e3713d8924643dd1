package research

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsWithDefaults(t *testing.T) {
	t.Run("zero-valued numeric and string fields fall back to config.yaml defaults", func(t *testing.T) {
		got := Options{}.withDefaults()
		// A false bool is indistinguishable from an explicit false, so
		// withDefaults leaves the bool fields as given.
		want := DefaultOptions()
		want.IncludeLinks = false
		want.ExtractTables = false
		assert.Equal(t, want, got)
	})

	t.Run("explicit values survive", func(t *testing.T) {
		got := Options{MaxPages: 2, MaxDepth: 1, SearchEngine: "duckduckgo", TimeoutSeconds: 15}.withDefaults()
		assert.Equal(t, 2, got.MaxPages)
		assert.Equal(t, 1, got.MaxDepth)
		assert.Equal(t, "duckduckgo", got.SearchEngine)
		assert.Equal(t, 15, got.TimeoutSeconds)
	})
}
