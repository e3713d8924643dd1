package tools

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildSearchURL(t *testing.T) {
	t.Run("defaults to google", func(t *testing.T) {
		assert.Equal(t, "https://www.google.com/search?q=golang", buildSearchURL("", "golang"))
	})

	t.Run("duckduckgo engine", func(t *testing.T) {
		assert.Equal(t, "https://duckduckgo.com/html/?q=golang", buildSearchURL("duckduckgo", "golang"))
	})

	t.Run("escapes query parameters", func(t *testing.T) {
		assert.Equal(t, "https://www.google.com/search?q=go+%26+rust", buildSearchURL("google", "go & rust"))
	})
}
