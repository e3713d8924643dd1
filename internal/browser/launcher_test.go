package browser

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitFlag(t *testing.T) {
	t.Run("bare flag is boolean true", func(t *testing.T) {
		name, val := splitFlag("--mute-audio")
		assert.Equal(t, "mute-audio", name)
		assert.Equal(t, true, val)
	})

	t.Run("flag with a boolean value parses it", func(t *testing.T) {
		name, val := splitFlag("--headless=false")
		assert.Equal(t, "headless", name)
		assert.Equal(t, false, val)
	})

	t.Run("flag with a string value keeps it as a string", func(t *testing.T) {
		name, val := splitFlag("--proxy-server=http://localhost:8080")
		assert.Equal(t, "proxy-server", name)
		assert.Equal(t, "http://localhost:8080", val)
	})
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available in this environment")
	}
	got := expandPath("~/Applications/Chromium.app")
	assert.Equal(t, home+"/Applications/Chromium.app", got)
}

func TestExpandPathWithoutTilde(t *testing.T) {
	assert.Equal(t, "/usr/bin/chromium", expandPath("/usr/bin/chromium"))
}

func TestExpandWindowsEnvVars(t *testing.T) {
	t.Run("expands a known variable", func(t *testing.T) {
		t.Setenv("BROWSERD_TEST_VAR", "C:\\Chrome")
		got := expandWindowsEnvVars(`%BROWSERD_TEST_VAR%\chrome.exe`)
		assert.Equal(t, `C:\Chrome\chrome.exe`, got)
	})

	t.Run("leaves an unset variable's token untouched", func(t *testing.T) {
		got := expandWindowsEnvVars(`%BROWSERD_NOT_SET_XYZ%\chrome.exe`)
		assert.Equal(t, `%BROWSERD_NOT_SET_XYZ%\chrome.exe`, got)
	})

	t.Run("passes through text with no percent tokens", func(t *testing.T) {
		assert.Equal(t, `C:\Chrome\chrome.exe`, expandWindowsEnvVars(`C:\Chrome\chrome.exe`))
	})
}
