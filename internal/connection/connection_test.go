package connection

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIDFromHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set(HeaderConnectionID, "conn-42")

	assert.Equal(t, "conn-42", IDFromHeaders(req))
}

func TestIDFromHeadersAbsent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	assert.Empty(t, IDFromHeaders(req))
}

func TestFromRequestContextRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	req.Header.Set(HeaderConnectionID, "conn-1")
	req.Header.Set(HeaderPwd, "/home/user/project")
	req.Header.Set(HeaderGitroot, "/home/user/project")

	ctx := FromRequestContext(req.Context(), req)
	info := FromContext(ctx)

	assert.Equal(t, "conn-1", info.ConnID)
	assert.Equal(t, "/home/user/project", info.Pwd)
	assert.Equal(t, "/home/user/project", info.Gitroot)
}

func TestFromContextWithoutPriorInstallation(t *testing.T) {
	info := FromContext(t.Context())
	assert.Empty(t, info.ConnID)
	assert.Empty(t, info.Pwd)
	assert.Empty(t, info.Gitroot)
}
