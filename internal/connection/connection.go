// Package connection carries per-client identity (connection id, working
// directory, git root) from transport headers into tool-call context, and
// defines the (connection, number) Key the session registries use. The
// hook that sweeps those registries when a connection closes lives in
// internal/cleanup.
package connection

import (
	"context"
	"net/http"
)

// Header names the transport is required to send on every call.
const (
	HeaderConnectionID = "X-Kodegen-Connection-Id"
	HeaderPwd          = "X-Kodegen-Pwd"
	HeaderGitroot      = "X-Kodegen-Gitroot"
)

type ctxKey int

const (
	keyConnID ctxKey = iota
	keyPwd
	keyGitroot
)

// Info is the per-connection identity threaded through a tool call.
type Info struct {
	ConnID  string
	Pwd     string
	Gitroot string
}

// Key identifies one long-running session: a client-chosen task number
// scoped to a connection. Comparable, usable directly as a map key in
// place of a (connection_id, number) tuple.
type Key struct {
	ConnID string
	Number uint32
}

// IDFromHeaders reads the connection id header directly off an HTTP
// request, for use before a context has been constructed (e.g. to decide
// whether to install a disconnect watcher).
func IDFromHeaders(r *http.Request) string {
	return r.Header.Get(HeaderConnectionID)
}

// FromRequestContext builds the per-call context augmented with the
// connection identity headers. Matches the context-func signature
// expected by the MCP server's SSE and Streamable HTTP transports.
func FromRequestContext(ctx context.Context, r *http.Request) context.Context {
	ctx = context.WithValue(ctx, keyConnID, r.Header.Get(HeaderConnectionID))
	ctx = context.WithValue(ctx, keyPwd, r.Header.Get(HeaderPwd))
	ctx = context.WithValue(ctx, keyGitroot, r.Header.Get(HeaderGitroot))
	return ctx
}

// FromContext extracts the connection Info previously installed by
// FromRequestContext. ConnID is empty if the header was absent.
func FromContext(ctx context.Context) Info {
	connID, _ := ctx.Value(keyConnID).(string)
	pwd, _ := ctx.Value(keyPwd).(string)
	gitroot, _ := ctx.Value(keyGitroot).(string)
	return Info{ConnID: connID, Pwd: pwd, Gitroot: gitroot}
}
