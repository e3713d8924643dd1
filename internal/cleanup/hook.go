// Package cleanup implements the connect-and-cleanup protocol: a single
// hook, registered with the transport, that tears down every research and
// agent session owned by a connection when that connection closes.
package cleanup

import (
	"github.com/browserd/browserd/internal/agent"
	"github.com/browserd/browserd/internal/logging"
	"github.com/browserd/browserd/internal/research"
	"go.uber.org/zap"
)

// Hook returns a callback suitable for registration with the transport's
// disconnect notification. It is idempotent: invoking it twice for a
// connection that has already been cleaned up (or was never registered)
// is a no-op, so a client disconnect racing a KILL call is safe.
func Hook(researchReg *research.Registry, agentReg *agent.Registry, log *logging.Logger) func(connID string) {
	return func(connID string) {
		if connID == "" {
			return
		}
		if researchReg != nil {
			researchReg.CleanupConnection(connID)
		}
		if agentReg != nil {
			agentReg.CleanupConnection(connID)
		}
		if log != nil {
			log.Info("cleaned up connection", zap.String("connection_id", connID))
		}
	}
}
