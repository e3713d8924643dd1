// Package mcpserver hosts the MCP server that exposes browser automation
// tools over SSE and Streamable HTTP transports.
package mcpserver

import (
	"context"
	"sync"
	"time"

	"github.com/browserd/browserd/internal/cleanup"
	"github.com/browserd/browserd/internal/config"
	"github.com/browserd/browserd/internal/logging"
	"go.uber.org/zap"
)

// Provide starts the MCP server and returns a cleanup function that stops
// it and tears down the shared browser. Intended for use from main:
// srv, cleanup, err := Provide(...).
func Provide(ctx context.Context, cfg config.ServerConfig, deps Deps, log *logging.Logger) (*Server, func() error, error) {
	srv := NewWithLogger(cfg, deps, log)
	srv.SetCleanupHook(cleanup.Hook(deps.ResearchReg, deps.AgentReg, log))

	if err := srv.Start(ctx); err != nil {
		return nil, nil, err
	}

	var stopOnce sync.Once
	cleanup := func() error {
		var stopErr error
		stopOnce.Do(func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			stopErr = srv.Stop(stopCtx)
			if deps.Browser != nil {
				deps.Browser.Shutdown(stopCtx)
			}
			log.Info("mcp server stopped", zap.Bool("clean", stopErr == nil))
		})
		return stopErr
	}

	return srv, cleanup, nil
}

