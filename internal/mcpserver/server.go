// Package mcpserver hosts the MCP server that exposes browser automation
// tools over SSE and Streamable HTTP transports.
package mcpserver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/browserd/browserd/internal/agent"
	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/config"
	"github.com/browserd/browserd/internal/connection"
	"github.com/browserd/browserd/internal/llm"
	"github.com/browserd/browserd/internal/logging"
	"github.com/browserd/browserd/internal/research"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

// Deps bundles the process-global collaborators the tool handlers need.
type Deps struct {
	Browser        *browser.Manager
	LLM            llm.Client
	ResearchReg    *research.Registry
	AgentReg       *agent.Registry
	Config         *config.Config
}

// Server wraps the SSE and Streamable HTTP MCP transports with lifecycle
// management, following the two-transport-one-port shape used throughout
// the MCP ecosystem: SSE (/sse, /message) for Claude Desktop/Cursor-style
// clients, Streamable HTTP (/mcp) for clients like Codex.
type Server struct {
	cfg                  config.ServerConfig
	deps                 Deps
	sseServer            *server.SSEServer
	streamableHTTPServer *server.StreamableHTTPServer
	httpServer           *http.Server
	mu                   sync.Mutex
	running              bool
	logger               *logging.Logger

	cleanup func(connID string)
}

// New creates a new MCP server with the given configuration and collaborators.
func New(cfg config.ServerConfig, deps Deps) *Server {
	return &Server{
		cfg:    cfg,
		deps:   deps,
		logger: logging.Default().WithFields(zap.String("component", "mcp-server")),
	}
}

// NewWithLogger is like New but attaches a caller-supplied logger.
func NewWithLogger(cfg config.ServerConfig, deps Deps, log *logging.Logger) *Server {
	s := New(cfg, deps)
	s.logger = log.WithFields(zap.String("component", "mcp-server"))
	return s
}

// SetCleanupHook registers the callback invoked when a connection closes.
// Must be called before Start.
func (s *Server) SetCleanupHook(fn func(connID string)) {
	s.cleanup = fn
}

// Start starts the MCP server in a goroutine and returns once it is
// listening on its bound port.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.mu.Unlock()

	mcpServer := server.NewMCPServer(
		"browserd",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	registerTools(mcpServer, s.deps, s.logger)

	s.sseServer = server.NewSSEServer(mcpServer,
		server.WithSSEContextFunc(connection.FromRequestContext),
	)
	s.streamableHTTPServer = server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithHTTPContextFunc(connection.FromRequestContext),
	)

	mux := http.NewServeMux()
	mux.Handle("/sse", s.withDisconnectHook(s.sseServer.SSEHandler()))
	mux.Handle("/message", s.sseServer.MessageHandler())
	mux.Handle("/mcp", s.withDisconnectHook(s.streamableHTTPServer))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.cfg.Port = tcpAddr.Port
	}

	s.httpServer = &http.Server{Handler: mux}

	ready := make(chan struct{})

	go func() {
		s.mu.Lock()
		s.running = true
		s.mu.Unlock()

		close(ready)

		s.logger.Info("MCP server listening",
			zap.Int("port", s.cfg.Port),
			zap.String("sse_endpoint", "/sse"),
			zap.String("streamable_http_endpoint", "/mcp"))

		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("MCP server error", zap.Error(err))
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	select {
	case <-ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// withDisconnectHook wraps h so that, if the request's context is done
// while h is still serving it (the client disconnected), the connection
// cleanup hook runs for that connection id. A request whose handler
// returns first does not trigger the hook. Idempotent: the hook itself
// tolerates being invoked for a connection with nothing left to clean up.
func (s *Server) withDisconnectHook(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		connID := connection.IDFromHeaders(r)
		if connID == "" || s.cleanup == nil {
			h.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				s.cleanup(connID)
			case <-done:
			}
		}()
		h.ServeHTTP(w, r)
		close(done)
	})
}

// Stop gracefully shuts down the server and both transports.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	if !running {
		return nil
	}

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}
	if s.sseServer != nil {
		if err := s.sseServer.Shutdown(ctx); err != nil {
			s.logger.Warn("failed to shutdown SSE server", zap.Error(err))
		}
	}
	if s.streamableHTTPServer != nil {
		if err := s.streamableHTTPServer.Shutdown(ctx); err != nil {
			s.logger.Warn("failed to shutdown streamable HTTP server", zap.Error(err))
		}
	}

	return nil
}

// SSEEndpoint returns the SSE transport URL.
func (s *Server) SSEEndpoint() string {
	return fmt.Sprintf("http://localhost:%d/sse", s.cfg.Port)
}

// StreamableHTTPEndpoint returns the Streamable HTTP transport URL.
func (s *Server) StreamableHTTPEndpoint() string {
	return fmt.Sprintf("http://localhost:%d/mcp", s.cfg.Port)
}
