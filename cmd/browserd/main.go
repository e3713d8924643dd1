// Package main is the entry point for the browserd MCP server binary.
// browserd exposes a single shared Chromium instance as a set of
// Model Context Protocol tools: direct page operations, a web search
// helper, a deep-research engine, and an autonomous browser agent.
//
// The server supports two transports:
//   - SSE (Server-Sent Events) at /sse for Claude Desktop, Cursor
//   - Streamable HTTP at /mcp for Codex
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/browserd/browserd/internal/agent"
	"github.com/browserd/browserd/internal/browser"
	"github.com/browserd/browserd/internal/config"
	"github.com/browserd/browserd/internal/llm"
	"github.com/browserd/browserd/internal/logging"
	"github.com/browserd/browserd/internal/mcpserver"
	"github.com/browserd/browserd/internal/research"
	"go.uber.org/zap"
)

var (
	portFlag     = flag.Int("port", 0, "MCP server port (overrides config.yaml / BROWSERD_PORT)")
	logLevelFlag = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config.yaml)")
	configFlag   = flag.String("config", "", "Directory to search for config.yaml")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadWithPath(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}
	if *logLevelFlag != "" {
		cfg.Logging.Level = *logLevelFlag
	}

	log, err := logging.New(logging.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting browserd",
		zap.Int("port", cfg.Server.Port),
		zap.String("search_engine", cfg.SearchEngine))

	run(cfg, log)
}

func run(cfg *config.Config, log *logging.Logger) {
	ctx := context.Background()

	browserMgr := browser.Get(log, browser.LaunchOptions{
		Headless:        cfg.Browser.Headless,
		DisableSecurity: cfg.Browser.DisableSecurity,
		ChromiumPath:    cfg.Browser.ChromiumPath,
	})

	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		log.Warn("ANTHROPIC_API_KEY is not set; browser_research and browser_agent will fail at the decide step")
	}
	llmClient := llm.NewAnthropicClient(apiKey, "")

	engine := research.NewEngine(browserMgr, llmClient, log, cfg.Temperature, cfg.MaxTokensOrDefault())

	stopSweep := make(chan struct{})
	researchReg := research.NewRegistry(engine, log, stopSweep)
	agentReg := agent.NewRegistry(browserMgr, llmClient, log, stopSweep)

	deps := mcpserver.Deps{
		Browser:     browserMgr,
		LLM:         llmClient,
		ResearchReg: researchReg,
		AgentReg:    agentReg,
		Config:      cfg,
	}

	srv, cleanup, err := mcpserver.Provide(ctx, cfg.Server, deps, log)
	if err != nil {
		log.Error("failed to start MCP server", zap.Error(err))
		close(stopSweep)
		os.Exit(1)
	}

	log.Info("browserd started",
		zap.String("sse_endpoint", srv.SSEEndpoint()),
		zap.String("streamable_http_endpoint", srv.StreamableHTTPEndpoint()))

	fmt.Printf("browserd running on :%d\n", cfg.Server.Port)
	fmt.Printf("SSE endpoint: %s (for Claude Desktop, Cursor)\n", srv.SSEEndpoint())
	fmt.Printf("Streamable HTTP endpoint: %s (for Codex)\n", srv.StreamableHTTPEndpoint())

	waitForShutdown(log, func(ctx context.Context) {
		close(stopSweep)
		if err := cleanup(); err != nil {
			log.Error("error during shutdown", zap.Error(err))
		}
	})
}

// waitForShutdown blocks until SIGINT/SIGTERM, then runs cleanup with a
// bounded deadline.
func waitForShutdown(log *logging.Logger, cleanup func(ctx context.Context)) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down browserd...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cleanup(ctx)

	log.Info("browserd stopped")
}
