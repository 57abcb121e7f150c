// Package mcp exposes the linter to MCP clients over stdio.
package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/uilint/pkg/config"
	"github.com/gnana997/uilint/pkg/linter"
)

// Engine is the linter surface the tools call.
type Engine interface {
	LintSource(path string, source []byte) linter.FileResult
	InspectSource(path string, source []byte) linter.FileResult
	Lint(ctx context.Context, paths []string) (*linter.Result, error)
	Inspect(ctx context.Context, paths []string) (*linter.Result, error)
	Config() *config.Config
}

// Options configure a Server.
type Options struct {
	// Version is reported to clients during initialization.
	Version string
	// Root restricts path arguments; relative paths resolve against it.
	Root string
	// CallLog, when set, records every tool call.
	CallLog *CallLog
}

// Server implements the MCP server for uilint.
type Server struct {
	mcpServer *server.MCPServer
	engine    Engine
	root      string
	callLog   *CallLog
	logger    *slog.Logger
}

// NewServer creates a server backed by engine. Logger can be nil.
func NewServer(engine Engine, opts Options, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}
	if opts.Root == "" {
		opts.Root = "."
	}

	s := &Server{engine: engine, root: opts.Root, callLog: opts.CallLog, logger: logger}

	serverOpts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithToolHandlerMiddleware(s.loggingMiddleware()),
	}
	s.mcpServer = server.NewMCPServer("uilint", opts.Version, serverOpts...)
	s.mcpServer.AddTools(s.tools()...)

	return s
}

// tools pairs every tool definition with its handler.
func (s *Server) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: lintSourceTool(), Handler: s.handleLintSource},
		{Tool: lintPathTool(), Handler: s.handleLintPath},
		{Tool: listComponentsTool(), Handler: s.handleListComponents},
		{Tool: listRulesTool(), Handler: s.handleListRules},
	}
}

// MCPServer returns the underlying server, for transports other than
// stdio.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP over stdio", "tools", len(s.tools()))
	return server.ServeStdio(s.mcpServer)
}
