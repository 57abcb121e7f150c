package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// loggingMiddleware records each tool call in the debug log and, when
// configured, the call log.
func (s *Server) loggingMiddleware() server.ToolHandlerMiddleware {
	return func(next server.ToolHandlerFunc) server.ToolHandlerFunc {
		return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			start := now()
			result, err := next(ctx, req)
			elapsed := now().Sub(start)

			entry := CallEntry{
				Ts:            start.UTC().Format(time.RFC3339),
				Tool:          req.Params.Name,
				Args:          sanitizeArgs(req.GetArguments()),
				DurationMs:    elapsed.Milliseconds(),
				ResponseBytes: responseBytes(result),
				IsError:       result != nil && result.IsError,
			}
			if err != nil {
				entry.Error = err.Error()
			}

			s.logger.Debug("tool call",
				"tool", entry.Tool,
				"duration_ms", entry.DurationMs,
				"is_error", entry.IsError)
			if werr := s.callLog.Write(entry); werr != nil {
				s.logger.Warn("failed to write call log", "error", werr)
			}

			return result, err
		}
	}
}
