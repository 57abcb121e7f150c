package mcp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// CallEntry is one JSONL line written per tool call.
type CallEntry struct {
	Ts            string         `json:"ts"`
	Tool          string         `json:"tool"`
	Args          map[string]any `json:"args"`
	DurationMs    int64          `json:"duration_ms"`
	ResponseBytes int            `json:"response_bytes"`
	IsError       bool           `json:"is_error,omitempty"`
	Error         string         `json:"error,omitempty"`
}

// CallLog appends tool call entries to a JSONL file. It is safe for
// concurrent use; a nil *CallLog discards everything.
type CallLog struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// OpenCallLog opens path for appending, creating parent directories.
// An empty path returns a nil log.
func OpenCallLog(path string) (*CallLog, error) {
	if path == "" {
		return nil, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create call log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open call log: %w", err)
	}
	return &CallLog{f: f, enc: json.NewEncoder(f)}, nil
}

// Write appends one entry.
func (l *CallLog) Write(entry CallEntry) error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enc.Encode(entry)
}

// Close closes the file.
func (l *CallLog) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// maxLoggedString bounds string arguments kept verbatim; longer ones
// (source text) are recorded by length as "<key>_len".
const maxLoggedString = 64

func sanitizeArgs(args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if s, ok := v.(string); ok && len(s) > maxLoggedString {
			out[k+"_len"] = len(s)
			continue
		}
		out[k] = v
	}
	return out
}

func responseBytes(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	b, err := json.Marshal(result.Content)
	if err != nil {
		return 0
	}
	return len(b)
}

// now is replaced in tests.
var now = time.Now
