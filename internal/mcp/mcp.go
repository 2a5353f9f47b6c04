// Package mcp provides the scriptrunner MCP server, registering the
// run_script tool and publishing model instructions.
package mcp

import (
	_ "embed"

	"github.com/charmbracelet/log"
	"github.com/deixis/scriptrunner"
	"github.com/deixis/scriptrunner/internal/executor"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

//go:embed instructions.md
var Instructions string

// handler holds shared dependencies for all tool handlers.
type handler struct {
	executor *executor.Executor
	logger   *log.Logger
}

// NewServer creates an MCP server with the run_script tool registered.
func NewServer(e *executor.Executor, logger *log.Logger) *mcp.Server {
	h := &handler{
		executor: e,
		logger:   logger,
	}

	mcpOpts := &mcp.ServerOptions{
		Instructions: Instructions,
		Capabilities: &mcp.ServerCapabilities{
			Tools: &mcp.ToolCapabilities{ListChanged: false},
		},
	}
	s := mcp.NewServer(&mcp.Implementation{Name: "scriptrunner", Version: scriptrunner.Version}, mcpOpts)

	mcp.AddTool(s, &mcp.Tool{
		Name: "run_script",
		Description: `Execute Python code and return the result.

The code runs as a fresh interpreter process (python -c <code>) with no state
shared between calls. Output is captured in full and returned once the process
exits or the timeout elapses; a timed-out process is killed and its partial
output discarded.

Args:
    code: Python code to execute
    timeout: Execution timeout in seconds (default: 30)

Returns:
    JSON string with success, stdout, stderr, error, and return_code.
    error is null on success, the captured stderr on a nonzero exit, or a
    message such as "Execution timed out after 30 seconds".
    return_code is -1 only when the execution timed out.`,
	}, h.runScriptHandler)

	return s
}

// textResult is a helper to build a text-only tool result.
func textResult(text string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}, nil, nil
}
