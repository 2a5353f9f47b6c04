package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type runScriptParams struct {
	Code    string `json:"code" jsonschema:"Python code to execute"`
	Timeout int    `json:"timeout,omitempty" jsonschema:"Execution timeout in seconds (default: 30)"`
}

// runScriptHandler always answers with the JSON report; script failures,
// timeouts and spawn failures are part of the report, not tool errors.
func (h *handler) runScriptHandler(ctx context.Context, req *mcp.CallToolRequest, params runScriptParams) (*mcp.CallToolResult, any, error) {
	res := h.executor.Execute(ctx, params.Code, params.Timeout)
	if h.logger != nil {
		h.logger.Debug("run_script answered", "run_id", res.RunID, "success", res.Succeeded())
	}
	return textResult(res.Report().JSON())
}
