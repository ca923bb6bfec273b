package domain

// ToolInfo describes a callable tool to API consumers.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ToolResult is the structured outcome of a gateway invocation. Tool-level
// failures are reported here rather than as transport errors so callers can
// tell "the gateway rejected this" apart from "the tool tried and failed".
type ToolResult struct {
	Success         bool   `json:"success"`
	Result          any    `json:"result,omitempty"`
	Error           string `json:"error,omitempty"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
}
