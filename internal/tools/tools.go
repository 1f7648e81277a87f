package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/shellrun/shelld/internal/controller"
	"github.com/shellrun/shelld/internal/executor"
	"github.com/shellrun/shelld/internal/registry"
)

// Register attaches the "bash" and "process" tools to s.
func Register(s *server.MCPServer, exec *executor.Executor, reg *registry.Registry) {
	bashTool := mcp.NewTool("bash",
		mcp.WithDescription("Run a shell command, optionally in the background, over a pipe or a PTY."),
		mcp.WithString("command", mcp.Required(), mcp.Description("The shell command line to run.")),
		mcp.WithString("workdir", mcp.Description("Working directory; defaults to the server's own.")),
		mcp.WithBoolean("background", mcp.Description("Hand the session back immediately instead of waiting out the yield window.")),
		mcp.WithNumber("yieldMs", mcp.Description("How long to wait for quick completion before backgrounding, in milliseconds.")),
		mcp.WithNumber("timeout", mcp.Description("Overall wall-clock limit before the command is killed, in seconds; <=0 disables it.")),
		mcp.WithString("stdinMode", mcp.Description("Stdio transport: \"pipe\" (default) or \"pty\".")),
	)
	s.AddTool(bashTool, bashHandler(exec))

	processTool := mcp.NewTool("process",
		mcp.WithDescription("Inspect or control a backgrounded bash session: list, poll, log, write, kill, clear, remove."),
		mcp.WithString("action", mcp.Required(), mcp.Description("One of: list, poll, log, write, kill, clear, remove.")),
		mcp.WithString("sessionId", mcp.Description("Target session id; required for every action except list.")),
		mcp.WithString("data", mcp.Description("Bytes to write to the session's stdin (write action).")),
		mcp.WithBoolean("eof", mcp.Description("Send end-of-input after writing data (write action).")),
		mcp.WithNumber("offset", mcp.Description("First line to return (log action).")),
		mcp.WithNumber("limit", mcp.Description("Line count to return; with no offset, the last N lines (log action).")),
	)
	s.AddTool(processTool, processHandler(reg))
}

// contentBlock is one entry of a tool result's "content" array, the only
// block type this server emits.
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// envelope is the wire shape spec.md section 6 mandates for every tool
// call: a human-readable "content" array plus a sibling "details" object
// carrying the structured fields (status, exitCode, ...). It is dumped
// whole into a single MCP text content block, since mcp-go's
// CallToolResult has no native "details" field of its own.
type envelope struct {
	Content []contentBlock `json:"content"`
	Details interface{}    `json:"details"`
}

func newEnvelope(text string, details interface{}) string {
	return mustJSON(envelope{
		Content: []contentBlock{{Type: "text", Text: text}},
		Details: details,
	})
}

func bashHandler(exec *executor.Executor) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := decodeStartParams(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result, err := exec.Start(ctx, params)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(newEnvelope(result.Text, result)), nil
	}
}

func processHandler(reg *registry.Registry) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params, err := decodeControllerParams(req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resp := controller.Dispatch(reg, params)
		if !resp.OK {
			return mcp.NewToolResultError(resp.Err), nil
		}
		return mcp.NewToolResultText(newEnvelope(processText(resp.Data), resp.Data)), nil
	}
}

// processText extracts the "process" action's human-readable payload, when
// it has one (poll and log both return captured output as Text); every
// other action is summarized by its details object alone.
func processText(data interface{}) string {
	switch v := data.(type) {
	case controller.PollResult:
		return v.Text
	case controller.LogResult:
		return v.Text
	default:
		return ""
	}
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("{\"marshalError\":%q}", err.Error())
	}
	return string(b)
}
