// Package tools wires the executor and controller into the two MCP tools
// the specification exposes, "bash" and "process", generalizing the
// AIDevTools process-tool handlers (other_examples/
// eliezedeck-AIDevTools__processes.go, which hand-decoded
// request.Params.Arguments.(map[string]any) per field) into typed decoders
// over StartParams and controller.Params.
package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/shellrun/shelld/internal/controller"
	"github.com/shellrun/shelld/internal/executor"
	"github.com/shellrun/shelld/internal/session"
)

// decodeStartParams builds an executor.StartParams from the "bash" tool's
// raw arguments, never panicking on a malformed field: each optional field
// is decoded leniently and required ones fall through to the executor's own
// validation (e.g. an empty command), so the caller always gets a
// structured error rather than a crashed tool.
func decodeStartParams(req mcp.CallToolRequest) (executor.StartParams, error) {
	command, err := req.RequireString("command")
	if err != nil {
		return executor.StartParams{}, fmt.Errorf("missing or invalid \"command\" argument")
	}

	args, _ := req.Params.Arguments.(map[string]any)

	params := executor.StartParams{Command: command}
	params.Workdir = stringField(args, "workdir")

	if env, ok := args["env"].(map[string]any); ok {
		params.Env = make(map[string]string, len(env))
		for k, v := range env {
			if s, ok := v.(string); ok {
				params.Env[k] = s
			}
		}
	}

	if ms, ok := numberField(args, "yieldMs"); ok {
		v := int(ms)
		params.YieldMs = &v
	}
	if bg, ok := args["background"].(bool); ok {
		params.Background = bg
	}
	if to, ok := numberField(args, "timeout"); ok {
		v := int(to)
		params.Timeout = &v
	}
	if mode := stringField(args, "stdinMode"); mode == string(session.ModePty) {
		params.StdinMode = session.ModePty
	}

	return params, nil
}

// decodeControllerParams builds a controller.Params from the "process"
// tool's raw arguments.
func decodeControllerParams(req mcp.CallToolRequest) (controller.Params, error) {
	action, err := req.RequireString("action")
	if err != nil {
		return controller.Params{}, fmt.Errorf("missing or invalid \"action\" argument")
	}

	args, _ := req.Params.Arguments.(map[string]any)

	params := controller.Params{Action: controller.Action(action)}
	params.SessionID = stringField(args, "sessionId")
	params.Data = stringField(args, "data")
	if eof, ok := args["eof"].(bool); ok {
		params.EOF = eof
	}
	if offset, ok := numberField(args, "offset"); ok {
		v := int(offset)
		params.Offset = &v
	}
	if limit, ok := numberField(args, "limit"); ok {
		v := int(limit)
		params.Limit = &v
	}

	if params.Action != controller.ActionList && params.SessionID == "" {
		return controller.Params{}, fmt.Errorf("missing or invalid \"sessionId\" argument")
	}

	return params, nil
}

func stringField(args map[string]any, key string) string {
	if args == nil {
		return ""
	}
	if s, ok := args[key].(string); ok {
		return s
	}
	return ""
}

// numberField reads a JSON-numeric field: the MCP transport decodes all
// tool arguments through encoding/json, so numbers always arrive as
// float64 regardless of the value's logical type.
func numberField(args map[string]any, key string) (float64, bool) {
	if args == nil {
		return 0, false
	}
	f, ok := args[key].(float64)
	return f, ok
}
