// Package controller implements the stateless follow-up operations
// (list, poll, log, write, kill, clear, remove) against the session
// registry. It generalizes webpty-pty's Server.handle* methods
// (internal/api/server.go in the teacher, which dispatched spawn/write/
// resize/kill/list over a UNIX-socket JSON protocol) into the
// specification's seven-action "process" tool contract.
package controller

import "fmt"

// Action names the dispatched operation, mirroring the "process" tool's
// enumerated action parameter.
type Action string

const (
	ActionList   Action = "list"
	ActionPoll   Action = "poll"
	ActionLog    Action = "log"
	ActionWrite  Action = "write"
	ActionKill   Action = "kill"
	ActionClear  Action = "clear"
	ActionRemove Action = "remove"
)

// Params is the validated record the "process" tool's dynamic argument
// blob is translated into at the service edge.
type Params struct {
	Action    Action
	SessionID string
	Data      string
	EOF       bool
	Offset    *int
	Limit     *int
}

// Response mirrors webpty-pty's api.Response{Ok, Err, Data} shape
// (internal/api/messages.go in the teacher), generalized from a
// socket-protocol envelope into the controller's in-process return value;
// internal/tools converts it to an MCP CallToolResult.
type Response struct {
	OK   bool
	Err  string
	Data interface{}
}

func fail(format string, args ...interface{}) Response {
	return Response{OK: false, Err: fmt.Sprintf(format, args...)}
}

func ok(data interface{}) Response {
	return Response{OK: true, Data: data}
}
