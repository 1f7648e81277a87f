package controller

import (
	"sort"
	"strings"
	"time"

	"github.com/shellrun/shelld/internal/registry"
	"github.com/shellrun/shelld/internal/session"
	"github.com/shellrun/shelld/internal/treekill"
)

// killWaitTimeout bounds how long the "kill" action waits for the OS to
// confirm death before reporting success anyway; treekill.Kill itself
// already tolerates already-dead processes, so this only guards against a
// wedged child that ignores SIGKILL (e.g. stuck in uninterruptible I/O).
const killWaitTimeout = 3 * time.Second

// Dispatch runs a single controller action against the registry, mirroring
// webpty-pty's Server.handle dispatch switch (internal/api/server.go in the
// teacher) generalized from a socket-protocol command set to the
// specification's seven "process" tool actions.
func Dispatch(reg *registry.Registry, params Params) Response {
	switch params.Action {
	case ActionList:
		return handleList(reg)
	case ActionPoll:
		return handlePoll(reg, params)
	case ActionLog:
		return handleLog(reg, params)
	case ActionWrite:
		return handleWrite(reg, params)
	case ActionKill:
		return handleKill(reg, params)
	case ActionClear:
		return handleClear(reg, params)
	case ActionRemove:
		return handleRemove(reg, params)
	default:
		return fail("unknown action %q", params.Action)
	}
}

func handleList(reg *registry.Registry) Response {
	running := reg.ListRunning()
	finished := reg.ListFinished()

	summaries := make([]SessionSummary, 0, len(running)+len(finished))
	for _, s := range running {
		summaries = append(summaries, buildSummary(s.Snapshot()))
	}
	for _, s := range finished {
		summaries = append(summaries, buildSummary(s.Snapshot()))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].StartedAt.After(summaries[j].StartedAt)
	})

	return ok(ListResult{Sessions: summaries})
}

func lookup(reg *registry.Registry, id string) (*session.Session, bool) {
	if s, found := reg.Get(id); found {
		return s, true
	}
	return reg.GetFinished(id)
}

func handlePoll(reg *registry.Registry, params Params) Response {
	s, found := lookup(reg, params.SessionID)
	if !found {
		return fail("no session with id %q", params.SessionID)
	}
	if !s.Backgrounded() {
		return fail("session %q was not backgrounded; poll only applies after a yield handoff", params.SessionID)
	}

	stdout, stderr := reg.Drain(s)
	var b strings.Builder
	if len(stdout) > 0 {
		b.Write(stdout)
	}
	if len(stderr) > 0 {
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.Write(stderr)
	}

	snap := s.Snapshot()
	result := PollResult{Status: string(snap.Status), Text: b.String()}
	if snap.Exited {
		result.ExitCode = snap.ExitCode
		result.ExitSignal = snap.ExitSignal
	}
	return ok(result)
}

func logLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

func handleLog(reg *registry.Registry, params Params) Response {
	s, found := lookup(reg, params.SessionID)
	if !found {
		return fail("no session with id %q", params.SessionID)
	}

	snap := s.Snapshot()
	lines := logLines(string(snap.Aggregated))
	total := len(lines)

	var selected []string
	switch {
	case params.Offset == nil && params.Limit != nil:
		// Tail view: the last N lines.
		n := *params.Limit
		if n < 0 {
			n = 0
		}
		if n > total {
			n = total
		}
		selected = lines[total-n:]
	default:
		offset := 0
		if params.Offset != nil {
			offset = *params.Offset
		}
		if offset < 0 {
			offset = 0
		}
		if offset > total {
			offset = total
		}
		end := total
		if params.Limit != nil {
			limit := *params.Limit
			if limit < 0 {
				limit = 0
			}
			if offset+limit < end {
				end = offset + limit
			}
		}
		selected = lines[offset:end]
	}

	return ok(LogResult{
		Text:       strings.Join(selected, "\n"),
		TotalLines: total,
		TotalChars: snap.TotalOutputChars,
	})
}

func handleWrite(reg *registry.Registry, params Params) Response {
	s, found := reg.Get(params.SessionID)
	if !found {
		if _, finished := reg.GetFinished(params.SessionID); finished {
			return fail("session %q has already exited; stdin is no longer writable", params.SessionID)
		}
		return fail("no session with id %q", params.SessionID)
	}
	if !s.Backgrounded() {
		return fail("session %q was not backgrounded; write only applies after a yield handoff", params.SessionID)
	}

	wrote := 0
	if params.Data != "" {
		n, err := s.Write([]byte(params.Data))
		if err != nil {
			return fail("write to session %q failed: %v", params.SessionID, err)
		}
		wrote = n
	}
	if params.EOF {
		if err := s.SendEOF(); err != nil {
			return fail("sending EOF to session %q failed: %v", params.SessionID, err)
		}
	}
	return ok(WriteResult{Wrote: wrote})
}

func handleKill(reg *registry.Registry, params Params) Response {
	s, found := reg.Get(params.SessionID)
	if !found {
		if _, finished := reg.GetFinished(params.SessionID); finished {
			return ok(KillResult{Status: "already exited"})
		}
		return fail("no session with id %q", params.SessionID)
	}
	if !s.Backgrounded() {
		return fail("session %q was not backgrounded; kill only applies after a yield handoff", params.SessionID)
	}

	snap := s.Snapshot()
	if snap.PID > 0 {
		if err := treekill.Kill(snap.PID); err != nil {
			return fail("killing session %q failed: %v", params.SessionID, err)
		}
	}

	select {
	case <-s.Done():
	case <-time.After(killWaitTimeout):
	}

	reg.MarkExited(s, session.ExitInfo{ExitSignal: "SIGKILL"})
	return ok(KillResult{Status: "killed"})
}

func handleClear(reg *registry.Registry, params Params) Response {
	if _, live := reg.Get(params.SessionID); live {
		return fail("session %q is still running; kill or remove it instead", params.SessionID)
	}
	if _, found := reg.GetFinished(params.SessionID); !found {
		return fail("no session with id %q", params.SessionID)
	}
	reg.Delete(params.SessionID)
	return ok(ClearResult{})
}

func handleRemove(reg *registry.Registry, params Params) Response {
	if s, live := reg.Get(params.SessionID); live {
		snap := s.Snapshot()
		if snap.PID > 0 {
			_ = treekill.Kill(snap.PID)
		}
		select {
		case <-s.Done():
		case <-time.After(killWaitTimeout):
		}
		reg.MarkExited(s, session.ExitInfo{ExitSignal: "SIGKILL"})
		reg.Delete(params.SessionID)
		return ok(RemoveResult{})
	}
	if _, found := reg.GetFinished(params.SessionID); !found {
		return fail("no session with id %q", params.SessionID)
	}
	reg.Delete(params.SessionID)
	return ok(RemoveResult{})
}
