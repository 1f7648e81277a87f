package executor

import (
	"context"
	"strings"
	"time"

	"github.com/shellrun/shelld/internal/session"
	"github.com/shellrun/shelld/internal/treekill"
)

// finalize waits for the output pumps to drain and the process to exit,
// records the terminal state in the registry, releases the transport, and
// — unless the call was already handed back as "running" — settles the
// original Start() call exactly once. This is the specification's "exit
// handler", which "runs once, under any termination cause".
func (e *Executor) finalize(rs *runState) {
	rs.pumpDone.Wait()
	waitErr := rs.cmd.Wait()
	close(rs.exited)

	exitCode, exitSignal := classifyWaitErr(waitErr)
	e.reg.MarkExited(rs.sess, session.ExitInfo{ExitCode: exitCode, ExitSignal: exitSignal})
	rs.sess.ReleaseTransport()

	snap := rs.sess.Snapshot()
	rs.log.Printf("exited pid=%d status=%s exitCode=%v signal=%q duration=%s",
		snap.PID, snap.Status, derefInt(snap.ExitCode), snap.ExitSignal, time.Since(rs.startedAt))

	if rs.sess.Backgrounded() {
		return
	}

	if snap.Status == session.StatusCompleted {
		text := strings.TrimSpace(string(snap.Aggregated))
		if text == "" {
			text = "(no output)"
		}
		rs.settleCh <- settlement{result: &Result{
			Status:     session.StatusCompleted,
			SessionID:  snap.ID,
			PID:        snap.PID,
			Text:       text,
			ExitCode:   snap.ExitCode,
			ExitSignal: snap.ExitSignal,
			Warning:    rs.warning,
		}}
		return
	}

	reason := failureReason(snap.TimedOut, snap.ExitSignal, snap.Aborted, snap.ExitCode, rs.timeoutSeconds)
	rs.settleCh <- settlement{err: &Error{
		SessionID:  snap.ID,
		Reason:     reason,
		ExitCode:   snap.ExitCode,
		ExitSignal: snap.ExitSignal,
	}}
}

// watchAbort races the overall timeout against the external cancellation
// signal and natural process exit. Whichever of the first two fires,
// marks the session accordingly and force-kills the process tree; the
// actual settlement is left to finalize, which observes the resulting
// exit.
func (e *Executor) watchAbort(ctx context.Context, rs *runState) {
	var timeoutC <-chan time.Time
	if rs.timeoutSeconds > 0 {
		timer := time.NewTimer(time.Duration(rs.timeoutSeconds) * time.Second)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case <-timeoutC:
		rs.sess.MarkTimedOut()
		rs.log.Printf("timed out after %d seconds, killing process tree", rs.timeoutSeconds)
	case <-ctx.Done():
		rs.sess.MarkAborted()
		rs.log.Printf("aborted externally, killing process tree")
	case <-rs.exited:
		return
	}

	e.abort(rs)
}

// abort recursively kills the process tree and, in PTY mode, additionally
// closes the PTY master — the specification's "abort path".
func (e *Executor) abort(rs *runState) {
	if rs.sess.PID > 0 {
		if err := treekill.Kill(rs.sess.PID); err != nil {
			rs.log.Printf("tree-kill error: %v", err)
		}
	}
	if rs.ptyMode {
		rs.sess.ReleaseTransport()
	}
}

func derefInt(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
