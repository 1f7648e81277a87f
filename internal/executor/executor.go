// Package executor starts a command, wires its stdio into the session
// registry, and runs the yield/timeout/exit race that decides whether the
// caller gets a synchronous result or a "still running" handoff. It
// generalizes webpty-pty's SpawnShell (internal/pty/spawn.go in the
// teacher) — which always started an interactive login shell over a PTY,
// wired to a FIFO and log file for an external reader — into one-shot
// command execution over either a pipe or a PTY, racing against a yield
// window, an overall timeout, and an external cancellation signal.
package executor

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shellrun/shelld/internal/config"
	"github.com/shellrun/shelld/internal/logging"
	"github.com/shellrun/shelld/internal/ptyload"
	"github.com/shellrun/shelld/internal/registry"
	"github.com/shellrun/shelld/internal/session"
	"github.com/shellrun/shelld/internal/shell"
	"github.com/shellrun/shelld/internal/treekill"

	ptylib "github.com/creack/pty"
)

// ptyCols, ptyRows are the specification's fixed initial PTY geometry. No
// resize operation is exposed.
const (
	ptyCols = 120
	ptyRows = 30
)

// Executor spawns commands and owns the yield/timeout/exit race.
type Executor struct {
	cfg config.Config
	reg *registry.Registry
	log *logging.Logger
}

// New constructs an Executor against the given registry, configured from
// the process environment.
func New(reg *registry.Registry, log *logging.Logger) *Executor {
	return &Executor{cfg: config.FromEnv(), reg: reg, log: log}
}

// NewWithConfig is New but with an explicit Config, for tests that need
// deterministic clamps instead of reading the environment.
func NewWithConfig(cfg config.Config, reg *registry.Registry, log *logging.Logger) *Executor {
	return &Executor{cfg: cfg, reg: reg, log: log}
}

type settlement struct {
	result *Result
	err    error
}

// runState is the bundle of per-invocation plumbing that the background
// goroutines (output pumps, abort watcher, exit finalizer) share.
type runState struct {
	sess           *session.Session
	cmd            *exec.Cmd
	ptyMode        bool
	onUpdate       func(Update)
	timeoutSeconds int
	startedAt      time.Time
	warning        string
	settleCh       chan settlement
	exited         chan struct{}
	pumpDone       sync.WaitGroup
	log            *logging.Logger
}

// Start spawns params.Command and returns either a "running" Result (once
// the yield window elapses with the process still alive, or immediately
// when Background is set) or a completed Result. Failures settle as an
// *Error / *InvalidArgumentError. Exactly one of these outcomes is ever
// returned to the caller; output capture and registry bookkeeping continue
// in the background after a "running" handoff.
func (e *Executor) Start(ctx context.Context, params StartParams) (*Result, error) {
	if strings.TrimSpace(params.Command) == "" {
		return nil, &InvalidArgumentError{Message: "command must be a non-empty string"}
	}

	stdinMode := params.resolvedStdinMode()
	timeoutSeconds := params.resolvedTimeoutSeconds()
	yieldWindow := time.Duration(params.resolvedYieldMs(e.cfg)) * time.Millisecond
	maxOutputChars := resolvedMaxOutputChars(e.cfg)

	resolvedShell, err := shell.Resolve()
	if err != nil {
		return nil, &InvalidArgumentError{Message: err.Error()}
	}

	workdir := params.Workdir
	if workdir == "" {
		if wd, wdErr := os.Getwd(); wdErr == nil {
			workdir = wd
		}
	}

	env := mergeEnv(os.Environ(), params.Env)

	var warning string
	if stdinMode == session.ModePty {
		if loadErr := ptyload.Load(); loadErr != nil {
			warning = fmt.Sprintf("Warning: PTY backend unavailable (%v); falling back to pipe mode.", loadErr)
			stdinMode = session.ModePipe
			e.log.Printf("pty load failed, falling back to pipe: %v", loadErr)
		} else {
			env = ensureTerm(env)
		}
	}

	cmd := exec.Command(resolvedShell.Path, resolvedShell.CommandFlag, params.Command)
	cmd.Dir = workdir
	cmd.Env = env

	sess, runPump, startErr := e.spawn(cmd, stdinMode, params.Command, workdir, maxOutputChars)
	if startErr != nil {
		return nil, &InvalidArgumentError{Message: fmt.Sprintf("failed to start command: %v", startErr)}
	}

	sessLog := e.log.With("session " + sess.ID)
	sessLog.Printf("started pid=%d mode=%s command=%q", sess.PID, stdinMode, params.Command)

	rs := &runState{
		sess:           sess,
		cmd:            cmd,
		ptyMode:        stdinMode == session.ModePty,
		onUpdate:       params.OnUpdate,
		timeoutSeconds: timeoutSeconds,
		startedAt:      time.Now(),
		warning:        warning,
		settleCh:       make(chan settlement, 1),
		exited:         make(chan struct{}),
		log:            sessLog,
	}

	runPump(rs)
	go e.finalize(rs)
	go e.watchAbort(ctx, rs)

	if params.Background {
		e.reg.MarkBackgrounded(sess)
		return &Result{Status: session.StatusRunning, SessionID: sess.ID, PID: sess.PID, Warning: warning}, nil
	}

	yieldTimer := time.NewTimer(yieldWindow)
	defer yieldTimer.Stop()

	select {
	case <-yieldTimer.C:
		e.reg.MarkBackgrounded(sess)
		return &Result{Status: session.StatusRunning, SessionID: sess.ID, PID: sess.PID, Warning: warning}, nil
	case s := <-rs.settleCh:
		return s.result, s.err
	}
}

func mergeEnv(base []string, overlay map[string]string) []string {
	if len(overlay) == 0 {
		return base
	}
	merged := make([]string, 0, len(base)+len(overlay))
	merged = append(merged, base...)
	for k, v := range overlay {
		merged = append(merged, k+"="+v)
	}
	return merged
}

func ensureTerm(env []string) []string {
	for _, kv := range env {
		if strings.HasPrefix(kv, "TERM=") {
			return env
		}
	}
	return append(env, "TERM=xterm-256color")
}

// spawn starts cmd with the chosen transport and returns the constructed
// Session plus a closure that, once the Session exists, starts the output
// pump goroutine(s) bound to it (pumps need the session to append into,
// but stdio pipes must be requested before cmd.Start()).
func (e *Executor) spawn(cmd *exec.Cmd, mode session.StdinMode, command, workdir string, maxOutputChars int) (*session.Session, func(*runState), error) {
	if mode == session.ModePty {
		// creack/pty already makes the child a session (and therefore
		// process-group) leader via Setsid, so the process-group kill in
		// treekill works without an explicit Setpgid here; calling it
		// would conflict with Setsid on the same SysProcAttr.
		ptmx, err := ptylib.StartWithSize(cmd, &ptylib.Winsize{Cols: ptyCols, Rows: ptyRows})
		if err != nil {
			return nil, nil, err
		}
		transport := session.NewPtyTransport(ptmx)
		sess := session.New(uuid.New().String(), command, workdir, mode, cmd.Process.Pid, maxOutputChars, transport)
		e.reg.Add(sess)
		runPump := func(rs *runState) {
			rs.pumpDone.Add(1)
			go pumpPty(ptmx, rs)
		}
		return sess, runPump, nil
	}

	treekill.Setpgid(cmd)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, err
	}

	transport := session.NewPipeTransport(stdin)
	sess := session.New(uuid.New().String(), command, workdir, mode, cmd.Process.Pid, maxOutputChars, transport)
	e.reg.Add(sess)

	runPump := func(rs *runState) {
		rs.pumpDone.Add(2)
		go pumpPipe(stdout, session.Stdout, rs)
		go pumpPipe(stderr, session.Stderr, rs)
	}
	return sess, runPump, nil
}
