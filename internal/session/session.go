// Package session defines the Session record — one command invocation and
// its lifecycle — and the mutations that keep its buffers and status flags
// consistent. Session owns its own per-instance lock, generalizing the
// webpty-pty Session type (internal/pty/session.go in the teacher, which
// guarded a single *os.File PTY handle) to the two-transport, capped,
// drainable model the specification requires.
package session

import (
	"io"
	"sync"
	"time"

	"github.com/shellrun/shelld/internal/sanitize"
)

// StdinMode names the stdio transport a session actually used. It may
// differ from what the caller requested, e.g. on PTY-load fallback.
type StdinMode string

const (
	ModePipe StdinMode = "pipe"
	ModePty  StdinMode = "pty"
)

// Status is the session's terminal classification.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Stream identifies which OS stream a chunk of output arrived on.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

// Transport is the tagged-variant stdio handle a Session owns: either a
// pipe (anonymous OS pipes) or a pty (pseudo-terminal), discriminated by
// StdinMode rather than by interface-embedding polymorphism, per design
// note 9 ("a tagged variant, not polymorphism by inheritance").
type Transport interface {
	// Write sends data to the child's stdin.
	Write(data []byte) (int, error)
	// SendEOF signals end-of-input: close stdin for a pipe, Ctrl-D for a
	// pty.
	SendEOF() error
	// Close releases the transport's OS resources entirely.
	Close() error
}

// Session is a running or recently-finished shell invocation.
type Session struct {
	ID             string
	Command        string
	Cwd            string
	StdinMode      StdinMode
	PID            int
	StartedAt      time.Time
	MaxOutputChars int

	mu               sync.Mutex
	endedAt          time.Time
	aggregated       []byte
	tail             []byte
	pendingStdout    []byte
	pendingStderr    []byte
	totalOutputChars int
	truncated        bool
	backgrounded     bool
	exited           bool
	exitCode         *int
	exitSignal       string
	timedOut         bool
	aborted          bool
	status           Status
	transport        Transport
	ptyMode          bool
	done             chan struct{}
}

// tailChars bounds how much of aggregated is kept in Tail for cheap preview
// transport: large enough to be a useful preview, small enough to stay
// cheap to copy on every append. 4 KiB sits in the middle of the spec's
// suggested 2-8 KiB range.
const tailChars = 4096

// sliceChars bounds how much of a single incoming chunk is processed (and
// sanitized) at a time, per spec.md 4.1's 8 KiB slicing rule.
const sliceChars = 8192

// New creates a fresh, running Session. Callers still need to register it
// with a Registry.
func New(id, command, cwd string, mode StdinMode, pid int, maxOutputChars int, transport Transport) *Session {
	return &Session{
		ID:             id,
		Command:        command,
		Cwd:            cwd,
		StdinMode:      mode,
		PID:            pid,
		StartedAt:      time.Now(),
		MaxOutputChars: maxOutputChars,
		status:         StatusRunning,
		transport:      transport,
		ptyMode:        mode == ModePty,
		done:           make(chan struct{}),
	}
}

// Done returns a channel that is closed once the process's terminal state
// has been recorded (the first MarkExited call), so callers like the
// controller's kill action can wait for the OS to actually report the
// exit after triggering a tree-kill, per the concurrency model's
// "session transitions to finished only when the OS reports exit".
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// AppendOutput sanitizes, slices into <=8KiB pieces, and appends chunk to
// the session's aggregated buffer and the appropriate pending drain buffer,
// enforcing the output cap. It is a no-op once the session has exited.
func (s *Session) AppendOutput(stream Stream, chunk []byte) {
	s.AppendOutputNotify(stream, chunk, nil)
}

// AppendOutputNotify is AppendOutput but invokes onSlice after each <=8KiB
// slice is appended, per spec.md 4.1's "emit a progress update after each
// slice is appended". onSlice may be nil.
func (s *Session) AppendOutputNotify(stream Stream, chunk []byte, onSlice func(Stream, []byte)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exited {
		return
	}

	clean := sanitize.Bytes(chunk, s.ptyMode)
	for len(clean) > 0 {
		n := len(clean)
		if n > sliceChars {
			n = sliceChars
		}
		slice := clean[:n]
		clean = clean[n:]
		appended := s.appendSliceLocked(stream, slice)
		if onSlice != nil && len(appended) > 0 {
			onSlice(stream, appended)
		}
		if s.truncated {
			return
		}
	}
}

func (s *Session) appendSliceLocked(stream Stream, slice []byte) []byte {
	remaining := s.MaxOutputChars - len(s.aggregated)
	if remaining <= 0 {
		s.truncated = true
		s.totalOutputChars += len(slice)
		return nil
	}

	toAppend := slice
	if len(toAppend) > remaining {
		toAppend = toAppend[:remaining]
	}

	s.aggregated = append(s.aggregated, toAppend...)
	s.updateTailLocked()

	switch stream {
	case Stdout:
		s.pendingStdout = append(s.pendingStdout, toAppend...)
	case Stderr:
		s.pendingStderr = append(s.pendingStderr, toAppend...)
	}

	s.totalOutputChars += len(slice)
	if len(toAppend) < len(slice) {
		s.truncated = true
	}
	return toAppend
}

func (s *Session) updateTailLocked() {
	if len(s.aggregated) <= tailChars {
		s.tail = s.aggregated
		return
	}
	s.tail = s.aggregated[len(s.aggregated)-tailChars:]
}

// Drain atomically swaps the pending stdout/stderr buffers for empty ones
// and returns what was drained. Two consecutive drains with no intervening
// append return empty slices the second time (drain idempotence).
func (s *Session) Drain() (stdout, stderr []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stdout, s.pendingStdout = s.pendingStdout, nil
	stderr, s.pendingStderr = s.pendingStderr, nil
	return stdout, stderr
}

// MarkBackgrounded performs the one-way false->true transition.
func (s *Session) MarkBackgrounded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.backgrounded = true
}

// Backgrounded reports whether the session has been handed back to the
// caller as "still running".
func (s *Session) Backgrounded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backgrounded
}

// MarkTimedOut records that the overall timeout fired.
func (s *Session) MarkTimedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timedOut = true
}

// MarkAborted records that the external cancellation signal fired.
func (s *Session) MarkAborted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aborted = true
}

// ExitInfo carries the terminal state recorded by MarkExited.
type ExitInfo struct {
	ExitCode   *int
	ExitSignal string
}

// MarkExited records the process's terminal state. It is idempotent: the
// first call sets EndedAt; later calls (e.g. a kill-induced SIGKILL status
// overwriting a prior natural-exit record) still update the status fields
// but must not move EndedAt again — the registry relies on this to decide
// whether the session is moving live->finished for the first time.
func (s *Session) MarkExited(info ExitInfo) (firstTime bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	firstTime = !s.exited
	if firstTime {
		s.endedAt = time.Now()
	}
	s.exited = true
	s.exitCode = info.ExitCode
	s.exitSignal = info.ExitSignal
	s.status = s.classifyLocked()
	if firstTime {
		close(s.done)
	}
	return firstTime
}

func (s *Session) classifyLocked() Status {
	if s.exitCode != nil && *s.exitCode == 0 && s.exitSignal == "" && !s.timedOut && !s.aborted {
		return StatusCompleted
	}
	return StatusFailed
}

// Snapshot is a consistent, lock-free-to-read copy of a Session's fields,
// used by the controller to build result payloads without holding the
// session lock across I/O.
type Snapshot struct {
	ID               string
	Command          string
	Cwd              string
	StdinMode        StdinMode
	PID              int
	StartedAt        time.Time
	EndedAt          time.Time
	MaxOutputChars   int
	Aggregated       []byte
	Tail             []byte
	TotalOutputChars int
	Truncated        bool
	Backgrounded     bool
	Exited           bool
	ExitCode         *int
	ExitSignal       string
	TimedOut         bool
	Aborted          bool
	Status           Status
}

// Snapshot copies out the session's current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:               s.ID,
		Command:          s.Command,
		Cwd:              s.Cwd,
		StdinMode:        s.StdinMode,
		PID:              s.PID,
		StartedAt:        s.StartedAt,
		EndedAt:          s.endedAt,
		MaxOutputChars:   s.MaxOutputChars,
		Aggregated:       append([]byte(nil), s.aggregated...),
		Tail:             append([]byte(nil), s.tail...),
		TotalOutputChars: s.totalOutputChars,
		Truncated:        s.truncated,
		Backgrounded:     s.backgrounded,
		Exited:           s.exited,
		ExitCode:         s.exitCode,
		ExitSignal:       s.exitSignal,
		TimedOut:         s.timedOut,
		Aborted:          s.aborted,
		Status:           s.status,
	}
}

// Write sends data to the child's stdin through whichever transport the
// session actually uses. Returns io.ErrClosedPipe if there is no live
// transport (e.g. a finished session).
func (s *Session) Write(data []byte) (int, error) {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return 0, io.ErrClosedPipe
	}
	return t.Write(data)
}

// SendEOF signals end-of-input on the session's transport.
func (s *Session) SendEOF() error {
	s.mu.Lock()
	t := s.transport
	s.mu.Unlock()
	if t == nil {
		return io.ErrClosedPipe
	}
	return t.SendEOF()
}

// ReleaseTransport closes the underlying OS resources and clears the
// transport handle, per the spec's "scoped ownership" resource-release
// rule on finish/remove.
func (s *Session) ReleaseTransport() {
	s.mu.Lock()
	t := s.transport
	s.transport = nil
	s.mu.Unlock()
	if t != nil {
		_ = t.Close()
	}
}
