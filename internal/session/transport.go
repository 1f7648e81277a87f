package session

import (
	"io"
	"os"
	"sync"

	ptylib "github.com/creack/pty"
)

// PipeTransport wraps a child process's stdin pipe. EOF is signaled by
// closing it.
type PipeTransport struct {
	mu    sync.Mutex
	stdin io.WriteCloser
}

// NewPipeTransport wraps an already-opened stdin pipe (from exec.Cmd.StdinPipe).
func NewPipeTransport(stdin io.WriteCloser) *PipeTransport {
	return &PipeTransport{stdin: stdin}
}

func (p *PipeTransport) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return 0, io.ErrClosedPipe
	}
	return p.stdin.Write(data)
}

func (p *PipeTransport) SendEOF() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return io.ErrClosedPipe
	}
	err := p.stdin.Close()
	p.stdin = nil
	return err
}

func (p *PipeTransport) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stdin == nil {
		return nil
	}
	err := p.stdin.Close()
	p.stdin = nil
	return err
}

// eof is the ASCII end-of-transmission byte a terminal's line discipline
// interprets as EOF when it appears at the start of a line.
const eof = 0x04

// PtyTransport wraps a PTY master file descriptor, generalizing the
// webpty-pty Session.Write/Resize pair (internal/pty/session.go in the
// teacher), which wrote directly to the *os.File under a mutex.
type PtyTransport struct {
	mu   sync.Mutex
	ptmx *os.File
}

// NewPtyTransport wraps an already-opened PTY master (from creack/pty.Start).
func NewPtyTransport(ptmx *os.File) *PtyTransport {
	return &PtyTransport{ptmx: ptmx}
}

func (p *PtyTransport) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptmx == nil {
		return 0, io.ErrClosedPipe
	}
	return p.ptmx.Write(data)
}

func (p *PtyTransport) SendEOF() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptmx == nil {
		return io.ErrClosedPipe
	}
	_, err := p.ptmx.Write([]byte{eof})
	return err
}

func (p *PtyTransport) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ptmx == nil {
		return nil
	}
	err := p.ptmx.Close()
	p.ptmx = nil
	return err
}

// Setsize sets the PTY's window geometry. Nothing in this module calls it:
// the executor applies the fixed initial 120x30 geometry at spawn through
// creack/pty's StartWithSize, and no resize operation is exposed.
func Setsize(ptmx *os.File, cols, rows int) error {
	return ptylib.Setsize(ptmx, &ptylib.Winsize{Cols: uint16(cols), Rows: uint16(rows)})
}
