// Package ptyload lazily probes for a working PTY backend and caches the
// result — including a cached failure — so that a broken PTY environment
// (no /dev/ptmx, sandboxed container, unsupported OS) is detected once and
// never retried, per the specification's "PTY availability caching" design
// note. Backed by github.com/creack/pty, the same library webpty-pty used
// for its terminal sessions.
package ptyload

import (
	"fmt"
	"sync"

	"github.com/creack/pty"
)

var (
	once    sync.Once
	loadErr error
)

// Error is returned (wrapped) when the PTY backend cannot be used on this
// host. Callers use it to produce the spec's user-visible fallback warning.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pty backend unavailable: %v", e.cause)
}

func (e *Error) Unwrap() error { return e.cause }

// Load probes the PTY backend the first time it is called and caches the
// outcome (success or failure) for every subsequent call in the process
// lifetime.
func Load() error {
	once.Do(func() {
		ptmx, tty, err := pty.Open()
		if err != nil {
			loadErr = &Error{cause: err}
			return
		}
		ptmx.Close()
		tty.Close()
	})
	return loadErr
}

// resetForTest clears the cached probe outcome; test-only.
func resetForTest() {
	once = sync.Once{}
	loadErr = nil
}
