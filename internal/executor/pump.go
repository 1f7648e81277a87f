package executor

import (
	"io"
	"os"

	"github.com/shellrun/shelld/internal/session"
)

// readChunkSize is the buffer size used when reading from a child's
// stdout/stderr pipe or PTY master; Session.AppendOutput further slices
// this into the specification's 8 KiB pieces as it appends.
const readChunkSize = 32 * 1024

// pumpPipe reads from a single stdout or stderr pipe until EOF/error,
// appending every chunk into the session and notifying rs.onUpdate.
func pumpPipe(r io.ReadCloser, stream session.Stream, rs *runState) {
	defer rs.pumpDone.Done()
	buf := make([]byte, readChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			appendAndNotify(rs, stream, buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// pumpPty reads the single merged PTY stream until EOF/error. All output
// on a PTY is attributed to the stdout stream: the terminal itself merges
// stdout and stderr, so there is no separate stderr channel to segregate.
func pumpPty(ptmx *os.File, rs *runState) {
	defer rs.pumpDone.Done()
	buf := make([]byte, readChunkSize)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 {
			appendAndNotify(rs, session.Stdout, buf[:n])
		}
		if err != nil {
			return
		}
	}
}

func appendAndNotify(rs *runState, stream session.Stream, chunk []byte) {
	if rs.onUpdate == nil {
		rs.sess.AppendOutput(stream, chunk)
		return
	}
	rs.sess.AppendOutputNotify(stream, chunk, func(s session.Stream, slice []byte) {
		rs.onUpdate(Update{SessionID: rs.sess.ID, Stream: s, Chunk: slice})
	})
}
