package controller

import (
	"testing"
	"time"

	"github.com/shellrun/shelld/internal/logging"
	"github.com/shellrun/shelld/internal/registry"
	"github.com/shellrun/shelld/internal/session"
)

type fakeTransport struct {
	written []byte
	eof     bool
}

func (f *fakeTransport) Write(data []byte) (int, error) {
	f.written = append(f.written, data...)
	return len(data), nil
}
func (f *fakeTransport) SendEOF() error { f.eof = true; return nil }
func (f *fakeTransport) Close() error   { return nil }

func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r := registry.New(logging.New("test"))
	t.Cleanup(r.Stop)
	return r
}

func TestDispatchUnknownAction(t *testing.T) {
	r := newRegistry(t)
	resp := Dispatch(r, Params{Action: "bogus"})
	if resp.OK {
		t.Fatalf("expected failure for unknown action")
	}
}

func TestHandleListSortsByStartedAtDescending(t *testing.T) {
	r := newRegistry(t)

	older := session.New("older", "echo 1", "/tmp", session.ModePipe, 1, 1000, nil)
	r.Add(older)
	time.Sleep(2 * time.Millisecond)
	newer := session.New("newer", "echo 2", "/tmp", session.ModePipe, 2, 1000, nil)
	r.Add(newer)

	resp := Dispatch(r, Params{Action: ActionList})
	if !resp.OK {
		t.Fatalf("list failed: %s", resp.Err)
	}
	result := resp.Data.(ListResult)
	if len(result.Sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(result.Sessions))
	}
	if result.Sessions[0].ID != "newer" {
		t.Fatalf("first session = %s, want newer", result.Sessions[0].ID)
	}
}

func TestHandlePollRequiresBackgrounded(t *testing.T) {
	r := newRegistry(t)
	s := session.New("s1", "echo hi", "/tmp", session.ModePipe, 1, 1000, nil)
	r.Add(s)

	resp := Dispatch(r, Params{Action: ActionPoll, SessionID: "s1"})
	if resp.OK {
		t.Fatalf("expected failure polling non-backgrounded session")
	}
}

func TestHandlePollDrainsAndReportsExit(t *testing.T) {
	r := newRegistry(t)
	s := session.New("s2", "echo hi", "/tmp", session.ModePipe, 1, 1000, nil)
	r.Add(s)
	s.MarkBackgrounded()
	s.AppendOutput(session.Stdout, []byte("out"))
	s.AppendOutput(session.Stderr, []byte("err"))
	zero := 0
	r.MarkExited(s, session.ExitInfo{ExitCode: &zero})

	resp := Dispatch(r, Params{Action: ActionPoll, SessionID: "s2"})
	if !resp.OK {
		t.Fatalf("poll failed: %s", resp.Err)
	}
	result := resp.Data.(PollResult)
	if result.Text != "out\nerr" {
		t.Fatalf("text = %q, want %q", result.Text, "out\nerr")
	}
	if result.ExitCode == nil || *result.ExitCode != 0 {
		t.Fatalf("exitCode = %v, want 0", result.ExitCode)
	}
}

func TestHandleLogTailView(t *testing.T) {
	r := newRegistry(t)
	s := session.New("s3", "seq 5", "/tmp", session.ModePipe, 1, 1000, nil)
	r.Add(s)
	s.AppendOutput(session.Stdout, []byte("1\n2\n3\n4\n5\n"))

	limit := 2
	resp := Dispatch(r, Params{Action: ActionLog, SessionID: "s3", Limit: &limit})
	if !resp.OK {
		t.Fatalf("log failed: %s", resp.Err)
	}
	result := resp.Data.(LogResult)
	if result.Text != "4\n5" {
		t.Fatalf("text = %q, want %q", result.Text, "4\n5")
	}
	if result.TotalLines != 5 {
		t.Fatalf("totalLines = %d, want 5", result.TotalLines)
	}
}

func TestHandleLogOffsetRange(t *testing.T) {
	r := newRegistry(t)
	s := session.New("s4", "seq 5", "/tmp", session.ModePipe, 1, 1000, nil)
	r.Add(s)
	s.AppendOutput(session.Stdout, []byte("1\n2\n3\n4\n5\n"))

	offset, limit := 1, 2
	resp := Dispatch(r, Params{Action: ActionLog, SessionID: "s4", Offset: &offset, Limit: &limit})
	if !resp.OK {
		t.Fatalf("log failed: %s", resp.Err)
	}
	result := resp.Data.(LogResult)
	if result.Text != "2\n3" {
		t.Fatalf("text = %q, want %q", result.Text, "2\n3")
	}
}

func TestHandleWriteRequiresBackgroundedAndLiveTransport(t *testing.T) {
	r := newRegistry(t)
	ft := &fakeTransport{}
	s := session.New("s5", "cat", "/tmp", session.ModePipe, 1, 1000, ft)
	r.Add(s)

	resp := Dispatch(r, Params{Action: ActionWrite, SessionID: "s5", Data: "hi"})
	if resp.OK {
		t.Fatalf("expected failure writing to non-backgrounded session")
	}

	s.MarkBackgrounded()
	resp = Dispatch(r, Params{Action: ActionWrite, SessionID: "s5", Data: "hi", EOF: true})
	if !resp.OK {
		t.Fatalf("write failed: %s", resp.Err)
	}
	if string(ft.written) != "hi" {
		t.Fatalf("transport received %q, want %q", ft.written, "hi")
	}
	if !ft.eof {
		t.Fatalf("EOF not sent")
	}
}

func TestHandleClearOnlyForFinishedSessions(t *testing.T) {
	r := newRegistry(t)
	s := session.New("s6", "echo hi", "/tmp", session.ModePipe, 1, 1000, nil)
	r.Add(s)

	resp := Dispatch(r, Params{Action: ActionClear, SessionID: "s6"})
	if resp.OK {
		t.Fatalf("expected failure clearing a live session")
	}

	r.MarkExited(s, session.ExitInfo{})
	resp = Dispatch(r, Params{Action: ActionClear, SessionID: "s6"})
	if !resp.OK {
		t.Fatalf("clear failed: %s", resp.Err)
	}
	if _, found := r.GetFinished("s6"); found {
		t.Fatalf("session still present after clear")
	}
}

func TestDeriveName(t *testing.T) {
	tests := []struct {
		command string
		want    string
	}{
		{"git status", "git status"},
		{"npm install --save-dev foo", "npm install"},
		{"ls -la /tmp", "ls /tmp"},
		{"sudo -i", "sudo -i"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := deriveName(tt.command); got != tt.want {
			t.Errorf("deriveName(%q) = %q, want %q", tt.command, got, tt.want)
		}
	}
}
