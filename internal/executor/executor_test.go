package executor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shellrun/shelld/internal/config"
	"github.com/shellrun/shelld/internal/logging"
	"github.com/shellrun/shelld/internal/registry"
)

func newTestExecutor() (*Executor, *registry.Registry) {
	log := logging.New("test")
	reg := registry.New(log)
	cfg := config.Config{YieldMs: 2000, MaxOutputChars: config.DefaultMaxOutputChars}
	return NewWithConfig(cfg, reg, log), reg
}

func TestStartFastCommandSettlesSynchronously(t *testing.T) {
	exec, reg := newTestExecutor()
	defer reg.Stop()

	result, err := exec.Start(context.Background(), StartParams{Command: "echo hello"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if strings.TrimSpace(result.Text) != "hello" {
		t.Fatalf("Text = %q, want %q", result.Text, "hello")
	}
	if result.ExitCode == nil || *result.ExitCode != 0 {
		t.Fatalf("ExitCode = %v, want 0", result.ExitCode)
	}
}

func TestStartFailingCommandReturnsError(t *testing.T) {
	exec, reg := newTestExecutor()
	defer reg.Stop()

	_, err := exec.Start(context.Background(), StartParams{Command: "exit 3"})
	if err == nil {
		t.Fatalf("expected error for non-zero exit")
	}
	execErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err type = %T, want *Error", err)
	}
	if execErr.ExitCode == nil || *execErr.ExitCode != 3 {
		t.Fatalf("ExitCode = %v, want 3", execErr.ExitCode)
	}
}

func TestStartEmptyCommandIsInvalidArgument(t *testing.T) {
	exec, reg := newTestExecutor()
	defer reg.Stop()

	_, err := exec.Start(context.Background(), StartParams{Command: "   "})
	if _, ok := err.(*InvalidArgumentError); !ok {
		t.Fatalf("err type = %T, want *InvalidArgumentError", err)
	}
}

func TestStartSlowCommandYieldsThenCompletes(t *testing.T) {
	exec, reg := newTestExecutor()
	defer reg.Stop()

	yieldMs := config.MinYieldMs
	result, err := exec.Start(context.Background(), StartParams{
		Command: "sleep 0.3 && echo done",
		YieldMs: &yieldMs,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if result.Status != "running" {
		t.Fatalf("Status = %v, want running", result.Status)
	}
	if result.SessionID == "" {
		t.Fatalf("SessionID is empty on a backgrounded result")
	}

	sess, found := reg.Get(result.SessionID)
	if !found {
		t.Fatalf("backgrounded session not found in registry")
	}

	select {
	case <-sess.Done():
	case <-time.After(2 * time.Second):
		t.Fatalf("session did not finish in time")
	}

	stdout, _ := reg.Drain(sess)
	if !strings.Contains(string(stdout), "done") {
		t.Fatalf("drained stdout = %q, want it to contain %q", stdout, "done")
	}
}

func TestStartBackgroundReturnsImmediately(t *testing.T) {
	exec, reg := newTestExecutor()
	defer reg.Stop()

	result, err := exec.Start(context.Background(), StartParams{
		Command:    "sleep 0.2",
		Background: true,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if result.Status != "running" {
		t.Fatalf("Status = %v, want running", result.Status)
	}

	sess, found := reg.Get(result.SessionID)
	if !found {
		t.Fatalf("session not found")
	}
	if !sess.Backgrounded() {
		t.Fatalf("session not marked backgrounded")
	}
}

func TestStartTimeoutKillsProcess(t *testing.T) {
	exec, reg := newTestExecutor()
	defer reg.Stop()

	timeout := 1
	yieldMs := 50
	result, err := exec.Start(context.Background(), StartParams{
		Command: "sleep 5",
		Timeout: &timeout,
		YieldMs: &yieldMs,
	})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	sess, found := reg.Get(result.SessionID)
	if !found {
		t.Fatalf("session not found")
	}

	select {
	case <-sess.Done():
	case <-time.After(3 * time.Second):
		t.Fatalf("timed-out session never exited")
	}

	snap := sess.Snapshot()
	if !snap.TimedOut {
		t.Fatalf("TimedOut = false, want true")
	}
}
