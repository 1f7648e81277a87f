// Command shelld runs the shell-session execution service as an MCP
// server over stdio, exposing the "bash" and "process" tools. It
// generalizes webpty-pty's cmd/webpty-pty/main.go in the teacher, which
// bound a UNIX socket and served a hand-rolled JSON protocol, into an
// MCP stdio server built on github.com/mark3labs/mcp-go.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/shellrun/shelld/internal/config"
	"github.com/shellrun/shelld/internal/executor"
	"github.com/shellrun/shelld/internal/logging"
	"github.com/shellrun/shelld/internal/registry"
	"github.com/shellrun/shelld/internal/tools"
	"github.com/shellrun/shelld/internal/treekill"
)

func main() {
	jobTTL := flag.Duration("job-ttl", 10*time.Minute, "How long a finished session's output stays available before it is swept.")
	flag.Parse()

	log := logging.New("shelld")
	log.Printf("starting with job-ttl=%s", *jobTTL)

	reg := registry.New(log.With("registry"))
	reg.SetJobTTL(*jobTTL)

	cfg := config.FromEnv()
	log.Printf("resolved config yield_ms=%d max_output_chars=%d", cfg.YieldMs, cfg.MaxOutputChars)
	exec := executor.NewWithConfig(cfg, reg, log.With("executor"))

	mcpServer := server.NewMCPServer("shelld", "0.1.0")
	tools.Register(mcpServer, exec, reg)

	go func() {
		if err := server.ServeStdio(mcpServer); err != nil {
			log.Printf("stdio server exited: %v", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("shutting down, killing live sessions...")
	for _, sess := range reg.ListRunning() {
		snap := sess.Snapshot()
		if snap.PID <= 0 {
			continue
		}
		_ = treekill.Kill(snap.PID)
	}
	reg.Stop()
	log.Println("shutdown complete")
}
