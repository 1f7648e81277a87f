package executor

import (
	"github.com/shellrun/shelld/internal/config"
	"github.com/shellrun/shelld/internal/session"
)

// StartParams is the validated record the "bash" tool's dynamic-typed
// argument blob is translated into at the service edge, per design note
// "Dynamic-typed parameter blobs at the agent boundary should be
// translated to a validated record type".
type StartParams struct {
	Command    string
	Workdir    string
	Env        map[string]string
	YieldMs    *int // nil means "use the configured default"
	Background bool
	Timeout    *int // seconds; nil means "use the configured default"; <=0 disables
	StdinMode  session.StdinMode
	OnUpdate   func(Update)
}

// Update is a progress notification emitted after each captured output
// slice is appended to a session's buffers.
type Update struct {
	SessionID string
	Stream    session.Stream
	Chunk     []byte
}

// resolvedYieldMs applies the clamp-and-default rule: ignored (treated as
// 0) when Background is requested, otherwise clamped to
// [config.MinYieldMs, config.MaxYieldMs] with cfg.YieldMs as the default.
func (p StartParams) resolvedYieldMs(cfg config.Config) int {
	if p.Background {
		return 0
	}
	if p.YieldMs == nil {
		return cfg.YieldMs
	}
	return config.ClampYieldMs(*p.YieldMs)
}

// resolvedTimeoutSeconds applies default 1800s, disabled when <=0.
func (p StartParams) resolvedTimeoutSeconds() int {
	if p.Timeout == nil {
		return config.DefaultTimeoutSeconds
	}
	return *p.Timeout
}

// resolvedStdinMode defaults to pipe.
func (p StartParams) resolvedStdinMode() session.StdinMode {
	if p.StdinMode == "" {
		return session.ModePipe
	}
	return p.StdinMode
}

// resolvedMaxOutputChars is not caller-overridable in the current
// parameter set (spec.md section 6 only exposes it via the
// PI_BASH_MAX_OUTPUT_CHARS environment variable), so it is always the
// configured value.
func resolvedMaxOutputChars(cfg config.Config) int {
	return cfg.MaxOutputChars
}

// Result is the outcome of Start: either "running" (backgrounded), or a
// completed run's captured output. Failures are returned as an error
// (*Error) instead, matching "in-flight calls never leak unsettled" /
// exactly one terminal settlement.
type Result struct {
	Status     session.Status `json:"status"`
	SessionID  string         `json:"sessionId,omitempty"`
	PID        int            `json:"pid,omitempty"`
	Text       string         `json:"text"`
	ExitCode   *int           `json:"exitCode,omitempty"`
	ExitSignal string         `json:"exitSignal,omitempty"`
	Warning    string         `json:"warning,omitempty"`
}
