//go:build windows

package executor

import "os/exec"

// classifyWaitErr has no signal concept on Windows; every non-nil wait
// error is surfaced as an exit code.
func classifyWaitErr(err error) (exitCode *int, exitSignal string) {
	if err == nil {
		zero := 0
		return &zero, ""
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		code := exitErr.ExitCode()
		return &code, ""
	}
	return nil, ""
}
