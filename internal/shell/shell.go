// Package shell resolves the interpreter binary and the flag it expects for
// "run this string as a command" invocation, per host OS. Generalizes the
// webpty-pty DetectShell helper, which only ever looked for an interactive
// login shell, into a resolver for one-shot command execution.
package shell

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
)

// Resolved names the interpreter and the flag that makes it execute a single
// command string non-interactively.
type Resolved struct {
	Path       string
	CommandFlag string
}

// Resolve picks the shell appropriate for the current OS.
//
// On Windows, cmd.exe with /C is used. On everything else, $SHELL is
// preferred (falling back through /bin/bash, /bin/zsh, /bin/sh) invoked
// with -c, matching the order webpty-pty's DetectShell used for login
// shells.
func Resolve() (Resolved, error) {
	if runtime.GOOS == "windows" {
		path, err := exec.LookPath("cmd.exe")
		if err != nil {
			path = "cmd.exe"
		}
		return Resolved{Path: path, CommandFlag: "/C"}, nil
	}

	path, err := detectPosixShell()
	if err != nil {
		return Resolved{}, err
	}
	return Resolved{Path: path, CommandFlag: "-c"}, nil
}

func detectPosixShell() (string, error) {
	if sh := os.Getenv("SHELL"); sh != "" && isExecutable(sh) {
		return sh, nil
	}

	for _, candidate := range []string{"/bin/bash", "/bin/zsh", "/bin/sh"} {
		if isExecutable(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("shell: no usable shell found (checked $SHELL, /bin/bash, /bin/zsh, /bin/sh)")
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Mode()&0111 != 0
}
