//go:build windows

package treekill

import (
	"os/exec"
	"strconv"
)

// Setpgid is a no-op on Windows; process-tree kill instead relies on
// taskkill's /T flag to walk the tree itself.
func Setpgid(cmd *exec.Cmd) {}

func platformKill(pid int) error {
	return exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(pid)).Run()
}
