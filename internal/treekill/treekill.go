// Package treekill recursively terminates a process and all of its
// descendants. It generalizes webpty-pty's single-process SIGTERM-then-Kill
// cleanup (internal/pty/cleanup.go in the teacher) to a whole process tree,
// using the platform's native process-group mechanism plus descendant
// enumeration as a fallback for processes that escaped the group.
package treekill

import "time"

// GracePeriod is how long Kill waits after SIGTERM before escalating to
// SIGKILL.
const GracePeriod = 200 * time.Millisecond

// Kill terminates pid and every descendant it can discover. It tolerates
// already-dead processes at any point in the recursion and returns nil in
// that case — a kill of something already gone is a success, not a
// failure, matching the spec's "must tolerate already-dead descendants".
func Kill(pid int) error {
	return platformKill(pid)
}
