package controller

import (
	"time"

	"github.com/shellrun/shelld/internal/session"
)

// SessionSummary is the per-session entry returned by the "list" action.
type SessionSummary struct {
	ID         string     `json:"id"`
	ShortID    string     `json:"shortId"`
	Status     string     `json:"status"`
	PID        int        `json:"pid"`
	StartedAt  time.Time  `json:"startedAt"`
	EndedAt    *time.Time `json:"endedAt,omitempty"`
	Cwd        string     `json:"cwd"`
	Command    string     `json:"command"`
	Name       string     `json:"name"`
	Tail       string     `json:"tail"`
	Truncated  bool       `json:"truncated"`
	ExitCode   *int       `json:"exitCode,omitempty"`
	ExitSignal string     `json:"exitSignal,omitempty"`
}

func buildSummary(snap session.Snapshot) SessionSummary {
	s := SessionSummary{
		ID:         snap.ID,
		ShortID:    shortID(snap.ID),
		Status:     string(snap.Status),
		PID:        snap.PID,
		StartedAt:  snap.StartedAt,
		Cwd:        snap.Cwd,
		Command:    snap.Command,
		Name:       deriveName(snap.Command),
		Tail:       string(snap.Tail),
		Truncated:  snap.Truncated,
		ExitCode:   snap.ExitCode,
		ExitSignal: snap.ExitSignal,
	}
	if snap.Exited {
		endedAt := snap.EndedAt
		s.EndedAt = &endedAt
	}
	return s
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// ListResult is the "list" action's payload: running and finished
// sessions, sorted by StartedAt descending.
type ListResult struct {
	Sessions []SessionSummary `json:"sessions"`
}

// PollResult is the "poll" action's payload.
type PollResult struct {
	Status     string `json:"status"`
	Text       string `json:"text"`
	ExitCode   *int   `json:"exitCode,omitempty"`
	ExitSignal string `json:"exitSignal,omitempty"`
}

// LogResult is the "log" action's payload.
type LogResult struct {
	Text       string `json:"text"`
	TotalLines int    `json:"totalLines"`
	TotalChars int    `json:"totalChars"`
}

// WriteResult is the "write" action's payload.
type WriteResult struct {
	Wrote int `json:"wrote"`
}

// KillResult is the "kill" action's payload.
type KillResult struct {
	Status string `json:"status"`
}

// ClearResult is the "clear" action's payload.
type ClearResult struct{}

// RemoveResult is the "remove" action's payload.
type RemoveResult struct{}
