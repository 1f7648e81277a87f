package controller

import (
	"strings"

	"github.com/google/shlex"
)

// nameMaxLen bounds a derived name so list output stays scannable.
const nameMaxLen = 48

// deriveName produces a short human label for a command, e.g. "npm install"
// or "git status", by tokenizing respecting quotes and picking the first
// verb token plus the first non-flag token after it as the target. It falls
// back to the raw command (truncated) whenever tokenizing fails or yields
// nothing usable, since a best-effort label must never block the caller.
func deriveName(command string) string {
	trimmed := strings.TrimSpace(command)
	if trimmed == "" {
		return ""
	}

	tokens, err := shlex.Split(trimmed)
	if err != nil || len(tokens) == 0 {
		return truncateMiddle(trimmed, nameMaxLen)
	}

	verb := unquote(tokens[0])
	target := ""
	for _, tok := range tokens[1:] {
		tok = unquote(tok)
		if tok == "" || strings.HasPrefix(tok, "-") {
			continue
		}
		target = tok
		break
	}
	if target == "" && len(tokens) > 1 {
		// Every token after the verb is a flag (e.g. "sudo -i"): fall back
		// to the literal second token rather than dropping it.
		target = unquote(tokens[1])
	}

	name := verb
	if target != "" {
		name = verb + " " + target
	}
	return truncateMiddle(name, nameMaxLen)
}

func unquote(tok string) string {
	if len(tok) >= 2 {
		if (tok[0] == '"' && tok[len(tok)-1] == '"') || (tok[0] == '\'' && tok[len(tok)-1] == '\'') {
			return tok[1 : len(tok)-1]
		}
	}
	return tok
}

func truncateMiddle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	keep := max - 3
	head := keep / 2
	tail := keep - head
	return s[:head] + "..." + s[len(s)-tail:]
}
