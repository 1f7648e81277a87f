// Package logging provides a small wrapper over the standard log
// package, tagging every line with a bracketed component name the way the
// original webpty-pty server tagged every line with "[PTY]".
package logging

import (
	"io"
	"log"
	"os"
)

// Logger writes bracket-tagged lines to an underlying *log.Logger.
type Logger struct {
	tag string
	std *log.Logger
}

// New returns a Logger that prefixes every line with "[tag] ".
func New(tag string) *Logger {
	return &Logger{tag: tag, std: log.New(os.Stderr, "", log.LstdFlags)}
}

// NewWithWriter is New but with an explicit writer; used by tests to assert
// on log output without touching stderr.
func NewWithWriter(tag string, w io.Writer) *Logger {
	return &Logger{tag: tag, std: log.New(w, "", log.LstdFlags)}
}

// With returns a child logger that appends a sub-tag, e.g. a session id.
func (l *Logger) With(subtag string) *Logger {
	return &Logger{tag: l.tag + " " + subtag, std: l.std}
}

func (l *Logger) Printf(format string, args ...interface{}) {
	l.std.Printf("["+l.tag+"] "+format, args...)
}

func (l *Logger) Println(args ...interface{}) {
	l.std.Println(append([]interface{}{"[" + l.tag + "]"}, args...)...)
}
