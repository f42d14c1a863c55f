// Package log provides colored console logging and transcript logging of
// connection traffic.
package log

import (
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()

// ErrorMsg prints an error message to stderr in red color.
func ErrorMsg(format string, a ...interface{}) {
	red(os.Stderr, "[!] Error: "+format, a...)
}

// Logger writes leveled messages to one destination. Verbose messages are
// dropped unless the logger was created verbose. A nil *Logger discards
// everything, so components can take an optional logger without checks.
type Logger struct {
	out     io.Writer
	verbose bool
	mu      sync.Mutex
}

// NewLogger returns a logger writing to stderr.
func NewLogger(verbose bool) *Logger {
	return &Logger{out: os.Stderr, verbose: verbose}
}

// NewLoggerTo returns a logger writing to w.
func NewLoggerTo(w io.Writer, verbose bool) *Logger {
	return &Logger{out: w, verbose: verbose}
}

// IsVerbose reports whether verbose messages are printed.
func (l *Logger) IsVerbose() bool {
	return l != nil && l.verbose
}

// ErrorMsg prints an error message in red.
func (l *Logger) ErrorMsg(format string, a ...interface{}) {
	l.print(red, "[!] Error: "+format, a...)
}

// InfoMsg prints an informational message in blue.
func (l *Logger) InfoMsg(format string, a ...interface{}) {
	l.print(blue, "[+] "+format, a...)
}

// VerboseMsg prints a message in yellow if the logger is verbose.
// A trailing newline is added.
func (l *Logger) VerboseMsg(format string, a ...interface{}) {
	if !l.IsVerbose() {
		return
	}
	l.print(yellow, "[v] "+format+"\n", a...)
}

func (l *Logger) print(fn func(io.Writer, string, ...interface{}), format string, a ...interface{}) {
	if l == nil {
		return
	}

	// handlers log from many goroutines at once
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(l.out, format, a...)
}
