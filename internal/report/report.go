// Package report provides the line-oriented, tagged log stream a conversion
// emits. Each conversion writes into its own Logger (usually backed by a
// buffer) so parallel conversions never interleave and the driver can show
// the filtered warnings on success or the full stream on failure.
package report

import (
	"fmt"
	"io"
)

// Logger writes tagged diagnostic lines and records warnings for the
// conversion summary. Fatal errors travel as return values, so only their
// log line is kept here.
type Logger struct {
	w        io.Writer
	warnings []string
}

// New returns a Logger writing to w. A nil writer discards output but still
// records warnings.
func New(w io.Writer) *Logger {
	if w == nil {
		w = io.Discard
	}
	return &Logger{w: w}
}

// Infof logs a general progress line.
func (l *Logger) Infof(format string, args ...any) {
	fmt.Fprintf(l.w, "[Info] "+format+"\n", args...)
}

// Stepf logs a pipeline stage line.
func (l *Logger) Stepf(format string, args ...any) {
	fmt.Fprintf(l.w, "[Step] "+format+"\n", args...)
}

// Warnf logs a non-fatal condition and records it.
func (l *Logger) Warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	l.warnings = append(l.warnings, msg)
	fmt.Fprintf(l.w, "[Warning] %s\n", msg)
}

// Errorf logs a fatal condition.
func (l *Logger) Errorf(format string, args ...any) {
	fmt.Fprintf(l.w, "[Error] "+format+"\n", args...)
}

// Warnings returns the recorded warning messages in order.
func (l *Logger) Warnings() []string {
	return l.warnings
}
