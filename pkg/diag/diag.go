// Package diag provides source positions and the diagnostic reporter.
// Errors print as "<pos>: <message>", warnings as "<pos>: Warning: <message>",
// written synchronously to the reporter's stream.
package diag

import (
	"fmt"
	"io"
)

// Pos is a source position carried on AST nodes and expression results.
type Pos struct {
	File string
	Line int
	Col  int
}

func (p Pos) String() string {
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
}

// IsZero reports whether p carries no position information.
func (p Pos) IsZero() bool {
	return p.File == "" && p.Line == 0 && p.Col == 0
}

// Reporter accumulates diagnostic counts and writes messages to a stream.
// Warnings never stop generation; errors are additionally surfaced as Go
// error values by the code that reports them.
type Reporter struct {
	w        io.Writer
	warnings int
	errors   int
}

// NewReporter creates a reporter writing to w.
func NewReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Errorf reports a fatal diagnostic at pos and returns it as an error so the
// caller can propagate it up the lowering stack.
func (r *Reporter) Errorf(pos Pos, format string, args ...any) error {
	r.errors++
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(r.w, "%s: %s\n", pos, msg)
	return fmt.Errorf("%s: %s", pos, msg)
}

// Warnf reports a warning at pos. Generation continues.
func (r *Reporter) Warnf(pos Pos, format string, args ...any) {
	r.warnings++
	fmt.Fprintf(r.w, "%s: Warning: %s\n", pos, fmt.Sprintf(format, args...))
}

// Warnings returns the number of warnings reported so far.
func (r *Reporter) Warnings() int { return r.warnings }

// Errors returns the number of errors reported so far.
func (r *Reporter) Errors() int { return r.errors }
