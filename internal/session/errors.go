package session

import "fmt"

// FatalError reports an environment-contract violation discovered while
// reading the live multiplexer state: output that is not valid text, or a
// window/pane identifier that is not a non-negative integer. No recovery is
// possible; the entry point exits the program when it sees one.
//
// It is a distinct type (rather than a process abort at the detection site)
// so tests can assert on the condition with errors.As.
type FatalError struct {
	Op     string // the query that produced the bad output
	Output string // the raw output, for the operator
	Err    error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("multiplexer returned unusable %s %q: %v", e.Op, e.Output, e.Err)
}

func (e *FatalError) Unwrap() error {
	return e.Err
}
