package store

import "fmt"

// IOError wraps a failure to read or write a store's backing file. The
// persisted state is left intact when a write fails.
type IOError struct {
	Kind string
	Op   string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("store %s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }
