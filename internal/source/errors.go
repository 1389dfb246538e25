package source

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested post can no longer be resolved.
var ErrNotFound = errors.New("source: not found")

// FetchError reports a transport failure or a non-success status.
type FetchError struct {
	Op     string // page, detail or search
	Status int    // zero for transport errors
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("source: %s failed: status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("source: %s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
