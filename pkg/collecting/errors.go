package collecting

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
)

var (
	// ErrRuntimeUnavailable marks a cycle that could not obtain a runtime client.
	ErrRuntimeUnavailable = errors.New("container runtime unavailable")
	// ErrTransport marks a failed runtime call. It abandons the cycle.
	ErrTransport = errors.New("container runtime call failed")
)

// CallError describes one failed runtime operation.
type CallError struct {
	Kind        error
	Op          string
	ContainerID string
	Err         error
}

func transportError(op, containerID string, err error) *CallError {
	return &CallError{Kind: ErrTransport, Op: op, ContainerID: containerID, Err: err}
}

func (e *CallError) Error() string {
	return e.prefix() + ": " + e.Err.Error()
}

func (e *CallError) prefix() string {
	if e.ContainerID != "" {
		return fmt.Sprintf("%s %s: %s", e.Op, shortID(e.ContainerID), e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *CallError) Unwrap() error { return e.Err }

func (e *CallError) Is(target error) bool { return target == e.Kind }

// Format prints the wrapped error's stack trace for %+v.
func (e *CallError) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%s: %+v", e.prefix(), e.Err)
		return
	}
	_, _ = io.WriteString(s, e.Error())
}
