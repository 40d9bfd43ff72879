package session

import (
	"errors"
	"fmt"
)

// ErrNotConnected indicates an operation attempted outside the Ready state.
var ErrNotConnected = errors.New("session is not connected")

// ConnectError wraps a transport spawn or handshake failure. The session
// performs no retry; retry policy, if any, belongs to the caller.
type ConnectError struct {
	Cause error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect MCP server: %v", e.Cause)
}

func (e *ConnectError) Unwrap() error {
	return e.Cause
}
