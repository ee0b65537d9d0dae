package jira

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrMissingCredentials means the adapter was asked to call the remote
// without a complete domain/email/token triple. Detected locally,
// before any network attempt.
var ErrMissingCredentials = errors.New("missing jira credentials")

// RemoteError is a non-2xx response from the remote. Message is the
// remote-provided error text when one was parseable.
type RemoteError struct {
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("jira: remote returned %d: %s", e.Status, msg)
}

// NetworkError means the request was sent but no response came back.
// The message stays generic; transport internals are reachable through
// Unwrap for logging, never for user-facing output.
type NetworkError struct {
	err error
}

func (e *NetworkError) Error() string {
	return "jira: no response from remote"
}

func (e *NetworkError) Unwrap() error {
	return e.err
}
