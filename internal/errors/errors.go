package errors

import (
	"errors"
	"fmt"
)

// SDKError is the base interface for all SDK errors.
type SDKError interface {
	error
	IsSDKError() bool
}

// Compile-time verification that all error types implement SDKError.
var (
	_ SDKError = (*CLINotFoundError)(nil)
	_ SDKError = (*ConnectionError)(nil)
	_ SDKError = (*ProcessError)(nil)
	_ SDKError = (*MessageParseError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrQueryClosed indicates an operation was attempted on a closed query.
	// Queries are single-use: create a new one with Start().
	ErrQueryClosed = errors.New("query is closed")

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.New("transport not connected")

	// ErrRequestTimeout indicates a control request timed out.
	// The timeout fails only that request, never the session.
	ErrRequestTimeout = errors.New("control request timeout")

	// ErrStdinClosed indicates stdin was closed due to context cancellation.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrDelegationAborted indicates a delegated permission decision was
	// cancelled before the host answered. The decision resolves to deny.
	ErrDelegationAborted = errors.New("permission delegation aborted")

	// ErrUnknownMessageType indicates the message type is not recognized by
	// the SDK. Callers should skip these messages rather than treating them
	// as fatal.
	ErrUnknownMessageType = errors.New("unknown message type")
)

// CLINotFoundError indicates the qwen CLI binary was not found.
type CLINotFoundError struct {
	SearchedPaths []string
}

func (e *CLINotFoundError) Error() string {
	return fmt.Sprintf("qwen CLI not found in: %v", e.SearchedPaths)
}

// IsSDKError implements SDKError.
func (e *CLINotFoundError) IsSDKError() bool { return true }

// ConnectionError indicates failure to connect to the CLI.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to CLI: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// IsSDKError implements SDKError.
func (e *ConnectionError) IsSDKError() bool { return true }

// ProcessError indicates the CLI process terminated unexpectedly.
// It fails every pending control request and ends the conversation stream.
type ProcessError struct {
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("CLI process failed (exit %d): %v", e.ExitCode, e.Err)
	}

	return fmt.Sprintf("CLI process failed (exit %d): %s", e.ExitCode, e.Stderr)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// IsSDKError implements SDKError.
func (e *ProcessError) IsSDKError() bool { return true }

// MessageParseError indicates a well-formed frame could not be converted
// into a typed message. These are logged and skipped, never fatal.
type MessageParseError struct {
	Message string
	Err     error
	Data    map[string]any
}

func (e *MessageParseError) Error() string {
	return fmt.Sprintf("failed to parse message: %v", e.Err)
}

func (e *MessageParseError) Unwrap() error {
	return e.Err
}

// IsSDKError implements SDKError.
func (e *MessageParseError) IsSDKError() bool { return true }
