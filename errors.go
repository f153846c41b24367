package qwensdk

import "github.com/qwenlm/qwen-agent-sdk-go/internal/errors"

// Re-export error types from internal package

// CLINotFoundError indicates the qwen CLI binary was not found.
type CLINotFoundError = errors.CLINotFoundError

// ConnectionError indicates failure to start or connect to the CLI.
type ConnectionError = errors.ConnectionError

// ProcessError indicates the CLI process exited unexpectedly.
type ProcessError = errors.ProcessError

// MessageParseError indicates a conversation frame could not be parsed.
type MessageParseError = errors.MessageParseError

// SDKError is the base interface for all SDK errors.
type SDKError = errors.SDKError

// Re-export sentinel errors from internal package.
var (
	// ErrQueryClosed indicates the query has been closed and cannot be used.
	ErrQueryClosed = errors.ErrQueryClosed

	// ErrTransportNotConnected indicates the transport is not connected.
	ErrTransportNotConnected = errors.ErrTransportNotConnected

	// ErrRequestTimeout indicates a control request timed out.
	ErrRequestTimeout = errors.ErrRequestTimeout

	// ErrStdinClosed indicates the CLI's input stream was already closed.
	ErrStdinClosed = errors.ErrStdinClosed

	// ErrDelegationAborted indicates a delegated permission decision was
	// cancelled before the host answered.
	ErrDelegationAborted = errors.ErrDelegationAborted
)
