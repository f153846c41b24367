// Package query drives a single conversation session against the Qwen Code
// CLI: it spawns the transport, runs the control protocol, feeds prompts
// over stdin, and surfaces parsed conversation messages to the caller.
//
// A Query moves through three states: open, closing, closed. Operations on
// a closed query fail with ErrQueryClosed.
package query
