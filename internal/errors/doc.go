// Package errors defines error types for the Qwen Code SDK.
//
// This package provides structured error types that wrap different failure
// scenarios when interacting with the Qwen Code CLI. All error types support
// error unwrapping and can be checked using errors.Is and errors.As.
package errors
