// Package protocol implements bidirectional control message handling for the
// Qwen Code CLI.
//
// A single line-delimited JSON channel carries four classes of frame: the
// conversation stream, control responses, control requests from the CLI, and
// cancellation notices. The Controller is the sole reader of the transport;
// it classifies each frame exactly once and routes it to the matching sink.
//
// The Controller handles:
//   - Sending control_request messages with unique ULID request ids
//   - Correlating control_response messages to pending requests by id
//   - Per-request timeout enforcement
//   - Handler registration for incoming requests from the CLI
//   - control_cancel handling for in-flight incoming requests
//
// Example usage:
//
//	transport := subprocess.NewCLITransport(log, options)
//	transport.Start(ctx)
//
//	controller := protocol.NewController(log, transport)
//	controller.Start(ctx)
//
//	resp, err := controller.SendRequest(ctx, "interrupt", nil, 5*time.Second)
package protocol
