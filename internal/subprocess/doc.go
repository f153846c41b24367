// Package subprocess runs the Qwen Code CLI as a child process and exposes
// it as a line-delimited JSON transport.
//
// The transport owns the process lifecycle: it discovers the CLI binary,
// spawns it with stream-json channels on stdin/stdout, captures stderr for
// diagnostics, and reports an unexpected exit as a ProcessError. Malformed
// output lines are logged and dropped; they never terminate the session.
package subprocess
