// Package cli locates the Qwen Code CLI binary and builds the command line
// and environment used to launch it in SDK channel mode.
package cli
