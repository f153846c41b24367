package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/config"
)

// BuildArgs constructs the CLI command arguments.
//
// The CLI always runs with stream-json channels on both directions and the
// SDK control channel enabled; prompts are sent over stdin, never on the
// command line.
func BuildArgs(options *config.Options) []string {
	args := []string{
		"--output-format", "stream-json",
		"--input-format", "stream-json",
		"--channel", "SDK",
	}

	if options.Model != "" {
		args = append(args, "--model", options.Model)
	}

	if options.PermissionMode != "" {
		args = append(args, "--permission-mode", config.NormalizePermissionMode(options.PermissionMode))
	}

	if options.MaxSessionTurns > 0 {
		args = append(args, "--max-session-turns", strconv.Itoa(options.MaxSessionTurns))
	}

	if len(options.CoreTools) > 0 {
		args = append(args, "--core-tools", strings.Join(options.CoreTools, ","))
	}

	if len(options.ExcludeTools) > 0 {
		args = append(args, "--exclude-tools", strings.Join(options.ExcludeTools, ","))
	}

	if len(options.AllowedTools) > 0 {
		args = append(args, "--allowed-tools", strings.Join(options.AllowedTools, ","))
	}

	if options.AuthType != "" {
		args = append(args, "--auth-type", options.AuthType)
	}

	if options.IncludePartialMessages {
		args = append(args, "--include-partial-messages")
	}

	if options.Resume != "" {
		args = append(args, "--resume", options.Resume)
	}

	// Extra args pass arbitrary flags through untouched.
	for key, value := range options.ExtraArgs {
		if value == nil {
			args = append(args, "--"+key)
		} else {
			args = append(args, "--"+key, *value)
		}
	}

	return args
}

// BuildEnvironment constructs the environment for the CLI process.
//
// The process inherits the parent environment, tagged with the SDK
// entrypoint marker, then overridden by user-provided variables.
func BuildEnvironment(options *config.Options) []string {
	env := os.Environ()

	env = append(env, "QWEN_AGENT_SDK_VERSION=0.1.0")
	env = append(env, "QWEN_CODE_ENTRYPOINT=sdk-go")

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
