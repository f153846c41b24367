package qwensdk

import (
	"log/slog"
	"time"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/config"
)

// Option configures Options using the functional options pattern.
type Option func(*Options)

// applyOptions applies functional options to an Options struct.
func applyOptions(opts []Option) *Options {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ===== Basic Configuration =====

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithModel specifies which model to use (e.g. "qwen3-coder-plus").
// Catalog aliases such as "coder" or "flash" are accepted.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithPermissionMode sets the initial approval mode.
// Valid values: "default", "plan", "auto-edit", "yolo". The legacy names
// "acceptEdits", "acceptAll", and "bypassPermissions" are normalized.
func WithPermissionMode(mode string) Option {
	return func(o *Options) {
		o.PermissionMode = mode
	}
}

// WithCwd sets the working directory for the CLI process.
func WithCwd(cwd string) Option {
	return func(o *Options) {
		o.Cwd = cwd
	}
}

// WithExecutablePath sets the explicit path to the qwen CLI binary.
// If not set, the binary is searched in PATH and common install dirs.
func WithExecutablePath(path string) Option {
	return func(o *Options) {
		o.ExecutablePath = path
	}
}

// WithEnv provides additional environment variables for the CLI process.
func WithEnv(env map[string]string) Option {
	return func(o *Options) {
		o.Env = env
	}
}

// WithMaxSessionTurns limits the number of agent turns per session.
func WithMaxSessionTurns(turns int) Option {
	return func(o *Options) {
		o.MaxSessionTurns = turns
	}
}

// WithAuthType selects the CLI authentication mechanism
// (e.g. "qwen-oauth", "openai"). Credentials themselves are the CLI's
// business.
func WithAuthType(authType string) Option {
	return func(o *Options) {
		o.AuthType = authType
	}
}

// WithResume continues a previous CLI session by id.
func WithResume(sessionID string) Option {
	return func(o *Options) {
		o.Resume = sessionID
	}
}

// ===== Tool Configuration =====

// WithCoreTools restricts the CLI to the named built-in tools.
func WithCoreTools(tools ...string) Option {
	return func(o *Options) {
		o.CoreTools = tools
	}
}

// WithExcludeTools seeds the standing deny-list. Excluded tools are denied
// regardless of approval mode or allow-list membership.
func WithExcludeTools(tools ...string) Option {
	return func(o *Options) {
		o.ExcludeTools = tools
	}
}

// WithAllowedTools seeds the standing allow-list.
func WithAllowedTools(tools ...string) Option {
	return func(o *Options) {
		o.AllowedTools = tools
	}
}

// WithCanUseTool registers the host decision function for delegated
// permission requests. Without it, delegated requests are denied.
func WithCanUseTool(callback ToolPermissionCallback) Option {
	return func(o *Options) {
		o.CanUseTool = callback
	}
}

// WithToolClassifier overrides the default tool capability table used by
// mode-based auto-decisions.
func WithToolClassifier(classifier ToolClassifier) Option {
	return func(o *Options) {
		o.ToolClassifier = classifier
	}
}

// ===== Streaming and Buffers =====

// WithIncludePartialMessages enables stream_event frames carrying partial
// assistant output.
func WithIncludePartialMessages(include bool) Option {
	return func(o *Options) {
		o.IncludePartialMessages = include
	}
}

// WithMaxBufferSize caps the length of a single CLI output line in bytes.
func WithMaxBufferSize(size int) Option {
	return func(o *Options) {
		o.MaxBufferSize = size
	}
}

// WithStderr registers a handler that receives each CLI stderr line.
func WithStderr(handler func(string)) Option {
	return func(o *Options) {
		o.Stderr = handler
	}
}

// ===== Timeouts =====

// WithControlTimeout overrides the deadline for one control request
// subtype ("initialize", "interrupt", "set_permission_mode", "set_model").
func WithControlTimeout(subtype string, timeout time.Duration) Option {
	return func(o *Options) {
		if o.ControlTimeouts == nil {
			o.ControlTimeouts = make(map[string]time.Duration, 4)
		}

		o.ControlTimeouts[subtype] = timeout
	}
}

// WithInitializeTimeout bounds the initial handshake. Takes precedence
// over WithControlTimeout("initialize", ...) and the
// QWEN_CODE_INITIALIZE_TIMEOUT environment variable.
func WithInitializeTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.InitializeTimeout = &timeout
	}
}

// ===== Advanced =====

// WithExtraArgs passes arbitrary additional flags to the CLI.
// A nil value renders a boolean flag with no argument.
func WithExtraArgs(args map[string]*string) Option {
	return func(o *Options) {
		o.ExtraArgs = args
	}
}

// WithTransport injects a custom transport, bypassing subprocess creation.
// Useful for testing or remote CLI connections.
func WithTransport(transport config.Transport) Option {
	return func(o *Options) {
		o.Transport = transport
	}
}
