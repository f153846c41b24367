package config

import (
	"log/slog"
	"time"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/permission"
)

// Options configures a query against the Qwen Code CLI.
type Options struct {
	// Logger is the slog logger for debug output.
	// If nil, logging is disabled (silent operation).
	Logger *slog.Logger

	// Model specifies which model to use (e.g. "qwen3-coder-plus").
	// Catalog aliases such as "coder" are resolved before spawning.
	Model string

	// PermissionMode is the initial approval mode.
	// Valid values: "default", "plan", "auto-edit", "yolo".
	// Legacy aliases are supported and normalized:
	//   - "acceptEdits" -> "auto-edit"
	//   - "acceptAll", "bypassPermissions" -> "yolo"
	//   - "prompt" -> "default"
	PermissionMode string

	// Cwd sets the working directory for the CLI process.
	Cwd string

	// ExecutablePath is the explicit path to the qwen CLI binary.
	// If empty, the CLI is searched in PATH and common install dirs.
	ExecutablePath string

	// Env provides additional environment variables for the CLI process.
	Env map[string]string

	// MaxSessionTurns limits the number of agent turns per session.
	// Zero means no limit is passed to the CLI.
	MaxSessionTurns int

	// CoreTools restricts the CLI to the named built-in tools.
	CoreTools []string

	// ExcludeTools seeds the standing deny-list. Excluded tools are denied
	// regardless of approval mode or allow-list membership.
	ExcludeTools []string

	// AllowedTools seeds the standing allow-list.
	AllowedTools []string

	// AuthType selects the CLI authentication mechanism (e.g. "openai",
	// "qwen-oauth"). Credential acquisition itself is the CLI's business.
	AuthType string

	// IncludePartialMessages enables stream_event frames carrying partial
	// assistant output.
	IncludePartialMessages bool

	// Resume continues a previous CLI session by id.
	Resume string

	// ExtraArgs passes arbitrary additional flags to the CLI.
	// A nil value renders a boolean flag with no argument.
	ExtraArgs map[string]*string

	// CanUseTool is the host decision function for delegated permission
	// requests. If nil, delegated requests are denied.
	CanUseTool permission.Callback

	// ToolClassifier overrides the default tool capability table used by
	// mode-based auto-decisions.
	ToolClassifier permission.Classifier

	// ControlTimeouts overrides the per-subtype control request deadlines
	// (keys: "initialize", "interrupt", "set_permission_mode", "set_model").
	ControlTimeouts map[string]time.Duration

	// InitializeTimeout bounds the initial handshake. Takes precedence over
	// ControlTimeouts["initialize"] and the env fallback.
	InitializeTimeout *time.Duration

	// Stderr receives each CLI stderr line as it arrives.
	Stderr func(string)

	// MaxBufferSize caps the length of a single CLI output line.
	// Zero uses the default (1MB).
	MaxBufferSize int

	// Transport injects a custom transport, bypassing subprocess creation.
	Transport Transport
}
