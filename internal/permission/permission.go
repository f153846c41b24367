// Package permission implements the tool permission policy for the Qwen Code CLI.
//
// The CLI asks the SDK, via a can_use_tool control request, whether a tool
// invocation may proceed. The Engine answers from local policy where it can
// (approval mode, standing allow/deny rules, tool classification) and
// delegates genuinely undecided cases to the host's Callback.
package permission

import "context"

// Mode represents the session-wide approval mode.
type Mode string

const (
	// ModeDefault prompts through the host for undecided tools.
	ModeDefault Mode = "default"
	// ModePlan permits read-only tools only.
	ModePlan Mode = "plan"
	// ModeAutoEdit automatically approves file edits.
	ModeAutoEdit Mode = "auto-edit"
	// ModeYOLO approves everything without delegation.
	ModeYOLO Mode = "yolo"
)

// ValidMode reports whether mode is one of the CLI approval modes.
func ValidMode(mode Mode) bool {
	switch mode {
	case ModeDefault, ModePlan, ModeAutoEdit, ModeYOLO:
		return true
	default:
		return false
	}
}

// Suggestion is a CLI-provided hint attached to a permission request,
// surfaced to the host so it can present richer choices.
type Suggestion struct {
	Type          string `json:"type"` // "allow" | "deny" | "modify"
	Label         string `json:"label,omitempty"`
	Description   string `json:"description,omitempty"`
	ModifiedInput any    `json:"modifiedInput,omitempty"`
}

// Context carries the delegation metadata passed to the host Callback.
type Context struct {
	// ToolUseID identifies the tool invocation being decided.
	ToolUseID string
	// Suggestions are CLI-provided decision hints, possibly empty.
	Suggestions []Suggestion
	// BlockedPath is set when the request was triggered by a path outside
	// the allowed directories.
	BlockedPath string
}

// Result is the outcome of a permission decision.
type Result interface {
	Behavior() string
}

// Compile-time verification that both result types implement Result.
var (
	_ Result = (*Allow)(nil)
	_ Result = (*Deny)(nil)
)

// Allow permits the tool invocation.
type Allow struct {
	// UpdatedInput optionally replaces the tool's input parameters.
	UpdatedInput map[string]any
	// Always records a standing allow rule for the tool's root identifier,
	// skipping delegation for the rest of the session.
	Always bool
}

// Behavior implements Result.
func (*Allow) Behavior() string { return "allow" }

// Deny rejects the tool invocation.
type Deny struct {
	// Message explains the denial to the CLI.
	Message string
	// Always records a standing deny rule for the tool's root identifier.
	Always bool
}

// Behavior implements Result.
func (*Deny) Behavior() string { return "deny" }

// Callback is the host-supplied decision function, invoked only when local
// policy cannot decide. The context is cancelled if the CLI withdraws the
// request, the session is interrupted, or the query closes; a cancelled
// delegation resolves to deny.
type Callback func(ctx context.Context, toolName string, input map[string]any, permCtx *Context) (Result, error)
