package message

// Message represents any conversation message from the CLI.
// Use a type switch to determine the concrete variant.
type Message interface {
	MessageType() string
}

// Compile-time verification that all message types implement Message.
var (
	_ Message = (*UserMessage)(nil)
	_ Message = (*AssistantMessage)(nil)
	_ Message = (*SystemMessage)(nil)
	_ Message = (*ResultMessage)(nil)
	_ Message = (*StreamEvent)(nil)
)

// UserMessage echoes a user turn back on the conversation stream,
// including synthetic turns carrying tool results.
//
//nolint:tagliatelle // the CLI wire format uses snake_case
type UserMessage struct {
	Type            string         `json:"type"`
	Content         string         `json:"content"`
	UUID            string         `json:"uuid,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	ParentToolUseID *string        `json:"parent_tool_use_id,omitempty"`
	ToolUseResult   map[string]any `json:"tool_use_result,omitempty"`
}

// MessageType implements the Message interface.
func (m *UserMessage) MessageType() string { return "user" }

// AssistantMessage is a complete assistant turn.
//
//nolint:tagliatelle // the CLI wire format uses snake_case
type AssistantMessage struct {
	Type            string         `json:"type"`
	Content         []ContentBlock `json:"content"`
	Model           string         `json:"model,omitempty"`
	UUID            string         `json:"uuid,omitempty"`
	SessionID       string         `json:"session_id,omitempty"`
	ParentToolUseID *string        `json:"parent_tool_use_id,omitempty"`
}

// MessageType implements the Message interface.
func (m *AssistantMessage) MessageType() string { return "assistant" }

// SystemMessage carries out-of-band session information such as the
// session-started announcement.
type SystemMessage struct {
	Type    string         `json:"type"`
	Subtype string         `json:"subtype,omitempty"`
	Data    map[string]any `json:"data,omitempty"`
}

// MessageType implements the Message interface.
func (m *SystemMessage) MessageType() string { return "system" }

// PermissionDenial records one tool invocation the session refused.
//
//nolint:tagliatelle // the CLI wire format uses snake_case
type PermissionDenial struct {
	ToolName  string         `json:"tool_name"`
	ToolUseID string         `json:"tool_use_id"`
	ToolInput map[string]any `json:"tool_input,omitempty"`
}

// Usage contains token usage counters.
//
//nolint:tagliatelle // the CLI wire format uses snake_case
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	CachedTokens int `json:"cached_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`
}

// ResultMessage is the terminal record of one exchange.
//
//nolint:tagliatelle // the CLI wire format uses snake_case
type ResultMessage struct {
	Type              string             `json:"type"`
	Subtype           string             `json:"subtype"` // e.g. "success", "error_max_turns", "error_during_execution"
	UUID              string             `json:"uuid,omitempty"`
	SessionID         string             `json:"session_id"`
	IsError           bool               `json:"is_error"`
	DurationMs        int64              `json:"duration_ms"`
	DurationAPIMs     int64              `json:"duration_api_ms"`
	NumTurns          int                `json:"num_turns"`
	Usage             *Usage             `json:"usage,omitempty"`
	PermissionDenials []PermissionDenial `json:"permission_denials,omitempty"`
	Result            *string            `json:"result,omitempty"`
}

// MessageType implements the Message interface.
func (m *ResultMessage) MessageType() string { return "result" }

// StreamEvent is a partial-assistant frame emitted when
// include-partial-messages is enabled. Event carries the raw API event.
//
//nolint:tagliatelle // the CLI wire format uses snake_case
type StreamEvent struct {
	UUID            string         `json:"uuid"`
	SessionID       string         `json:"session_id"`
	Event           map[string]any `json:"event"`
	ParentToolUseID *string        `json:"parent_tool_use_id,omitempty"`
}

// MessageType implements the Message interface.
func (m *StreamEvent) MessageType() string { return "stream_event" }

// PromptContent is the role/content body of an outgoing user turn.
type PromptContent struct {
	Role    string `json:"role"`    // "user"
	Content string `json:"content"` // the prompt text
}

// PromptMessage is a user turn written to the CLI's stdin.
//
//nolint:tagliatelle // the CLI wire format uses snake_case
type PromptMessage struct {
	Type            string        `json:"type"` // "user"
	Message         PromptContent `json:"message"`
	ParentToolUseID *string       `json:"parent_tool_use_id"`
	SessionID       string        `json:"session_id,omitempty"`
}

// NewPrompt creates a PromptMessage with type "user".
func NewPrompt(content string) PromptMessage {
	return PromptMessage{
		Type: "user",
		Message: PromptContent{
			Role:    "user",
			Content: content,
		},
	}
}
