package qwensdk

import (
	"github.com/qwenlm/qwen-agent-sdk-go/internal/config"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/message"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/models"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/permission"
)

// Re-export types from internal packages

// ===== Transport =====

// Transport defines the interface for Qwen Code CLI communication.
// Implement this to provide custom transports for testing or alternative
// communication methods; inject one with WithTransport.
type Transport = config.Transport

// ===== Options =====

// Options configures a query against the Qwen Code CLI.
// Usually built through the functional options (WithModel, WithLogger, ...).
type Options = config.Options

// ===== Messages =====

// Message is the interface implemented by all conversation messages.
type Message = message.Message

// UserMessage is a user turn echoed back by the CLI.
type UserMessage = message.UserMessage

// AssistantMessage is a model response with content blocks.
type AssistantMessage = message.AssistantMessage

// SystemMessage is a CLI lifecycle notification.
type SystemMessage = message.SystemMessage

// ResultMessage is the terminal frame of a conversation turn, carrying
// timing, usage, and denial statistics.
type ResultMessage = message.ResultMessage

// StreamEvent is a partial-output frame, emitted only when
// WithIncludePartialMessages is enabled.
type StreamEvent = message.StreamEvent

// Usage summarizes token consumption for a turn.
type Usage = message.Usage

// PermissionDenial records a tool invocation that was denied.
type PermissionDenial = message.PermissionDenial

// ===== Content blocks =====

// ContentBlock is the interface implemented by assistant content blocks.
type ContentBlock = message.ContentBlock

// TextBlock is plain text content.
type TextBlock = message.TextBlock

// ThinkingBlock is model reasoning content.
type ThinkingBlock = message.ThinkingBlock

// ToolUseBlock is a tool invocation request.
type ToolUseBlock = message.ToolUseBlock

// ToolResultBlock is the result of a tool invocation.
type ToolResultBlock = message.ToolResultBlock

// ===== Prompts =====

// PromptMessage is a user turn written to the CLI's stdin.
type PromptMessage = message.PromptMessage

// PromptContent is the role/content body of an outgoing user turn.
type PromptContent = message.PromptContent

// ===== Permissions =====

// PermissionMode is the session approval mode.
type PermissionMode = permission.Mode

const (
	// PermissionModeDefault delegates undecided requests to the host.
	PermissionModeDefault = permission.ModeDefault
	// PermissionModePlan denies every tool that mutates state.
	PermissionModePlan = permission.ModePlan
	// PermissionModeAutoEdit auto-approves file edits.
	PermissionModeAutoEdit = permission.ModeAutoEdit
	// PermissionModeYOLO auto-approves everything not on the deny-list.
	PermissionModeYOLO = permission.ModeYOLO
)

// PermissionResult is the outcome of a permission decision:
// either *PermissionAllow or *PermissionDeny.
type PermissionResult = permission.Result

// PermissionAllow permits a tool invocation, optionally with updated input.
type PermissionAllow = permission.Allow

// PermissionDeny rejects a tool invocation with an explanatory message.
type PermissionDeny = permission.Deny

// PermissionContext carries delegation metadata to the host callback.
type PermissionContext = permission.Context

// PermissionSuggestion is a CLI-provided decision hint.
type PermissionSuggestion = permission.Suggestion

// ToolPermissionCallback is the host decision function for delegated
// permission requests. Register it with WithCanUseTool.
type ToolPermissionCallback = permission.Callback

// ToolClassifier maps tool names to capability classes for mode-based
// auto-decisions.
type ToolClassifier = permission.Classifier

// ===== Models =====

// ModelInfo describes a known model in the catalog.
type ModelInfo = models.Info
