package message

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	sdkerrors "github.com/qwenlm/qwen-agent-sdk-go/internal/errors"
)

func TestParse_UserMessage(t *testing.T) {
	data := map[string]any{
		"type":       "user",
		"session_id": "sess-1",
		"uuid":       "u-1",
		"message": map[string]any{
			"role":    "user",
			"content": "list the files",
		},
	}

	msg, err := Parse(slog.Default(), data)
	require.NoError(t, err)

	user, ok := msg.(*UserMessage)
	require.True(t, ok)
	require.Equal(t, "list the files", user.Content)
	require.Equal(t, "sess-1", user.SessionID)
	require.Equal(t, "u-1", user.UUID)
}

func TestParse_UserMessage_MissingMessage(t *testing.T) {
	_, err := Parse(slog.Default(), map[string]any{"type": "user"})

	var parseErr *sdkerrors.MessageParseError

	require.ErrorAs(t, err, &parseErr)
}

func TestParse_AssistantMessage_Blocks(t *testing.T) {
	data := map[string]any{
		"type":       "assistant",
		"session_id": "sess-1",
		"message": map[string]any{
			"model": "qwen3-coder-plus",
			"content": []any{
				map[string]any{"type": "thinking", "thinking": "let me look"},
				map[string]any{"type": "text", "text": "Here are the files."},
				map[string]any{
					"type":  "tool_use",
					"id":    "tu-1",
					"name":  "list_directory",
					"input": map[string]any{"path": "."},
				},
			},
		},
	}

	msg, err := Parse(slog.Default(), data)
	require.NoError(t, err)

	assistant, ok := msg.(*AssistantMessage)
	require.True(t, ok)
	require.Equal(t, "qwen3-coder-plus", assistant.Model)
	require.Len(t, assistant.Content, 3)

	thinking, ok := assistant.Content[0].(*ThinkingBlock)
	require.True(t, ok)
	require.Equal(t, "let me look", thinking.Thinking)

	text, ok := assistant.Content[1].(*TextBlock)
	require.True(t, ok)
	require.Equal(t, "Here are the files.", text.Text)

	toolUse, ok := assistant.Content[2].(*ToolUseBlock)
	require.True(t, ok)
	require.Equal(t, "list_directory", toolUse.Name)
	require.Equal(t, map[string]any{"path": "."}, toolUse.Input)
}

func TestParse_AssistantMessage_ToolResultStringContent(t *testing.T) {
	data := map[string]any{
		"type": "assistant",
		"message": map[string]any{
			"content": []any{
				map[string]any{
					"type":        "tool_result",
					"tool_use_id": "tu-1",
					"content":     "total 4",
				},
			},
		},
	}

	msg, err := Parse(slog.Default(), data)
	require.NoError(t, err)

	assistant := msg.(*AssistantMessage)
	require.Len(t, assistant.Content, 1)

	result, ok := assistant.Content[0].(*ToolResultBlock)
	require.True(t, ok)
	require.Equal(t, "tu-1", result.ToolUseID)
	require.Len(t, result.Content, 1)
	require.Equal(t, "total 4", result.Content[0].(*TextBlock).Text)
}

func TestParse_SystemMessage(t *testing.T) {
	data := map[string]any{
		"type":       "system",
		"subtype":    "init",
		"session_id": "sess-1",
		"model":      "qwen3-coder-plus",
	}

	msg, err := Parse(slog.Default(), data)
	require.NoError(t, err)

	system, ok := msg.(*SystemMessage)
	require.True(t, ok)
	require.Equal(t, "init", system.Subtype)
	require.Equal(t, "sess-1", system.Data["session_id"])
	require.Equal(t, "qwen3-coder-plus", system.Data["model"])
}

func TestParse_ResultMessage(t *testing.T) {
	data := map[string]any{
		"type":            "result",
		"subtype":         "success",
		"session_id":      "sess-1",
		"is_error":        false,
		"duration_ms":     float64(1530),
		"duration_api_ms": float64(1200),
		"num_turns":       float64(2),
		"result":          "done",
		"usage": map[string]any{
			"input_tokens":  float64(120),
			"output_tokens": float64(40),
		},
		"permission_denials": []any{
			map[string]any{
				"tool_name":   "run_shell_command",
				"tool_use_id": "tu-9",
			},
		},
	}

	msg, err := Parse(slog.Default(), data)
	require.NoError(t, err)

	result, ok := msg.(*ResultMessage)
	require.True(t, ok)
	require.Equal(t, "success", result.Subtype)
	require.False(t, result.IsError)
	require.EqualValues(t, 1530, result.DurationMs)
	require.Equal(t, 2, result.NumTurns)
	require.NotNil(t, result.Result)
	require.Equal(t, "done", *result.Result)
	require.NotNil(t, result.Usage)
	require.Equal(t, 120, result.Usage.InputTokens)
	require.Len(t, result.PermissionDenials, 1)
	require.Equal(t, "run_shell_command", result.PermissionDenials[0].ToolName)
}

func TestParse_StreamEvent(t *testing.T) {
	data := map[string]any{
		"type":       "stream_event",
		"uuid":       "ev-1",
		"session_id": "sess-1",
		"event": map[string]any{
			"type": "content_block_delta",
			"delta": map[string]any{
				"type": "text_delta",
				"text": "He",
			},
		},
	}

	msg, err := Parse(slog.Default(), data)
	require.NoError(t, err)

	event, ok := msg.(*StreamEvent)
	require.True(t, ok)
	require.Equal(t, "ev-1", event.UUID)
	require.Equal(t, "content_block_delta", event.Event["type"])
}

func TestParse_UnknownType(t *testing.T) {
	_, err := Parse(slog.Default(), map[string]any{"type": "telemetry"})
	require.ErrorIs(t, err, sdkerrors.ErrUnknownMessageType)
}

func TestParse_MissingType(t *testing.T) {
	_, err := Parse(slog.Default(), map[string]any{"session_id": "sess-1"})

	var parseErr *sdkerrors.MessageParseError

	require.ErrorAs(t, err, &parseErr)
}

func TestNewPrompt(t *testing.T) {
	prompt := NewPrompt("hello")

	require.Equal(t, "user", prompt.Type)
	require.Equal(t, "user", prompt.Message.Role)
	require.Equal(t, "hello", prompt.Message.Content)
}
