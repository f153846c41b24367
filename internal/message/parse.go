package message

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/errors"
)

// Parse converts a raw JSON frame into a typed Message.
//
// Parse is called exactly once per frame, at the classifier boundary;
// downstream code switches on the returned variant instead of re-testing
// type tags.
//
// Returns ErrUnknownMessageType for frame types this SDK does not model;
// callers should skip those. Other failures return a MessageParseError.
func Parse(log *slog.Logger, data map[string]any) (Message, error) {
	log = log.With("component", "message_parser")

	msgType, ok := data["type"].(string)
	if !ok {
		log.Debug("Frame missing 'type' field")

		return nil, &errors.MessageParseError{
			Message: "missing or invalid 'type' field",
			Err:     fmt.Errorf("missing or invalid 'type' field"),
			Data:    data,
		}
	}

	var (
		msg Message
		err error
	)

	switch msgType {
	case "user":
		msg, err = parseUserMessage(data)
	case "assistant":
		msg, err = parseAssistantMessage(data)
	case "system":
		msg, err = parseSystemMessage(data)
	case "result":
		msg, err = parseResultMessage(data)
	case "stream_event":
		msg, err = parseStreamEvent(data)
	default:
		log.Debug("Skipping unknown message type", "message_type", msgType)

		return nil, errors.ErrUnknownMessageType
	}

	if err != nil {
		return nil, &errors.MessageParseError{
			Message: err.Error(),
			Err:     err,
			Data:    data,
		}
	}

	return msg, nil
}

// parseUserMessage parses a UserMessage from raw JSON.
// The wire format nests the content under a "message" field.
func parseUserMessage(data map[string]any) (*UserMessage, error) {
	msg := &UserMessage{Type: "user"}

	messageData, ok := data["message"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("user message: missing or invalid 'message' field")
	}

	if content, ok := messageData["content"].(string); ok {
		msg.Content = content
	}

	if uuid, ok := data["uuid"].(string); ok {
		msg.UUID = uuid
	}

	if sessionID, ok := data["session_id"].(string); ok {
		msg.SessionID = sessionID
	}

	if parentID, ok := data["parent_tool_use_id"].(string); ok {
		msg.ParentToolUseID = &parentID
	}

	if result, ok := data["tool_use_result"].(map[string]any); ok {
		msg.ToolUseResult = result
	}

	return msg, nil
}

// parseAssistantMessage parses an AssistantMessage from raw JSON.
// Content blocks live under message.content as an array.
func parseAssistantMessage(data map[string]any) (*AssistantMessage, error) {
	msg := &AssistantMessage{Type: "assistant"}

	messageData, ok := data["message"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("assistant message: missing or invalid 'message' field")
	}

	contentData, ok := messageData["content"].([]any)
	if !ok {
		return nil, fmt.Errorf("assistant message: missing or invalid content field")
	}

	blocks := make([]ContentBlock, 0, len(contentData))

	for i, item := range contentData {
		raw, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("assistant message: marshal block %d: %w", i, err)
		}

		block, err := UnmarshalContentBlock(raw)
		if err != nil {
			return nil, fmt.Errorf("assistant message: block %d: %w", i, err)
		}

		blocks = append(blocks, block)
	}

	msg.Content = blocks

	if model, ok := messageData["model"].(string); ok {
		msg.Model = model
	}

	if uuid, ok := data["uuid"].(string); ok {
		msg.UUID = uuid
	}

	if sessionID, ok := data["session_id"].(string); ok {
		msg.SessionID = sessionID
	}

	if parentID, ok := data["parent_tool_use_id"].(string); ok {
		msg.ParentToolUseID = &parentID
	}

	return msg, nil
}

// parseSystemMessage parses a SystemMessage from raw JSON.
// All fields other than type/subtype are preserved in Data.
func parseSystemMessage(data map[string]any) (*SystemMessage, error) {
	msg := &SystemMessage{Type: "system"}

	if subtype, ok := data["subtype"].(string); ok {
		msg.Subtype = subtype
	}

	extra := make(map[string]any, len(data))

	for key, value := range data {
		if key == "type" || key == "subtype" {
			continue
		}

		extra[key] = value
	}

	if len(extra) > 0 {
		msg.Data = extra
	}

	return msg, nil
}

// parseResultMessage parses a ResultMessage from raw JSON via a round-trip
// through encoding/json, which handles the numeric fields uniformly.
func parseResultMessage(data map[string]any) (*ResultMessage, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("result message: %w", err)
	}

	msg := &ResultMessage{}
	if err := json.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("result message: %w", err)
	}

	return msg, nil
}

// parseStreamEvent parses a StreamEvent from raw JSON.
func parseStreamEvent(data map[string]any) (*StreamEvent, error) {
	event, ok := data["event"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("stream event: missing or invalid 'event' field")
	}

	msg := &StreamEvent{Event: event}

	if uuid, ok := data["uuid"].(string); ok {
		msg.UUID = uuid
	}

	if sessionID, ok := data["session_id"].(string); ok {
		msg.SessionID = sessionID
	}

	if parentID, ok := data["parent_tool_use_id"].(string); ok {
		msg.ParentToolUseID = &parentID
	}

	return msg, nil
}
