package query

import (
	"context"
	"encoding/json"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/permission"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/protocol"
)

// handleCanUseTool answers the CLI's tool permission requests.
//
// The request fields are decoded into a permission context and handed to
// the policy engine. The engine never fails on a cancelled delegation; it
// resolves to deny, so a withdrawn request still receives a well-formed
// decision payload.
func (q *Query) handleCanUseTool(
	ctx context.Context,
	req *protocol.ControlRequest,
) (map[string]any, error) {
	toolName, _ := req.Request["tool_name"].(string)
	input, _ := req.Request["input"].(map[string]any)

	permCtx := &permission.Context{}

	if toolUseID, ok := req.Request["tool_use_id"].(string); ok {
		permCtx.ToolUseID = toolUseID
	}

	if blockedPath, ok := req.Request["blocked_path"].(string); ok {
		permCtx.BlockedPath = blockedPath
	}

	permCtx.Suggestions = parseSuggestions(req.Request["permission_suggestions"])

	q.log.Debug("Handling permission request",
		"tool_name", toolName,
		"tool_use_id", permCtx.ToolUseID,
	)

	result, err := q.engine.Decide(ctx, toolName, input, permCtx)
	if err != nil {
		return nil, err
	}

	return decisionPayload(result), nil
}

// parseSuggestions decodes the CLI's permission_suggestions field.
// Malformed entries are dropped.
func parseSuggestions(raw any) []permission.Suggestion {
	items, ok := raw.([]any)
	if !ok || len(items) == 0 {
		return nil
	}

	suggestions := make([]permission.Suggestion, 0, len(items))

	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}

		data, err := json.Marshal(entry)
		if err != nil {
			continue
		}

		var s permission.Suggestion
		if err := json.Unmarshal(data, &s); err != nil {
			continue
		}

		suggestions = append(suggestions, s)
	}

	return suggestions
}

// decisionPayload renders a permission result in the CLI wire format.
func decisionPayload(result permission.Result) map[string]any {
	switch d := result.(type) {
	case *permission.Allow:
		payload := map[string]any{"behavior": "allow"}

		if d.UpdatedInput != nil {
			payload["updatedInput"] = d.UpdatedInput
		}

		return payload

	case *permission.Deny:
		return map[string]any{
			"behavior": "deny",
			"message":  d.Message,
		}

	default:
		// The engine only produces Allow and Deny; treat anything else
		// as a denial rather than crashing the session.
		return map[string]any{
			"behavior": "deny",
			"message":  "permission denied",
		}
	}
}
