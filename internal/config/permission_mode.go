package config

// NormalizePermissionMode maps legacy permission mode names to current CLI values.
//
// Legacy mappings:
//   - "acceptEdits" -> "auto-edit"
//   - "acceptAll" -> "yolo"
//   - "bypassPermissions" -> "yolo"
//   - "prompt" -> "default"
func NormalizePermissionMode(mode string) string {
	switch mode {
	case "acceptEdits":
		return "auto-edit"
	case "acceptAll", "bypassPermissions":
		return "yolo"
	case "prompt":
		return "default"
	default:
		return mode
	}
}
