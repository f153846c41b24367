package permission

import (
	"strings"
	"sync"
)

// ToolRoot extracts the tool's root identifier from a rule-style name such
// as "run_shell_command(git status)". Plain tool names are returned as-is.
func ToolRoot(toolName string) string {
	if idx := strings.IndexByte(toolName, '('); idx > 0 {
		toolName = toolName[:idx]
	}

	return strings.TrimSpace(toolName)
}

// Rules is the session-lifetime store of standing allow/deny decisions,
// keyed by tool root. Deny entries are seeded from the exclude list, allow
// entries from the allowed list; "always" grants append at runtime.
//
// Rules is safe for concurrent use.
type Rules struct {
	mu    sync.RWMutex
	allow map[string]struct{}
	deny  map[string]struct{}
}

// NewRules creates a rule store seeded from the configured tool lists.
func NewRules(allowed, excluded []string) *Rules {
	r := &Rules{
		allow: make(map[string]struct{}, len(allowed)),
		deny:  make(map[string]struct{}, len(excluded)),
	}

	for _, name := range allowed {
		r.allow[ToolRoot(name)] = struct{}{}
	}

	for _, name := range excluded {
		r.deny[ToolRoot(name)] = struct{}{}
	}

	return r
}

// Denied reports whether the tool root has a standing deny rule.
func (r *Rules) Denied(toolName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.deny[ToolRoot(toolName)]

	return ok
}

// Allowed reports whether the tool root has a standing allow rule.
func (r *Rules) Allowed(toolName string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.allow[ToolRoot(toolName)]

	return ok
}

// AllowAlways records a standing allow rule for the tool root.
func (r *Rules) AllowAlways(toolName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.allow[ToolRoot(toolName)] = struct{}{}
}

// DenyAlways records a standing deny rule for the tool root.
func (r *Rules) DenyAlways(toolName string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.deny[ToolRoot(toolName)] = struct{}{}
}
