package permission

import (
	"context"
	"log/slog"
	"sync"
)

// Denial messages returned by local policy.
const (
	deniedByPolicyMessage = "blocked by policy"
	deniedInPlanMessage   = "not permitted in plan mode"
	deniedDefaultMessage  = "permission denied"
	deniedAbortedMessage  = "permission delegation aborted"
)

// Engine decides, per tool invocation, whether to auto-allow, auto-deny, or
// delegate to the host. Policy is priority-ordered, first match wins:
//
//  1. standing deny rule — absolute, regardless of mode
//  2. yolo mode — allow everything
//  3. plan mode — deny anything that is not read-only
//  4. auto-edit mode — allow edit tools
//  5. standing allow rule
//  6. delegate to the host callback
//
// Exclude beats include beats mode beats delegate.
type Engine struct {
	log        *slog.Logger
	rules      *Rules
	classifier Classifier
	canUseTool Callback

	modeMu sync.RWMutex
	mode   Mode
}

// NewEngine creates a permission engine.
//
// canUseTool may be nil, in which case the delegate case denies. A nil
// classifier falls back to DefaultClassifier.
func NewEngine(log *slog.Logger, mode Mode, rules *Rules, classifier Classifier, canUseTool Callback) *Engine {
	if rules == nil {
		rules = NewRules(nil, nil)
	}

	if classifier == nil {
		classifier = DefaultClassifier()
	}

	if mode == "" {
		mode = ModeDefault
	}

	return &Engine{
		log:        log.With("component", "permission"),
		rules:      rules,
		classifier: classifier,
		canUseTool: canUseTool,
		mode:       mode,
	}
}

// Mode returns the current approval mode.
func (e *Engine) Mode() Mode {
	e.modeMu.RLock()
	defer e.modeMu.RUnlock()

	return e.mode
}

// SetMode changes the approval mode for subsequent decisions.
func (e *Engine) SetMode(mode Mode) {
	e.modeMu.Lock()
	defer e.modeMu.Unlock()

	e.mode = mode
}

// Rules returns the engine's standing-rule store.
func (e *Engine) Rules() *Rules {
	return e.rules
}

// Decide resolves a permission request for one tool invocation.
//
// The context is the in-flight request's cancellable context: cancellation
// while awaiting the host resolves the decision to deny rather than
// returning an error. A non-nil error is returned only when the host
// callback itself fails.
func (e *Engine) Decide(ctx context.Context, toolName string, input map[string]any, permCtx *Context) (Result, error) {
	mode := e.Mode()
	classification := e.classifier.Classify(toolName)

	log := e.log.With("tool", toolName, "mode", mode, "classification", classification)

	if e.rules.Denied(toolName) {
		log.Debug("Tool denied by standing rule")

		return &Deny{Message: deniedByPolicyMessage}, nil
	}

	if mode == ModeYOLO {
		log.Debug("Tool allowed by yolo mode")

		return &Allow{}, nil
	}

	if mode == ModePlan && classification != ClassReadOnly {
		log.Debug("Tool denied by plan mode")

		return &Deny{Message: deniedInPlanMessage}, nil
	}

	if mode == ModeAutoEdit && classification == ClassEdit {
		log.Debug("Tool allowed by auto-edit mode")

		return &Allow{}, nil
	}

	if e.rules.Allowed(toolName) {
		log.Debug("Tool allowed by standing rule")

		return &Allow{}, nil
	}

	return e.delegate(ctx, log, toolName, input, permCtx)
}

// delegate asks the host for a decision.
func (e *Engine) delegate(ctx context.Context, log *slog.Logger, toolName string, input map[string]any, permCtx *Context) (Result, error) {
	if e.canUseTool == nil {
		log.Debug("No host callback configured, denying")

		return &Deny{Message: deniedDefaultMessage}, nil
	}

	// The request may already be withdrawn (interrupt, cancel, close).
	select {
	case <-ctx.Done():
		log.Debug("Delegation aborted before host callback")

		return &Deny{Message: deniedAbortedMessage}, nil
	default:
	}

	if permCtx == nil {
		permCtx = &Context{}
	}

	log.Debug("Delegating permission decision to host")

	result, err := e.canUseTool(ctx, toolName, input, permCtx)

	// Cancellation while the host was deciding resolves to deny, whatever
	// the callback returned.
	if ctx.Err() != nil {
		log.Debug("Delegation aborted while awaiting host")

		return &Deny{Message: deniedAbortedMessage}, nil
	}

	if err != nil {
		log.Warn("Host permission callback failed", "error", err)

		return nil, err
	}

	switch r := result.(type) {
	case *Allow:
		if r.Always {
			e.rules.AllowAlways(toolName)
			log.Debug("Recorded standing allow rule", "root", ToolRoot(toolName))
		}

		return r, nil

	case *Deny:
		if r.Always {
			e.rules.DenyAlways(toolName)
			log.Debug("Recorded standing deny rule", "root", ToolRoot(toolName))
		}

		return r, nil

	default:
		// Treat a nil or foreign result conservatively.
		log.Warn("Host callback returned unexpected result, denying")

		return &Deny{Message: deniedDefaultMessage}, nil
	}
}
