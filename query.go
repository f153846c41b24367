package qwensdk

import (
	"context"
	"iter"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/query"
)

// Query is a live session against the Qwen Code CLI.
//
// Start one with Start or StartWithPrompt, consume its messages with
// Messages, and release it with Close. A Query is not reusable after
// Close; operations on a closed query fail with ErrQueryClosed.
type Query struct {
	inner *query.Query
}

// Start spawns the Qwen Code CLI and begins a session.
//
// The prompt iterator is consumed in the background, one item at a time;
// when it is exhausted the CLI's input stream is ended so the session can
// finish and emit its result. The caller's ctx bounds startup (discovery,
// spawn, handshake) only — the session itself lives until Close.
//
//	ctx := context.Background()
//	q, err := qwensdk.Start(ctx, qwensdk.SinglePrompt("explain this repo"),
//	    qwensdk.WithModel("coder"),
//	    qwensdk.WithPermissionMode("plan"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer q.Close()
//
//	for msg, err := range q.Messages(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    switch m := msg.(type) {
//	    case *qwensdk.AssistantMessage:
//	        // handle assistant content blocks
//	    case *qwensdk.ResultMessage:
//	        // final statistics for the turn
//	    }
//	}
//
// Returns CLINotFoundError if the qwen binary cannot be located, or
// ConnectionError if the process fails to start.
func Start(
	ctx context.Context,
	prompts iter.Seq[PromptMessage],
	opts ...Option,
) (*Query, error) {
	options := applyOptions(opts)

	inner, err := query.Start(ctx, prompts, options)
	if err != nil {
		return nil, err
	}

	return &Query{inner: inner}, nil
}

// StartWithPrompt is a convenience wrapper for a single-prompt session.
func StartWithPrompt(ctx context.Context, prompt string, opts ...Option) (*Query, error) {
	return Start(ctx, SinglePrompt(prompt), opts...)
}

// Messages returns a single-use iterator over the session's messages.
//
// Messages arrive in the exact order the CLI emitted them. If the session
// ends because of a transport or process failure, the iterator's final
// item carries that error; a clean end simply stops the iteration.
// Breaking out of the loop early is always safe.
func (q *Query) Messages(ctx context.Context) iter.Seq2[Message, error] {
	return q.inner.Messages(ctx)
}

// Interrupt asks the CLI to stop its current processing.
//
// Delegated permission decisions still in flight are cancelled and resolve
// to deny. The session stays usable afterwards.
func (q *Query) Interrupt(ctx context.Context) error {
	return q.inner.Interrupt(ctx)
}

// SetPermissionMode changes the approval mode mid-session.
// Valid modes: "default", "plan", "auto-edit", "yolo" (legacy aliases are
// normalized). The local policy engine switches only after the CLI
// acknowledges the change.
func (q *Query) SetPermissionMode(ctx context.Context, mode string) error {
	return q.inner.SetPermissionMode(ctx, mode)
}

// SetModel switches the session to a different model.
// Catalog aliases ("coder", "flash", "max", "vl") resolve to canonical
// IDs; unknown names pass through for the CLI to validate.
func (q *Query) SetModel(ctx context.Context, model string) error {
	return q.inner.SetModel(ctx, model)
}

// Model returns the model currently in effect for this session.
func (q *Query) Model() string {
	return q.inner.Model()
}

// PermissionMode returns the approval mode currently in effect.
func (q *Query) PermissionMode() string {
	return q.inner.PermissionMode()
}

// SessionID returns the id stamped on outgoing prompts.
func (q *Query) SessionID() string {
	return q.inner.SessionID()
}

// Capabilities returns a copy of the CLI's initialize response, including
// its advertised commands. Returns nil before the handshake completes.
func (q *Query) Capabilities() map[string]any {
	return q.inner.Capabilities()
}

// Close terminates the session and releases resources.
//
// Pending control requests resolve with ErrQueryClosed, in-flight
// delegated decisions are cancelled, and the CLI process is killed.
// Safe to call multiple times.
func (q *Query) Close() error {
	return q.inner.Close()
}
