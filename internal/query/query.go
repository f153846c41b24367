package query

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"maps"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/config"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/errors"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/message"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/models"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/permission"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/protocol"
	"github.com/qwenlm/qwen-agent-sdk-go/internal/subprocess"
)

const (
	// defaultMessageBufferSize is the buffer size for the messages channel.
	defaultMessageBufferSize = 10

	// defaultInitializeTimeout bounds the initial handshake. The CLI loads
	// extensions and authenticates during initialize, so this is generous.
	defaultInitializeTimeout = 60 * time.Second

	// defaultControlTimeout bounds the short-lived control requests
	// (interrupt, set_permission_mode, set_model).
	defaultControlTimeout = 5 * time.Second
)

// initializeTimeoutEnv overrides the initialize deadline, in seconds.
const initializeTimeoutEnv = "QWEN_CODE_INITIALIZE_TIMEOUT"

// state is the lifecycle position of a Query.
type state int

const (
	stateOpen state = iota
	stateClosing
	stateClosed
)

// Query is a live session against the Qwen Code CLI.
//
// Create one with Start. A Query is not reusable after Close.
type Query struct {
	log        *slog.Logger
	options    *config.Options
	transport  config.Transport
	controller *protocol.Controller
	engine     *permission.Engine
	sessionID  string

	// Parsed conversation messages for the consumer
	messages chan message.Message

	// Fatal error storage
	errMu    sync.RWMutex
	fatalErr error

	// Current model, guarded by modelMu
	modelMu sync.RWMutex
	model   string

	// Initialize handshake result, guarded by initMu
	initMu       sync.RWMutex
	capabilities map[string]any

	eg *errgroup.Group

	mu        sync.Mutex
	state     state
	done      chan struct{}
	closeOnce sync.Once
}

// Start spawns the CLI, performs the initialize handshake, and begins
// feeding prompts from the iterator over stdin.
//
// The prompt iterator is consumed in a background goroutine, one item at a
// time; when it is exhausted the input stream is ended so the CLI can
// finish and emit its result frame. The caller's ctx bounds startup only;
// the session itself lives until Close.
//
// Returns CLINotFoundError if the CLI binary cannot be located, or
// ConnectionError if the process fails to start.
func Start(
	ctx context.Context,
	prompts iter.Seq[message.PromptMessage],
	options *config.Options,
) (*Query, error) {
	if options == nil {
		options = &config.Options{}
	}

	log := options.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	q := &Query{
		log:       log.With("component", "query"),
		options:   options,
		sessionID: uuid.NewString(),
		model:     options.Model,
		messages:  make(chan message.Message, defaultMessageBufferSize),
		done:      make(chan struct{}),
	}

	mode := permission.Mode(config.NormalizePermissionMode(options.PermissionMode))
	if mode == "" {
		mode = permission.ModeDefault
	}

	if !permission.ValidMode(mode) {
		return nil, fmt.Errorf("invalid permission mode %q", options.PermissionMode)
	}

	rules := permission.NewRules(options.AllowedTools, options.ExcludeTools)
	q.engine = permission.NewEngine(log, mode, rules, options.ToolClassifier, options.CanUseTool)

	transport := options.Transport
	if transport == nil {
		transport = subprocess.NewCLITransport(log, options)
	} else {
		q.log.Debug("Using injected custom transport")
	}

	if err := transport.Start(ctx); err != nil {
		return nil, fmt.Errorf("start transport: %w", err)
	}

	q.transport = transport

	q.controller = protocol.NewController(log, transport)
	if err := q.controller.Start(ctx); err != nil {
		transport.Close()

		return nil, fmt.Errorf("start protocol controller: %w", err)
	}

	q.controller.RegisterHandler("can_use_tool", q.handleCanUseTool)

	if err := q.initialize(ctx); err != nil {
		q.controller.Stop()
		transport.Close()

		return nil, err
	}

	// Background context: the caller's ctx may carry a startup deadline,
	// and its expiry must not tear down a healthy session.
	var egCtx context.Context

	q.eg, egCtx = errgroup.WithContext(context.Background())

	q.eg.Go(func() error {
		return q.feedPrompts(egCtx, prompts)
	})

	q.eg.Go(func() error {
		return q.readLoop(egCtx)
	})

	q.log.Info("Query started", "session_id", q.sessionID)

	return q, nil
}

// initialize performs the handshake that advertises SDK capabilities and
// retrieves the CLI's.
func (q *Query) initialize(ctx context.Context) error {
	q.log.Debug("Sending initialize request")

	payload := map[string]any{
		"capabilities": map[string]any{
			"can_use_tool":  q.options.CanUseTool != nil,
			"stream_events": q.options.IncludePartialMessages,
		},
	}

	resp, err := q.controller.SendRequest(ctx, "initialize", payload, q.initializeTimeout())
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	q.initMu.Lock()
	q.capabilities = resp.Payload()
	q.initMu.Unlock()

	return nil
}

// initializeTimeout resolves the handshake deadline from options, the
// environment, or the default, in that order.
func (q *Query) initializeTimeout() time.Duration {
	if q.options.InitializeTimeout != nil {
		return *q.options.InitializeTimeout
	}

	if d, ok := q.options.ControlTimeouts["initialize"]; ok {
		return d
	}

	if timeoutStr := os.Getenv(initializeTimeoutEnv); timeoutStr != "" {
		if timeoutSec, err := strconv.Atoi(timeoutStr); err == nil && timeoutSec > 0 {
			return time.Duration(timeoutSec) * time.Second
		}
	}

	return defaultInitializeTimeout
}

// controlTimeout resolves the deadline for a short-lived control request.
func (q *Query) controlTimeout(subtype string) time.Duration {
	if d, ok := q.options.ControlTimeouts[subtype]; ok {
		return d
	}

	return defaultControlTimeout
}

// setFatalError stores the first fatal error encountered.
func (q *Query) setFatalError(err error) {
	if err == nil {
		return
	}

	q.errMu.Lock()
	defer q.errMu.Unlock()

	if q.fatalErr == nil {
		q.fatalErr = err
	}
}

// getFatalError returns the stored fatal error, if any.
func (q *Query) getFatalError() error {
	q.errMu.RLock()
	defer q.errMu.RUnlock()

	return q.fatalErr
}

// isOpen reports whether the query accepts operations.
func (q *Query) isOpen() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.state == stateOpen
}

// SessionID returns the id stamped on outgoing prompts.
func (q *Query) SessionID() string {
	return q.sessionID
}

// Capabilities returns a copy of the CLI's initialize response.
// Returns nil before the handshake completes.
func (q *Query) Capabilities() map[string]any {
	q.initMu.RLock()
	defer q.initMu.RUnlock()

	if q.capabilities == nil {
		return nil
	}

	return maps.Clone(q.capabilities)
}

// Model returns the model currently in effect for this session.
func (q *Query) Model() string {
	q.modelMu.RLock()
	defer q.modelMu.RUnlock()

	return q.model
}

// PermissionMode returns the approval mode currently in effect.
func (q *Query) PermissionMode() string {
	return string(q.engine.Mode())
}

// feedPrompts writes each prompt from the iterator to the CLI's stdin,
// then ends the input stream.
//
// The source is pulled through a hand-off channel in its own goroutine,
// so a source that is between items (an open channel with nothing to
// yield yet) never blocks shutdown: closing the query abandons the
// paused pull instead of waiting for the next item. The hand-off is
// unbuffered, keeping the source at most one item ahead of the write.
func (q *Query) feedPrompts(
	ctx context.Context,
	prompts iter.Seq[message.PromptMessage],
) (err error) {
	defer func() {
		if endErr := q.transport.EndInput(); endErr != nil {
			if err == nil {
				err = fmt.Errorf("end input: %w", endErr)
			}
		}
	}()

	pulled := make(chan message.PromptMessage)
	pullStop := make(chan struct{})
	defer close(pullStop)

	go func() {
		defer close(pulled)

		for prompt := range prompts {
			select {
			case pulled <- prompt:
			case <-pullStop:
				return
			case <-q.done:
				return
			}
		}
	}()

	for {
		var prompt message.PromptMessage

		select {
		case p, ok := <-pulled:
			if !ok {
				q.log.Debug("Finished feeding all prompts")

				return nil
			}

			prompt = p

		case <-q.done:
			q.log.Debug("Query closed during prompt feeding")

			return nil

		case <-ctx.Done():
			q.log.Debug("Context cancelled during prompt feeding")

			return ctx.Err()
		}

		if prompt.Type == "" {
			prompt.Type = "user"
		}

		if prompt.SessionID == "" {
			prompt.SessionID = q.sessionID
		}

		data, err := json.Marshal(prompt)
		if err != nil {
			q.log.Error("Failed to marshal prompt", "error", err)

			return fmt.Errorf("marshal prompt: %w", err)
		}

		if err := q.transport.SendMessage(ctx, data); err != nil {
			q.log.Error("Failed to send prompt", "error", err)

			return fmt.Errorf("send prompt: %w", err)
		}

		q.log.Debug("Sent prompt to CLI")
	}
}

// readLoop consumes conversation frames from the controller, parses them,
// and forwards them to the messages channel.
//
// Frames of unknown type and frames that fail to parse are logged and
// skipped; neither terminates the session.
//
// The loop reads the controller channel until it closes, never racing it
// against the controller's stop signal: when the transport dies, frames it
// delivered before dying are still forwarded, and only then does the
// stored fatal error terminate the stream. The controller closes the
// channel on every exit path, so this cannot hang.
func (q *Query) readLoop(ctx context.Context) error {
	defer q.log.Debug("Read loop stopped")
	defer close(q.messages)

	rawMessages := q.controller.Messages()

	for {
		select {
		case msg, ok := <-rawMessages:
			if !ok {
				q.log.Debug("Message channel closed")

				if err := q.controller.FatalError(); err != nil {
					q.log.Error("Transport error", "error", err)
					q.setFatalError(err)

					return err
				}

				return nil
			}

			parsed, err := message.Parse(q.log, msg)
			if stderrors.Is(err, errors.ErrUnknownMessageType) {
				continue
			}

			if err != nil {
				q.log.Warn("Skipping unparseable message", "error", err)

				continue
			}

			select {
			case q.messages <- parsed:
			case <-q.done:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}

		case <-q.done:
			return nil

		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Messages returns a single-use iterator over the session's messages.
//
// Messages are yielded in arrival order until the stream ends. If the
// session ended because of a transport or process failure, the iterator's
// final item carries that error; a clean end simply stops the iteration.
func (q *Query) Messages(ctx context.Context) iter.Seq2[message.Message, error] {
	return func(yield func(message.Message, error) bool) {
		for {
			select {
			case msg, ok := <-q.messages:
				if !ok {
					// Drain goroutine errors; a clean close yields nothing.
					if q.eg != nil {
						if err := q.eg.Wait(); err != nil {
							q.setFatalError(err)
						}
					}

					if err := q.getFatalError(); err != nil {
						yield(nil, err)
					}

					return
				}

				if !yield(msg, nil) {
					return
				}

			case <-ctx.Done():
				yield(nil, ctx.Err())

				return
			}
		}
	}
}

// Interrupt asks the CLI to stop its current processing.
//
// Any delegated permission decisions still in flight are cancelled and
// resolve to deny. The session stays usable afterwards.
func (q *Query) Interrupt(ctx context.Context) error {
	if !q.isOpen() {
		return errors.ErrQueryClosed
	}

	q.log.Info("Sending interrupt signal")

	_, err := q.controller.SendRequest(ctx, "interrupt", nil, q.controlTimeout("interrupt"))
	if err != nil {
		return fmt.Errorf("send interrupt signal: %w", err)
	}

	q.controller.CancelAllInFlight()

	return nil
}

// SetPermissionMode changes the approval mode mid-session.
//
// The CLI is informed first; the local policy engine switches only after
// the CLI acknowledges, so both sides always agree on the active mode.
func (q *Query) SetPermissionMode(ctx context.Context, mode string) error {
	if !q.isOpen() {
		return errors.ErrQueryClosed
	}

	normalized := permission.Mode(config.NormalizePermissionMode(mode))
	if !permission.ValidMode(normalized) {
		return fmt.Errorf("invalid permission mode %q", mode)
	}

	q.log.Info("Setting permission mode", "mode", normalized)

	payload := map[string]any{"mode": string(normalized)}

	_, err := q.controller.SendRequest(
		ctx, "set_permission_mode", payload, q.controlTimeout("set_permission_mode"),
	)
	if err != nil {
		return fmt.Errorf("set permission mode to %q: %w", normalized, err)
	}

	q.engine.SetMode(normalized)

	return nil
}

// SetModel switches the session to a different model.
//
// Catalog aliases ("coder", "flash", "max", "vl") resolve to canonical
// IDs; unknown names pass through for the CLI to validate.
func (q *Query) SetModel(ctx context.Context, model string) error {
	if !q.isOpen() {
		return errors.ErrQueryClosed
	}

	resolved, err := models.Resolve(model)
	if err != nil {
		return fmt.Errorf("set model: %w", err)
	}

	q.log.Info("Setting model", "model", resolved)

	payload := map[string]any{"model": resolved}

	if _, err := q.controller.SendRequest(ctx, "set_model", payload, q.controlTimeout("set_model")); err != nil {
		return fmt.Errorf("set model to %q: %w", resolved, err)
	}

	q.modelMu.Lock()
	q.model = resolved
	q.modelMu.Unlock()

	return nil
}

// Close terminates the session and releases resources.
//
// Pending control requests resolve with ErrQueryClosed, in-flight
// delegated decisions are cancelled, and the CLI process is killed.
// Safe to call multiple times; after Close the query cannot be reused.
func (q *Query) Close() error {
	var closeErr error

	q.closeOnce.Do(func() {
		q.mu.Lock()
		q.state = stateClosing
		q.mu.Unlock()

		q.log.Info("Closing query")

		close(q.done)

		if q.controller != nil {
			q.controller.Stop()
		}

		if q.transport != nil {
			closeErr = q.transport.Close()
		}

		if q.eg != nil {
			if err := q.eg.Wait(); err != nil && closeErr == nil {
				if !stderrors.Is(err, context.Canceled) {
					closeErr = err
				}
			}
		}

		q.mu.Lock()
		q.state = stateClosed
		q.mu.Unlock()

		q.log.Info("Query closed")
	})

	return closeErr
}
