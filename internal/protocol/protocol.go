package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/qwenlm/qwen-agent-sdk-go/internal/errors"
)

// Transport defines the minimal interface needed for protocol operations.
//
// This interface is satisfied by the subprocess CLITransport but allows for
// testing with mock transports.
type Transport interface {
	ReadMessages(ctx context.Context) (<-chan map[string]any, <-chan error)
	SendMessage(ctx context.Context, data []byte) error
}

// Controller multiplexes the shared channel to the CLI.
//
// It is the sole reader of the transport and routes each inbound frame to
// exactly one of four sinks: the conversation channel, the pending-request
// table, the incoming-request handlers, or cancellation handling.
//
// The Controller must be started with Start() before use and manages its own
// goroutine for reading and routing frames.
type Controller struct {
	log       *slog.Logger
	transport Transport

	// Pending-request table: outgoing requests awaiting a response
	pendingMu sync.RWMutex
	pending   map[string]*pendingRequest

	// In-flight incoming requests, tracked for cancellation
	inFlightMu sync.RWMutex
	inFlight   map[string]*inFlightOperation

	// Handler registry for incoming requests
	handlersMu sync.RWMutex
	handlers   map[string]RequestHandler

	// Conversation frames forwarded to consumers
	messages chan map[string]any

	// Fatal error handling: stores error and broadcasts via done channel
	errMu    sync.RWMutex
	fatalErr error

	// Lifecycle management
	closeOnce sync.Once
	done      chan struct{}
	wg        sync.WaitGroup
}

// pendingRequest tracks an outgoing request awaiting response.
type pendingRequest struct {
	subtype  string
	response chan *ControlResponse
}

// inFlightOperation tracks an incoming control request being handled.
type inFlightOperation struct {
	requestID string
	subtype   string
	cancel    context.CancelFunc
	completed bool
}

// NewController creates a new protocol controller.
//
// The transport must be connected before calling Start().
func NewController(log *slog.Logger, transport Transport) *Controller {
	return &Controller{
		log:       log.With("component", "protocol"),
		transport: transport,
		pending:   make(map[string]*pendingRequest, 10),
		inFlight:  make(map[string]*inFlightOperation, 10),
		handlers:  make(map[string]RequestHandler, 10),
		messages:  make(chan map[string]any, 100), // Buffered to avoid blocking during initialization
		done:      make(chan struct{}),
	}
}

// closeDone safely closes the done channel exactly once.
func (c *Controller) closeDone() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// SetFatalError stores a fatal error and broadcasts to all waiters by closing done.
func (c *Controller) SetFatalError(err error) {
	c.errMu.Lock()

	if c.fatalErr == nil {
		c.fatalErr = err
	}

	c.errMu.Unlock()

	c.closeDone()
}

// FatalError returns the fatal error if one occurred.
func (c *Controller) FatalError() error {
	c.errMu.RLock()
	defer c.errMu.RUnlock()

	return c.fatalErr
}

// Done returns a channel that is closed when the controller stops.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Start begins reading frames from the transport and routing them.
//
// Start must be called before SendRequest or any handlers will work.
func (c *Controller) Start(ctx context.Context) error {
	c.log.Debug("Starting protocol controller")

	messages, errs := c.transport.ReadMessages(ctx)

	c.wg.Add(1)

	go c.readLoop(ctx, messages, errs)

	c.log.Info("Protocol controller started")

	return nil
}

// Stop shuts down the controller.
//
// Every pending outgoing request resolves immediately with ErrQueryClosed,
// every in-flight incoming request is cancelled. Safe to call repeatedly.
func (c *Controller) Stop() {
	c.log.Debug("Stopping protocol controller")

	c.closeDone()

	c.CancelAllInFlight()
	c.wg.Wait()
	c.log.Info("Protocol controller stopped")
}

// Messages returns the conversation sink.
//
// The controller handles control frames internally and forwards conversation
// frames through this channel in exact transport order. A slow consumer
// causes the channel to back up; frames are never dropped.
//
// The channel is closed when the controller stops or the transport closes.
// Use Done() and FatalError() to detect and retrieve transport errors.
func (c *Controller) Messages() <-chan map[string]any {
	return c.messages
}

// SendRequest sends a control request and waits for the response.
//
// A fresh ULID request id is generated, a waiter is registered in the
// pending-request table, and the caller suspends until the matching
// response arrives, the timeout elapses, the controller stops, or ctx is
// cancelled. In every non-response outcome the waiter is removed first, so
// a late answer for the same id is a logged no-op.
func (c *Controller) SendRequest(
	ctx context.Context,
	subtype string,
	payload map[string]any,
	timeout time.Duration,
) (*ControlResponse, error) {
	requestID := ulid.Make().String()

	c.log.Debug("Sending control request", "request_id", requestID, "subtype", subtype)

	// At most one waiter per id; the channel is buffered so the router
	// never blocks delivering to a waiter that is about to give up.
	responseChan := make(chan *ControlResponse, 1)

	c.pendingMu.Lock()
	c.pending[requestID] = &pendingRequest{subtype: subtype, response: responseChan}
	c.pendingMu.Unlock()

	requestPayload := map[string]any{"subtype": subtype}
	maps.Copy(requestPayload, payload)

	req := &ControlRequest{
		Type:      "control_request",
		RequestID: requestID,
		Request:   requestPayload,
	}

	data, err := json.Marshal(req)
	if err != nil {
		c.removePending(requestID)
		c.log.Error("Failed to marshal control request", "error", err)

		return nil, fmt.Errorf("marshal request: %w", err)
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		c.removePending(requestID)
		c.log.Error("Failed to send control request", "error", err)

		return nil, fmt.Errorf("send request: %w", err)
	}

	select {
	case resp := <-responseChan:
		if resp.IsError() {
			errMsg := resp.ErrorMessage()
			c.log.Warn("Control request returned error", "request_id", requestID, "error", errMsg)

			return nil, fmt.Errorf("request error: %s", errMsg)
		}

		c.log.Debug("Received control response", "request_id", requestID)

		return resp, nil

	case <-c.done:
		c.removePending(requestID)

		if err := c.FatalError(); err != nil {
			c.log.Warn("Transport error during request", "request_id", requestID, "error", err)

			return nil, fmt.Errorf("transport error: %w", err)
		}

		c.log.Debug("Controller stopped during request", "request_id", requestID)

		return nil, errors.ErrQueryClosed

	case <-time.After(timeout):
		c.removePending(requestID)
		c.log.Warn("Control request timed out", "request_id", requestID, "timeout", timeout)

		return nil, fmt.Errorf("%w after %s", errors.ErrRequestTimeout, timeout)

	case <-ctx.Done():
		c.removePending(requestID)
		c.log.Debug("Control request cancelled", "request_id", requestID)

		return nil, ctx.Err()
	}
}

// removePending deregisters a waiter; safe when the id is already gone.
func (c *Controller) removePending(requestID string) {
	c.pendingMu.Lock()
	delete(c.pending, requestID)
	c.pendingMu.Unlock()
}

// RegisterHandler registers a handler for incoming control requests.
//
// When the CLI sends a control_request with the specified subtype, the
// handler is invoked. Registering a handler for the same subtype twice
// overrides the previous handler.
func (c *Controller) RegisterHandler(subtype string, handler RequestHandler) {
	c.handlersMu.Lock()
	defer c.handlersMu.Unlock()

	c.log.Debug("Registering control request handler", "subtype", subtype)
	c.handlers[subtype] = handler
}

// readLoop reads frames from the transport and routes them.
func (c *Controller) readLoop(
	ctx context.Context,
	messages <-chan map[string]any,
	errs <-chan error,
) {
	defer c.wg.Done()
	defer close(c.messages)
	defer c.log.Debug("Protocol read loop stopped")

	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				c.log.Debug("Message channel closed")

				return
			}

			c.handleMessage(ctx, msg)

		case err, ok := <-errs:
			if !ok {
				c.log.Debug("Error channel closed")

				return
			}

			if err != nil {
				c.log.Debug("Transport error in protocol", "error", err)

				// Frames the transport delivered before failing must
				// still reach their sinks; the error only terminates
				// the stream after them.
				c.drainBuffered(ctx, messages)
				c.SetFatalError(err)

				return
			}

		case <-c.done:
			c.log.Debug("Protocol controller stop signal received")

			return

		case <-ctx.Done():
			c.log.Debug("Context cancelled in protocol read loop")

			return
		}
	}
}

// handleMessage classifies a frame by its type discriminator and routes it
// to exactly one sink.
func (c *Controller) handleMessage(ctx context.Context, msg map[string]any) {
	msgType, _ := msg["type"].(string)

	switch msgType {
	case "control_response":
		c.handleControlResponse(msg)

	case "control_request":
		c.handleControlRequest(ctx, msg)

	case "control_cancel_request", "control_cancel":
		c.handleCancelRequest(msg)

	default:
		// Conversation frames go to consumers in arrival order.
		select {
		case c.messages <- msg:
		case <-c.done:
		case <-ctx.Done():
		}
	}
}

// drainBuffered routes every frame already sitting in the transport
// channel, stopping as soon as it would block or the channel closes.
func (c *Controller) drainBuffered(ctx context.Context, messages <-chan map[string]any) {
	for {
		select {
		case msg, ok := <-messages:
			if !ok {
				return
			}

			c.handleMessage(ctx, msg)

		default:
			return
		}
	}
}

// handleControlResponse routes a response to the waiting request.
// An unmatched or late response is a non-fatal protocol error: logged, dropped.
func (c *Controller) handleControlResponse(msg map[string]any) {
	responseData, ok := msg["response"].(map[string]any)
	if !ok {
		c.log.Warn("Control response missing 'response' field")

		return
	}

	requestID, ok := responseData["request_id"].(string)
	if !ok {
		c.log.Warn("Control response missing request_id in response")

		return
	}

	// Find and claim the pending request atomically.
	c.pendingMu.Lock()

	pending, exists := c.pending[requestID]
	if exists {
		delete(c.pending, requestID)
	}

	c.pendingMu.Unlock()

	if !exists {
		c.log.Warn("No pending request for control response", "request_id", requestID)

		return
	}

	resp := &ControlResponse{
		Type:     "control_response",
		Response: responseData,
	}

	// We own the waiter now; the buffered channel makes this send safe.
	pending.response <- resp
}

// handleControlRequest invokes the registered handler for an incoming request.
func (c *Controller) handleControlRequest(ctx context.Context, msg map[string]any) {
	requestID, ok := msg["request_id"].(string)
	if !ok {
		c.log.Warn("Control request missing request_id")

		return
	}

	requestData, ok := msg["request"].(map[string]any)
	if !ok {
		c.log.Warn("Control request missing 'request' field")

		return
	}

	req := &ControlRequest{
		Type:      "control_request",
		RequestID: requestID,
		Request:   requestData,
	}

	subtype := req.Subtype()

	c.log.Debug("Received control request from CLI", "request_id", requestID, "subtype", subtype)

	c.handlersMu.RLock()
	handler, exists := c.handlers[subtype]
	c.handlersMu.RUnlock()

	if !exists {
		c.log.Warn("No handler registered for control request subtype", "subtype", subtype)
		c.sendErrorResponse(ctx, requestID, "no handler registered")

		return
	}

	opCtx, cancel := context.WithCancel(ctx)

	op := &inFlightOperation{
		requestID: requestID,
		subtype:   subtype,
		cancel:    cancel,
	}

	c.inFlightMu.Lock()
	c.inFlight[requestID] = op
	c.inFlightMu.Unlock()

	// Run the handler in a goroutine so the read loop stays free to
	// process cancel requests and further frames.
	c.wg.Go(func() {
		defer func() {
			c.inFlightMu.Lock()
			defer c.inFlightMu.Unlock()

			op.completed = true

			delete(c.inFlight, requestID)

			cancel()
		}()

		payload, err := handler(opCtx, req)

		// Handlers may resolve a cancelled operation themselves (the
		// permission engine answers deny); only a returned error becomes
		// an error response.
		if err != nil {
			c.log.Warn("Handler returned error", "request_id", requestID, "error", err.Error())
			c.sendErrorResponse(ctx, requestID, err.Error())

			return
		}

		c.sendSuccessResponse(ctx, requestID, payload)
	})
}

// sendSuccessResponse sends a successful control response.
func (c *Controller) sendSuccessResponse(
	ctx context.Context,
	requestID string,
	payload map[string]any,
) {
	resp := &ControlResponse{
		Type: "control_response",
		Response: map[string]any{
			"subtype":    "success",
			"request_id": requestID,
			"response":   payload,
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		c.log.Error("Failed to marshal control response", "error", err)

		return
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		c.log.Error("Failed to send control response", "error", err)
	}
}

// sendErrorResponse sends an error control response.
func (c *Controller) sendErrorResponse(
	ctx context.Context,
	requestID string,
	errMsg string,
) {
	resp := &ControlResponse{
		Type: "control_response",
		Response: map[string]any{
			"subtype":    "error",
			"request_id": requestID,
			"error":      errMsg,
		},
	}

	data, err := json.Marshal(resp)
	if err != nil {
		c.log.Error("Failed to marshal error response", "error", err)

		return
	}

	if err := c.transport.SendMessage(ctx, data); err != nil {
		if ctx.Err() != nil {
			c.log.Debug("Could not send error response during shutdown", "error", err)

			return
		}

		c.log.Error("Failed to send error response", "error", err)
	}
}

// handleCancelRequest handles control_cancel frames from the CLI.
// It cancels the named in-flight operation's context if found; the handler
// then resolves the operation (a delegated permission decision answers deny).
func (c *Controller) handleCancelRequest(msg map[string]any) {
	requestID, ok := msg["request_id"].(string)
	if !ok {
		// The abbreviated wire form carries a bare id.
		requestID, ok = msg["id"].(string)
	}

	if !ok {
		c.log.Warn("Cancel request missing request_id")

		return
	}

	c.log.Debug("Received cancel request", "request_id", requestID)

	c.inFlightMu.Lock()
	op, exists := c.inFlight[requestID]

	if !exists {
		c.inFlightMu.Unlock()
		c.log.Debug("Cancel request for unknown operation", "request_id", requestID)

		return
	}

	alreadyCompleted := op.completed
	if !alreadyCompleted {
		op.cancel()
	}

	c.inFlightMu.Unlock()

	c.log.Debug("Cancel request processed",
		"request_id", requestID,
		"already_completed", alreadyCompleted,
	)
}

// CancelAllInFlight cancels all in-flight incoming operations.
// Called during Stop() and on interrupt: a pending delegated decision
// resolves to deny without tearing down the session.
func (c *Controller) CancelAllInFlight() {
	c.inFlightMu.Lock()
	defer c.inFlightMu.Unlock()

	for _, op := range c.inFlight {
		if !op.completed {
			op.cancel()
		}
	}
}
