package protocol

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelRequest_CancelsInFlightHandler(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	handlerStarted := make(chan struct{})
	handlerCancelled := make(chan struct{})

	ctrl.RegisterHandler("can_use_tool", func(ctx context.Context, _ *ControlRequest) (map[string]any, error) {
		close(handlerStarted)

		select {
		case <-ctx.Done():
			close(handlerCancelled)

			// A cancelled delegated decision still resolves with a payload.
			return map[string]any{"behavior": "deny"}, nil
		case <-time.After(10 * time.Second):
			return map[string]any{"behavior": "allow"}, nil
		}
	})

	transport.sendToController(map[string]any{
		"type":       "control_request",
		"request_id": "perm-1",
		"request": map[string]any{
			"subtype":   "can_use_tool",
			"tool_name": "run_shell_command",
		},
	})

	select {
	case <-handlerStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not start in time")
	}

	transport.sendToController(map[string]any{
		"type":       "control_cancel_request",
		"request_id": "perm-1",
	})

	select {
	case <-handlerCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not cancelled in time")
	}

	// The payload the handler returned after cancellation still goes out
	// as a success response.
	require.Eventually(t, func() bool {
		for _, raw := range transport.getMessages() {
			var frame map[string]any
			if err := json.Unmarshal(raw, &frame); err != nil {
				continue
			}

			if frame["type"] != "control_response" {
				continue
			}

			resp, _ := frame["response"].(map[string]any)
			if resp["request_id"] == "perm-1" && resp["subtype"] == "success" {
				return true
			}
		}

		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCancelRequest_AbbreviatedFrameForm(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	handlerCancelled := make(chan struct{})

	ctrl.RegisterHandler("can_use_tool", func(ctx context.Context, _ *ControlRequest) (map[string]any, error) {
		<-ctx.Done()
		close(handlerCancelled)

		return map[string]any{"behavior": "deny"}, nil
	})

	transport.sendToController(map[string]any{
		"type":       "control_request",
		"request_id": "perm-2",
		"request":    map[string]any{"subtype": "can_use_tool"},
	})

	// Some CLI builds emit the short frame name with a bare id.
	require.Eventually(t, func() bool {
		ctrl.inFlightMu.RLock()
		defer ctrl.inFlightMu.RUnlock()

		return len(ctrl.inFlight) == 1
	}, 2*time.Second, time.Millisecond)

	transport.sendToController(map[string]any{
		"type": "control_cancel",
		"id":   "perm-2",
	})

	select {
	case <-handlerCancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("handler was not cancelled via abbreviated frame")
	}
}

func TestCancelRequest_UnknownIDIsNoOp(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	transport.sendToController(map[string]any{
		"type":       "control_cancel_request",
		"request_id": "never-issued",
	})

	// No crash and nothing sent back.
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, transport.getMessages())
}

func TestCancelRequest_AfterCompletionIsNoOp(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	handlerDone := make(chan struct{})

	ctrl.RegisterHandler("can_use_tool", func(_ context.Context, _ *ControlRequest) (map[string]any, error) {
		defer close(handlerDone)

		return map[string]any{"behavior": "allow"}, nil
	})

	transport.sendToController(map[string]any{
		"type":       "control_request",
		"request_id": "perm-3",
		"request":    map[string]any{"subtype": "can_use_tool"},
	})

	select {
	case <-handlerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not complete in time")
	}

	time.Sleep(50 * time.Millisecond)

	transport.sendToController(map[string]any{
		"type":       "control_cancel_request",
		"request_id": "perm-3",
	})

	time.Sleep(50 * time.Millisecond)

	// Only the original success response was sent.
	var responses int

	for _, raw := range transport.getMessages() {
		var frame map[string]any
		require.NoError(t, json.Unmarshal(raw, &frame))

		if frame["type"] == "control_response" {
			responses++
		}
	}

	assert.Equal(t, 1, responses)
}

func TestCancelRequest_NoRegisteredHandler(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	transport.sendToController(map[string]any{
		"type":       "control_request",
		"request_id": "req-x",
		"request":    map[string]any{"subtype": "unsupported_op"},
	})

	require.Eventually(t, func() bool {
		for _, raw := range transport.getMessages() {
			var frame map[string]any
			if err := json.Unmarshal(raw, &frame); err != nil {
				continue
			}

			resp, _ := frame["response"].(map[string]any)
			if resp["request_id"] == "req-x" && resp["subtype"] == "error" {
				return true
			}
		}

		return false
	}, 2*time.Second, 5*time.Millisecond)
}

func TestCancelAllInFlight(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, ctrl.Start(ctx))

	var (
		mu             sync.Mutex
		cancelledCount int
	)

	handlerStarted := make(chan struct{}, 3)

	ctrl.RegisterHandler("can_use_tool", func(ctx context.Context, _ *ControlRequest) (map[string]any, error) {
		handlerStarted <- struct{}{}

		<-ctx.Done()

		mu.Lock()
		defer mu.Unlock()

		cancelledCount++

		return map[string]any{"behavior": "deny"}, nil
	})

	for i := range 3 {
		transport.sendToController(map[string]any{
			"type":       "control_request",
			"request_id": "perm-bulk-" + string(rune('a'+i)),
			"request":    map[string]any{"subtype": "can_use_tool"},
		})
	}

	for i := range 3 {
		select {
		case <-handlerStarted:
		case <-time.After(2 * time.Second):
			t.Fatalf("handler %d did not start in time", i)
		}
	}

	ctrl.CancelAllInFlight()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return cancelledCount == 3
	}, 2*time.Second, 5*time.Millisecond)

	ctrl.Stop()
}
