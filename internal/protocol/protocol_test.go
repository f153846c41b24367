package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sdkerrors "github.com/qwenlm/qwen-agent-sdk-go/internal/errors"
)

// mockTransport implements Transport for testing.
type mockTransport struct {
	mu       sync.Mutex
	messages [][]byte
	msgChan  chan map[string]any
	errChan  chan error
}

func newMockTransport() *mockTransport {
	return &mockTransport{
		messages: make([][]byte, 0, 10),
		msgChan:  make(chan map[string]any, 10),
		errChan:  make(chan error, 1),
	}
}

func (m *mockTransport) ReadMessages(_ context.Context) (<-chan map[string]any, <-chan error) {
	return m.msgChan, m.errChan
}

func (m *mockTransport) SendMessage(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.messages = append(m.messages, data)

	return nil
}

func (m *mockTransport) getMessages() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([][]byte, len(m.messages))
	copy(result, m.messages)

	return result
}

// lastSentRequestID extracts the request_id of the most recent outgoing frame.
func (m *mockTransport) lastSentRequestID(t *testing.T) string {
	t.Helper()

	msgs := m.getMessages()
	require.NotEmpty(t, msgs)

	var frame map[string]any

	require.NoError(t, json.Unmarshal(msgs[len(msgs)-1], &frame))

	id, _ := frame["request_id"].(string)

	return id
}

func (m *mockTransport) sendToController(msg map[string]any) {
	m.msgChan <- msg
}

func TestController_SendRequest_Success(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	done := make(chan struct{})

	var (
		resp *ControlResponse
		err  error
	)

	go func() {
		defer close(done)

		resp, err = ctrl.SendRequest(ctx, "interrupt", map[string]any{}, 2*time.Second)
	}()

	// Wait for the request to hit the wire, then answer it.
	var reqID string

	require.Eventually(t, func() bool {
		if len(transport.getMessages()) == 0 {
			return false
		}

		reqID = transport.lastSentRequestID(t)

		return reqID != ""
	}, time.Second, time.Millisecond)

	transport.sendToController(map[string]any{
		"type": "control_response",
		"response": map[string]any{
			"subtype":    "success",
			"request_id": reqID,
			"response":   map[string]any{"ok": true},
		},
	})

	<-done

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, reqID, resp.RequestID())
	assert.Equal(t, map[string]any{"ok": true}, resp.Payload())
}

func TestController_SendRequest_ErrorResponse(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	done := make(chan struct{})

	var err error

	go func() {
		defer close(done)

		_, err = ctrl.SendRequest(ctx, "set_model", map[string]any{"model": "bogus"}, 2*time.Second)
	}()

	var reqID string

	require.Eventually(t, func() bool {
		if len(transport.getMessages()) == 0 {
			return false
		}

		reqID = transport.lastSentRequestID(t)

		return reqID != ""
	}, time.Second, time.Millisecond)

	transport.sendToController(map[string]any{
		"type": "control_response",
		"response": map[string]any{
			"subtype":    "error",
			"request_id": reqID,
			"error":      "unknown model",
		},
	})

	<-done

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown model")
}

func TestController_SendRequest_Timeout(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	start := time.Now()
	_, err := ctrl.SendRequest(ctx, "interrupt", map[string]any{}, 20*time.Millisecond)
	elapsed := time.Since(start)

	require.ErrorIs(t, err, sdkerrors.ErrRequestTimeout)
	assert.GreaterOrEqual(t, elapsed, 20*time.Millisecond)

	// The waiter must be gone so a late answer is a no-op.
	ctrl.pendingMu.RLock()
	assert.Empty(t, ctrl.pending)
	ctrl.pendingMu.RUnlock()
}

func TestController_SendRequest_StopResolvesWaiters(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	errCh := make(chan error, 1)

	go func() {
		_, err := ctrl.SendRequest(ctx, "interrupt", map[string]any{}, 10*time.Second)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		return len(transport.getMessages()) > 0
	}, time.Second, time.Millisecond)

	ctrl.Stop()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, sdkerrors.ErrQueryClosed)
	case <-time.After(time.Second):
		t.Fatal("SendRequest did not resolve on Stop")
	}
}

func TestController_SendRequest_StopWithFatalError(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	errCh := make(chan error, 1)

	go func() {
		_, err := ctrl.SendRequest(ctx, "interrupt", map[string]any{}, 10*time.Second)
		errCh <- err
	}()

	require.Eventually(t, func() bool {
		return len(transport.getMessages()) > 0
	}, time.Second, time.Millisecond)

	ctrl.SetFatalError(fmt.Errorf("broken pipe"))

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broken pipe")
	case <-time.After(time.Second):
		t.Fatal("SendRequest did not resolve on fatal error")
	}

	ctrl.Stop()
}

func TestController_UnmatchedResponseIsDropped(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	// A response nobody asked for must not panic and must not reach the
	// conversation channel.
	transport.sendToController(map[string]any{
		"type": "control_response",
		"response": map[string]any{
			"subtype":    "success",
			"request_id": "never-issued",
		},
	})

	select {
	case msg := <-ctrl.Messages():
		t.Fatalf("unexpected conversation message: %v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestController_ConversationFramesPreserveOrder(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	for i := range 5 {
		transport.sendToController(map[string]any{
			"type": "assistant",
			"seq":  i,
		})
	}

	for i := range 5 {
		select {
		case msg := <-ctrl.Messages():
			assert.Equal(t, i, msg["seq"])
		case <-time.After(time.Second):
			t.Fatalf("message %d not delivered", i)
		}
	}
}

func TestController_ConcurrentRequests_CorrelateByID(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	const numRequests = 20

	results := make(chan error, numRequests)

	for i := range numRequests {
		go func(i int) {
			resp, err := ctrl.SendRequest(ctx, "interrupt", map[string]any{"n": i}, 5*time.Second)
			if err != nil {
				results <- err

				return
			}

			// Each waiter must get the payload keyed to its own id.
			payload := resp.Payload()
			if payload["echo"] != resp.RequestID() {
				results <- fmt.Errorf("mismatched response: %v", payload)

				return
			}

			results <- nil
		}(i)
	}

	// Answer every pending request with a payload echoing its id.
	answered := make(map[string]bool, numRequests)

	require.Eventually(t, func() bool {
		ctrl.pendingMu.RLock()
		ids := make([]string, 0, len(ctrl.pending))

		for id := range ctrl.pending {
			if !answered[id] {
				ids = append(ids, id)
			}
		}
		ctrl.pendingMu.RUnlock()

		for _, id := range ids {
			answered[id] = true

			transport.sendToController(map[string]any{
				"type": "control_response",
				"response": map[string]any{
					"subtype":    "success",
					"request_id": id,
					"response":   map[string]any{"echo": id},
				},
			})
		}

		return len(answered) == numRequests
	}, 3*time.Second, time.Millisecond)

	for range numRequests {
		select {
		case err := <-results:
			require.NoError(t, err)
		case <-time.After(3 * time.Second):
			t.Fatal("request did not complete")
		}
	}
}

func TestController_SetFatalError_FirstErrorWins(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	defer ctrl.Stop()

	ctrl.SetFatalError(fmt.Errorf("first error"))
	require.EqualError(t, ctrl.FatalError(), "first error")

	ctrl.SetFatalError(fmt.Errorf("second error"))
	require.EqualError(t, ctrl.FatalError(), "first error")
}

func TestController_Stop_Idempotent(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	ctrl.Stop()
	ctrl.Stop()
	ctrl.Stop()

	select {
	case <-ctrl.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestController_TransportErrorIsFatal(t *testing.T) {
	transport := newMockTransport()
	ctrl := NewController(slog.Default(), transport)

	ctx := context.Background()
	require.NoError(t, ctrl.Start(ctx))

	transport.errChan <- fmt.Errorf("process exited unexpectedly")

	select {
	case <-ctrl.Done():
	case <-time.After(time.Second):
		t.Fatal("controller did not stop on transport error")
	}

	require.EqualError(t, ctrl.FatalError(), "process exited unexpectedly")
	ctrl.Stop()
}

func TestController_SendRequest_ResponseAfterTimeout_Race(t *testing.T) {
	// Hammer the window between the waiter timing out and the router
	// delivering a matching response. Run with -race.
	for range 100 {
		transport := newMockTransport()
		ctrl := NewController(slog.Default(), transport)

		ctx := context.Background()
		require.NoError(t, ctrl.Start(ctx))

		var wg sync.WaitGroup

		wg.Go(func() {
			_, _ = ctrl.SendRequest(ctx, "interrupt", map[string]any{}, time.Millisecond)
		})

		wg.Go(func() {
			time.Sleep(500 * time.Microsecond)

			ctrl.pendingMu.RLock()
			var id string

			for pendingID := range ctrl.pending {
				id = pendingID

				break
			}
			ctrl.pendingMu.RUnlock()

			if id != "" {
				transport.sendToController(map[string]any{
					"type": "control_response",
					"response": map[string]any{
						"subtype":    "success",
						"request_id": id,
					},
				})
			}
		})

		wg.Wait()
		ctrl.Stop()
	}
}

func TestController_DeliversBufferedFramesBeforeFatalError(t *testing.T) {
	// Repeat to exercise the select race between a buffered frame and the
	// transport error: every round must deliver all frames, in order,
	// before the stream terminates.
	for range 20 {
		transport := newMockTransport()

		for i := range 5 {
			transport.msgChan <- map[string]any{
				"type":       "system",
				"subtype":    fmt.Sprintf("event_%d", i),
				"session_id": "s1",
			}
		}

		transport.errChan <- fmt.Errorf("process exited unexpectedly")

		ctrl := NewController(slog.Default(), transport)
		require.NoError(t, ctrl.Start(context.Background()))

		var got []string

		timeout := time.After(2 * time.Second)

	drain:
		for {
			select {
			case msg, ok := <-ctrl.Messages():
				if !ok {
					break drain
				}

				subtype, _ := msg["subtype"].(string)
				got = append(got, subtype)

			case <-timeout:
				t.Fatal("timed out waiting for buffered frames")
			}
		}

		require.Equal(t, []string{"event_0", "event_1", "event_2", "event_3", "event_4"}, got)
		require.EqualError(t, ctrl.FatalError(), "process exited unexpectedly")
		ctrl.Stop()
	}
}
