package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"

	"github.com/strandcast/lednode/internal/events"
)

// registerSSERoutes registers the native Huma SSE endpoint streaming the
// node event bus to debug clients.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of session changes, applied frames, heartbeats, link transitions and wakeup completion",
		Tags:        []string{"events"},
	}, map[string]any{
		"session-changed":    events.SessionChangedEvent{},
		"frame-applied":      events.FrameAppliedEvent{},
		"heartbeat-sent":     events.HeartbeatSentEvent{},
		"link-state-changed": events.LinkStateChangedEvent{},
		"wakeup-completed":   events.WakeupCompletedEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)

		unsubscribers := []func(){
			events.SubscribeToChannel[events.SessionChangedEvent](s.opts.Bus, eventCh),
			events.SubscribeToChannel[events.FrameAppliedEvent](s.opts.Bus, eventCh),
			events.SubscribeToChannel[events.HeartbeatSentEvent](s.opts.Bus, eventCh),
			events.SubscribeToChannel[events.LinkStateChangedEvent](s.opts.Bus, eventCh),
			events.SubscribeToChannel[events.WakeupCompletedEvent](s.opts.Bus, eventCh),
		}
		defer func() {
			for _, unsub := range unsubscribers {
				unsub()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
