package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/xlog"
)

const DefaultReconnectDelay = 5 * time.Second

// ChatDispatcher handles one chat line. *dispatch.Dispatcher satisfies it.
type ChatDispatcher interface {
	ProcessChatCommand(ctx context.Context, speaker, message string) types.DispatchResult
}

// StateSink receives partial bot state updates. *state.Store satisfies it.
type StateSink interface {
	UpdateState(partial map[string]any)
}

// Events consumes the bridge's real-time event stream over a websocket and
// feeds chat lines to the dispatcher and state updates to the store.
type Events struct {
	url        string
	dispatcher ChatDispatcher
	state      StateSink
	dialer     *websocket.Dialer
	reconnect  time.Duration

	mu        sync.RWMutex
	connected bool
}

type EventsOption func(*Events)

func WithReconnectDelay(d time.Duration) EventsOption {
	return func(e *Events) {
		if d > 0 {
			e.reconnect = d
		}
	}
}

func WithDialer(d *websocket.Dialer) EventsOption {
	return func(e *Events) {
		if d != nil {
			e.dialer = d
		}
	}
}

func NewEvents(url string, dispatcher ChatDispatcher, state StateSink, opts ...EventsOption) *Events {
	e := &Events{
		url:        url,
		dispatcher: dispatcher,
		state:      state,
		reconnect:  DefaultReconnectDelay,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Connected reports whether the event stream is currently up.
func (e *Events) Connected() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.connected
}

func (e *Events) setConnected(v bool) {
	e.mu.Lock()
	e.connected = v
	e.mu.Unlock()
}

// Start keeps the event stream connected until ctx is cancelled,
// waiting the reconnect delay between attempts.
func (e *Events) Start(ctx context.Context) error {
	for {
		err := e.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		xlog.Warn("Event stream closed, reconnecting", "url", e.url, "error", err, "in", e.reconnect)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(e.reconnect):
		}
	}
}

func (e *Events) listen(ctx context.Context) error {
	conn, _, err := e.dialer.DialContext(ctx, e.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to event stream: %w", err)
	}
	defer conn.Close()

	e.setConnected(true)
	defer e.setConnected(false)
	xlog.Info("Connected to event stream", "url", e.url)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var ev types.Event
		if err := json.Unmarshal(raw, &ev); err != nil {
			xlog.Warn("Skipping malformed event", "error", err)
			continue
		}

		// one event at a time: the next read waits for this cycle
		if err := e.Handle(ctx, ev); err != nil {
			xlog.Warn("Failed to handle event", "event", ev.Name, "error", err)
		}
	}
}

// Handle processes a single event.
func (e *Events) Handle(ctx context.Context, ev types.Event) error {
	switch ev.Name {
	case types.EventBotState:
		var partial map[string]any
		if err := json.Unmarshal(ev.Data, &partial); err != nil {
			return fmt.Errorf("decoding bot state: %w", err)
		}
		e.state.UpdateState(partial)

	case types.EventChatMessage:
		var msg types.ChatMessage
		if err := json.Unmarshal(ev.Data, &msg); err != nil {
			return fmt.Errorf("decoding chat message: %w", err)
		}
		if strings.TrimSpace(msg.Username) == "" || strings.TrimSpace(msg.Message) == "" {
			return fmt.Errorf("chat message needs username and message")
		}
		xlog.Info("Recv message", "message", msg.Message, "sender", msg.Username)
		e.dispatcher.ProcessChatCommand(ctx, msg.Username, msg.Message)

	case types.EventConnect, types.EventDisconnect:
		xlog.Info("Bot connection event", "event", ev.Name)

	case types.EventGoalReached:
		xlog.Info("Bot reached its goal", "data", string(ev.Data))

	case types.EventError:
		xlog.Warn("Bot reported an error", "data", string(ev.Data))

	default:
		xlog.Debug("Ignoring unknown event", "event", ev.Name)
	}
	return nil
}
