package connectors_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mudler/MCBridge/core/state"
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/services/connectors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type chatLine struct {
	speaker, message string
}

type recordingDispatcher struct {
	mu    sync.Mutex
	lines []chatLine
}

func (r *recordingDispatcher) ProcessChatCommand(ctx context.Context, speaker, message string) types.DispatchResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, chatLine{speaker, message})
	return types.DispatchResult{Speaker: speaker, Message: message}
}

func (r *recordingDispatcher) Lines() []chatLine {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chatLine{}, r.lines...)
}

func event(name string, data any) types.Event {
	raw, _ := json.Marshal(data)
	return types.Event{Name: name, Data: raw}
}

var _ = Describe("Events", func() {
	var (
		store      *state.Store
		dispatcher *recordingDispatcher
		events     *connectors.Events
		ctx        context.Context
	)

	BeforeEach(func() {
		store = state.NewStore()
		dispatcher = &recordingDispatcher{}
		events = connectors.NewEvents("ws://127.0.0.1:1/events", dispatcher, store)
		ctx = context.Background()
	})

	Context("Handle", func() {
		It("merges bot state into the store", func() {
			Expect(events.Handle(ctx, event(types.EventBotState, map[string]any{"health": 20, "food": 18}))).To(Succeed())
			Expect(events.Handle(ctx, event(types.EventBotState, map[string]any{"health": 12}))).To(Succeed())

			snap := store.Snapshot()
			Expect(snap).To(HaveKeyWithValue("health", 12.0))
			Expect(snap).To(HaveKeyWithValue("food", 18.0))
		})

		It("dispatches chat messages", func() {
			Expect(events.Handle(ctx, event(types.EventChatMessage, map[string]any{"username": "Alice", "message": "Bot hi"}))).To(Succeed())
			Expect(dispatcher.Lines()).To(Equal([]chatLine{{"Alice", "Bot hi"}}))
		})

		It("rejects incomplete chat messages", func() {
			Expect(events.Handle(ctx, event(types.EventChatMessage, map[string]any{"username": "Alice"}))).ToNot(Succeed())
			Expect(events.Handle(ctx, types.Event{Name: types.EventBotState, Data: json.RawMessage(`[1,2]`)})).ToNot(Succeed())
			Expect(dispatcher.Lines()).To(BeEmpty())
		})

		It("only logs informational events", func() {
			for _, name := range []string{types.EventConnect, types.EventDisconnect, types.EventGoalReached, types.EventError, "whatever"} {
				Expect(events.Handle(ctx, event(name, map[string]any{"x": 1}))).To(Succeed())
			}
			Expect(dispatcher.Lines()).To(BeEmpty())
			Expect(store.Snapshot()).To(BeEmpty())
		})
	})

	Context("Start", func() {
		var (
			server      *httptest.Server
			connections atomic.Int32
			upgrader    = websocket.Upgrader{}
		)

		BeforeEach(func() {
			connections.Store(0)
			server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				conn, err := upgrader.Upgrade(w, r, nil)
				if err != nil {
					return
				}
				defer conn.Close()
				n := connections.Add(1)

				_ = conn.WriteJSON(event(types.EventConnect, nil))
				_ = conn.WriteMessage(websocket.TextMessage, []byte("not json"))
				_ = conn.WriteJSON(event(types.EventBotState, map[string]any{"connection": n}))
				_ = conn.WriteJSON(event(types.EventChatMessage, map[string]any{"username": "Alice", "message": "one"}))
				_ = conn.WriteJSON(event(types.EventChatMessage, map[string]any{"username": "Bob", "message": "two"}))
				if n == 1 {
					// drop the first connection to force a reconnect
					return
				}
				_, _, _ = conn.ReadMessage()
			}))
		})

		AfterEach(func() {
			server.Close()
		})

		It("consumes events in order and reconnects after a drop", func() {
			url := "ws" + strings.TrimPrefix(server.URL, "http")
			events = connectors.NewEvents(url, dispatcher, store, connectors.WithReconnectDelay(50*time.Millisecond))

			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- events.Start(runCtx) }()

			Eventually(func() int { return len(dispatcher.Lines()) }, 5*time.Second).Should(Equal(4))
			Expect(dispatcher.Lines()).To(Equal([]chatLine{{"Alice", "one"}, {"Bob", "two"}, {"Alice", "one"}, {"Bob", "two"}}))
			Eventually(events.Connected).Should(BeTrue())
			Expect(store.Snapshot()).To(HaveKeyWithValue("connection", 2.0))

			cancel()
			Eventually(done, 5*time.Second).Should(Receive(BeNil()))
			Expect(events.Connected()).To(BeFalse())
		})

		It("returns when cancelled while the stream is down", func() {
			runCtx, cancel := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- events.Start(runCtx) }()

			Consistently(done, 200*time.Millisecond).ShouldNot(Receive())
			cancel()
			Eventually(done, 7*time.Second).Should(Receive(BeNil()))
		})
	})
})
