package sse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

const (
	clientBuffer      = 50
	keepAliveInterval = 15 * time.Second
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
	Time  time.Time
}

// NewMessage returns a new message instance.
func NewMessage(event, data string) *Message {
	return &Message{
		Event: event,
		Data:  data,
		Time:  time.Now(),
	}
}

// NewJSONMessage encodes v as the message data.
func NewJSONMessage(event string, v any) (*Message, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding %s event: %w", event, err)
	}
	return NewMessage(event, string(b)), nil
}

// String returns the message in event-stream wire format.
func (m *Message) String() string {
	sb := strings.Builder{}

	if m.Event != "" {
		sb.WriteString(fmt.Sprintf("event: %s\n", m.Event))
	}
	for _, line := range strings.Split(m.Data, "\n") {
		sb.WriteString(fmt.Sprintf("data: %s\n", line))
	}
	sb.WriteString("\n")

	return sb.String()
}

// Client is one connected subscriber.
type Client struct {
	id   string
	ch   chan *Message
	once sync.Once
}

func (c *Client) ID() string            { return c.id }
func (c *Client) Chan() <-chan *Message { return c.ch }
func (c *Client) close()                { c.once.Do(func() { close(c.ch) }) }

// Manager fans messages out to every subscriber and replays the most recent
// ones to new subscribers.
type Manager struct {
	mu          sync.RWMutex
	clients     map[string]*Client
	history     []*Message
	historySize int
}

func NewManager(historySize int) *Manager {
	if historySize < 0 {
		historySize = 0
	}
	if historySize > clientBuffer {
		historySize = clientBuffer
	}
	return &Manager{
		clients:     map[string]*Client{},
		historySize: historySize,
	}
}

// Send broadcasts m. Subscribers whose buffer is full miss it.
func (manager *Manager) Send(m *Message) {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	if manager.historySize > 0 {
		manager.history = append(manager.history, m)
		if len(manager.history) > manager.historySize {
			manager.history = manager.history[len(manager.history)-manager.historySize:]
		}
	}

	for _, c := range manager.clients {
		select {
		case c.ch <- m:
		default:
		}
	}
}

// Subscribe registers a client and queues the history for it.
func (manager *Manager) Subscribe(id string) *Client {
	manager.mu.Lock()
	defer manager.mu.Unlock()

	c := &Client{id: id, ch: make(chan *Message, clientBuffer)}
	for _, m := range manager.history {
		c.ch <- m
	}
	manager.clients[id] = c
	return c
}

// Unsubscribe removes a client and closes its channel. It is safe to call
// more than once.
func (manager *Manager) Unsubscribe(id string) {
	manager.mu.Lock()
	c, ok := manager.clients[id]
	delete(manager.clients, id)
	manager.mu.Unlock()

	if ok {
		c.close()
	}
}

// Clients lists connected client IDs.
func (manager *Manager) Clients() []string {
	manager.mu.RLock()
	defer manager.mu.RUnlock()

	clients := make([]string, 0, len(manager.clients))
	for id := range manager.clients {
		clients = append(clients, id)
	}
	return clients
}

// Handle streams events to the requesting client until it disconnects.
func (manager *Manager) Handle(c *fiber.Ctx) error {
	cl := manager.Subscribe(uuid.New().String())
	ctx := c.Context()

	ctx.SetContentType("text/event-stream")
	ctx.Response.Header.Set("Cache-Control", "no-cache")
	ctx.Response.Header.Set("Connection", "keep-alive")
	ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
	ctx.Response.Header.Set("X-Accel-Buffering", "no")

	ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer manager.Unsubscribe(cl.ID())

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
		if err := w.Flush(); err != nil {
			return
		}

		for {
			select {
			case msg, ok := <-cl.Chan():
				if !ok {
					return
				}
				if _, err := fmt.Fprint(w, msg.String()); err != nil {
					return
				}
			case <-ticker.C:
				// a failed write is how a gone client shows up
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			case <-ctx.Done():
				return
			}
			if err := w.Flush(); err != nil {
				return
			}
		}
	}))
	return nil
}
