package types

import "encoding/json"

// Event names emitted by the bridge's real-time transport.
const (
	EventConnect     = "connect"
	EventDisconnect  = "disconnect"
	EventBotState    = "bot_state"
	EventChatMessage = "chat_message"
	EventError       = "error"
	EventGoalReached = "goal_reached"
)

// Event is the envelope delivered by the real-time transport.
type Event struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data,omitempty"`
}

// ChatMessage is the payload of a chat_message event.
type ChatMessage struct {
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp,omitempty"`
}
