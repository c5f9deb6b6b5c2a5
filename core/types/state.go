package types

import "time"

// AgentState is the last known status of the remote bot, merged key-wise
// from every state event.
type AgentState map[string]any

// ChatRecord is a single chat line seen by the bot.
type ChatRecord struct {
	Speaker   string    `json:"username"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ContextSummary is what the response generator is grounded on.
type ContextSummary struct {
	Recent []ChatRecord
	State  AgentState
}
