package state

import (
	"maps"
	"sync"
	"time"

	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/xlog"
)

// DefaultHistorySize is how many chat lines the store keeps.
const DefaultHistorySize = 20

// Store holds the rolling chat history and the last known bot state.
// It is shared by the ingress loop, the dispatcher, the tool server and the
// operator API, so every access goes through the mutex.
type Store struct {
	mu      sync.RWMutex
	size    int
	history []types.ChatRecord
	state   types.AgentState
	now     func() time.Time
}

func NewStore() *Store {
	return NewStoreWithSize(DefaultHistorySize)
}

func NewStoreWithSize(size int) *Store {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &Store{
		size:    size,
		history: make([]types.ChatRecord, 0, size),
		state:   types.AgentState{},
		now:     time.Now,
	}
}

// RecordMessage appends a chat line, evicting the oldest past the bound.
func (s *Store) RecordMessage(speaker, text string) types.ChatRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := types.ChatRecord{
		Speaker:   speaker,
		Message:   text,
		Timestamp: s.now(),
	}

	if len(s.history) == s.size {
		copy(s.history, s.history[1:])
		s.history = s.history[:s.size-1]
	}
	s.history = append(s.history, record)

	return record
}

// UpdateState merges partial into the agent state, key by key.
func (s *Store) UpdateState(partial map[string]any) {
	if len(partial) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	maps.Copy(s.state, partial)
	xlog.Debug("Agent state updated", "keys", len(partial))
}

// History returns a copy of all recorded chat lines, oldest first.
func (s *Store) History() []types.ChatRecord {
	return s.Recent(s.size)
}

// Recent returns a copy of the last n chat lines, oldest first.
func (s *Store) Recent(n int) []types.ChatRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.history) {
		n = len(s.history)
	}
	if n <= 0 {
		return []types.ChatRecord{}
	}

	out := make([]types.ChatRecord, n)
	copy(out, s.history[len(s.history)-n:])
	return out
}

// Snapshot returns a shallow copy of the agent state.
func (s *Store) Snapshot() types.AgentState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return maps.Clone(s.state)
}

// Summary returns the last n chat lines together with the state snapshot.
func (s *Store) Summary(n int) types.ContextSummary {
	return types.ContextSummary{
		Recent: s.Recent(n),
		State:  s.Snapshot(),
	}
}
