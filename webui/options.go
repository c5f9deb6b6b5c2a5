package webui

import (
	"context"

	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/config"
)

// ChatDispatcher runs a dispatch cycle. *dispatch.Dispatcher satisfies it.
type ChatDispatcher interface {
	ProcessChatCommand(ctx context.Context, speaker, message string) types.DispatchResult
}

// EventHandler accepts injected bridge events. *connectors.Events satisfies it.
type EventHandler interface {
	Handle(ctx context.Context, ev types.Event) error
}

// ContextStore exposes the recorded chat and bot state. *state.Store satisfies it.
type ContextStore interface {
	History() []types.ChatRecord
	Snapshot() types.AgentState
}

type Config struct {
	BotName    string
	Dispatcher ChatDispatcher
	Events     EventHandler
	Store      ContextStore
	ApiKeys    []string
	Settings   []config.FieldGroup
	SSEHistory int
	Connected  func() bool
}

type Option func(*Config)

func WithBotName(name string) Option {
	return func(c *Config) {
		c.BotName = name
	}
}

func WithDispatcher(d ChatDispatcher) Option {
	return func(c *Config) {
		c.Dispatcher = d
	}
}

func WithEvents(e EventHandler) Option {
	return func(c *Config) {
		c.Events = e
	}
}

func WithStore(s ContextStore) Option {
	return func(c *Config) {
		c.Store = s
	}
}

// WithApiKeys protects every route except /health with bearer keys.
func WithApiKeys(keys ...string) Option {
	return func(c *Config) {
		c.ApiKeys = append(c.ApiKeys, keys...)
	}
}

// WithSettings exposes the effective settings on /api/settings.
func WithSettings(groups []config.FieldGroup) Option {
	return func(c *Config) {
		c.Settings = groups
	}
}

// WithConnected reports the event stream status on /health.
func WithConnected(f func() bool) Option {
	return func(c *Config) {
		c.Connected = f
	}
}

func WithSSEHistory(n int) Option {
	return func(c *Config) {
		c.SSEHistory = n
	}
}

func (c *Config) Apply(opts ...Option) {
	for _, opt := range opts {
		opt(c)
	}
}

func NewConfig(opts ...Option) *Config {
	c := &Config{
		BotName:    "Bot",
		SSEHistory: 10,
	}
	c.Apply(opts...)
	return c
}
