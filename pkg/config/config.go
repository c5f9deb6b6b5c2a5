// Package config reads the process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultBotAPIBase    = "http://localhost:3001"
	DefaultBotName       = "Bot"
	DefaultOpenAIURL     = "https://api.openai.com/v1"
	DefaultModel         = "gpt-4o-mini"
	DefaultLLMTimeout    = 30 * time.Second
	DefaultMaxTokens     = 150
	DefaultContextWindow = 3
	DefaultBotAPITimeout = 15 * time.Second
	DefaultPollSchedule  = "@every 30s"
	DefaultMCPAddr       = ":3002"
	DefaultWebUIAddr     = ":3000"
)

const (
	MCPTransportOff   = "off"
	MCPTransportStdio = "stdio"
	MCPTransportHTTP  = "http"
)

var ErrMissingAPIKey = errors.New("OPENAI_API_KEY not set")

type Config struct {
	BotAPIBase    string
	BotEventsURL  string
	BotName       string
	OpenAIKey     string
	OpenAIURL     string
	Model         string
	LLMTimeout    time.Duration
	MaxTokens     int
	// ContextWindow is how many recent chat records ground a model reply.
	ContextWindow int
	BotAPITimeout time.Duration
	// PollSchedule is a cron spec; empty disables the status poller.
	PollSchedule string
	MCPTransport string
	MCPAddr      string
	// WebUIAddr is the operator API listen address; empty disables it.
	WebUIAddr string
	// ApiKeys protect the operator API when set.
	ApiKeys []string
}

// LoadEnvFiles loads .env style files into the environment without
// overriding variables that are already set. Missing files are skipped.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return LoadFrom(os.LookupEnv)
}

// LoadFrom reads the configuration through lookup.
func LoadFrom(lookup func(string) (string, bool)) (Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}
	// optional settings where an explicit empty value disables the feature
	getOptional := func(key, def string) string {
		if v, ok := lookup(key); ok {
			return strings.TrimSpace(v)
		}
		return def
	}

	c := Config{
		BotAPIBase:   strings.TrimSuffix(get("BOT_API_BASE", DefaultBotAPIBase), "/"),
		BotName:      get("BOT_NAME", DefaultBotName),
		OpenAIKey:    get("OPENAI_API_KEY", ""),
		OpenAIURL:    get("OPENAI_API_URL", DefaultOpenAIURL),
		Model:        get("OPENAI_MODEL", DefaultModel),
		PollSchedule: getOptional("STATUS_POLL_SCHEDULE", DefaultPollSchedule),
		MCPTransport: strings.ToLower(get("MCP_TRANSPORT", MCPTransportOff)),
		MCPAddr:      get("MCP_ADDR", DefaultMCPAddr),
		WebUIAddr:    getOptional("WEBUI_ADDR", DefaultWebUIAddr),
	}

	for _, k := range strings.Split(get("OPERATOR_API_KEYS", ""), ",") {
		if k = strings.TrimSpace(k); k != "" {
			c.ApiKeys = append(c.ApiKeys, k)
		}
	}

	var err error
	if c.LLMTimeout, err = parseDuration("LLM_TIMEOUT", get("LLM_TIMEOUT", ""), DefaultLLMTimeout); err != nil {
		return c, err
	}
	if c.BotAPITimeout, err = parseDuration("BOT_API_TIMEOUT", get("BOT_API_TIMEOUT", ""), DefaultBotAPITimeout); err != nil {
		return c, err
	}

	c.MaxTokens = DefaultMaxTokens
	if v := get("LLM_MAX_TOKENS", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c, fmt.Errorf("invalid LLM_MAX_TOKENS %q: must be a positive integer", v)
		}
		c.MaxTokens = n
	}

	c.ContextWindow = DefaultContextWindow
	if v := get("CHAT_CONTEXT_WINDOW", ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c, fmt.Errorf("invalid CHAT_CONTEXT_WINDOW %q: must be a non-negative integer", v)
		}
		c.ContextWindow = n
	}

	switch c.MCPTransport {
	case MCPTransportOff, MCPTransportStdio, MCPTransportHTTP:
	default:
		return c, fmt.Errorf("invalid MCP_TRANSPORT %q: want stdio, http or off", c.MCPTransport)
	}

	c.BotEventsURL = get("BOT_EVENTS_URL", "")
	if c.BotEventsURL == "" {
		if c.BotEventsURL, err = EventsURL(c.BotAPIBase); err != nil {
			return c, err
		}
	}

	if c.OpenAIKey == "" {
		return c, ErrMissingAPIKey
	}
	return c, nil
}

func parseDuration(key, v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s %q: must be positive", key, v)
	}
	return d, nil
}

// EventsURL derives the websocket event endpoint from the control API URL.
func EventsURL(apiBase string) (string, error) {
	u, err := url.Parse(apiBase)
	if err != nil {
		return "", fmt.Errorf("invalid BOT_API_BASE %q: %w", apiBase, err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http", "":
		u.Scheme = "ws"
	}
	u.Path = "/events"
	u.RawQuery = ""
	return u.String(), nil
}

// Groups describes the settings in effect. Secrets are masked.
func (c Config) Groups() []FieldGroup {
	key := ""
	if c.OpenAIKey != "" {
		key = "********"
	}
	return []FieldGroup{
		{
			Name:  "bot",
			Label: "Bot",
			Fields: []Field{
				{Name: "botApiBase", Env: "BOT_API_BASE", Type: FieldTypeText, Label: "Control API URL", Value: c.BotAPIBase, DefaultValue: DefaultBotAPIBase},
				{Name: "botEventsUrl", Env: "BOT_EVENTS_URL", Type: FieldTypeText, Label: "Event stream URL", Value: c.BotEventsURL, HelpText: "derived from the control API URL when empty"},
				{Name: "botName", Env: "BOT_NAME", Type: FieldTypeText, Label: "Bot name", Value: c.BotName, DefaultValue: DefaultBotName},
				{Name: "botApiTimeout", Env: "BOT_API_TIMEOUT", Type: FieldTypeDuration, Label: "Control API timeout", Value: c.BotAPITimeout.String(), DefaultValue: DefaultBotAPITimeout.String()},
				{Name: "statusPollSchedule", Env: "STATUS_POLL_SCHEDULE", Type: FieldTypeText, Label: "Status poll schedule", Value: c.PollSchedule, DefaultValue: DefaultPollSchedule, HelpText: "cron spec, empty disables polling"},
			},
		},
		{
			Name:  "llm",
			Label: "Language model",
			Fields: []Field{
				{Name: "openaiApiKey", Env: "OPENAI_API_KEY", Type: FieldTypeSecret, Label: "API key", Value: key, Required: true},
				{Name: "openaiApiUrl", Env: "OPENAI_API_URL", Type: FieldTypeText, Label: "API URL", Value: c.OpenAIURL, DefaultValue: DefaultOpenAIURL},
				{Name: "openaiModel", Env: "OPENAI_MODEL", Type: FieldTypeText, Label: "Model", Value: c.Model, DefaultValue: DefaultModel},
				{Name: "llmTimeout", Env: "LLM_TIMEOUT", Type: FieldTypeDuration, Label: "Timeout", Value: c.LLMTimeout.String(), DefaultValue: DefaultLLMTimeout.String()},
				{Name: "llmMaxTokens", Env: "LLM_MAX_TOKENS", Type: FieldTypeNumber, Label: "Max tokens", Value: c.MaxTokens, DefaultValue: DefaultMaxTokens},
				{Name: "chatContextWindow", Env: "CHAT_CONTEXT_WINDOW", Type: FieldTypeNumber, Label: "Chat context window", Value: c.ContextWindow, DefaultValue: DefaultContextWindow, HelpText: "recent chat records shown to the model"},
			},
		},
		{
			Name:  "servers",
			Label: "Servers",
			Fields: []Field{
				{
					Name: "mcpTransport", Env: "MCP_TRANSPORT", Type: FieldTypeSelect, Label: "MCP transport", Value: c.MCPTransport, DefaultValue: MCPTransportOff,
					Options: []FieldOption{
						{Value: MCPTransportOff, Label: "Disabled"},
						{Value: MCPTransportStdio, Label: "Standard I/O"},
						{Value: MCPTransportHTTP, Label: "Streamable HTTP"},
					},
				},
				{Name: "mcpAddr", Env: "MCP_ADDR", Type: FieldTypeText, Label: "MCP listen address", Value: c.MCPAddr, DefaultValue: DefaultMCPAddr},
				{Name: "webuiAddr", Env: "WEBUI_ADDR", Type: FieldTypeText, Label: "Operator API address", Value: c.WebUIAddr, DefaultValue: DefaultWebUIAddr, HelpText: "empty disables the operator API"},
				{Name: "operatorApiKeys", Env: "OPERATOR_API_KEYS", Type: FieldTypeSecret, Label: "Operator API keys", Value: fmt.Sprintf("%d configured", len(c.ApiKeys)), HelpText: "comma separated, empty leaves the operator API open"},
			},
		},
	}
}
