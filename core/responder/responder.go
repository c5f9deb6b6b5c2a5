package responder

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig/v3"
	"github.com/mudler/MCBridge/core/action"
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/llm"
	"github.com/mudler/xlog"
	"github.com/sashabaranov/go-openai"
)

// Fallback is relayed whenever the model cannot produce a reply.
const Fallback = "Sorry, I'm having trouble thinking right now."

const (
	DefaultModel     = "gpt-4o-mini"
	DefaultMaxTokens = 150
	DefaultTimeout   = 30 * time.Second
)

const systemTemplate = `You are {{.Name}}, a friendly Minecraft bot playing alongside human players.
Answer in one or two short sentences, the way a player would type in game chat.
When a player asks you to do something, include the matching action call in your answer.
You can use these actions:
{{.Catalogue}}
Write calls exactly as shown, with quoted names and numeric coordinates, e.g. followPlayer("{{.Speaker}}").
Only use actions from this list. If you cannot help, just say so.
{{- if .Recent }}

Recent chat:
{{- range .Recent }}
{{ .Speaker }}: {{ .Message }}
{{- end }}
{{- end }}
{{- if .State }}

Your current state:
{{ toJson .State }}
{{- end }}`

type Option func(*Responder) error

func WithModel(model string) Option {
	return func(r *Responder) error {
		if model != "" {
			r.model = model
		}
		return nil
	}
}

func WithMaxTokens(n int) Option {
	return func(r *Responder) error {
		if n <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", n)
		}
		r.maxTokens = n
		return nil
	}
}

func WithTimeout(d time.Duration) Option {
	return func(r *Responder) error {
		if d > 0 {
			r.timeout = d
		}
		return nil
	}
}

// WithGrammar sets the grammar whose catalogue is shown to the model.
func WithGrammar(g *action.Grammar) Option {
	return func(r *Responder) error {
		if g == nil {
			return fmt.Errorf("grammar cannot be nil")
		}
		r.grammar = g
		return nil
	}
}

// Responder asks the model for a chat reply grounded on recent context.
type Responder struct {
	client    llm.LLMClient
	name      string
	model     string
	maxTokens int
	timeout   time.Duration
	grammar   *action.Grammar
	tmpl      *template.Template
}

func New(client llm.LLMClient, name string, opts ...Option) (*Responder, error) {
	tmpl, err := template.New("system").Funcs(sprig.FuncMap()).Parse(systemTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing prompt template: %w", err)
	}

	r := &Responder{
		client:    client,
		name:      name,
		model:     DefaultModel,
		maxTokens: DefaultMaxTokens,
		timeout:   DefaultTimeout,
		grammar:   action.DefaultGrammar,
		tmpl:      tmpl,
	}
	for _, o := range opts {
		if err := o(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// SystemPrompt renders the instructions sent ahead of the player's message.
func (r *Responder) SystemPrompt(speaker string, summary types.ContextSummary) (string, error) {
	buf := bytes.NewBuffer([]byte{})
	err := r.tmpl.Execute(buf, struct {
		Name      string
		Speaker   string
		Catalogue string
		Recent    []types.ChatRecord
		State     types.AgentState
	}{
		Name:      r.name,
		Speaker:   speaker,
		Catalogue: strings.Join(r.grammar.Catalogue(), "\n"),
		Recent:    summary.Recent,
		State:     summary.State,
	})
	if err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// Generate returns the model's reply, or Fallback if anything goes wrong.
// It never returns an empty string.
func (r *Responder) Generate(ctx context.Context, message, speaker string, summary types.ContextSummary) string {
	system, err := r.SystemPrompt(speaker, summary)
	if err != nil {
		xlog.Error("Failed to render prompt", "error", err)
		return Fallback
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("%s says: %s", speaker, message)},
		},
	})
	if err != nil {
		xlog.Warn("Model request failed", "error", err)
		return Fallback
	}
	if len(resp.Choices) == 0 {
		xlog.Warn("Model returned no choices")
		return Fallback
	}

	reply := strings.TrimSpace(resp.Choices[0].Message.Content)
	if reply == "" {
		xlog.Warn("Model returned an empty reply")
		return Fallback
	}

	xlog.Debug("Model reply", "speaker", speaker, "reply", reply)
	return reply
}
