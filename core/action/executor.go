package action

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/xlog"
)

// Execution is everything one pass over generated text produced.
type Execution struct {
	Invocations []types.ActionInvocation
	Results     []types.ActionResult
	// Feedback holds chat lines for failures the player should hear about.
	Feedback []string
	// Residual is the text left once every matched call is removed.
	Residual string
}

// Executed reports whether at least one action ran.
func (e Execution) Executed() bool {
	return len(e.Results) > 0
}

// Report renders one "name(args): outcome" line per result.
func (e Execution) Report() []string {
	lines := make([]string, 0, len(e.Results))
	for _, r := range e.Results {
		lines = append(lines, r.Report())
	}
	return lines
}

type Option func(*Executor) error

// WithGrammar replaces the default grammar.
func WithGrammar(g *Grammar) Option {
	return func(e *Executor) error {
		if g == nil {
			return fmt.Errorf("grammar cannot be nil")
		}
		e.grammar = g
		return nil
	}
}

// WithFeedbackOps sets which operations report their failures back to chat.
func WithFeedbackOps(ops ...botapi.Op) Option {
	return func(e *Executor) error {
		e.feedback = map[botapi.Op]struct{}{}
		for _, op := range ops {
			e.feedback[op] = struct{}{}
		}
		return nil
	}
}

// Executor turns generated text into control API calls.
type Executor struct {
	api      botapi.Invoker
	grammar  *Grammar
	feedback map[botapi.Op]struct{}
}

func NewExecutor(api botapi.Invoker, opts ...Option) (*Executor, error) {
	e := &Executor{
		api:     api,
		grammar: DefaultGrammar,
		feedback: map[botapi.Op]struct{}{
			botapi.OpMine:    {},
			botapi.OpPlace:   {},
			botapi.OpCollect: {},
			botapi.OpCraft:   {},
		},
	}
	for _, o := range opts {
		if err := o(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Grammar returns the grammar the executor parses with.
func (e *Executor) Grammar() *Grammar {
	return e.grammar
}

// Plan parses text and adds the follow fallback, without calling anything.
func (e *Executor) Plan(text, speaker string) []types.ActionInvocation {
	return withFollowIntent(e.grammar.Parse(text), text, speaker)
}

func withFollowIntent(invocations []types.ActionInvocation, text, speaker string) []types.ActionInvocation {
	explicitFollow := false
	for _, inv := range invocations {
		if botapi.Op(inv.Op) == botapi.OpFollowPlayer {
			explicitFollow = true
			break
		}
	}
	if !explicitFollow && speaker != "" && FollowIntent(text) {
		invocations = append(invocations, types.ActionInvocation{
			Name: "followPlayer",
			Op:   string(botapi.OpFollowPlayer),
			Args: []any{speaker},
		})
	}
	return invocations
}

// Execute runs every invocation found in text in order. A failing call never
// stops the ones after it.
func (e *Executor) Execute(ctx context.Context, text, speaker string) Execution {
	invocations := e.Plan(text, speaker)
	exec := Execution{
		// synthesized calls carry no match and leave the text alone
		Residual:    Residual(text, invocations),
		Invocations: invocations,
	}

	for _, inv := range exec.Invocations {
		res := e.run(ctx, inv)
		exec.Results = append(exec.Results, res)

		if res.Success {
			xlog.Debug("Action executed", "action", inv.String(), "message", res.Message)
			continue
		}
		xlog.Warn("Action failed", "action", inv.String(), "error", res.Message)
		if _, ok := e.feedback[botapi.Op(inv.Op)]; ok {
			exec.Feedback = append(exec.Feedback, feedbackLine(inv, res))
		}
	}

	if len(exec.Results) > 0 {
		xlog.Info("Actions report", "results", strings.Join(exec.Report(), "; "))
	}
	return exec
}

func (e *Executor) run(ctx context.Context, inv types.ActionInvocation) (res types.ActionResult) {
	res = types.ActionResult{Action: inv.Name.String(), Args: inv.Args}
	defer func() {
		if r := recover(); r != nil {
			xlog.Error("Action panicked", "action", inv.String(), "panic", r)
			res.Success = false
			res.Message = fmt.Sprintf("internal error: %v", r)
		}
	}()

	op := botapi.Op(inv.Op)
	out := e.api.Invoke(ctx, op, botapi.Payload(op, inv.Args...))
	res.Success = out.Success
	res.Message = out.Message
	return res
}

func feedbackLine(inv types.ActionInvocation, res types.ActionResult) string {
	what := strings.TrimSuffix(inv.Name.String(), "Block")
	what = strings.TrimSuffix(what, "Item")
	target := types.FormatArgs(inv.Args)
	if res.Message == "" {
		return fmt.Sprintf("Couldn't %s %s.", what, target)
	}
	return fmt.Sprintf("Couldn't %s %s: %s", what, target, res.Message)
}

var spaces = regexp.MustCompile(`\s+`)

// Residual removes every matched call from text and normalizes whitespace.
func Residual(text string, invocations []types.ActionInvocation) string {
	var sb strings.Builder
	pos := 0
	for _, inv := range invocations {
		if inv.Match == "" || inv.Start < pos {
			continue
		}
		sb.WriteString(text[pos:inv.Start])
		sb.WriteString(" ")
		pos = inv.Start + len(inv.Match)
	}
	sb.WriteString(text[pos:])
	return strings.TrimSpace(spaces.ReplaceAllString(sb.String(), " "))
}
