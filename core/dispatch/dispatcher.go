// Package dispatch turns inbound chat lines into bot actions and replies.
//
// A cycle records the message, decides whether the bot was addressed,
// resolves literal commands directly and otherwise asks the model, runs the
// actions embedded in its answer and relays what is left as chat.
package dispatch

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mudler/MCBridge/core/action"
	"github.com/mudler/MCBridge/core/state"
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/MCBridge/pkg/xstrings"
	"github.com/mudler/xlog"
)

// DefaultContextWindow is how many chat records ground a model reply.
const DefaultContextWindow = 3

// Controller is the part of the control API the dispatcher drives.
// *botapi.Client satisfies it.
type Controller interface {
	botapi.Invoker
	Status(ctx context.Context) botapi.Result
	Inventory(ctx context.Context) botapi.Result
	FollowPlayer(ctx context.Context, player string) botapi.Result
	Stop(ctx context.Context) botapi.Result
	Say(ctx context.Context, message string) botapi.Result
}

// Generator produces a model reply grounded on recent context.
type Generator interface {
	Generate(ctx context.Context, message, speaker string, summary types.ContextSummary) string
}

// Observer receives the outcome of every cycle.
type Observer func(types.DispatchResult)

type Dispatcher struct {
	name   string
	store  *state.Store
	api    Controller
	gen    Generator
	exec   *action.Executor
	window int

	// one cycle at a time
	mu sync.Mutex

	observersMu sync.RWMutex
	observers   []Observer
}

type Option func(*Dispatcher) error

// WithExecutor replaces the executor built on the controller.
func WithExecutor(e *action.Executor) Option {
	return func(d *Dispatcher) error {
		d.exec = e
		return nil
	}
}

// WithObserver registers o before the dispatcher starts.
func WithObserver(o Observer) Option {
	return func(d *Dispatcher) error {
		d.observers = append(d.observers, o)
		return nil
	}
}

// WithContextWindow sets how many recent chat records the model sees.
func WithContextWindow(n int) Option {
	return func(d *Dispatcher) error {
		if n < 0 {
			return fmt.Errorf("context window cannot be negative")
		}
		d.window = n
		return nil
	}
}

func New(name string, store *state.Store, api Controller, gen Generator, opts ...Option) (*Dispatcher, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("bot name cannot be empty")
	}
	if store == nil || api == nil || gen == nil {
		return nil, fmt.Errorf("store, controller and generator are required")
	}

	d := &Dispatcher{
		name:   name,
		store:  store,
		api:    api,
		gen:    gen,
		window: DefaultContextWindow,
	}
	for _, o := range opts {
		if err := o(d); err != nil {
			return nil, err
		}
	}
	if d.exec == nil {
		exec, err := action.NewExecutor(api)
		if err != nil {
			return nil, err
		}
		d.exec = exec
	}
	return d, nil
}

func (d *Dispatcher) Name() string {
	return d.name
}

// Store returns the context store the dispatcher records into.
func (d *Dispatcher) Store() *state.Store {
	return d.store
}

// AddObserver registers o for every following cycle.
func (d *Dispatcher) AddObserver(o Observer) {
	d.observersMu.Lock()
	defer d.observersMu.Unlock()
	d.observers = append(d.observers, o)
}

func (d *Dispatcher) publish(res types.DispatchResult) {
	d.observersMu.RLock()
	defer d.observersMu.RUnlock()
	for _, o := range d.observers {
		o(res)
	}
}

// ProcessChatCommand runs a full dispatch cycle for one chat line.
func (d *Dispatcher) ProcessChatCommand(ctx context.Context, speaker, message string) types.DispatchResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.store.RecordMessage(speaker, message)

	res := types.DispatchResult{
		ID:         uuid.New().String(),
		Speaker:    speaker,
		Message:    message,
		Resolution: types.ResolutionIgnored,
		Time:       time.Now(),
	}

	switch {
	case strings.EqualFold(strings.TrimSpace(speaker), d.name):
		xlog.Debug("Ignoring own message", "cycle", res.ID)
	case !Addressed(d.name, message):
		xlog.Debug("Message not addressed to the bot", "cycle", res.ID, "speaker", speaker)
	default:
		res.Command = StripName(d.name, message)
		if lit, ok := matchLiteral(res.Command, speaker); ok {
			res.Resolution = types.ResolutionLiteral
			d.runLiteral(ctx, lit, speaker, &res)
		} else {
			res.Resolution = types.ResolutionModel
			d.runModel(ctx, speaker, message, &res)
		}
		d.say(ctx, res.ID, res.Reply)
	}

	if res.Resolution != types.ResolutionIgnored {
		xlog.Info("Dispatch cycle resolved",
			"cycle", res.ID,
			"speaker", speaker,
			"path", res.Resolution,
			"actions", strings.Join(res.Report(), "; "),
		)
	}

	d.publish(res)
	return res
}

func (d *Dispatcher) runModel(ctx context.Context, speaker, message string, res *types.DispatchResult) {
	generated := d.gen.Generate(ctx, message, speaker, d.store.Summary(d.window))
	exec := d.exec.Execute(ctx, generated, speaker)
	res.Results = exec.Results

	parts := []string{}
	if exec.Residual != "" {
		parts = append(parts, exec.Residual)
	} else if exec.Executed() {
		if ack := acknowledge(exec.Results, len(exec.Feedback) > 0); ack != "" {
			parts = append(parts, ack)
		}
	}
	parts = append(parts, exec.Feedback...)

	res.Reply = strings.Join(parts, " ")
	if res.Reply == "" {
		res.Reply = "Okay."
	}
}

// acknowledge summarizes results when the model answered with calls only.
// Failures already reported as feedback are left out.
func acknowledge(results []types.ActionResult, skipFailures bool) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		switch {
		case !r.Success && skipFailures:
		case !r.Success:
			parts = append(parts, fmt.Sprintf("%s failed: %s", r.Action, r.Message))
		case r.Message != "":
			parts = append(parts, r.Message)
		default:
			parts = append(parts, fmt.Sprintf("%s done", r.Action))
		}
	}
	return strings.Join(parts, "; ")
}

func (d *Dispatcher) say(ctx context.Context, cycle, reply string) {
	for _, line := range xstrings.ChatLines(reply) {
		if r := d.api.Say(ctx, line); !r.Success {
			xlog.Warn("Failed to relay reply", "cycle", cycle, "error", r.Message)
		}
	}
}
