package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/mudler/MCBridge/core/action"
	"github.com/mudler/MCBridge/core/dispatch"
	"github.com/mudler/MCBridge/core/responder"
	"github.com/mudler/MCBridge/core/state"
	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/MCBridge/pkg/config"
	"github.com/mudler/MCBridge/pkg/llm"
	"github.com/mudler/MCBridge/services/connectors"
	"github.com/mudler/MCBridge/services/mcp"
	"github.com/mudler/MCBridge/services/poller"
	"github.com/mudler/MCBridge/webui"
	"github.com/mudler/xlog"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := config.LoadEnvFiles(); err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, config.ErrMissingAPIKey) {
			panic("OPENAI_API_KEY not set")
		}
		panic(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := state.NewStore()
	api := botapi.NewClient(cfg.BotAPIBase, cfg.BotAPITimeout)

	// the model is shown the same grammar the executor parses
	exec, err := action.NewExecutor(api, action.WithGrammar(action.DefaultGrammar))
	if err != nil {
		panic(err)
	}

	resp, err := responder.New(
		llm.NewClient(cfg.OpenAIKey, cfg.OpenAIURL, cfg.LLMTimeout.String()),
		cfg.BotName,
		responder.WithModel(cfg.Model),
		responder.WithMaxTokens(cfg.MaxTokens),
		responder.WithTimeout(cfg.LLMTimeout),
		responder.WithGrammar(exec.Grammar()),
	)
	if err != nil {
		panic(err)
	}

	dispatcher, err := dispatch.New(cfg.BotName, store, api, resp,
		dispatch.WithExecutor(exec),
		dispatch.WithContextWindow(cfg.ContextWindow),
	)
	if err != nil {
		panic(err)
	}

	events := connectors.NewEvents(cfg.BotEventsURL, dispatcher, dispatcher.Store())

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return events.Start(ctx)
	})

	if cfg.WebUIAddr != "" {
		app := webui.NewApp(
			webui.WithBotName(dispatcher.Name()),
			webui.WithDispatcher(dispatcher),
			webui.WithEvents(events),
			webui.WithStore(dispatcher.Store()),
			webui.WithConnected(events.Connected),
			webui.WithApiKeys(cfg.ApiKeys...),
			webui.WithSettings(cfg.Groups()),
		)
		dispatcher.AddObserver(app.Observer())

		g.Go(func() error {
			return app.Start(ctx, cfg.WebUIAddr)
		})
	}

	if cfg.PollSchedule != "" {
		p, err := poller.New(cfg.PollSchedule, api, store)
		if err != nil {
			panic(err)
		}
		g.Go(func() error {
			return p.Start(ctx)
		})
	}

	server := mcp.NewServer(api, dispatcher, dispatcher.Store())
	switch cfg.MCPTransport {
	case config.MCPTransportStdio:
		g.Go(func() error {
			// the peer closing stdin ends the process
			defer stop()
			return server.RunStdio(ctx)
		})
	case config.MCPTransportHTTP:
		g.Go(func() error {
			return server.ListenAndServe(ctx, cfg.MCPAddr)
		})
	}

	xlog.Info("Bridge started", "bot", dispatcher.Name(), "api", cfg.BotAPIBase, "events", cfg.BotEventsURL, "mcp", cfg.MCPTransport)

	if err := g.Wait(); err != nil {
		xlog.Error("Bridge stopped", "error", err)
		os.Exit(1)
	}
	xlog.Info("Bridge stopped")
}
