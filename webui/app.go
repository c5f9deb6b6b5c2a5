package webui

import (
	"context"
	"net/http"
	"strings"
	"time"

	fiber "github.com/gofiber/fiber/v2"
	"github.com/mudler/MCBridge/core/sse"
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/xlog"
)

const eventDispatch = "dispatch"

type App struct {
	config *Config
	sse    *sse.Manager
	*fiber.App
}

func NewApp(opts ...Option) *App {
	config := NewConfig(opts...)

	webapp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	a := &App{
		config: config,
		sse:    sse.NewManager(config.SSEHistory),
		App:    webapp,
	}

	a.registerRoutes(webapp)

	return a
}

// Observer streams every dispatch outcome to the SSE clients.
func (a *App) Observer() func(types.DispatchResult) {
	return func(res types.DispatchResult) {
		msg, err := sse.NewJSONMessage(eventDispatch, res)
		if err != nil {
			xlog.Error("Failed to encode dispatch result", "error", err)
			return
		}
		a.sse.Send(msg)
	}
}

// Start serves on addr until ctx is cancelled.
func (a *App) Start(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		xlog.Info("Operator API listening", "addr", addr)
		errCh <- a.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return a.ShutdownWithTimeout(5 * time.Second)
	}
}

func errorJSONMessage(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(struct {
		Error string `json:"error"`
	}{Error: message})
}

func statusJSONMessage(c *fiber.Ctx, message string) error {
	return c.JSON(struct {
		Status string `json:"status"`
	}{Status: message})
}

func (a *App) Health() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		payload := fiber.Map{
			"status": "ok",
			"bot":    a.config.BotName,
		}
		if a.config.Connected != nil {
			payload["eventsConnected"] = a.config.Connected()
		}
		return c.JSON(payload)
	}
}

func (a *App) State() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if a.config.Store == nil {
			return errorJSONMessage(c, http.StatusServiceUnavailable, "store not configured")
		}
		return c.JSON(a.config.Store.Snapshot())
	}
}

func (a *App) History() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if a.config.Store == nil {
			return errorJSONMessage(c, http.StatusServiceUnavailable, "store not configured")
		}
		history := a.config.Store.History()
		if limit := c.QueryInt("limit", 0); limit > 0 && limit < len(history) {
			history = history[len(history)-limit:]
		}
		return c.JSON(history)
	}
}

func (a *App) Chat() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if a.config.Dispatcher == nil {
			return errorJSONMessage(c, http.StatusServiceUnavailable, "dispatcher not configured")
		}

		payload := types.ChatMessage{}
		if err := c.BodyParser(&payload); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "invalid request: "+err.Error())
		}
		if strings.TrimSpace(payload.Username) == "" || strings.TrimSpace(payload.Message) == "" {
			return errorJSONMessage(c, http.StatusBadRequest, "username and message are required")
		}

		res := a.config.Dispatcher.ProcessChatCommand(c.UserContext(), payload.Username, payload.Message)
		return c.JSON(res)
	}
}

func (a *App) InjectEvent() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		if a.config.Events == nil {
			return errorJSONMessage(c, http.StatusServiceUnavailable, "event ingress not configured")
		}

		ev := types.Event{}
		if err := c.BodyParser(&ev); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, "invalid request: "+err.Error())
		}
		if ev.Name == "" {
			return errorJSONMessage(c, http.StatusBadRequest, "event name is required")
		}

		if err := a.config.Events.Handle(c.UserContext(), ev); err != nil {
			return errorJSONMessage(c, http.StatusBadRequest, err.Error())
		}
		return statusJSONMessage(c, "ok")
	}
}

func (a *App) Settings() func(c *fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		return c.JSON(a.config.Settings)
	}
}
