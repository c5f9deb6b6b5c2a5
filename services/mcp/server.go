// Package mcp exposes the bot's control API and the chat dispatcher as
// Model Context Protocol tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/mudler/MCBridge/core/types"
	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/xlog"
)

const (
	ServerName    = "Minecraft RPG Bot"
	ServerVersion = "v1.0.0"

	ActionsResourceURI = "minecraft://actions"
	QuestsResourceURI  = "minecraft://quests"
)

// ChatDispatcher runs a dispatch cycle. *dispatch.Dispatcher satisfies it.
type ChatDispatcher interface {
	ProcessChatCommand(ctx context.Context, speaker, message string) types.DispatchResult
}

// HistorySource returns the recorded chat. *state.Store satisfies it.
type HistorySource interface {
	History() []types.ChatRecord
}

type Server struct {
	api        botapi.Invoker
	dispatcher ChatDispatcher
	history    HistorySource
	server     *mcp.Server
}

func NewServer(api botapi.Invoker, dispatcher ChatDispatcher, history HistorySource) *Server {
	s := &Server{
		api:        api,
		dispatcher: dispatcher,
		history:    history,
		server: mcp.NewServer(&mcp.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		}, nil),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *mcp.Server {
	return s.server
}

// RunStdio serves over stdin/stdout until ctx is cancelled or the peer hangs
// up. Process output written to stdout afterwards lands on stderr.
func (s *Server) RunStdio(ctx context.Context) error {
	out, err := protocolStdout()
	if err != nil {
		return fmt.Errorf("reserving stdout: %w", err)
	}
	xlog.Info("Serving MCP over stdio")
	if err := s.server.Run(ctx, &mcp.IOTransport{Reader: os.Stdin, Writer: out}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp stdio server: %w", err)
	}
	return nil
}

// Handler serves MCP over streamable HTTP.
func (s *Server) Handler() http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.server
	}, nil)
}

// ListenAndServe serves the streamable HTTP handler on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		xlog.Info("Serving MCP over HTTP", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("mcp http server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
