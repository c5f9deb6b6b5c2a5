// Package poller refreshes the bot state on a cron schedule, filling the
// gaps when the event stream is quiet or down.
package poller

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mudler/MCBridge/pkg/botapi"
	"github.com/mudler/xlog"
	"github.com/robfig/cron/v3"
)

// StatusSource queries the bot status. *botapi.Client satisfies it.
type StatusSource interface {
	Status(ctx context.Context) botapi.Result
}

// StateSink receives the polled status. *state.Store satisfies it.
type StateSink interface {
	UpdateState(partial map[string]any)
}

var parser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

type Poller struct {
	schedule string
	api      StatusSource
	state    StateSink
}

// New validates schedule, a cron spec such as "@every 30s" or "*/10 * * * * *".
func New(schedule string, api StatusSource, state StateSink) (*Poller, error) {
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", schedule, err)
	}
	return &Poller{schedule: schedule, api: api, state: state}, nil
}

// Poll fetches the status once and merges it into the state.
func (p *Poller) Poll(ctx context.Context) error {
	res := p.api.Status(ctx)
	if !res.Success {
		return fmt.Errorf("status query failed: %s", res.Message)
	}

	var partial map[string]any
	if err := json.Unmarshal(res.Data, &partial); err != nil {
		return fmt.Errorf("decoding status: %w", err)
	}
	p.state.UpdateState(partial)
	return nil
}

// Start polls on the schedule until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) error {
	c := cron.New(cron.WithParser(parser))
	if _, err := c.AddFunc(p.schedule, func() {
		if err := p.Poll(ctx); err != nil {
			xlog.Debug("Status poll failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("scheduling status poll: %w", err)
	}

	xlog.Info("Status poller started", "schedule", p.schedule)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
