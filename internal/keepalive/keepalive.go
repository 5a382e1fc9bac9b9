// Package keepalive pings the bot's own public URL on a schedule so hosting
// platforms that idle inactive services keep it running.
package keepalive

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
)

const (
	DefaultSchedule = "@every 5m"
	pingTimeout     = 5 * time.Second
)

type Pinger struct {
	url    string
	client *http.Client
	cron   *cron.Cron
	logger *slog.Logger
}

func New(url string, logger *slog.Logger) *Pinger {
	return &Pinger{
		url:    url,
		client: &http.Client{Timeout: pingTimeout},
		cron:   cron.New(),
		logger: logger,
	}
}

// Start schedules the ping. It is a no-op when no URL is configured.
func (p *Pinger) Start(schedule string) error {
	if p.url == "" {
		p.logger.Info("keepalive disabled, no url configured")
		return nil
	}

	if _, err := p.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			p.logger.Warn("keepalive ping failed", "url", p.url, "error", err)
		}
	}); err != nil {
		return fmt.Errorf("schedule keepalive: %w", err)
	}

	p.cron.Start()
	p.logger.Info("keepalive started", "url", p.url, "schedule", schedule)
	return nil
}

// Stop halts the schedule and waits for a running ping to finish.
func (p *Pinger) Stop() {
	<-p.cron.Stop().Done()
}

// Ping issues one GET against the configured URL.
func (p *Pinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", p.url, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("get %s: status %d", p.url, resp.StatusCode)
	}
	p.logger.Debug("keepalive ping ok", "status", resp.StatusCode)
	return nil
}
