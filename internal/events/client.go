package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

const (
	SubjectCheckInPosted  = "scrumbot.checkin.posted"
	SubjectCheckInEdited  = "scrumbot.checkin.edited"
	SubjectProfileUpdated = "scrumbot.profile.updated"
)

// Envelope wraps every published payload.
type Envelope struct {
	ID        string    `json:"id"`
	Subject   string    `json:"subject"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("scrumbot"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

// Publish sends data wrapped in an Envelope as JSON.
func (c *Client) Publish(subject string, data any) error {
	payload, err := Encode(subject, data, time.Now().UTC())
	if err != nil {
		return err
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Close() {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()
	}
}

// Encode builds the wire form of an event.
func Encode(subject string, data any, at time.Time) ([]byte, error) {
	payload, err := json.Marshal(Envelope{
		ID:        uuid.NewString(),
		Subject:   subject,
		Timestamp: at,
		Data:      data,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return payload, nil
}

// Discard is used when no broker is configured.
type Discard struct{}

func (Discard) Publish(string, any) error { return nil }
