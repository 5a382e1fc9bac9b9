package slackbot

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slack-go/slack"
)

// Poster writes messages to Slack channels.
type Poster struct {
	api    *slack.Client
	logger *slog.Logger
}

func NewPoster(api *slack.Client, logger *slog.Logger) *Poster {
	return &Poster{api: api, logger: logger}
}

// PostMessage posts text to channelID and returns the message timestamp,
// which identifies the message for later edits.
func (p *Poster) PostMessage(ctx context.Context, channelID, text string) (string, error) {
	_, ts, err := p.api.PostMessageContext(ctx, channelID, slack.MsgOptionText(text, false))
	if err != nil {
		return "", fmt.Errorf("chat.postMessage: %w", err)
	}
	p.logger.Debug("posted message", "channel", channelID, "ts", ts)
	return ts, nil
}

// UpdateMessage replaces the text of the message at ts.
func (p *Poster) UpdateMessage(ctx context.Context, channelID, ts, text string) error {
	_, _, _, err := p.api.UpdateMessageContext(ctx, channelID, ts, slack.MsgOptionText(text, false))
	if err != nil {
		return fmt.Errorf("chat.update: %w", err)
	}
	return nil
}

// Ephemeral shows text to userID only. Failures are logged, not returned.
func (p *Poster) Ephemeral(ctx context.Context, channelID, userID, text string) {
	if _, err := p.api.PostEphemeralContext(ctx, channelID, userID, slack.MsgOptionText(text, false)); err != nil {
		p.logger.Error("failed to post ephemeral", "channel", channelID, "user_id", userID, "error", err)
	}
}

// EphemeralBlocks is Ephemeral with a block layout; text is the notification fallback.
func (p *Poster) EphemeralBlocks(ctx context.Context, channelID, userID, text string, blocks ...slack.Block) {
	_, err := p.api.PostEphemeralContext(ctx, channelID, userID,
		slack.MsgOptionText(text, false),
		slack.MsgOptionBlocks(blocks...),
	)
	if err != nil {
		p.logger.Error("failed to post ephemeral", "channel", channelID, "user_id", userID, "error", err)
	}
}
