package slackbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/MikeSquared-Agency/scrumbot/internal/checkin"
)

const historyPageSize = 100

// entityDecoder reverses the escaping Slack applies to message text. A single
// pass keeps "&amp;lt;" as the literal "&lt;" the member typed.
var entityDecoder = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

// History reads channel messages through conversations.history.
type History struct {
	api *slack.Client
}

func NewHistory(api *slack.Client) *History {
	return &History{api: api}
}

// RecentMessages returns up to limit messages of channelID, newest first,
// following cursors across pages.
func (h *History) RecentMessages(ctx context.Context, channelID string, limit int) ([]checkin.Message, error) {
	if limit <= 0 {
		return nil, nil
	}

	params := &slack.GetConversationHistoryParameters{ChannelID: channelID}
	msgs := make([]checkin.Message, 0, limit)
	for len(msgs) < limit {
		params.Limit = min(historyPageSize, limit-len(msgs))

		resp, err := h.api.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("conversations.history: %w", err)
		}

		for _, m := range resp.Messages {
			msgs = append(msgs, toMessage(m))
			if len(msgs) == limit {
				break
			}
		}

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		params.Cursor = resp.ResponseMetaData.NextCursor
	}
	return msgs, nil
}

func toMessage(m slack.Message) checkin.Message {
	return checkin.Message{
		ID:       m.Timestamp,
		AuthorID: m.User,
		Text:     entityDecoder.Replace(m.Text),
		IsBot:    m.BotID != "" || m.SubType == "bot_message",
	}
}
