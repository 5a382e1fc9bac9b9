package checkin

import (
	"strings"
)

// WindowSize is the number of most recent channel messages examined per lookup.
const WindowSize = 200

// Message is the subset of a channel message the locator reads.
type Message struct {
	ID       string // platform message id (Slack ts)
	AuthorID string
	Text     string
	IsBot    bool
}

// Rule reports whether msg is userID's check-in.
type Rule func(msg Message, userID string) bool

// BotEcho matches a bot-authored message that mentions the user.
func BotEcho(msg Message, userID string) bool {
	return msg.IsBot && strings.Contains(msg.Text, Mention(userID))
}

// ManualPost matches a message the user typed themselves using the check-in headings.
func ManualPost(msg Message, userID string) bool {
	return msg.AuthorID == userID && strings.Contains(msg.Text, HeadingYesterday)
}

// MarkedBotEcho is BotEcho restricted to messages carrying the echo marker,
// i.e. messages the bot can safely rewrite.
func MarkedBotEcho(msg Message, userID string) bool {
	return BotEcho(msg, userID) && strings.Contains(msg.Text, EchoMarker)
}

var (
	// DefaultRules finds the latest check-in for prefilling a new one.
	DefaultRules = []Rule{BotEcho, ManualPost}

	// EditRules finds the latest check-in the bot is able to edit.
	EditRules = []Rule{MarkedBotEcho}
)

// FindLatestCheckIn returns the newest message in window judged to be
// userID's latest check-in. window must be ordered newest first.
func FindLatestCheckIn(window []Message, userID string) (Message, bool) {
	return Locate(window, userID, DefaultRules...)
}

// Locate scans at most WindowSize messages of window, newest first, and
// returns the first one satisfying any rule. An older match never beats a
// newer one, whichever rule it satisfies.
func Locate(window []Message, userID string, rules ...Rule) (Message, bool) {
	if len(window) > WindowSize {
		window = window[:WindowSize]
	}
	for _, msg := range window {
		for _, rule := range rules {
			if rule(msg, userID) {
				return msg, true
			}
		}
	}
	return Message{}, false
}
