package checkin

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrNotFound means no message in the scanned window matched. It is an
	// expected outcome, not a failure.
	ErrNotFound = errors.New("check-in not found")

	// ErrUpstream is matched by errors.Is for every *UpstreamError.
	ErrUpstream = errors.New("message history unavailable")
)

// UpstreamError reports that the message history provider could not be read.
type UpstreamError struct {
	ChannelID string
	Err       error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("read history of %s: %v", e.ChannelID, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

func (e *UpstreamError) Is(target error) bool { return target == ErrUpstream }

// HistoryProvider yields up to limit recent messages of a channel, newest first.
type HistoryProvider interface {
	RecentMessages(ctx context.Context, channelID string, limit int) ([]Message, error)
}

// Lookup fetches the recent window of channelID and locates userID's latest
// check-in using rules (DefaultRules when none are given). It never retries.
func Lookup(ctx context.Context, history HistoryProvider, channelID, userID string, rules ...Rule) (Message, error) {
	if len(rules) == 0 {
		rules = DefaultRules
	}

	window, err := history.RecentMessages(ctx, channelID, WindowSize)
	if err != nil {
		return Message{}, &UpstreamError{ChannelID: channelID, Err: err}
	}

	msg, ok := Locate(window, userID, rules...)
	if !ok {
		return Message{}, ErrNotFound
	}
	return msg, nil
}
