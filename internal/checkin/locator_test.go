package checkin

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func filler(n int) []Message {
	msgs := make([]Message, n)
	for i := range msgs {
		msgs[i] = Message{ID: fmt.Sprintf("f%d", i), AuthorID: "U9", Text: "chatter"}
	}
	return msgs
}

func TestFindLatestCheckIn_BotEcho(t *testing.T) {
	window := []Message{
		{ID: "1", AuthorID: "B1", IsBot: true, Text: sampleEcho},
		{ID: "0", AuthorID: "42", Text: HeadingYesterday + "\nolder"},
	}

	msg, ok := FindLatestCheckIn(window, "42")
	if !ok {
		t.Fatal("expected a match")
	}
	if msg.ID != "1" {
		t.Errorf("expected newest bot echo, got %q", msg.ID)
	}
	if got := ExtractSection(msg.Text, HeadingToday, HeadingComment); got != "B" {
		t.Errorf("today section = %q, want %q", got, "B")
	}
}

func TestFindLatestCheckIn_EmptyWindow(t *testing.T) {
	for _, user := range []string{"", "42", "U123"} {
		if _, ok := FindLatestCheckIn(nil, user); ok {
			t.Errorf("user %q: expected no match in empty window", user)
		}
	}
}

func TestFindLatestCheckIn_ManualFallback(t *testing.T) {
	window := []Message{
		{ID: "3", AuthorID: "U7", Text: "unrelated"},
		{ID: "2", AuthorID: "42", Text: "hi\n" + HeadingYesterday + "\nstuff"},
		{ID: "1", AuthorID: "B1", IsBot: true, Text: "<@42>님의 인증입니다"},
	}

	msg, ok := FindLatestCheckIn(window, "42")
	if !ok || msg.ID != "2" {
		t.Errorf("expected user message 2, got %q (ok=%v)", msg.ID, ok)
	}
}

func TestFindLatestCheckIn_RespectsWindow(t *testing.T) {
	window := append(filler(WindowSize), Message{ID: "old", IsBot: true, Text: "<@42>님의 인증입니다"})

	if msg, ok := FindLatestCheckIn(window, "42"); ok {
		t.Errorf("message beyond the window matched: %q", msg.ID)
	}

	window = append(filler(WindowSize-1), Message{ID: "edge", IsBot: true, Text: "<@42>님의 인증입니다"})
	if msg, ok := FindLatestCheckIn(window, "42"); !ok || msg.ID != "edge" {
		t.Errorf("expected last in-window message to match, got %q (ok=%v)", msg.ID, ok)
	}
}

func TestFindLatestCheckIn_Ignores(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
	}{
		{"human mention of user", Message{AuthorID: "U7", Text: "<@42> thanks!"}},
		{"bot mention of other user", Message{IsBot: true, Text: "<@421>님의 인증입니다"}},
		{"user message without heading", Message{AuthorID: "42", Text: "good morning"}},
		{"other user with heading", Message{AuthorID: "U7", Text: HeadingYesterday}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := FindLatestCheckIn([]Message{tt.msg}, "42"); ok {
				t.Error("unexpected match")
			}
		})
	}
}

func TestLocate_EditRulesSkipManualPosts(t *testing.T) {
	window := []Message{
		{ID: "3", AuthorID: "42", Text: HeadingYesterday + "\nmanual"},
		{ID: "2", IsBot: true, Text: "reminder for <@42>"},
		{ID: "1", IsBot: true, Text: Render("42", Sections{Today: "x"}, false)},
	}

	msg, ok := Locate(window, "42", EditRules...)
	if !ok || msg.ID != "1" {
		t.Errorf("expected echo 1, got %q (ok=%v)", msg.ID, ok)
	}
}

type fakeHistory struct {
	msgs  []Message
	err   error
	limit int
}

func (f *fakeHistory) RecentMessages(_ context.Context, _ string, limit int) ([]Message, error) {
	f.limit = limit
	return f.msgs, f.err
}

func TestLookup(t *testing.T) {
	ctx := context.Background()

	h := &fakeHistory{msgs: []Message{{ID: "1", IsBot: true, Text: sampleEcho}}}
	msg, err := Lookup(ctx, h, "C1", "42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.ID != "1" {
		t.Errorf("expected message 1, got %q", msg.ID)
	}
	if h.limit != WindowSize {
		t.Errorf("expected limit %d, got %d", WindowSize, h.limit)
	}

	_, err = Lookup(ctx, &fakeHistory{}, "C1", "42")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, ErrUpstream) {
		t.Error("not-found must not look like an upstream failure")
	}

	cause := errors.New("not_in_channel")
	_, err = Lookup(ctx, &fakeHistory{err: cause}, "C1", "42")
	var upErr *UpstreamError
	if !errors.As(err, &upErr) {
		t.Fatalf("expected *UpstreamError, got %T", err)
	}
	if upErr.ChannelID != "C1" {
		t.Errorf("expected channel C1, got %q", upErr.ChannelID)
	}
	if !errors.Is(err, ErrUpstream) || !errors.Is(err, cause) {
		t.Errorf("upstream error should match ErrUpstream and its cause: %v", err)
	}
}
