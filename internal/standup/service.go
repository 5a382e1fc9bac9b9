package standup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MikeSquared-Agency/scrumbot/internal/checkin"
	"github.com/MikeSquared-Agency/scrumbot/internal/events"
	"github.com/MikeSquared-Agency/scrumbot/internal/store"
)

var (
	// ErrWrongChannel is returned for commands issued outside the check-in channel.
	ErrWrongChannel = errors.New("command not allowed in this channel")

	// ErrGoalsRequired is returned by PrepareCopy when the member has no monthly goal.
	ErrGoalsRequired = errors.New("monthly goal not set")

	// ErrNoProfile is returned when the member never saved a profile.
	ErrNoProfile = errors.New("profile not found")

	// ErrPersist wraps store failures that happen after the chat message was
	// already posted or edited. The message is left in place.
	ErrPersist = errors.New("persist check-in")
)

// NoneText prefills a field that has no previous value.
const NoneText = "(없음)"

type EntryStore interface {
	CreateEntry(ctx context.Context, e store.Entry) (store.Entry, error)
	UpdateEntryByMessage(ctx context.Context, messageID, yesterdayWork, todayPlan, comment string) error
}

type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*store.Profile, error)
	UpsertProfile(ctx context.Context, p store.Profile) (store.Profile, error)
}

// Messenger posts and rewrites messages in a channel.
type Messenger interface {
	PostMessage(ctx context.Context, channelID, text string) (messageID string, err error)
	UpdateMessage(ctx context.Context, channelID, messageID, text string) error
}

type Publisher interface {
	Publish(subject string, data any) error
}

// CopyDraft prefills a new check-in from the previous one.
type CopyDraft struct {
	Yesterday string
	Today     string
	Profile   store.Profile
}

// EditDraft identifies the check-in message to rewrite and its current fields.
type EditDraft struct {
	MessageID string
	Sections  checkin.Sections
}

// CheckInEvent is published on SubjectCheckInPosted and SubjectCheckInEdited.
type CheckInEvent struct {
	UserID    string `json:"user_id"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Yesterday string `json:"yesterday"`
	Today     string `json:"today"`
	Comment   string `json:"comment"`
}

// Service implements the check-in commands independently of the chat platform.
type Service struct {
	channelID string
	history   checkin.HistoryProvider
	entries   EntryStore
	profiles  ProfileStore
	messenger Messenger
	events    Publisher
	logger    *slog.Logger
}

func New(channelID string, history checkin.HistoryProvider, entries EntryStore, profiles ProfileStore, messenger Messenger, pub Publisher, logger *slog.Logger) *Service {
	if pub == nil {
		pub = events.Discard{}
	}
	return &Service{
		channelID: channelID,
		history:   history,
		entries:   entries,
		profiles:  profiles,
		messenger: messenger,
		events:    pub,
		logger:    logger,
	}
}

// ChannelID is the channel check-ins are posted to.
func (s *Service) ChannelID() string { return s.channelID }

// PrepareCopy builds the prefill for a new check-in. The previous "today"
// becomes the new "yesterday"; the new "today" is the member's routine when
// set, otherwise the previous "today".
func (s *Service) PrepareCopy(ctx context.Context, channelID, userID string) (CopyDraft, error) {
	if err := s.checkChannel(channelID); err != nil {
		return CopyDraft{}, err
	}

	var previousToday string
	msg, err := checkin.Lookup(ctx, s.history, s.channelID, userID, checkin.DefaultRules...)
	switch {
	case err == nil:
		previousToday = checkin.ExtractSection(msg.Text, checkin.HeadingToday, checkin.HeadingComment)
	case errors.Is(err, checkin.ErrNotFound):
		s.logger.Debug("no previous check-in", "user_id", userID)
	default:
		return CopyDraft{}, err
	}

	profile, err := s.Profile(ctx, userID)
	if err != nil && !errors.Is(err, ErrNoProfile) {
		return CopyDraft{}, err
	}
	if profile.MonthlyGoal == "" {
		return CopyDraft{}, ErrGoalsRequired
	}

	draft := CopyDraft{
		Yesterday: previousToday,
		Today:     previousToday,
		Profile:   profile,
	}
	if draft.Yesterday == "" {
		draft.Yesterday = NoneText
	}
	if profile.Routine != "" {
		draft.Today = profile.Routine
	}
	return draft, nil
}

// PrepareEdit finds the latest check-in the bot posted for userID.
// Returns checkin.ErrNotFound when there is nothing to edit.
func (s *Service) PrepareEdit(ctx context.Context, channelID, userID string) (EditDraft, error) {
	if err := s.checkChannel(channelID); err != nil {
		return EditDraft{}, err
	}

	msg, err := checkin.Lookup(ctx, s.history, s.channelID, userID, checkin.EditRules...)
	if err != nil {
		return EditDraft{}, err
	}
	return EditDraft{MessageID: msg.ID, Sections: checkin.Parse(msg.Text)}, nil
}

// SubmitCheckIn posts the check-in to the channel and records it.
func (s *Service) SubmitCheckIn(ctx context.Context, userID string, sec checkin.Sections) (store.Entry, error) {
	messageID, err := s.messenger.PostMessage(ctx, s.channelID, checkin.Render(userID, sec, false))
	if err != nil {
		return store.Entry{}, fmt.Errorf("post check-in: %w", err)
	}

	entry, err := s.entries.CreateEntry(ctx, store.Entry{
		UserID:        userID,
		YesterdayWork: sec.Yesterday,
		TodayPlan:     sec.Today,
		Comment:       sec.Comment,
		MessageID:     messageID,
		ChannelID:     s.channelID,
	})
	if err != nil {
		s.logger.Error("failed to save check-in", "user_id", userID, "message_id", messageID, "error", err)
		return store.Entry{MessageID: messageID}, fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.logger.Info("check-in posted", "user_id", userID, "message_id", messageID, "entry_id", entry.ID)
	s.publish(events.SubjectCheckInPosted, checkInEvent(userID, s.channelID, messageID, sec))
	return entry, nil
}

// SubmitEdit rewrites the check-in message messageID and its stored row.
func (s *Service) SubmitEdit(ctx context.Context, userID, messageID string, sec checkin.Sections) error {
	if err := s.messenger.UpdateMessage(ctx, s.channelID, messageID, checkin.Render(userID, sec, true)); err != nil {
		return fmt.Errorf("edit check-in: %w", err)
	}

	if err := s.entries.UpdateEntryByMessage(ctx, messageID, sec.Yesterday, sec.Today, sec.Comment); err != nil {
		s.logger.Error("failed to update check-in", "user_id", userID, "message_id", messageID, "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	s.logger.Info("check-in edited", "user_id", userID, "message_id", messageID)
	s.publish(events.SubjectCheckInEdited, checkInEvent(userID, s.channelID, messageID, sec))
	return nil
}

// Profile returns the member's profile or ErrNoProfile.
func (s *Service) Profile(ctx context.Context, userID string) (store.Profile, error) {
	p, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Profile{UserID: userID}, ErrNoProfile
	}
	if err != nil {
		return store.Profile{}, fmt.Errorf("load profile: %w", err)
	}
	return *p, nil
}

// SaveProfile creates or replaces the member's profile.
func (s *Service) SaveProfile(ctx context.Context, p store.Profile) (store.Profile, error) {
	saved, err := s.profiles.UpsertProfile(ctx, p)
	if err != nil {
		return store.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	s.logger.Info("profile saved", "user_id", p.UserID)
	s.publish(events.SubjectProfileUpdated, map[string]string{
		"user_id":      saved.UserID,
		"monthly_goal": saved.MonthlyGoal,
		"weekly_goal":  saved.WeeklyGoal,
		"routine":      saved.Routine,
	})
	return saved, nil
}

func (s *Service) checkChannel(channelID string) error {
	if channelID != s.channelID {
		return ErrWrongChannel
	}
	return nil
}

func (s *Service) publish(subject string, data any) {
	if err := s.events.Publish(subject, data); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}

func checkInEvent(userID, channelID, messageID string, sec checkin.Sections) CheckInEvent {
	return CheckInEvent{
		UserID:    userID,
		ChannelID: channelID,
		MessageID: messageID,
		Yesterday: sec.Yesterday,
		Today:     sec.Today,
		Comment:   sec.Comment,
	}
}
