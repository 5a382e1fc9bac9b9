package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Entry is one stored check-in.
type Entry struct {
	ID            uuid.UUID
	UserID        string
	YesterdayWork string
	TodayPlan     string
	Comment       string
	MessageID     string
	ChannelID     string
	CreatedAt     time.Time
	UpdatedAt     *time.Time
	IsEdited      bool
}

// CreateEntry inserts a new check-in row. ID and CreatedAt are assigned here.
func (s *Store) CreateEntry(ctx context.Context, e Entry) (Entry, error) {
	e.ID = uuid.New()
	e.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO scrum_entries (id, user_id, yesterday_work, today_plan, comment, message_id, channel_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.UserID, e.YesterdayWork, e.TodayPlan, e.Comment, e.MessageID, e.ChannelID, e.CreatedAt,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert scrum entry: %w", err)
	}
	return e, nil
}

// UpdateEntryByMessage rewrites the three fields of the entry posted as messageID
// and marks it edited. Returns ErrNotFound when no row has that message id.
func (s *Store) UpdateEntryByMessage(ctx context.Context, messageID, yesterdayWork, todayPlan, comment string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE scrum_entries
		SET yesterday_work = $1, today_plan = $2, comment = $3, updated_at = now(), is_edited = true
		WHERE message_id = $4`,
		yesterdayWork, todayPlan, comment, messageID,
	)
	if err != nil {
		return fmt.Errorf("update scrum entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
