package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Profile is a member's goals and routine. Empty strings mean "not set".
type Profile struct {
	UserID      string
	MonthlyGoal string
	WeeklyGoal  string
	Routine     string
	UpdatedAt   time.Time
}

// UpsertProfile creates or replaces the profile keyed by UserID.
func (s *Store) UpsertProfile(ctx context.Context, p Profile) (Profile, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (user_id, monthly_goal, weekly_goal, routine, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id) DO UPDATE
		SET monthly_goal = EXCLUDED.monthly_goal,
		    weekly_goal  = EXCLUDED.weekly_goal,
		    routine      = EXCLUDED.routine,
		    updated_at   = EXCLUDED.updated_at
		RETURNING updated_at`,
		p.UserID, nullable(p.MonthlyGoal), nullable(p.WeeklyGoal), nullable(p.Routine),
	)
	if err := row.Scan(&p.UpdatedAt); err != nil {
		return Profile{}, fmt.Errorf("upsert user profile: %w", err)
	}
	return p, nil
}

// GetProfile returns the profile of userID or ErrNotFound.
func (s *Store) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, coalesce(monthly_goal, ''), coalesce(weekly_goal, ''), coalesce(routine, ''), updated_at
		FROM user_profiles WHERE user_id = $1`, userID)

	var p Profile
	err := row.Scan(&p.UserID, &p.MonthlyGoal, &p.WeeklyGoal, &p.Routine, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user profile: %w", err)
	}
	return &p, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
