// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/danielhkuo/opencircle/db"
	"github.com/danielhkuo/opencircle/models"
)

// GetPollByID returns found=false when the poll does not exist.
func (e *Engine) GetPollByID(ctx context.Context, pollID string) (models.PollWithOptions, bool, error) {
	return e.getPoll(ctx, "id", pollID)
}

// GetPollByPost returns found=false when the post has no poll.
func (e *Engine) GetPollByPost(ctx context.Context, postID string) (models.PollWithOptions, bool, error) {
	return e.getPoll(ctx, "post_id", postID)
}

func (e *Engine) getPoll(ctx context.Context, column, value string) (models.PollWithOptions, bool, error) {
	var poll models.Poll
	err := e.db.QueryRowContext(ctx, `
		SELECT id, post_id, duration_hours, is_active, total_votes, created_at
		FROM poll
		WHERE `+column+` = $1
	`, value).Scan(&poll.ID, &poll.PostID, &poll.DurationHours, &poll.IsActive, &poll.TotalVotes, &poll.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PollWithOptions{}, false, nil
	}
	if err != nil {
		return models.PollWithOptions{}, false, fmt.Errorf("query poll: %w", err)
	}

	options, err := loadOptions(ctx, e.db, poll.ID)
	if err != nil {
		return models.PollWithOptions{}, false, err
	}

	return models.PollWithOptions{Poll: poll, Options: options}, true, nil
}

func loadOptions(ctx context.Context, q db.Querier, pollID string) ([]models.PollOption, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, poll_id, text, position, vote_count
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, fmt.Errorf("query poll options: %w", err)
	}
	defer rows.Close()

	options := []models.PollOption{}
	for rows.Next() {
		var opt models.PollOption
		if err := rows.Scan(&opt.ID, &opt.PollID, &opt.Text, &opt.Order, &opt.VoteCount); err != nil {
			return nil, fmt.Errorf("scan poll option: %w", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate poll options: %w", err)
	}
	return options, nil
}

// GetUserVote returns the voter's current vote on the poll, if any.
func (e *Engine) GetUserVote(ctx context.Context, pollID, userID string) (models.Vote, bool, error) {
	return getUserVote(ctx, e.db, pollID, userID)
}

func getUserVote(ctx context.Context, q db.Querier, pollID, userID string) (models.Vote, bool, error) {
	var v models.Vote
	err := q.QueryRowContext(ctx, `
		SELECT id, poll_id, option_id, user_id, ip_hash, user_agent, created_at, updated_at
		FROM poll_vote
		WHERE poll_id = $1 AND user_id = $2
	`, pollID, userID).Scan(&v.ID, &v.PollID, &v.OptionID, &v.UserID, &v.IPHash, &v.UserAgent, &v.CreatedAt, &v.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Vote{}, false, nil
	}
	if err != nil {
		return models.Vote{}, false, fmt.Errorf("query vote: %w", err)
	}
	return v, true, nil
}
