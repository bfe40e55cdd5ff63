// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/danielhkuo/opencircle/auth"
	"github.com/danielhkuo/opencircle/db"
	"github.com/danielhkuo/opencircle/models"
	"github.com/danielhkuo/opencircle/posts"
)

type OptionInput struct {
	Text  string
	Order int
}

type CreatePollParams struct {
	PostID string
	// DurationHours of zero means models.DefaultDurationHours.
	DurationHours int
	Options       []OptionInput
}

// normalize applies the default duration and validates options.
func (p *CreatePollParams) normalize() error {
	if p.DurationHours == 0 {
		p.DurationHours = models.DefaultDurationHours
	}
	if p.DurationHours < 0 {
		return ErrInvalidDuration
	}

	n := len(p.Options)
	if n < models.MinPollOptions || n > models.MaxPollOptions {
		return fmt.Errorf("got %d options: %w", n, ErrInvalidOptions)
	}

	p.Options = append([]OptionInput(nil), p.Options...)
	seen := make(map[int]bool, n)
	for i := range p.Options {
		p.Options[i].Text = strings.TrimSpace(p.Options[i].Text)
		if p.Options[i].Text == "" {
			return fmt.Errorf("option %d has no text: %w", i, ErrInvalidOptions)
		}
		if seen[p.Options[i].Order] {
			return fmt.Errorf("order %d used twice: %w", p.Options[i].Order, ErrInvalidOptions)
		}
		seen[p.Options[i].Order] = true
	}
	return nil
}

// CreatePoll attaches a poll to an existing post. Poll and options are
// written in one transaction. The one-poll-per-post rule comes from the
// unique index on poll.post_id.
func (e *Engine) CreatePoll(ctx context.Context, p CreatePollParams) (models.PollWithOptions, error) {
	if err := p.normalize(); err != nil {
		return models.PollWithOptions{}, err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, found, err := posts.NewStore(tx).GetPost(ctx, p.PostID)
	if err != nil {
		return models.PollWithOptions{}, err
	}
	if !found {
		return models.PollWithOptions{}, ErrPostNotFound
	}

	poll, err := insertPoll(ctx, tx, p, e.now())
	if err != nil {
		return models.PollWithOptions{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.PollWithOptions{}, fmt.Errorf("commit poll: %w", err)
	}

	e.metrics.IncPollsCreated()
	e.log.Info("poll created", "poll_id", poll.Poll.ID, "post_id", p.PostID, "options", len(poll.Options))
	return poll, nil
}

// CreatePostWithPoll authors a poll-type post and its poll atomically.
// The post's creation time, which anchors expiry, comes from the engine clock.
func (e *Engine) CreatePostWithPoll(ctx context.Context, post posts.CreateParams, p CreatePollParams) (models.Post, models.PollWithOptions, error) {
	if err := p.normalize(); err != nil {
		return models.Post{}, models.PollWithOptions{}, err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Post{}, models.PollWithOptions{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := e.now()
	post.Type = models.PostTypePoll
	post.CreatedAt = now

	created, err := posts.NewStore(tx).CreatePost(ctx, post)
	if err != nil {
		return models.Post{}, models.PollWithOptions{}, err
	}

	p.PostID = created.ID
	poll, err := insertPoll(ctx, tx, p, now)
	if err != nil {
		return models.Post{}, models.PollWithOptions{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Post{}, models.PollWithOptions{}, fmt.Errorf("commit post with poll: %w", err)
	}

	e.metrics.IncPollsCreated()
	e.log.Info("post with poll created", "post_id", created.ID, "poll_id", poll.Poll.ID, "user_id", created.UserID)
	return created, poll, nil
}

func insertPoll(ctx context.Context, tx *sql.Tx, p CreatePollParams, now time.Time) (models.PollWithOptions, error) {
	poll := models.Poll{
		ID:            auth.NewID(),
		PostID:        p.PostID,
		DurationHours: p.DurationHours,
		IsActive:      true,
		TotalVotes:    0,
		CreatedAt:     now,
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO poll (id, post_id, duration_hours, is_active, total_votes, created_at, updated_at)
		VALUES ($1, $2, $3, TRUE, 0, $4, $4)
	`, poll.ID, poll.PostID, poll.DurationHours, now)
	if db.IsUniqueViolation(err) {
		return models.PollWithOptions{}, ErrPollExists
	}
	if db.IsForeignKeyViolation(err) {
		return models.PollWithOptions{}, ErrPostNotFound
	}
	if err != nil {
		return models.PollWithOptions{}, fmt.Errorf("insert poll: %w", err)
	}

	options := make([]models.PollOption, 0, len(p.Options))
	for _, in := range p.Options {
		opt := models.PollOption{
			ID:     auth.NewID(),
			PollID: poll.ID,
			Text:   in.Text,
			Order:  in.Order,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO poll_option (id, poll_id, text, position, vote_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 0, $5, $5)
		`, opt.ID, opt.PollID, opt.Text, opt.Order, now)
		if err != nil {
			return models.PollWithOptions{}, fmt.Errorf("insert poll option: %w", err)
		}
		options = append(options, opt)
	}

	sort.Slice(options, func(i, j int) bool { return options[i].Order < options[j].Order })
	return models.PollWithOptions{Poll: poll, Options: options}, nil
}

// DeletePoll removes the poll with its options and votes in one transaction.
// Ownership is checked by the caller.
func (e *Engine) DeletePoll(ctx context.Context, pollID string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_vote WHERE poll_id = $1`, pollID); err != nil {
		return fmt.Errorf("delete votes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM poll_option WHERE poll_id = $1`, pollID); err != nil {
		return fmt.Errorf("delete options: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM poll WHERE id = $1`, pollID)
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete poll: %w", err)
	}
	if n == 0 {
		return ErrPollNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit poll delete: %w", err)
	}

	e.metrics.IncPollsDeleted()
	e.log.Info("poll deleted", "poll_id", pollID)
	return nil
}
