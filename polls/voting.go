// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/danielhkuo/opencircle/auth"
	"github.com/danielhkuo/opencircle/db"
	"github.com/danielhkuo/opencircle/metrics"
	"github.com/danielhkuo/opencircle/models"
)

// Outcome says whether CastVote recorded a new vote.
type Outcome string

const (
	VoteCreated        Outcome = "created"
	VoteAlreadyExisted Outcome = "already_existed"
)

type CastResult struct {
	Vote    models.Vote
	Outcome Outcome
}

type CastVoteParams struct {
	PollID    string
	OptionID  string
	VoterID   string
	IPHash    string
	UserAgent string
}

type ChangeVoteParams struct {
	PollID     string
	ToOptionID string
	VoterID    string
	IPHash     string
	UserAgent  string
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func optionInPoll(ctx context.Context, tx *sql.Tx, pollID, optionID string) error {
	var exists bool
	err := tx.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM poll_option
			WHERE id = $1 AND poll_id = $2
		)
	`, optionID, pollID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("query poll option: %w", err)
	}
	if !exists {
		return ErrOptionNotFound
	}
	return nil
}

func insertVote(ctx context.Context, tx *sql.Tx, v models.Vote) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		INSERT INTO poll_vote (id, poll_id, option_id, user_id, ip_hash, user_agent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (poll_id, user_id) DO NOTHING
	`, v.ID, v.PollID, v.OptionID, v.UserID, v.IPHash, v.UserAgent, v.CreatedAt)
	if db.IsUniqueViolation(err) {
		return 0, nil
	}
	if db.IsForeignKeyViolation(err) {
		return 0, ErrPollNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("insert vote: %w", err)
	}
	return res.RowsAffected()
}

// CastVote records the voter's first vote on a poll. The vote row and both
// counters commit together. A second vote by the same voter changes nothing:
// the unique index on (poll_id, user_id) makes the insert a no-op and the
// stored vote comes back with outcome VoteAlreadyExisted.
func (e *Engine) CastVote(ctx context.Context, p CastVoteParams) (CastResult, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveVoteDuration(time.Since(start)) }()

	if err := e.ensureOpen(ctx, p.PollID); err != nil {
		return CastResult{}, err
	}

	now := e.now()
	vote := models.Vote{
		ID:        auth.NewID(),
		PollID:    p.PollID,
		OptionID:  p.OptionID,
		UserID:    p.VoterID,
		IPHash:    nullable(p.IPHash),
		UserAgent: nullable(p.UserAgent),
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return CastResult{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Lock order is poll row, then option rows, matching ChangeVote.
	res, err := tx.ExecContext(ctx, `
		UPDATE poll SET total_votes = total_votes + 1, updated_at = $2
		WHERE id = $1 AND is_active = TRUE
	`, p.PollID, now)
	if err != nil {
		return CastResult{}, fmt.Errorf("increment poll total: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return CastResult{}, fmt.Errorf("increment poll total: %w", err)
	} else if n == 0 {
		// deactivated between the expiry check and now
		e.metrics.IncVotesRejected(metrics.ReasonInactive)
		return CastResult{}, ErrInactive
	}

	if err := optionInPoll(ctx, tx, p.PollID, p.OptionID); err != nil {
		return CastResult{}, err
	}

	inserted, err := insertVote(ctx, tx, vote)
	if err != nil {
		return CastResult{}, err
	}
	if inserted == 0 {
		tx.Rollback()
		return e.existingVote(ctx, p)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE poll_option SET vote_count = vote_count + 1, updated_at = $2
		WHERE id = $1
	`, p.OptionID, now)
	if err != nil {
		return CastResult{}, fmt.Errorf("increment option count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CastResult{}, fmt.Errorf("commit vote: %w", err)
	}

	e.metrics.IncVotesCast()
	e.log.Info("vote cast", "poll_id", p.PollID, "option_id", p.OptionID, "user_id", p.VoterID)
	return CastResult{Vote: vote, Outcome: VoteCreated}, nil
}

// existingVote resolves a duplicate CastVote according to the policy.
func (e *Engine) existingVote(ctx context.Context, p CastVoteParams) (CastResult, error) {
	existing, found, err := e.GetUserVote(ctx, p.PollID, p.VoterID)
	if err != nil {
		return CastResult{}, err
	}
	if !found {
		// the vote that blocked the insert is gone again, e.g. mid-change
		e.metrics.IncVotesRejected(metrics.ReasonConflict)
		return CastResult{}, ErrConcurrentChange
	}

	e.metrics.IncVotesDuplicate()
	e.log.Info("duplicate vote", "poll_id", p.PollID, "user_id", p.VoterID, "existing_option_id", existing.OptionID)

	result := CastResult{Vote: existing, Outcome: VoteAlreadyExisted}
	if e.policy == DuplicateReject {
		return result, ErrDuplicateVote
	}
	return result, nil
}

// ChangeVote moves the voter's existing vote to another option of the same
// poll. The old vote is replaced by a new row and one unit moves between the
// option counters; total_votes does not change.
func (e *Engine) ChangeVote(ctx context.Context, p ChangeVoteParams) (models.Vote, error) {
	start := time.Now()
	defer func() { e.metrics.ObserveVoteDuration(time.Since(start)) }()

	if err := e.ensureOpen(ctx, p.PollID); err != nil {
		return models.Vote{}, err
	}

	now := e.now()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Vote{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Touching the poll row first serializes changes on this poll and
	// confirms it is still active.
	res, err := tx.ExecContext(ctx, `
		UPDATE poll SET updated_at = $2
		WHERE id = $1 AND is_active = TRUE
	`, p.PollID, now)
	if err != nil {
		return models.Vote{}, fmt.Errorf("lock poll: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Vote{}, fmt.Errorf("lock poll: %w", err)
	} else if n == 0 {
		e.metrics.IncVotesRejected(metrics.ReasonInactive)
		return models.Vote{}, ErrInactive
	}

	old, found, err := getUserVote(ctx, tx, p.PollID, p.VoterID)
	if err != nil {
		return models.Vote{}, err
	}
	if !found {
		return models.Vote{}, ErrNoExistingVote
	}

	if old.OptionID == p.ToOptionID {
		return old, nil
	}

	if err := optionInPoll(ctx, tx, p.PollID, p.ToOptionID); err != nil {
		return models.Vote{}, err
	}

	res, err = tx.ExecContext(ctx, `
		DELETE FROM poll_vote WHERE id = $1 AND option_id = $2
	`, old.ID, old.OptionID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("delete old vote: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Vote{}, fmt.Errorf("delete old vote: %w", err)
	} else if n == 0 {
		e.metrics.IncVotesRejected(metrics.ReasonConflict)
		return models.Vote{}, ErrConcurrentChange
	}

	vote := models.Vote{
		ID:        auth.NewID(),
		PollID:    p.PollID,
		OptionID:  p.ToOptionID,
		UserID:    p.VoterID,
		IPHash:    nullable(p.IPHash),
		UserAgent: nullable(p.UserAgent),
		CreatedAt: now,
		UpdatedAt: now,
	}
	inserted, err := insertVote(ctx, tx, vote)
	if err != nil {
		return models.Vote{}, err
	}
	if inserted == 0 {
		e.metrics.IncVotesRejected(metrics.ReasonConflict)
		return models.Vote{}, ErrConcurrentChange
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE poll_option SET vote_count = vote_count - 1, updated_at = $2
		WHERE id = $1 AND vote_count > 0
	`, old.OptionID, now)
	if err != nil {
		return models.Vote{}, fmt.Errorf("decrement option count: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Vote{}, fmt.Errorf("decrement option count: %w", err)
	} else if n == 0 {
		return models.Vote{}, fmt.Errorf("option %s vote_count already zero", old.OptionID)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE poll_option SET vote_count = vote_count + 1, updated_at = $2
		WHERE id = $1
	`, p.ToOptionID, now)
	if err != nil {
		return models.Vote{}, fmt.Errorf("increment option count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Vote{}, fmt.Errorf("commit vote change: %w", err)
	}

	e.metrics.IncVotesChanged()
	e.log.Info("vote changed", "poll_id", p.PollID, "user_id", p.VoterID,
		"from_option_id", old.OptionID, "to_option_id", p.ToOptionID)
	return vote, nil
}
