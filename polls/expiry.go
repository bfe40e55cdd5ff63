// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielhkuo/opencircle/metrics"
)

// pollWindow is what expiry needs to know about a poll.
type pollWindow struct {
	ID            string
	IsActive      bool
	DurationHours int
	// AnchorCreatedAt is the creation time of the post the poll belongs to.
	AnchorCreatedAt time.Time
}

func (w pollWindow) closesAt() time.Time {
	return w.AnchorCreatedAt.Add(time.Duration(w.DurationHours) * time.Hour)
}

func (e *Engine) loadWindow(ctx context.Context, pollID string) (pollWindow, error) {
	w := pollWindow{ID: pollID}
	err := e.db.QueryRowContext(ctx, `
		SELECT p.is_active, p.duration_hours, po.created_at
		FROM poll p
		JOIN post po ON po.id = p.post_id
		WHERE p.id = $1
	`, pollID).Scan(&w.IsActive, &w.DurationHours, &w.AnchorCreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return pollWindow{}, ErrPollNotFound
	}
	if err != nil {
		return pollWindow{}, fmt.Errorf("query poll window: %w", err)
	}
	return w, nil
}

// CheckExpiry reports whether the poll no longer accepts votes. A poll past
// its window is deactivated as a side effect; the first caller to notice
// flips it and later calls see it inactive without reading the post again.
func (e *Engine) CheckExpiry(ctx context.Context, pollID string) (bool, error) {
	w, err := e.loadWindow(ctx, pollID)
	if err != nil {
		return false, err
	}
	if !w.IsActive {
		return true, nil
	}
	if !e.now().After(w.closesAt()) {
		return false, nil
	}
	if _, err := e.deactivate(ctx, w); err != nil {
		return true, err
	}
	return true, nil
}

// ensureOpen runs before every vote mutation, outside its transaction, so the
// expiry flip persists even though the vote itself is refused.
func (e *Engine) ensureOpen(ctx context.Context, pollID string) error {
	w, err := e.loadWindow(ctx, pollID)
	if err != nil {
		return err
	}
	if !w.IsActive {
		e.metrics.IncVotesRejected(metrics.ReasonInactive)
		return ErrInactive
	}
	if e.now().After(w.closesAt()) {
		if _, err := e.deactivate(ctx, w); err != nil {
			return err
		}
		e.metrics.IncVotesRejected(metrics.ReasonExpired)
		return ErrExpired
	}
	return nil
}

// deactivate flips is_active only if it is still set, so concurrent
// detectors agree on a single transition.
func (e *Engine) deactivate(ctx context.Context, w pollWindow) (bool, error) {
	res, err := e.db.ExecContext(ctx, `
		UPDATE poll SET is_active = FALSE, updated_at = $2
		WHERE id = $1 AND is_active = TRUE
	`, w.ID, e.now())
	if err != nil {
		return false, fmt.Errorf("deactivate poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate poll: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	e.metrics.AddPollsExpired(1)
	e.log.Info("poll expired", "poll_id", w.ID, "closed_at", w.closesAt())
	return true, nil
}

// SweepExpired deactivates every active poll whose window has passed and
// returns how many it flipped. Nothing in the engine calls it; see
// sweeper.ExpirySweeper.
func (e *Engine) SweepExpired(ctx context.Context) (int, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT p.id, p.duration_hours, po.created_at
		FROM poll p
		JOIN post po ON po.id = p.post_id
		WHERE p.is_active = TRUE
	`)
	if err != nil {
		return 0, fmt.Errorf("query active polls: %w", err)
	}

	now := e.now()
	var expired []pollWindow
	for rows.Next() {
		w := pollWindow{IsActive: true}
		if err := rows.Scan(&w.ID, &w.DurationHours, &w.AnchorCreatedAt); err != nil {
			rows.Close()
			return 0, fmt.Errorf("scan active poll: %w", err)
		}
		if now.After(w.closesAt()) {
			expired = append(expired, w)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, fmt.Errorf("iterate active polls: %w", err)
	}
	// release the connection before updating
	rows.Close()

	flipped := 0
	for _, w := range expired {
		ok, err := e.deactivate(ctx, w)
		if err != nil {
			return flipped, err
		}
		if ok {
			flipped++
		}
	}
	return flipped, nil
}
