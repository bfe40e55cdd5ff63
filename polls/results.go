// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"context"
	"fmt"
	"math"

	"github.com/danielhkuo/opencircle/models"
)

// Percentage returns count/total as a percentage rounded to two decimals,
// or 0 when total is 0.
func Percentage(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(count)/float64(total)*100*100) / 100
}

// ComputeResults reads the poll and its options in one statement so the
// total and the per-option counts come from the same snapshot.
func (e *Engine) ComputeResults(ctx context.Context, pollID string) (models.PollResults, bool, error) {
	rows, err := e.db.QueryContext(ctx, `
		SELECT p.id, p.total_votes, p.is_active, o.id, o.text, o.position, o.vote_count
		FROM poll p
		JOIN poll_option o ON o.poll_id = p.id
		WHERE p.id = $1
		ORDER BY o.position
	`, pollID)
	if err != nil {
		return models.PollResults{}, false, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	results := models.PollResults{Options: []models.OptionResult{}}
	found := false
	for rows.Next() {
		var opt models.OptionResult
		err := rows.Scan(&results.PollID, &results.TotalVotes, &results.IsActive,
			&opt.OptionID, &opt.Text, &opt.Order, &opt.VoteCount)
		if err != nil {
			return models.PollResults{}, false, fmt.Errorf("scan results: %w", err)
		}
		results.Options = append(results.Options, opt)
		found = true
	}
	if err := rows.Err(); err != nil {
		return models.PollResults{}, false, fmt.Errorf("iterate results: %w", err)
	}
	if !found {
		return models.PollResults{}, false, nil
	}

	for i := range results.Options {
		results.Options[i].Percentage = Percentage(results.Options[i].VoteCount, results.TotalVotes)
	}
	return results, true, nil
}
