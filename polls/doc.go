// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package polls implements the poll engine: creation, voting, vote changes,
expiry and results.

# Construction

	engine := polls.New(db, polls.Options{
		Clock:           polls.SystemClock{},
		Logger:          slog.Default(),
		Metrics:         metrics.NewMetricService(),
		DuplicatePolicy: polls.DuplicateReturnExisting,
	})

Every field is optional.

# Invariants

For every poll:

	total_votes == sum(poll_option.vote_count) == count(poll_vote)

and at most one poll_vote row exists per (poll_id, user_id). The second rule
is the unique index on poll_vote; votes are inserted with ON CONFLICT DO
NOTHING so concurrent duplicates collapse to one row. Counters only change
through SET x = x ± 1 inside the transaction that writes the vote.

# Voting

	res, err := engine.CastVote(ctx, polls.CastVoteParams{PollID: id, OptionID: opt, VoterID: user})
	// res.Outcome is VoteCreated or VoteAlreadyExisted

	vote, err := engine.ChangeVote(ctx, polls.ChangeVoteParams{PollID: id, ToOptionID: other, VoterID: user})

Under DuplicateReject a repeat CastVote also returns ErrDuplicateVote.

# Expiry

A poll closes durationHours after its anchor post was created. CastVote and
ChangeVote check this first; the first caller to see an expired poll flips
is_active to false and gets ErrExpired. SweepExpired does the same for every
active poll and is only called by the optional background sweeper.

# Errors

Every error wraps an apperr kind:

	ErrPollNotFound, ErrOptionNotFound, ErrPostNotFound  → not_found
	ErrInvalidOptions, ErrInvalidDuration, ErrNoExistingVote → validation
	ErrPollExists, ErrDuplicateVote, ErrConcurrentChange → conflict
	ErrExpired, ErrInactive                              → expired_or_inactive
*/
package polls
