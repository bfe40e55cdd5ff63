// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"errors"
	"time"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/testutil"
)

func (s *engineSuite) isActive(pollID string) bool {
	var active bool
	s.Require().NoError(s.conn.QueryRow(`SELECT is_active FROM poll WHERE id = $1`, pollID).Scan(&active))
	return active
}

func (s *engineSuite) TestCheckExpiry_Boundary() {
	poll := s.createPoll(1, "A", "B")

	tests := []struct {
		name    string
		advance time.Duration
		expired bool
	}{
		{"just created", 0, false},
		{"half way", 30 * time.Minute, false},
		{"exactly at close", 30 * time.Minute, false},
		{"one nanosecond later", time.Nanosecond, true},
	}

	for _, tt := range tests {
		s.clock.Advance(tt.advance)
		expired, err := s.engine.CheckExpiry(s.ctx, poll.Poll.ID)
		s.Require().NoError(err, tt.name)
		s.Require().Equal(tt.expired, expired, tt.name)
		s.Require().Equal(!tt.expired, s.isActive(poll.Poll.ID), tt.name)
	}
}

func (s *engineSuite) TestCheckExpiry_InactiveStaysExpired() {
	poll := s.createPoll(24, "A", "B")
	_, err := s.conn.Exec(`UPDATE poll SET is_active = FALSE WHERE id = $1`, poll.Poll.ID)
	s.Require().NoError(err)

	expired, err := s.engine.CheckExpiry(s.ctx, poll.Poll.ID)
	s.Require().NoError(err)
	s.Require().True(expired)

	_, err = s.engine.CheckExpiry(s.ctx, "missing")
	s.Require().True(errors.Is(err, ErrPollNotFound))
}

// A 1h poll on a post created at T, voted on at T+2h.
func (s *engineSuite) TestCastVote_AfterExpiry() {
	poll := s.createPoll(1, "Red", "Green", "Blue")
	s.Require().True(s.isActive(poll.Poll.ID))

	s.clock.Advance(2 * time.Hour)

	_, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: poll.Options[0].ID, VoterID: s.voterA})
	s.Require().True(errors.Is(err, ErrExpired), "got %v", err)
	s.Require().True(errors.Is(err, apperr.ErrExpiredOrInactive))
	s.Require().False(s.isActive(poll.Poll.ID), "refused vote still flips the poll")
	s.requireCounters(poll.Poll.ID, 0)

	// once flipped the poll reports inactive
	_, err = s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: poll.Options[0].ID, VoterID: s.voterB})
	s.Require().True(errors.Is(err, ErrInactive), "got %v", err)

	// results stay readable
	res, found, err := s.engine.ComputeResults(s.ctx, poll.Poll.ID)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Require().False(res.IsActive)
}

func (s *engineSuite) TestChangeVote_AfterExpiry() {
	poll := s.createPoll(1, "A", "B")
	_, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: poll.Options[0].ID, VoterID: s.voterA})
	s.Require().NoError(err)

	s.clock.Advance(61 * time.Minute)

	_, err = s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: poll.Poll.ID, ToOptionID: poll.Options[1].ID, VoterID: s.voterA})
	s.Require().True(errors.Is(err, ErrExpired), "got %v", err)
	s.Require().Equal(1, s.optionCount(poll.Options[0].ID))
	s.Require().Equal(0, s.optionCount(poll.Options[1].ID))
}

func (s *engineSuite) TestExpiryAnchoredOnPost() {
	// the post is an hour older than the poll
	oldPost := testutil.CreateTestPost(s.T(), s.conn, s.owner, "", testEpoch.Add(-time.Hour))
	poll, err := s.engine.CreatePoll(s.ctx, CreatePollParams{PostID: oldPost, DurationHours: 1, Options: options("A", "B")})
	s.Require().NoError(err)

	s.clock.Advance(time.Minute)
	expired, err := s.engine.CheckExpiry(s.ctx, poll.Poll.ID)
	s.Require().NoError(err)
	s.Require().True(expired)
}

func (s *engineSuite) TestSweepExpired() {
	short := s.createPoll(1, "A", "B")

	longPost := testutil.CreateTestPost(s.T(), s.conn, s.owner, "", testEpoch)
	long, err := s.engine.CreatePoll(s.ctx, CreatePollParams{PostID: longPost, DurationHours: 48, Options: options("A", "B")})
	s.Require().NoError(err)

	n, err := s.engine.SweepExpired(s.ctx)
	s.Require().NoError(err)
	s.Require().Zero(n)

	s.clock.Advance(2 * time.Hour)

	n, err = s.engine.SweepExpired(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(1, n)
	s.Require().False(s.isActive(short.Poll.ID))
	s.Require().True(s.isActive(long.Poll.ID))

	// nothing left to flip
	n, err = s.engine.SweepExpired(s.ctx)
	s.Require().NoError(err)
	s.Require().Zero(n)

	s.clock.Advance(47 * time.Hour)
	n, err = s.engine.SweepExpired(s.ctx)
	s.Require().NoError(err)
	s.Require().Equal(1, n)
}
