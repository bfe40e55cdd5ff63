// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"errors"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/testutil"
)

func (s *engineSuite) TestCastVote() {
	poll := s.createPoll(24, "Yes", "No")
	yes := poll.Options[0].ID

	res, err := s.engine.CastVote(s.ctx, CastVoteParams{
		PollID: poll.Poll.ID, OptionID: yes, VoterID: s.voterA,
		IPHash: "abc123", UserAgent: "test-agent",
	})
	s.Require().NoError(err)
	s.Require().Equal(VoteCreated, res.Outcome)
	s.Require().Equal(yes, res.Vote.OptionID)
	s.Require().Equal(1, s.optionCount(yes))
	s.requireCounters(poll.Poll.ID, 1)

	vote, found, err := s.engine.GetUserVote(s.ctx, poll.Poll.ID, s.voterA)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Require().Equal(res.Vote.ID, vote.ID)
	s.Require().NotNil(vote.IPHash)
	s.Require().Equal("abc123", *vote.IPHash)

	_, found, err = s.engine.GetUserVote(s.ctx, poll.Poll.ID, s.voterB)
	s.Require().NoError(err)
	s.Require().False(found)
}

func (s *engineSuite) TestCastVote_DuplicateReturnsExisting() {
	poll := s.createPoll(24, "Yes", "No")
	yes, no := poll.Options[0].ID, poll.Options[1].ID

	first, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: yes, VoterID: s.voterA})
	s.Require().NoError(err)

	again, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: no, VoterID: s.voterA})
	s.Require().NoError(err)
	s.Require().Equal(VoteAlreadyExisted, again.Outcome)
	s.Require().Equal(first.Vote.ID, again.Vote.ID)
	s.Require().Equal(yes, again.Vote.OptionID, "existing vote is untouched")

	s.Require().Equal(1, s.optionCount(yes))
	s.Require().Equal(0, s.optionCount(no))
	s.requireCounters(poll.Poll.ID, 1)
}

func (s *engineSuite) TestCastVote_DuplicateRejectPolicy() {
	s.engine = New(s.conn, Options{Clock: s.clock, DuplicatePolicy: DuplicateReject})
	poll := s.createPoll(24, "Yes", "No")
	yes := poll.Options[0].ID

	_, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: yes, VoterID: s.voterA})
	s.Require().NoError(err)

	res, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: yes, VoterID: s.voterA})
	s.Require().True(errors.Is(err, ErrDuplicateVote))
	s.Require().True(errors.Is(err, apperr.ErrConflict))
	s.Require().Equal(VoteAlreadyExisted, res.Outcome)
	s.requireCounters(poll.Poll.ID, 1)
}

func (s *engineSuite) TestCastVote_Errors() {
	poll := s.createPoll(24, "Yes", "No")

	otherPost := s.newPost()
	other, err := s.engine.CreatePoll(s.ctx, CreatePollParams{PostID: otherPost, Options: options("X", "Y")})
	s.Require().NoError(err)

	tests := []struct {
		name   string
		params CastVoteParams
		want   error
	}{
		{"missing poll", CastVoteParams{PollID: "missing", OptionID: poll.Options[0].ID, VoterID: s.voterA}, ErrPollNotFound},
		{"missing option", CastVoteParams{PollID: poll.Poll.ID, OptionID: "missing", VoterID: s.voterA}, ErrOptionNotFound},
		{"option of another poll", CastVoteParams{PollID: poll.Poll.ID, OptionID: other.Options[0].ID, VoterID: s.voterA}, ErrOptionNotFound},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.engine.CastVote(s.ctx, tt.params)
			s.Require().True(errors.Is(err, tt.want), "got %v", err)
			s.Require().True(errors.Is(err, apperr.ErrNotFound))
		})
	}
	s.requireCounters(poll.Poll.ID, 0)
	s.requireCounters(other.Poll.ID, 0)
}

func (s *engineSuite) TestCastVote_InactivePoll() {
	poll := s.createPoll(24, "Yes", "No")
	_, err := s.conn.Exec(`UPDATE poll SET is_active = FALSE WHERE id = $1`, poll.Poll.ID)
	s.Require().NoError(err)

	_, err = s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: poll.Options[0].ID, VoterID: s.voterA})
	s.Require().True(errors.Is(err, ErrInactive), "got %v", err)
	s.Require().True(errors.Is(err, apperr.ErrExpiredOrInactive))
	s.requireCounters(poll.Poll.ID, 0)
}

func (s *engineSuite) TestChangeVote() {
	poll := s.createPoll(24, "Yes", "No")
	yes, no := poll.Options[0].ID, poll.Options[1].ID

	first, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: yes, VoterID: s.voterA})
	s.Require().NoError(err)

	changed, err := s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: poll.Poll.ID, ToOptionID: no, VoterID: s.voterA})
	s.Require().NoError(err)
	s.Require().Equal(no, changed.OptionID)
	s.Require().NotEqual(first.Vote.ID, changed.ID, "vote is replaced, not updated")

	s.Require().Equal(0, s.optionCount(yes))
	s.Require().Equal(1, s.optionCount(no))
	s.requireCounters(poll.Poll.ID, 1)

	// same option again is a no-op
	same, err := s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: poll.Poll.ID, ToOptionID: no, VoterID: s.voterA})
	s.Require().NoError(err)
	s.Require().Equal(changed.ID, same.ID)
	s.requireCounters(poll.Poll.ID, 1)
}

func (s *engineSuite) TestChangeVote_Errors() {
	poll := s.createPoll(24, "Yes", "No")
	yes := poll.Options[0].ID

	_, err := s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: poll.Poll.ID, ToOptionID: yes, VoterID: s.voterA})
	s.Require().True(errors.Is(err, ErrNoExistingVote), "got %v", err)
	s.Require().True(errors.Is(err, apperr.ErrValidation))
	s.requireCounters(poll.Poll.ID, 0)

	_, err = s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: yes, VoterID: s.voterA})
	s.Require().NoError(err)

	_, err = s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: poll.Poll.ID, ToOptionID: "missing", VoterID: s.voterA})
	s.Require().True(errors.Is(err, ErrOptionNotFound))

	_, err = s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: "missing", ToOptionID: yes, VoterID: s.voterA})
	s.Require().True(errors.Is(err, ErrPollNotFound))

	_, err = s.conn.Exec(`UPDATE poll SET is_active = FALSE WHERE id = $1`, poll.Poll.ID)
	s.Require().NoError(err)
	_, err = s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: poll.Poll.ID, ToOptionID: poll.Options[1].ID, VoterID: s.voterA})
	s.Require().True(errors.Is(err, apperr.ErrExpiredOrInactive))

	s.Require().Equal(1, s.optionCount(yes))
	s.requireCounters(poll.Poll.ID, 1)
}

// Red/Green/Blue walk-through: cast, change, second voter.
func (s *engineSuite) TestVotingScenario() {
	poll := s.createPoll(1, "Red", "Green", "Blue")
	red, green, blue := poll.Options[0].ID, poll.Options[1].ID, poll.Options[2].ID
	id := poll.Poll.ID

	_, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: id, OptionID: red, VoterID: s.voterA})
	s.Require().NoError(err)
	s.requireResults(id, 1, map[string]resultWant{red: {1, 100}, green: {0, 0}, blue: {0, 0}})

	_, err = s.engine.ChangeVote(s.ctx, ChangeVoteParams{PollID: id, ToOptionID: blue, VoterID: s.voterA})
	s.Require().NoError(err)
	s.requireResults(id, 1, map[string]resultWant{red: {0, 0}, green: {0, 0}, blue: {1, 100}})

	_, err = s.engine.CastVote(s.ctx, CastVoteParams{PollID: id, OptionID: blue, VoterID: s.voterB})
	s.Require().NoError(err)
	s.requireResults(id, 2, map[string]resultWant{red: {0, 0}, green: {0, 0}, blue: {2, 100}})

	s.requireCounters(id, 2)
}

type resultWant struct {
	count int
	pct   float64
}

func (s *engineSuite) requireResults(pollID string, total int, want map[string]resultWant) {
	res, found, err := s.engine.ComputeResults(s.ctx, pollID)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Require().Equal(total, res.TotalVotes)
	s.Require().Len(res.Options, len(want))
	for _, opt := range res.Options {
		w := want[opt.OptionID]
		s.Require().Equal(w.count, opt.VoteCount, "count for %s", opt.Text)
		s.Require().InDelta(w.pct, opt.Percentage, 0.001, "percentage for %s", opt.Text)
	}
}

func (s *engineSuite) newPost() string {
	return testutil.CreateTestPost(s.T(), s.conn, s.owner, "", s.clock.Now())
}

func (s *engineSuite) newUser(username string) string {
	return testutil.CreateTestUser(s.T(), s.conn, username)
}
