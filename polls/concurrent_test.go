// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/danielhkuo/opencircle/apperr"
)

// TestConcurrentDuplicateCasts fires the same voter at a poll many times at
// once; exactly one vote may be recorded.
func (s *engineSuite) TestConcurrentDuplicateCasts() {
	poll := s.createPoll(24, "A", "B")

	const attempts = 20
	var created, existed, failed atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := s.engine.CastVote(s.ctx, CastVoteParams{
				PollID:   poll.Poll.ID,
				OptionID: poll.Options[i%2].ID,
				VoterID:  s.voterA,
			})
			switch {
			case err != nil:
				failed.Add(1)
			case res.Outcome == VoteCreated:
				created.Add(1)
			default:
				existed.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Require().Equal(int32(1), created.Load(), "exactly one vote is created")
	s.Require().Equal(int32(attempts-1), existed.Load())
	s.Require().Zero(failed.Load())
	s.requireCounters(poll.Poll.ID, 1)
}

// TestConcurrentVoters checks counters stay consistent under many voters.
func (s *engineSuite) TestConcurrentVoters() {
	poll := s.createPoll(24, "A", "B", "C")

	const numVoters = 15
	voters := make([]string, numVoters)
	for i := range voters {
		voters[i] = s.newUser(fmt.Sprintf("concurrent-%02d", i))
	}

	var wg sync.WaitGroup
	var successCount atomic.Int32
	for i, voter := range voters {
		wg.Add(1)
		go func(i int, voter string) {
			defer wg.Done()
			_, err := s.engine.CastVote(s.ctx, CastVoteParams{
				PollID:   poll.Poll.ID,
				OptionID: poll.Options[i%3].ID,
				VoterID:  voter,
			})
			if err == nil {
				successCount.Add(1)
			}
		}(i, voter)
	}
	wg.Wait()

	s.Require().Equal(int32(numVoters), successCount.Load())
	s.requireCounters(poll.Poll.ID, numVoters)
	for _, opt := range poll.Options {
		s.Require().Equal(numVoters/3, s.optionCount(opt.ID))
	}
}

// TestConcurrentChanges flips one voter between options from several
// goroutines; the vote must end up counted exactly once.
func (s *engineSuite) TestConcurrentChanges() {
	poll := s.createPoll(24, "A", "B", "C")
	_, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: poll.Options[0].ID, VoterID: s.voterA})
	s.Require().NoError(err)

	var wg sync.WaitGroup
	var unexpected atomic.Int32
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.engine.ChangeVote(s.ctx, ChangeVoteParams{
				PollID:     poll.Poll.ID,
				ToOptionID: poll.Options[i%3].ID,
				VoterID:    s.voterA,
			})
			if err != nil && !errors.Is(err, apperr.ErrConflict) {
				unexpected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	s.Require().Zero(unexpected.Load())
	s.requireCounters(poll.Poll.ID, 1)

	vote, found, err := s.engine.GetUserVote(s.ctx, poll.Poll.ID, s.voterA)
	s.Require().NoError(err)
	s.Require().True(found)
	s.Require().Equal(1, s.optionCount(vote.OptionID), "the surviving vote's option holds the count")
}

// TestConcurrentCastsAndChanges mixes first votes from many voters with a
// single voter moving between the same options. Against PostgreSQL
// (TEST_DATABASE_URL) these transactions overlap on the poll and option rows;
// none may fail and the counters must add up.
func (s *engineSuite) TestConcurrentCastsAndChanges() {
	poll := s.createPoll(24, "A", "B")
	optA, optB := poll.Options[0].ID, poll.Options[1].ID

	_, err := s.engine.CastVote(s.ctx, CastVoteParams{PollID: poll.Poll.ID, OptionID: optA, VoterID: s.voterA})
	s.Require().NoError(err)

	const numVoters = 16
	voters := make([]string, numVoters)
	for i := range voters {
		voters[i] = s.newUser(fmt.Sprintf("mixed-%02d", i))
	}

	var wg sync.WaitGroup
	var castErrs, changeErrs atomic.Int32

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < numVoters; i++ {
			to := optB
			if i%2 == 1 {
				to = optA
			}
			if _, err := s.engine.ChangeVote(s.ctx, ChangeVoteParams{
				PollID:     poll.Poll.ID,
				ToOptionID: to,
				VoterID:    s.voterA,
			}); err != nil {
				changeErrs.Add(1)
			}
		}
	}()

	for i, voter := range voters {
		wg.Add(1)
		go func(i int, voter string) {
			defer wg.Done()
			opt := optA
			if i%2 == 1 {
				opt = optB
			}
			if _, err := s.engine.CastVote(s.ctx, CastVoteParams{
				PollID:   poll.Poll.ID,
				OptionID: opt,
				VoterID:  voter,
			}); err != nil {
				castErrs.Add(1)
			}
		}(i, voter)
	}
	wg.Wait()

	s.Require().Zero(castErrs.Load(), "casts by distinct voters never fail")
	s.Require().Zero(changeErrs.Load(), "sequential changes by one voter never fail")
	s.requireCounters(poll.Poll.ID, numVoters+1)

	// voterA ends on optA after an even number of moves.
	s.Require().Equal(numVoters/2+1, s.optionCount(optA))
	s.Require().Equal(numVoters/2, s.optionCount(optB))
}
