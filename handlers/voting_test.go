// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/models"
	"github.com/danielhkuo/opencircle/polls"
	"github.com/danielhkuo/opencircle/testutil"
)

func castVote(t *testing.T, h *VotingHandler, pollID string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("POST", "/polls/"+pollID+"/vote", body, headers)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	h.CastVote(w, req)
	return w
}

func changeVote(t *testing.T, h *VotingHandler, pollID string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.MakeRequest("PUT", "/polls/"+pollID+"/vote", body, headers)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	h.ChangeVote(w, req)
	return w
}

func errorKind(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	return resp.Kind
}

func TestCastVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg, newTestEngine(db))

	owner := testutil.CreateTestUser(t, db, "owner")
	voter := testutil.CreateTestUser(t, db, "voter")
	postID := testutil.CreateTestPost(t, db, owner, "", time.Now())
	pollID, optionIDs := testutil.CreateTestPoll(t, db, postID, 24, "Yes", "No")

	otherPost := testutil.CreateTestPost(t, db, owner, "", time.Now())
	_, otherOptions := testutil.CreateTestPoll(t, db, otherPost, 24, "X", "Y")

	tests := []struct {
		name           string
		body           models.CastVoteRequest
		headers        map[string]string
		expectedStatus int
		expectedKind   string
	}{
		{"no token", models.CastVoteRequest{PollID: pollID, OptionID: optionIDs[0]}, nil, http.StatusUnauthorized, apperr.KindUnauthenticated},
		{"poll id mismatch", models.CastVoteRequest{PollID: "another", OptionID: optionIDs[0]}, testutil.AuthHeaders(cfg, voter), http.StatusBadRequest, apperr.KindValidation},
		{"missing poll id", models.CastVoteRequest{OptionID: optionIDs[0]}, testutil.AuthHeaders(cfg, voter), http.StatusBadRequest, apperr.KindValidation},
		{"missing option", models.CastVoteRequest{PollID: pollID}, testutil.AuthHeaders(cfg, voter), http.StatusBadRequest, apperr.KindValidation},
		{"option of another poll", models.CastVoteRequest{PollID: pollID, OptionID: otherOptions[0]}, testutil.AuthHeaders(cfg, voter), http.StatusNotFound, apperr.KindNotFound},
		{"first vote", models.CastVoteRequest{PollID: pollID, OptionID: optionIDs[0]}, testutil.AuthHeaders(cfg, voter), http.StatusCreated, ""},
		{"second vote returns existing", models.CastVoteRequest{PollID: pollID, OptionID: optionIDs[1]}, testutil.AuthHeaders(cfg, voter), http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := castVote(t, handler, pollID, tt.body, tt.headers)
			testutil.AssertStatus(t, w, tt.expectedStatus)

			switch tt.expectedStatus {
			case http.StatusCreated, http.StatusOK:
				var resp models.CastVoteResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Vote.OptionID != optionIDs[0] {
					t.Errorf("Expected vote on %s, got %s", optionIDs[0], resp.Vote.OptionID)
				}
				if resp.AlreadyVoted != (tt.expectedStatus == http.StatusOK) {
					t.Errorf("Unexpected already_voted=%v", resp.AlreadyVoted)
				}
			default:
				if kind := errorKind(t, w); kind != tt.expectedKind {
					t.Errorf("Expected kind %s, got %s", tt.expectedKind, kind)
				}
			}
		})
	}

	var total int
	db.QueryRow(`SELECT total_votes FROM poll WHERE id = $1`, pollID).Scan(&total)
	if total != 1 {
		t.Errorf("Expected total_votes 1, got %d", total)
	}
}

func TestCastVote_RejectPolicy(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	engine := polls.New(db, polls.Options{DuplicatePolicy: polls.DuplicateReject})
	handler := NewVotingHandler(db, cfg, engine)

	owner := testutil.CreateTestUser(t, db, "owner")
	voter := testutil.CreateTestUser(t, db, "voter")
	postID := testutil.CreateTestPost(t, db, owner, "", time.Now())
	pollID, optionIDs := testutil.CreateTestPoll(t, db, postID, 24, "Yes", "No")

	body := models.CastVoteRequest{PollID: pollID, OptionID: optionIDs[0]}
	testutil.AssertStatus(t, castVote(t, handler, pollID, body, testutil.AuthHeaders(cfg, voter)), http.StatusCreated)

	w := castVote(t, handler, pollID, body, testutil.AuthHeaders(cfg, voter))
	testutil.AssertStatus(t, w, http.StatusConflict)
	if kind := errorKind(t, w); kind != apperr.KindConflict {
		t.Errorf("Expected kind conflict, got %s", kind)
	}
}

// A 1h poll on a post created two hours ago.
func TestCastVote_Expired(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg, newTestEngine(db))

	owner := testutil.CreateTestUser(t, db, "owner")
	voter := testutil.CreateTestUser(t, db, "voter")
	postID := testutil.CreateTestPost(t, db, owner, "", time.Now().Add(-2*time.Hour))
	pollID, optionIDs := testutil.CreateTestPoll(t, db, postID, 1, "Yes", "No")

	w := castVote(t, handler, pollID, models.CastVoteRequest{PollID: pollID, OptionID: optionIDs[0]}, testutil.AuthHeaders(cfg, voter))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if kind := errorKind(t, w); kind != apperr.KindExpiredOrInactive {
		t.Errorf("Expected kind expired_or_inactive, got %s", kind)
	}

	var active bool
	if err := db.QueryRow(`SELECT is_active FROM poll WHERE id = $1`, pollID).Scan(&active); err != nil {
		t.Fatalf("Failed to read poll: %v", err)
	}
	if active {
		t.Error("Expected poll to be deactivated by the refused vote")
	}
}

func TestCastVote_PrivateChannel(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg, newTestEngine(db))

	member := testutil.CreateTestUser(t, db, "member")
	outsider := testutil.CreateTestUser(t, db, "outsider")
	channelID := testutil.CreateTestChannel(t, db, "team", models.ChannelPrivate, member)
	postID := testutil.CreateTestPost(t, db, member, channelID, time.Now())
	pollID, optionIDs := testutil.CreateTestPoll(t, db, postID, 24, "Yes", "No")

	body := models.CastVoteRequest{PollID: pollID, OptionID: optionIDs[0]}
	testutil.AssertStatus(t, castVote(t, handler, pollID, body, testutil.AuthHeaders(cfg, outsider)), http.StatusForbidden)
	testutil.AssertStatus(t, castVote(t, handler, pollID, body, testutil.AuthHeaders(cfg, member)), http.StatusCreated)
}

func TestChangeVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	cfg := testutil.GetTestConfig()
	handler := NewVotingHandler(db, cfg, newTestEngine(db))

	owner := testutil.CreateTestUser(t, db, "owner")
	voter := testutil.CreateTestUser(t, db, "voter")
	postID := testutil.CreateTestPost(t, db, owner, "", time.Now())
	pollID, optionIDs := testutil.CreateTestPoll(t, db, postID, 24, "Yes", "No")
	headers := testutil.AuthHeaders(cfg, voter)

	// nothing to change yet
	w := changeVote(t, handler, pollID, models.ChangeVoteRequest{NewOptionID: optionIDs[1]}, headers)
	testutil.AssertStatus(t, w, http.StatusBadRequest)
	if kind := errorKind(t, w); kind != apperr.KindValidation {
		t.Errorf("Expected kind validation, got %s", kind)
	}

	testutil.AssertStatus(t, castVote(t, handler, pollID, models.CastVoteRequest{PollID: pollID, OptionID: optionIDs[0]}, headers), http.StatusCreated)

	w = changeVote(t, handler, pollID, models.ChangeVoteRequest{NewOptionID: optionIDs[1]}, headers)
	testutil.AssertStatus(t, w, http.StatusOK)
	var vote models.Vote
	testutil.AssertJSON(t, w, &vote)
	if vote.OptionID != optionIDs[1] {
		t.Errorf("Expected vote on %s, got %s", optionIDs[1], vote.OptionID)
	}

	// option_id is accepted as an alias
	w = changeVote(t, handler, pollID, models.ChangeVoteRequest{OptionID: optionIDs[0]}, headers)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = changeVote(t, handler, pollID, models.ChangeVoteRequest{}, headers)
	testutil.AssertStatus(t, w, http.StatusBadRequest)

	var total, yes, no int
	db.QueryRow(`SELECT total_votes FROM poll WHERE id = $1`, pollID).Scan(&total)
	db.QueryRow(`SELECT vote_count FROM poll_option WHERE id = $1`, optionIDs[0]).Scan(&yes)
	db.QueryRow(`SELECT vote_count FROM poll_option WHERE id = $1`, optionIDs[1]).Scan(&no)
	if total != 1 || yes != 1 || no != 0 {
		t.Errorf("Expected total=1 yes=1 no=0, got total=%d yes=%d no=%d", total, yes, no)
	}
}
