// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/opencircle/auth"
	"github.com/danielhkuo/opencircle/channels"
	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/middleware"
	"github.com/danielhkuo/opencircle/models"
	"github.com/danielhkuo/opencircle/polls"
)

type VotingHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *polls.Engine
	guard  *channels.Guard
}

func NewVotingHandler(db *sql.DB, cfg cliparse.Config, engine *polls.Engine) *VotingHandler {
	return &VotingHandler{
		db:     db,
		cfg:    cfg,
		engine: engine,
		guard:  channels.NewGuard(db),
	}
}

// authorizeVote resolves the caller and checks they can see the poll's post.
func (h *VotingHandler) authorizeVote(w http.ResponseWriter, r *http.Request, pollID string) (string, bool) {
	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return "", false
	}

	ctx := r.Context()
	poll, found, err := h.engine.GetPollByID(ctx, pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return "", false
	}
	if !found {
		middleware.WriteError(w, polls.ErrPollNotFound)
		return "", false
	}
	if err := checkPostAccess(ctx, h.guard, userID, poll.Poll.PostID); err != nil {
		middleware.WriteError(w, err)
		return "", false
	}
	return userID, true
}

// CastVote handles POST /polls/{id}/vote
// 201 for a new vote, 200 with already_voted when the caller had voted.
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll ID is required")
		return
	}

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PollID != pollID {
		middleware.WriteError(w, errPollMatch)
		return
	}
	if req.OptionID == "" {
		middleware.WriteError(w, errOptionEmpty)
		return
	}

	userID, ok := h.authorizeVote(w, r, pollID)
	if !ok {
		return
	}

	res, err := h.engine.CastVote(r.Context(), polls.CastVoteParams{
		PollID:    pollID,
		OptionID:  req.OptionID,
		VoterID:   userID,
		IPHash:    auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		// under the reject policy a duplicate lands here as 409
		middleware.WriteError(w, err)
		return
	}

	if res.Outcome == polls.VoteAlreadyExisted {
		middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{Vote: res.Vote, AlreadyVoted: true})
		return
	}
	middleware.JSONResponse(w, http.StatusCreated, models.CastVoteResponse{Vote: res.Vote})
}

// ChangeVote handles PUT /polls/{id}/vote
func (h *VotingHandler) ChangeVote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll ID is required")
		return
	}

	var req models.ChangeVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	optionID := req.NewOptionID
	if optionID == "" {
		optionID = req.OptionID
	}
	if optionID == "" {
		middleware.WriteError(w, errOptionEmpty)
		return
	}

	userID, ok := h.authorizeVote(w, r, pollID)
	if !ok {
		return
	}

	vote, err := h.engine.ChangeVote(r.Context(), polls.ChangeVoteParams{
		PollID:     pollID,
		ToOptionID: optionID,
		VoterID:    userID,
		IPHash:     auth.HashIP(middleware.GetClientIP(r), h.cfg.IPHashSalt),
		UserAgent:  r.UserAgent(),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, vote)
}
