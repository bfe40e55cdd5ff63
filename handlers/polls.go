// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/opencircle/channels"
	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/middleware"
	"github.com/danielhkuo/opencircle/models"
	"github.com/danielhkuo/opencircle/polls"
	"github.com/danielhkuo/opencircle/posts"
)

type PollHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *polls.Engine
	posts  *posts.Store
	guard  *channels.Guard
}

func NewPollHandler(db *sql.DB, cfg cliparse.Config, engine *polls.Engine) *PollHandler {
	return &PollHandler{
		db:     db,
		cfg:    cfg,
		engine: engine,
		posts:  posts.NewStore(db),
		guard:  channels.NewGuard(db),
	}
}

// CreatePoll handles POST /polls
// Attaches a poll to a post the caller authored.
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.PostID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post_id is required")
		return
	}

	ctx := r.Context()
	post, found, err := h.posts.GetPost(ctx, req.PostID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		middleware.WriteError(w, posts.ErrPostNotFound)
		return
	}
	if post.UserID != userID {
		middleware.WriteError(w, errNotOwner)
		return
	}

	poll, err := h.engine.CreatePoll(ctx, polls.CreatePollParams{
		PostID:        req.PostID,
		DurationHours: req.DurationHours,
		Options:       pollInputs(req.Options),
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, poll)
}

// GetPoll handles GET /polls/{id}
// Authenticated callers also get their own vote.
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll ID is required")
		return
	}

	userID, ok := optionalUser(w, r, h.cfg)
	if !ok {
		return
	}

	poll, found, err := h.engine.GetPollByID(r.Context(), pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		middleware.WriteError(w, polls.ErrPollNotFound)
		return
	}

	h.writePoll(w, r, userID, poll)
}

// GetPollByPost handles GET /posts/{postId}/poll
func (h *PollHandler) GetPollByPost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("postId")
	if postID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post ID is required")
		return
	}

	userID, ok := optionalUser(w, r, h.cfg)
	if !ok {
		return
	}

	poll, found, err := h.engine.GetPollByPost(r.Context(), postID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		middleware.WriteError(w, polls.ErrPollNotFound)
		return
	}

	h.writePoll(w, r, userID, poll)
}

func (h *PollHandler) writePoll(w http.ResponseWriter, r *http.Request, userID string, poll models.PollWithOptions) {
	ctx := r.Context()
	if err := checkPostAccess(ctx, h.guard, userID, poll.Poll.PostID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	resp := models.PollResponse{PollWithOptions: poll}
	if userID != "" {
		vote, found, err := h.engine.GetUserVote(ctx, poll.Poll.ID, userID)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		if found {
			resp.UserVote = &vote
		}
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DeletePoll handles DELETE /polls/{id}
// Only the author of the anchor post may delete its poll.
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll ID is required")
		return
	}

	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return
	}

	ctx := r.Context()
	poll, found, err := h.engine.GetPollByID(ctx, pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		middleware.WriteError(w, polls.ErrPollNotFound)
		return
	}

	post, found, err := h.posts.GetPost(ctx, poll.Poll.PostID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found || post.UserID != userID {
		middleware.WriteError(w, errNotOwner)
		return
	}

	if err := h.engine.DeletePoll(ctx, pollID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("poll deleted by owner", "poll_id", pollID, "user_id", userID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "poll deleted"})
}
