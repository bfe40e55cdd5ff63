// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/channels"
	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/middleware"
	"github.com/danielhkuo/opencircle/models"
	"github.com/danielhkuo/opencircle/polls"
	"github.com/danielhkuo/opencircle/posts"
)

type PostHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *polls.Engine
	posts  *posts.Store
	guard  *channels.Guard
}

func NewPostHandler(db *sql.DB, cfg cliparse.Config, engine *polls.Engine) *PostHandler {
	return &PostHandler{
		db:     db,
		cfg:    cfg,
		engine: engine,
		posts:  posts.NewStore(db),
		guard:  channels.NewGuard(db),
	}
}

func pollInputs(in []models.PollOptionInput) []polls.OptionInput {
	out := make([]polls.OptionInput, len(in))
	for i, o := range in {
		out[i] = polls.OptionInput{Text: o.Text, Order: o.Order}
	}
	return out
}

// CreatePost handles POST /posts
// A post of type "poll" carries its poll and both are created together.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CreatePostRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ctx := r.Context()

	if req.ChannelID != nil {
		ok, err := h.guard.CanAccessChannel(ctx, userID, *req.ChannelID)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		if !ok {
			middleware.WriteError(w, errNotMember)
			return
		}
	}
	if req.ParentID != nil {
		if err := checkPostAccess(ctx, h.guard, userID, *req.ParentID); err != nil {
			middleware.WriteError(w, err)
			return
		}
	}

	params := posts.CreateParams{
		Title:     req.Title,
		Content:   req.Content,
		Type:      req.Type,
		UserID:    userID,
		ChannelID: req.ChannelID,
		ParentID:  req.ParentID,
	}

	if req.Type == models.PostTypePoll || req.Poll != nil {
		if req.Poll == nil {
			middleware.WriteError(w, fmt.Errorf("a poll post needs a poll: %w", apperr.ErrValidation))
			return
		}
		post, poll, err := h.engine.CreatePostWithPoll(ctx, params, polls.CreatePollParams{
			DurationHours: req.Poll.DurationHours,
			Options:       pollInputs(req.Poll.Options),
		})
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		middleware.JSONResponse(w, http.StatusCreated, models.PostWithPollResponse{Post: post, Poll: &poll})
		return
	}

	post, err := h.posts.CreatePost(ctx, params)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("post created", "post_id", post.ID, "type", post.Type, "user_id", userID)
	middleware.JSONResponse(w, http.StatusCreated, models.PostWithPollResponse{Post: post})
}

// GetPost handles GET /posts/{id}
// Includes the attached poll, if any.
func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post ID is required")
		return
	}

	userID, ok := optionalUser(w, r, h.cfg)
	if !ok {
		return
	}

	ctx := r.Context()
	if err := checkPostAccess(ctx, h.guard, userID, postID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	post, found, err := h.posts.GetPost(ctx, postID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		middleware.WriteError(w, posts.ErrPostNotFound)
		return
	}

	resp := models.PostWithPollResponse{Post: post}
	poll, found, err := h.engine.GetPollByPost(ctx, postID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if found {
		resp.Poll = &poll
	}

	middleware.JSONResponse(w, http.StatusOK, resp)
}

// DeletePost handles DELETE /posts/{id}
// Only the author may delete; replies and polls go with the post.
func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post ID is required")
		return
	}

	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return
	}

	ctx := r.Context()
	post, found, err := h.posts.GetPost(ctx, postID)
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

	if err := h.posts.DeletePost(ctx, postID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("post deleted", "post_id", postID, "user_id", userID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "post deleted"})
}

// GetCommentSummary handles GET /posts/{id}/comments/summary
func (h *PostHandler) GetCommentSummary(w http.ResponseWriter, r *http.Request) {
	postID := r.PathValue("id")
	if postID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "post ID is required")
		return
	}

	userID, ok := optionalUser(w, r, h.cfg)
	if !ok {
		return
	}

	ctx := r.Context()
	if err := checkPostAccess(ctx, h.guard, userID, postID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	summary, err := h.posts.CommentSummary(ctx, postID, userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, summary)
}
