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
)

type ChannelHandler struct {
	db       *sql.DB
	cfg      cliparse.Config
	channels *channels.Store
}

func NewChannelHandler(db *sql.DB, cfg cliparse.Config) *ChannelHandler {
	return &ChannelHandler{db: db, cfg: cfg, channels: channels.NewStore(db)}
}

// CreateChannel handles POST /channels
func (h *ChannelHandler) CreateChannel(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.CreateChannelRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	ch, err := h.channels.CreateChannel(r.Context(), channels.CreateChannelParams{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Type:        req.Type,
		CreatedBy:   userID,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("channel created", "channel_id", ch.ID, "slug", ch.Slug, "type", ch.Type)
	middleware.JSONResponse(w, http.StatusCreated, ch)
}

// AddMember handles POST /channels/{id}/members
// Anyone may join a public channel; members add others, and only members
// can add anyone to a private channel.
func (h *ChannelHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	channelID := r.PathValue("id")
	if channelID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "channel ID is required")
		return
	}

	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return
	}

	var req models.AddMemberRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.UserID == "" {
		req.UserID = userID
	}

	ctx := r.Context()
	private, err := h.channels.IsPrivate(ctx, channelID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	if private || req.UserID != userID {
		member, err := h.channels.IsMember(ctx, channelID, userID)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		if !member {
			middleware.WriteError(w, errNotMember)
			return
		}
	}

	if err := h.channels.AddMember(ctx, channelID, req.UserID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("channel member added", "channel_id", channelID, "user_id", req.UserID, "added_by", userID)
	middleware.JSONResponse(w, http.StatusOK, models.MessageResponse{Message: "member added"})
}
