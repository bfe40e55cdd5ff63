// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/opencircle/channels"
	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/middleware"
	"github.com/danielhkuo/opencircle/polls"
)

type ResultsHandler struct {
	db     *sql.DB
	cfg    cliparse.Config
	engine *polls.Engine
	guard  *channels.Guard
}

func NewResultsHandler(db *sql.DB, cfg cliparse.Config, engine *polls.Engine) *ResultsHandler {
	return &ResultsHandler{
		db:     db,
		cfg:    cfg,
		engine: engine,
		guard:  channels.NewGuard(db),
	}
}

// GetResults handles GET /polls/{id}/results
// Results stay readable after the poll closes.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll ID is required")
		return
	}

	userID, ok := optionalUser(w, r, h.cfg)
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
	if err := checkPostAccess(ctx, h.guard, userID, poll.Poll.PostID); err != nil {
		middleware.WriteError(w, err)
		return
	}

	results, found, err := h.engine.ComputeResults(ctx, pollID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		// deleted between the two reads
		middleware.WriteError(w, polls.ErrPollNotFound)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, results)
}
