// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/opencircle/auth"
	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/middleware"
	"github.com/danielhkuo/opencircle/models"
	"github.com/danielhkuo/opencircle/users"
)

type UserHandler struct {
	db    *sql.DB
	cfg   cliparse.Config
	users *users.Store
}

func NewUserHandler(db *sql.DB, cfg cliparse.Config) *UserHandler {
	return &UserHandler{db: db, cfg: cfg, users: users.NewStore(db)}
}

// Register handles POST /users/register
// Creates an account and returns a session token for it
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterUserRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	user, err := h.users.CreateUser(r.Context(), users.CreateUserParams{
		Username: req.Username,
		Name:     req.Name,
		Bio:      req.Bio,
	})
	if err != nil {
		middleware.WriteError(w, err)
		return
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)

	middleware.JSONResponse(w, http.StatusCreated, models.RegisterUserResponse{
		UserID: user.ID,
		Token:  auth.GenerateSessionToken(user.ID, h.cfg.SessionSalt),
	})
}

// GetMe handles GET /users/me
func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r, h.cfg)
	if !ok {
		return
	}

	user, found, err := h.users.GetUser(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	if !found {
		// signed token for an account that no longer exists
		middleware.WriteError(w, auth.ErrUnauthenticated)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, user)
}
