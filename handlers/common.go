// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/channels"
	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/middleware"
)

var (
	errNoAccess    = fmt.Errorf("no access to this post: %w", apperr.ErrForbidden)
	errNotOwner    = fmt.Errorf("only the post author may do this: %w", apperr.ErrForbidden)
	errNotMember   = fmt.Errorf("only channel members may do this: %w", apperr.ErrForbidden)
	errPollMatch   = fmt.Errorf("poll_id does not match the poll in the path: %w", apperr.ErrValidation)
	errOptionEmpty = fmt.Errorf("option_id is required: %w", apperr.ErrValidation)
)

// requireUser returns the authenticated caller or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (string, bool) {
	userID, err := middleware.CurrentUser(r, cfg.SessionSalt)
	if err != nil {
		middleware.WriteError(w, err)
		return "", false
	}
	return userID, true
}

// optionalUser returns "" for anonymous callers. A token that is present
// but invalid is still rejected.
func optionalUser(w http.ResponseWriter, r *http.Request, cfg cliparse.Config) (string, bool) {
	if r.Header.Get("Authorization") == "" {
		return "", true
	}
	return requireUser(w, r, cfg)
}

// checkPostAccess runs the guard for postID and maps a denial to Forbidden.
func checkPostAccess(ctx context.Context, guard *channels.Guard, userID, postID string) error {
	ok, err := guard.CanAccessPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	if !ok {
		return errNoAccess
	}
	return nil
}
