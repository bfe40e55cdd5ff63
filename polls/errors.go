// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"fmt"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/posts"
)

var (
	ErrPollNotFound   = fmt.Errorf("poll not found: %w", apperr.ErrNotFound)
	ErrOptionNotFound = fmt.Errorf("option does not belong to poll: %w", apperr.ErrNotFound)
	ErrPostNotFound   = posts.ErrPostNotFound

	ErrInvalidOptions  = fmt.Errorf("poll needs 2 to 4 options with text and distinct order: %w", apperr.ErrValidation)
	ErrInvalidDuration = fmt.Errorf("duration_hours must be positive: %w", apperr.ErrValidation)
	ErrNoExistingVote  = fmt.Errorf("user has not voted yet: %w", apperr.ErrValidation)

	ErrPollExists       = fmt.Errorf("post already has a poll: %w", apperr.ErrConflict)
	ErrDuplicateVote    = fmt.Errorf("user has already voted: %w", apperr.ErrConflict)
	ErrConcurrentChange = fmt.Errorf("vote was changed concurrently: %w", apperr.ErrConflict)

	ErrExpired  = fmt.Errorf("poll has expired: %w", apperr.ErrExpiredOrInactive)
	ErrInactive = fmt.Errorf("poll is not active: %w", apperr.ErrExpiredOrInactive)
)
