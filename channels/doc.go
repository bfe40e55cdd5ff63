// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package channels stores channels and their members, and provides the
access guard every poll operation consults.

# Access Rules

	no channel        → everyone
	public channel    → everyone
	private channel   → authenticated members only

	guard := channels.NewGuard(db)
	ok, err := guard.CanAccessPost(ctx, userID, postID)

A missing post is an error wrapping apperr.ErrNotFound, not a false result.
*/
package channels
