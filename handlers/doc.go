// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the OpenCircle API.

# Handler Types

  - UserHandler: registration and the current user
  - ChannelHandler: channel creation and membership
  - PostHandler: posts, post-with-poll creation, comment summaries
  - PollHandler: poll creation, reads, deletion
  - VotingHandler: cast and change votes
  - ResultsHandler: poll results

Handlers are created with the database, config, and (where polls are
involved) the shared engine:

	pollHandler := handlers.NewPollHandler(db, cfg, engine)

# Authentication

Mutating endpoints require "Authorization: Bearer <token>", the token
returned by POST /users/register. Read endpoints accept anonymous callers;
a token that is present but invalid is still rejected with 401.

# Access Rules

Every poll and post operation runs the channel guard first: posts in a
private channel are visible only to its members. Creating a poll on a post
and deleting a poll or post are reserved to the post's author.

# Voting

	POST /polls/{id}/vote  → 201 new vote
	                        → 200 already_voted (default policy)
	                        → 409 conflict (reject policy)
	PUT  /polls/{id}/vote  → 200 moved vote

Expired or inactive polls answer 400 with kind expired_or_inactive.
*/
package handlers
