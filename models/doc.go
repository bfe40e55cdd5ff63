// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - RegisterUserRequest: username, name, bio
  - CreateChannelRequest: name, slug, description, type
  - AddMemberRequest: user_id
  - CreatePostRequest: title, content, type, channel_id, parent_id, poll
  - CreatePollRequest: post_id, duration_hours, options[{text, order}]
  - CastVoteRequest: poll_id, option_id
  - ChangeVoteRequest: new_option_id (option_id accepted)

# Domain Types

  - Poll, PollOption, PollWithOptions
  - Vote: ip_hash and user_agent are stored but never serialized
  - PollResults, OptionResult: counts and two-decimal percentages
  - User, Channel, Post, CommentSummary

# Constants

Post types:

	PostTypePost    = "post"
	PostTypeComment = "comment"
	PostTypeArticle = "article"
	PostTypePoll    = "poll"

Channel types:

	ChannelPublic  = "public"
	ChannelPrivate = "private"

Poll limits:

	MinPollOptions       = 2
	MaxPollOptions       = 4
	DefaultDurationHours = 24
*/
package models
