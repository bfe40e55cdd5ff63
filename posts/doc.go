// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package posts stores posts and walks their reply trees.

A Store wraps any db.Querier, so the poll engine can create a post inside
the same transaction as its poll:

	post, err := posts.NewStore(tx).CreatePost(ctx, params)

# Reply Trees

Comments are posts with a parent_id. DescendantCount and CommentSummary
walk the whole tree with a recursive CTE that both PostgreSQL and SQLite
accept.
*/
package posts
