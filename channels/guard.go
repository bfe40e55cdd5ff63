// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package channels

import (
	"context"
	"database/sql"

	"github.com/danielhkuo/opencircle/posts"
)

// Guard answers whether a caller may see or act on a post.
type Guard struct {
	channels *Store
	posts    *posts.Store
}

func NewGuard(conn *sql.DB) *Guard {
	return &Guard{channels: NewStore(conn), posts: posts.NewStore(conn)}
}

// CanAccessPost allows everyone on posts outside a channel or in a public
// channel. Private channel posts need an authenticated member; userID is
// empty for anonymous callers.
func (g *Guard) CanAccessPost(ctx context.Context, userID, postID string) (bool, error) {
	post, found, err := g.posts.GetPost(ctx, postID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, posts.ErrPostNotFound
	}
	if post.ChannelID == nil {
		return true, nil
	}
	return g.CanAccessChannel(ctx, userID, *post.ChannelID)
}

func (g *Guard) CanAccessChannel(ctx context.Context, userID, channelID string) (bool, error) {
	private, err := g.channels.IsPrivate(ctx, channelID)
	if err != nil {
		return false, err
	}
	if !private {
		return true, nil
	}
	return g.channels.IsMember(ctx, channelID, userID)
}
