// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/auth"
	"github.com/danielhkuo/opencircle/db"
	"github.com/danielhkuo/opencircle/models"
)

var (
	ErrPostNotFound    = fmt.Errorf("post not found: %w", apperr.ErrNotFound)
	ErrChannelNotFound = fmt.Errorf("channel not found: %w", apperr.ErrNotFound)
)

type Store struct {
	q db.Querier
}

// NewStore binds the store to a *sql.DB or a *sql.Tx.
func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

type CreateParams struct {
	Title     string
	Content   string
	Type      string
	UserID    string
	ChannelID *string
	ParentID  *string
	// CreatedAt defaults to the current time; it anchors poll expiry.
	CreatedAt time.Time
}

func validType(t string) bool {
	switch t {
	case models.PostTypePost, models.PostTypeComment, models.PostTypeArticle, models.PostTypePoll:
		return true
	}
	return false
}

// CreatePost inserts a post. Replies inherit the channel of their parent so
// access checks on a reply match the thread it belongs to.
func (s *Store) CreatePost(ctx context.Context, p CreateParams) (models.Post, error) {
	if p.Type == "" {
		p.Type = models.PostTypePost
		if p.ParentID != nil {
			p.Type = models.PostTypeComment
		}
	}
	if !validType(p.Type) {
		return models.Post{}, fmt.Errorf("invalid post type %q: %w", p.Type, apperr.ErrValidation)
	}
	if p.Type == models.PostTypeComment && p.ParentID == nil {
		return models.Post{}, fmt.Errorf("comment requires parent_id: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(p.Title) == "" && strings.TrimSpace(p.Content) == "" {
		return models.Post{}, fmt.Errorf("title or content is required: %w", apperr.ErrValidation)
	}

	if p.ParentID != nil {
		parent, found, err := s.GetPost(ctx, *p.ParentID)
		if err != nil {
			return models.Post{}, err
		}
		if !found {
			return models.Post{}, fmt.Errorf("parent %s: %w", *p.ParentID, ErrPostNotFound)
		}
		p.ChannelID = parent.ChannelID
	}

	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	post := models.Post{
		ID:        auth.NewID(),
		Title:     p.Title,
		Content:   p.Content,
		Type:      p.Type,
		UserID:    p.UserID,
		ChannelID: p.ChannelID,
		ParentID:  p.ParentID,
		CreatedAt: createdAt.UTC(),
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO post (id, title, content, type, user_id, channel_id, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
	`, post.ID, post.Title, post.Content, post.Type, post.UserID, post.ChannelID, post.ParentID, post.CreatedAt)
	if db.IsForeignKeyViolation(err) {
		// parent was checked above, so the channel or author is missing
		return models.Post{}, ErrChannelNotFound
	}
	if err != nil {
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}

	return post, nil
}

// GetPost returns found=false when the post does not exist.
func (s *Store) GetPost(ctx context.Context, id string) (models.Post, bool, error) {
	var post models.Post
	err := s.q.QueryRowContext(ctx, `
		SELECT id, title, content, type, user_id, channel_id, parent_id, created_at
		FROM post
		WHERE id = $1
	`, id).Scan(&post.ID, &post.Title, &post.Content, &post.Type, &post.UserID,
		&post.ChannelID, &post.ParentID, &post.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, false, nil
	}
	if err != nil {
		return models.Post{}, false, fmt.Errorf("query post: %w", err)
	}
	return post, true, nil
}

// DeletePost removes the post; replies and any poll go with it through
// ON DELETE CASCADE.
func (s *Store) DeletePost(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM post WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if n == 0 {
		return ErrPostNotFound
	}
	return nil
}

const replyTree = `
	WITH RECURSIVE reply_tree AS (
		SELECT id, user_id FROM post WHERE parent_id = $1
		UNION ALL
		SELECT p.id, p.user_id FROM post p INNER JOIN reply_tree rt ON p.parent_id = rt.id
	)
`

// DescendantCount returns the number of replies at any depth below postID.
func (s *Store) DescendantCount(ctx context.Context, postID string) (int, error) {
	var n int
	err := s.q.QueryRowContext(ctx, replyTree+`SELECT COUNT(*) FROM reply_tree`, postID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count replies: %w", err)
	}
	return n, nil
}

// CommentSummary lists the distinct authors of every reply below postID.
// Names use the display name, falling back to the username. Me reports
// whether currentUserID is one of them.
func (s *Store) CommentSummary(ctx context.Context, postID, currentUserID string) (models.CommentSummary, error) {
	rows, err := s.q.QueryContext(ctx, replyTree+`
		SELECT a.id, a.username, a.name
		FROM account a
		WHERE a.id IN (SELECT user_id FROM reply_tree)
		ORDER BY a.username
	`, postID)
	if err != nil {
		return models.CommentSummary{}, fmt.Errorf("query comment authors: %w", err)
	}
	defer rows.Close()

	summary := models.CommentSummary{Names: []string{}}
	for rows.Next() {
		var id, username, name string
		if err := rows.Scan(&id, &username, &name); err != nil {
			return models.CommentSummary{}, fmt.Errorf("scan comment author: %w", err)
		}
		if name == "" {
			name = username
		}
		summary.Names = append(summary.Names, name)
		if currentUserID != "" && id == currentUserID {
			summary.Me = true
		}
	}
	if err := rows.Err(); err != nil {
		return models.CommentSummary{}, fmt.Errorf("iterate comment authors: %w", err)
	}

	summary.Count = len(summary.Names)
	return summary, nil
}
