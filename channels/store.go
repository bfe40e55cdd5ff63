// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package channels

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/danielhkuo/opencircle/apperr"
	"github.com/danielhkuo/opencircle/auth"
	"github.com/danielhkuo/opencircle/db"
	"github.com/danielhkuo/opencircle/models"
)

var (
	ErrChannelNotFound = fmt.Errorf("channel not found: %w", apperr.ErrNotFound)
	ErrSlugTaken       = fmt.Errorf("channel slug already taken: %w", apperr.ErrConflict)
)

var slugPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{0,62}$`)

type Store struct {
	db *sql.DB
}

func NewStore(conn *sql.DB) *Store {
	return &Store{db: conn}
}

type CreateChannelParams struct {
	Name        string
	Slug        string
	Description string
	Type        string
	CreatedBy   string
}

// CreateChannel inserts the channel and makes its creator the first member.
func (s *Store) CreateChannel(ctx context.Context, p CreateChannelParams) (models.Channel, error) {
	if p.Type == "" {
		p.Type = models.ChannelPublic
	}
	if p.Type != models.ChannelPublic && p.Type != models.ChannelPrivate {
		return models.Channel{}, fmt.Errorf("type must be public or private: %w", apperr.ErrValidation)
	}
	if strings.TrimSpace(p.Name) == "" {
		return models.Channel{}, fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	if !slugPattern.MatchString(p.Slug) {
		return models.Channel{}, fmt.Errorf("slug must be lowercase letters, digits and dashes: %w", apperr.ErrValidation)
	}

	ch := models.Channel{
		ID:          auth.NewID(),
		Name:        strings.TrimSpace(p.Name),
		Slug:        p.Slug,
		Description: p.Description,
		Type:        p.Type,
		CreatedBy:   &p.CreatedBy,
		CreatedAt:   time.Now().UTC(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Channel{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO channel (id, name, slug, description, type, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
	`, ch.ID, ch.Name, ch.Slug, ch.Description, ch.Type, ch.CreatedBy, ch.CreatedAt)
	if db.IsUniqueViolation(err) {
		return models.Channel{}, ErrSlugTaken
	}
	if err != nil {
		return models.Channel{}, fmt.Errorf("insert channel: %w", err)
	}

	if err := addMember(ctx, tx, ch.ID, p.CreatedBy); err != nil {
		return models.Channel{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Channel{}, fmt.Errorf("commit channel: %w", err)
	}
	return ch, nil
}

// GetChannel returns found=false when the channel does not exist.
func (s *Store) GetChannel(ctx context.Context, id string) (models.Channel, bool, error) {
	var ch models.Channel
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, slug, description, type, created_by, created_at
		FROM channel
		WHERE id = $1
	`, id).Scan(&ch.ID, &ch.Name, &ch.Slug, &ch.Description, &ch.Type, &ch.CreatedBy, &ch.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Channel{}, false, nil
	}
	if err != nil {
		return models.Channel{}, false, fmt.Errorf("query channel: %w", err)
	}
	return ch, true, nil
}

// AddMember is idempotent.
func (s *Store) AddMember(ctx context.Context, channelID, userID string) error {
	return addMember(ctx, s.db, channelID, userID)
}

func addMember(ctx context.Context, q db.Querier, channelID, userID string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO channel_member (channel_id, user_id, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (channel_id, user_id) DO NOTHING
	`, channelID, userID, time.Now().UTC())
	if db.IsForeignKeyViolation(err) {
		return fmt.Errorf("channel or user missing: %w", apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("insert channel member: %w", err)
	}
	return nil
}

// IsPrivate fails with ErrChannelNotFound for an unknown channel.
func (s *Store) IsPrivate(ctx context.Context, channelID string) (bool, error) {
	var channelType string
	err := s.db.QueryRowContext(ctx, `SELECT type FROM channel WHERE id = $1`, channelID).Scan(&channelType)
	if errors.Is(err, sql.ErrNoRows) {
		return false, ErrChannelNotFound
	}
	if err != nil {
		return false, fmt.Errorf("query channel type: %w", err)
	}
	return channelType == models.ChannelPrivate, nil
}

func (s *Store) IsMember(ctx context.Context, channelID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM channel_member
			WHERE channel_id = $1 AND user_id = $2
		)
	`, channelID, userID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query channel membership: %w", err)
	}
	return exists, nil
}
