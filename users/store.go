// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package users stores registered accounts.
package users

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

var ErrUsernameTaken = fmt.Errorf("username already taken: %w", apperr.ErrConflict)

type Store struct {
	q db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{q: q}
}

type CreateUserParams struct {
	Username string
	Name     string
	Bio      string
}

func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (models.User, error) {
	username := strings.TrimSpace(p.Username)
	if len(username) < 2 || len(username) > 50 {
		return models.User{}, fmt.Errorf("username must be 2-50 characters: %w", apperr.ErrValidation)
	}

	u := models.User{
		ID:        auth.NewID(),
		Username:  username,
		Name:      strings.TrimSpace(p.Name),
		Bio:       p.Bio,
		CreatedAt: time.Now().UTC(),
	}

	_, err := s.q.ExecContext(ctx, `
		INSERT INTO account (id, username, name, bio, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $5)
	`, u.ID, u.Username, u.Name, u.Bio, u.CreatedAt)
	if db.IsUniqueViolation(err) {
		return models.User{}, ErrUsernameTaken
	}
	if err != nil {
		return models.User{}, fmt.Errorf("insert account: %w", err)
	}

	return u, nil
}

// GetUser returns found=false when no account has the ID.
func (s *Store) GetUser(ctx context.Context, id string) (models.User, bool, error) {
	var u models.User
	err := s.q.QueryRowContext(ctx, `
		SELECT id, username, name, bio, created_at
		FROM account
		WHERE id = $1
	`, id).Scan(&u.ID, &u.Username, &u.Name, &u.Bio, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, false, nil
	}
	if err != nil {
		return models.User{}, false, fmt.Errorf("query account: %w", err)
	}
	return u, true, nil
}
