// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/opencircle/auth"
	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/db"
)

// SetupTestDB creates a fresh test database with the full schema.
// Each call gets its own in-memory SQLite database; set TEST_DATABASE_URL to
// run against PostgreSQL instead (tables are dropped and recreated).
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	dbType := db.TypeSQLite
	url := "file:" + auth.NewID() + "?mode=memory&cache=shared"
	if pg := os.Getenv("TEST_DATABASE_URL"); pg != "" {
		dbType, url = db.TypePostgres, pg
	}

	conn, err := db.Open(ctx, dbType, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if dbType == db.TypePostgres {
		if err := db.DropSchema(ctx, conn); err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := db.CreateSchema(ctx, conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseURL:         "file::memory:",
		DatabaseType:        db.TypeSQLite,
		SessionSalt:         "test-session-salt",
		IPHashSalt:          "test-ip-salt",
		DuplicateVotePolicy: cliparse.DuplicateReturn,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// FixedClock is a controllable clock for expiry tests
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func NewFixedClock(now time.Time) *FixedClock {
	return &FixedClock{now: now.UTC()}
}

func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// CreateTestUser inserts a user and returns its ID
func CreateTestUser(t *testing.T, conn *sql.DB, username string) string {
	t.Helper()

	userID := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO account (id, username, name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, userID, username, "Name of "+username, now, now)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return userID
}

// CreateTestChannel inserts a channel of the given type ("public" or
// "private") and adds the listed users as members
func CreateTestChannel(t *testing.T, conn *sql.DB, slug, channelType string, members ...string) string {
	t.Helper()

	channelID := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO channel (id, name, slug, type, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, channelID, "Channel "+slug, slug, channelType, now, now)
	if err != nil {
		t.Fatalf("Failed to create test channel: %v", err)
	}

	for _, userID := range members {
		_, err := conn.Exec(`
			INSERT INTO channel_member (channel_id, user_id, created_at)
			VALUES ($1, $2, $3)
		`, channelID, userID, now)
		if err != nil {
			t.Fatalf("Failed to add test channel member: %v", err)
		}
	}

	return channelID
}

// CreateTestPost inserts a top-level poll post authored at createdAt.
// channelID may be empty for a post outside any channel.
func CreateTestPost(t *testing.T, conn *sql.DB, userID, channelID string, createdAt time.Time) string {
	t.Helper()

	var channel *string
	if channelID != "" {
		channel = &channelID
	}

	postID := auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO post (id, title, content, type, user_id, channel_id, created_at, updated_at)
		VALUES ($1, 'Test Post', 'What do you think?', 'poll', $2, $3, $4, $4)
	`, postID, userID, channel, createdAt.UTC())
	if err != nil {
		t.Fatalf("Failed to create test post: %v", err)
	}

	return postID
}

// CreateTestReply inserts a comment under parentID
func CreateTestReply(t *testing.T, conn *sql.DB, userID, parentID string) string {
	t.Helper()

	postID := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO post (id, content, type, user_id, parent_id, created_at, updated_at)
		VALUES ($1, 'reply', 'comment', $2, $3, $4, $4)
	`, postID, userID, parentID, now)
	if err != nil {
		t.Fatalf("Failed to create test reply: %v", err)
	}

	return postID
}

// CreateTestPoll inserts an active poll with one option per label and
// returns the poll ID and option IDs in order
func CreateTestPoll(t *testing.T, conn *sql.DB, postID string, durationHours int, labels ...string) (string, []string) {
	t.Helper()

	pollID := auth.NewID()
	now := time.Now().UTC()
	_, err := conn.Exec(`
		INSERT INTO poll (id, post_id, duration_hours, is_active, total_votes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $5)
	`, pollID, postID, durationHours, true, now)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	optionIDs := make([]string, 0, len(labels))
	for i, label := range labels {
		optionID := auth.NewID()
		_, err := conn.Exec(`
			INSERT INTO poll_option (id, poll_id, text, position, vote_count, created_at, updated_at)
			VALUES ($1, $2, $3, $4, 0, $5, $5)
		`, optionID, pollID, label, i, now)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return pollID, optionIDs
}

// AuthHeaders returns an Authorization header carrying a session token for userID
func AuthHeaders(cfg cliparse.Config, userID string) map[string]string {
	return map[string]string{
		"Authorization": "Bearer " + auth.GenerateSessionToken(userID, cfg.SessionSalt),
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
