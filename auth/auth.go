// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/danielhkuo/opencircle/apperr"
)

var (
	ErrUnauthenticated = fmt.Errorf("missing or invalid session token: %w", apperr.ErrUnauthenticated)
	ErrInvalidToken    = fmt.Errorf("invalid token format: %w", apperr.ErrUnauthenticated)
)

// NewID returns a random UUID string for database records
func NewID() string {
	return uuid.NewString()
}

// sign creates an HMAC-SHA256 signature of value, URL-safe base64 without padding
func sign(value, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(value))
	sum := h.Sum(nil)
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// GenerateSessionToken creates a bearer token for a user.
// The token is "<user_id>.<signature>" so it can be verified without a lookup.
func GenerateSessionToken(userID, salt string) string {
	return userID + "." + sign(userID, salt)
}

// ResolveCurrentUser verifies a session token and returns the user ID it was
// issued for. An empty credential is ErrUnauthenticated.
func ResolveCurrentUser(credential, salt string) (string, error) {
	if credential == "" {
		return "", ErrUnauthenticated
	}

	i := strings.LastIndexByte(credential, '.')
	if i <= 0 || i == len(credential)-1 {
		return "", ErrInvalidToken
	}
	userID, sig := credential[:i], credential[i+1:]

	expected := sign(userID, salt)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", ErrUnauthenticated
	}
	return userID, nil
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
