// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identity and token utilities.

# Session Tokens

Session tokens bind a user ID to an HMAC-SHA256 signature:

	token := auth.GenerateSessionToken(userID, salt)
	userID, err := auth.ResolveCurrentUser(token, salt)

The token is "<user_id>.<signature>" with a URL-safe base64 signature and no
padding. Validation needs no database lookup. Clients send it as
"Authorization: Bearer <token>". Missing or forged tokens return
ErrUnauthenticated, which wraps apperr.ErrUnauthenticated.

# ID Generation

Record IDs are random UUIDs:

	id := auth.NewID()

# IP Hashing

For privacy-preserving abuse review of votes:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
