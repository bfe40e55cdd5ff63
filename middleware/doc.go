// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(handler))

Logs request completion with method, path, status and duration_ms, tagged
with a request ID taken from X-Request-ID or generated.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Allows methods GET, POST, PUT, DELETE, OPTIONS with headers
Content-Type, Authorization, X-Request-ID.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")
	middleware.WriteError(w, err)

WriteError picks the status and kind from the apperr sentinel the error
wraps; anything unclassified is logged and answered with a generic 500.

# Authentication

	userID, err := middleware.CurrentUser(r, cfg.SessionSalt)

reads "Authorization: Bearer <token>" and verifies it with auth.

# Client IP Extraction

	ip := middleware.GetClientIP(r)

Used for salted IP hashes recorded with each vote.
*/
package middleware
