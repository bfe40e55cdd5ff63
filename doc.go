// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the OpenCircle API server.

OpenCircle is the backend of a social platform built around posts in public
and private channels. Any post can carry a poll: a single-choice vote with
two to four options that closes a fixed number of hours after the post was
created.

# Starting the Server

The server reads CLI flags, an optional .env file, and environment variables:

	DATABASE_URL=opencircle.db SESSION_SALT=dev go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." -session-salt dev

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file path or PostgreSQL connection string
  - SESSION_SALT (-session-salt): Secret for session token HMAC

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite (default) or postgres
  - IP_HASH_SALT (-ip-salt): Secret for hashing voter IPs
  - DUPLICATE_VOTE_POLICY (-duplicate-votes): return (default) or reject
  - SWEEP_INTERVAL (-sweep-interval): Background expiry sweep, 0 disables
  - LOG_LEVEL, LOG_FORMAT: slog level and text/json output

# Architecture

  - polls: Poll engine (create, vote, change vote, results, expiry)
  - posts, channels, users: Collaborator stores and the access guard
  - handlers: HTTP request handlers
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON and error helpers
  - sweeper: Background expiry loop
  - metrics: Prometheus counters and /metrics
  - db: Driver setup, schema, constraint error classification
  - auth, apperr, models, cliparse: Supporting packages

See package documentation for each component.
*/
package main
