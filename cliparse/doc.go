// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Sources

Values are resolved in this order:

 1. CLI flags
 2. Environment variables
 3. A .env file loaded with godotenv (-env-file, default ".env"; a missing
    file is ignored and never overrides variables already set)
 4. Defaults

# CLI Flags

	-p                Server port (PORT, default 3318)
	-d                Database URL (DATABASE_URL, required)
	-t                sqlite or postgres (DATABASE_TYPE, default sqlite)
	-session-salt     Session token salt (SESSION_SALT, required)
	-ip-salt          IP hash salt (IP_HASH_SALT, default session salt)
	-duplicate-votes  return or reject (DUPLICATE_VOTE_POLICY, default return)
	-sweep-interval   e.g. 1m, 0 disables (SWEEP_INTERVAL, default 0)
	-log-level        debug, info, warn, error (LOG_LEVEL, default info)
	-log-format       text or json (LOG_FORMAT, default text)

# Validation

ParseFlags returns an error if DATABASE_URL or SESSION_SALT is missing, or
if PORT, the database type, the duplicate policy, the sweep interval or the
log format is not an accepted value.
*/
package cliparse
