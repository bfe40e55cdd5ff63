// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and owns the schema.

# Drivers

Open supports two drivers behind database/sql:

  - sqlite: modernc.org/sqlite, pure Go, one pooled connection
  - postgres: github.com/lib/pq

The connection is pinged with retry-go so a database that is still starting
does not fail the server.

All SQL in the module uses $N placeholders and runs unchanged on both.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(ctx, conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

	account 1──* post
	channel 1──* post
	channel *──* account (via channel_member)
	post 1──* post (replies, parent_id)
	post 1──1 poll
	poll 1──* poll_option
	poll 1──* poll_vote
	poll_option 1──* poll_vote

All foreign keys use ON DELETE CASCADE. poll.post_id and
poll_vote.(poll_id, user_id) are unique.

# Constraint Errors

IsUniqueViolation and IsForeignKeyViolation classify driver errors from
either backend so stores can translate them to domain errors.
*/
package db
