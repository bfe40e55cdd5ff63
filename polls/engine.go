// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package polls

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/metrics"
)

// Clock supplies the current time for expiry checks and timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default runtime clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// DuplicatePolicy decides what CastVote does when the voter already voted.
type DuplicatePolicy int

const (
	// DuplicateReturnExisting returns the stored vote with outcome
	// VoteAlreadyExisted and no error.
	DuplicateReturnExisting DuplicatePolicy = iota
	// DuplicateReject returns the stored vote together with ErrDuplicateVote.
	DuplicateReject
)

// ParseDuplicatePolicy maps the configuration value to a policy.
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", cliparse.DuplicateReturn:
		return DuplicateReturnExisting, nil
	case cliparse.DuplicateReject:
		return DuplicateReject, nil
	default:
		return 0, fmt.Errorf("unknown duplicate vote policy %q", s)
	}
}

type Options struct {
	Clock           Clock
	Logger          *slog.Logger
	Metrics         *metrics.MetricService
	DuplicatePolicy DuplicatePolicy
}

// Engine owns every mutation of poll, poll_option and poll_vote rows.
// It keeps no state between calls; every read goes to the database.
//
// The engine never touches e.db while it holds a transaction: SQLite runs
// with a single pooled connection and would deadlock.
type Engine struct {
	db      *sql.DB
	clock   Clock
	log     *slog.Logger
	metrics *metrics.MetricService
	policy  DuplicatePolicy
}

func New(conn *sql.DB, opts Options) *Engine {
	e := &Engine{
		db:      conn,
		clock:   opts.Clock,
		log:     opts.Logger,
		metrics: opts.Metrics,
		policy:  opts.DuplicatePolicy,
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	if e.metrics == nil {
		e.metrics = metrics.NewMetricService()
	}
	return e
}

func (e *Engine) now() time.Time {
	return e.clock.Now().UTC()
}
