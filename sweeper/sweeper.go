// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package sweeper deactivates expired polls in the background so that
// is_active is correct even for polls nobody votes on.
package sweeper

import (
	"context"
	"log/slog"
	"time"

	"github.com/danielhkuo/opencircle/metrics"
)

// Expirer is the part of polls.Engine the sweeper drives.
type Expirer interface {
	SweepExpired(ctx context.Context) (int, error)
}

type ExpirySweeper struct {
	expirer  Expirer
	interval time.Duration
	log      *slog.Logger
	metrics  *metrics.MetricService
}

func NewExpirySweeper(expirer Expirer, interval time.Duration, logger *slog.Logger, ms *metrics.MetricService) *ExpirySweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if ms == nil {
		ms = metrics.NewMetricService()
	}
	return &ExpirySweeper{
		expirer:  expirer,
		interval: interval,
		log:      logger,
		metrics:  ms,
	}
}

// SweepLoop sweeps once per interval until ctx is cancelled.
func (s *ExpirySweeper) SweepLoop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info("expiry sweeper started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.log.Info("expiry sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one pass and returns how many polls it deactivated. Errors are
// logged and counted; the next tick tries again.
func (s *ExpirySweeper) Sweep(ctx context.Context) int {
	start := time.Now()
	n, err := s.expirer.SweepExpired(ctx)
	s.metrics.ObserveSweepDuration(time.Since(start))

	if err != nil {
		if ctx.Err() == nil {
			s.metrics.IncSweepErr()
			s.log.Error("sweep expired polls", "error", err, "deactivated", n)
		}
		return n
	}
	if n > 0 {
		s.log.Info("swept expired polls", "deactivated", n)
	}
	return n
}
