// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package metrics exposes poll engine counters to prometheus.
package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Poll lifecycle
	MetricPollsCreated = "opencircle_polls_created_total"
	MetricPollsDeleted = "opencircle_polls_deleted_total"
	MetricPollsExpired = "opencircle_polls_expired_total"
	// Voting
	MetricVotesCast      = "opencircle_votes_cast_total"
	MetricVotesDuplicate = "opencircle_votes_duplicate_total"
	MetricVotesChanged   = "opencircle_votes_changed_total"
	MetricVotesRejected  = "opencircle_votes_rejected_total"
	MetricVoteDuration   = "opencircle_vote_duration_seconds"
	// Sweeper
	MetricSweepDuration = "opencircle_sweep_duration_seconds"
	MetricSweepErr      = "opencircle_sweep_error_count"
)

// Rejection reasons for MetricVotesRejected
const (
	ReasonExpired  = "expired"
	ReasonInactive = "inactive"
	ReasonConflict = "conflict"
)

// MetricService owns a private registry so several instances (one per test
// server) never collide on registration.
type MetricService struct {
	MetricsMap map[string]prometheus.Collector
	registry   *prometheus.Registry
}

func NewMetricService() *MetricService {
	reg := prometheus.NewRegistry()
	ms := make(map[string]prometheus.Collector)

	register := func(name string, c prometheus.Collector) {
		ms[name] = c
		reg.MustRegister(c)
	}

	register(MetricPollsCreated, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPollsCreated,
		Help: "Polls created",
	}))
	register(MetricPollsDeleted, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPollsDeleted,
		Help: "Polls deleted",
	}))
	register(MetricPollsExpired, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricPollsExpired,
		Help: "Polls deactivated because their voting window ended",
	}))
	register(MetricVotesCast, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricVotesCast,
		Help: "New votes recorded",
	}))
	register(MetricVotesDuplicate, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricVotesDuplicate,
		Help: "Vote attempts by users who had already voted",
	}))
	register(MetricVotesChanged, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricVotesChanged,
		Help: "Votes moved to a different option",
	}))
	register(MetricVotesRejected, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: MetricVotesRejected,
		Help: "Vote attempts rejected, by reason",
	}, []string{"reason"}))
	register(MetricVoteDuration, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricVoteDuration,
		Help:    "Duration of cast and change vote transactions",
		Buckets: prometheus.DefBuckets,
	}))
	register(MetricSweepDuration, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    MetricSweepDuration,
		Help:    "Duration of each expiry sweep",
		Buckets: prometheus.DefBuckets,
	}))
	register(MetricSweepErr, prometheus.NewCounter(prometheus.CounterOpts{
		Name: MetricSweepErr,
		Help: "Expiry sweeps that failed",
	}))

	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &MetricService{MetricsMap: ms, registry: reg}
}

// RegisterDB exports connection pool statistics for conn.
func (m *MetricService) RegisterDB(conn *sql.DB, name string) {
	m.registry.MustRegister(collectors.NewDBStatsCollector(conn, name))
}

// Handler serves the registry in the prometheus exposition format.
func (m *MetricService) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *MetricService) counter(name string) prometheus.Counter {
	return m.MetricsMap[name].(prometheus.Counter)
}

func (m *MetricService) IncPollsCreated() {
	m.counter(MetricPollsCreated).Inc()
}

func (m *MetricService) IncPollsDeleted() {
	m.counter(MetricPollsDeleted).Inc()
}

func (m *MetricService) AddPollsExpired(n int) {
	m.counter(MetricPollsExpired).Add(float64(n))
}

func (m *MetricService) IncVotesCast() {
	m.counter(MetricVotesCast).Inc()
}

func (m *MetricService) IncVotesDuplicate() {
	m.counter(MetricVotesDuplicate).Inc()
}

func (m *MetricService) IncVotesChanged() {
	m.counter(MetricVotesChanged).Inc()
}

func (m *MetricService) IncVotesRejected(reason string) {
	m.MetricsMap[MetricVotesRejected].(*prometheus.CounterVec).WithLabelValues(reason).Inc()
}

func (m *MetricService) ObserveVoteDuration(d time.Duration) {
	m.MetricsMap[MetricVoteDuration].(prometheus.Histogram).Observe(d.Seconds())
}

func (m *MetricService) ObserveSweepDuration(d time.Duration) {
	m.MetricsMap[MetricSweepDuration].(prometheus.Histogram).Observe(d.Seconds())
}

func (m *MetricService) IncSweepErr() {
	m.counter(MetricSweepErr).Inc()
}
