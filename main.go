package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/db"
	"github.com/danielhkuo/opencircle/metrics"
	"github.com/danielhkuo/opencircle/middleware"
	"github.com/danielhkuo/opencircle/polls"
	"github.com/danielhkuo/opencircle/router"
	"github.com/danielhkuo/opencircle/sweeper"
)

func newLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}

	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err, "type", cfg.DatabaseType)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	ms := metrics.NewMetricService()
	ms.RegisterDB(dbConn, "opencircle")

	policy, err := polls.ParseDuplicatePolicy(cfg.DuplicateVotePolicy)
	if err != nil {
		slog.Error("invalid duplicate vote policy", "error", err)
		os.Exit(1)
	}

	engine := polls.New(dbConn, polls.Options{
		Logger:          logger.With("component", "polls"),
		Metrics:         ms,
		DuplicatePolicy: policy,
	})

	if cfg.SweepInterval > 0 {
		s := sweeper.NewExpirySweeper(engine, cfg.SweepInterval, logger.With("component", "sweeper"), ms)
		go s.SweepLoop(ctx)
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, engine, ms)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C or SIGTERM
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("graceful shutdown failed", "error", err)
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "duplicate_votes", cfg.DuplicateVotePolicy, "sweep_interval", cfg.SweepInterval)
	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed")
	}
}
