// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"database/sql"
	"net/http"

	"github.com/danielhkuo/opencircle/cliparse"
	"github.com/danielhkuo/opencircle/handlers"
	"github.com/danielhkuo/opencircle/metrics"
	"github.com/danielhkuo/opencircle/middleware"
	"github.com/danielhkuo/opencircle/polls"
)

func NewRouter(db *sql.DB, cfg cliparse.Config, engine *polls.Engine, ms *metrics.MetricService) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	userHandler := handlers.NewUserHandler(db, cfg)
	channelHandler := handlers.NewChannelHandler(db, cfg)
	postHandler := handlers.NewPostHandler(db, cfg, engine)
	pollHandler := handlers.NewPollHandler(db, cfg, engine)
	votingHandler := handlers.NewVotingHandler(db, cfg, engine)
	resultsHandler := handlers.NewResultsHandler(db, cfg, engine)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Prometheus scrape endpoint
	mux.Handle("GET /metrics", ms.Handler())

	// Users
	mux.HandleFunc("POST /users/register", middleware.WithLogging(userHandler.Register))
	mux.HandleFunc("GET /users/me", middleware.WithLogging(userHandler.GetMe))

	// Channels
	mux.HandleFunc("POST /channels", middleware.WithLogging(channelHandler.CreateChannel))
	mux.HandleFunc("POST /channels/{id}/members", middleware.WithLogging(channelHandler.AddMember))

	// Posts
	mux.HandleFunc("POST /posts", middleware.WithLogging(postHandler.CreatePost))
	mux.HandleFunc("GET /posts/{id}", middleware.WithLogging(postHandler.GetPost))
	mux.HandleFunc("DELETE /posts/{id}", middleware.WithLogging(postHandler.DeletePost))
	mux.HandleFunc("GET /posts/{id}/comments/summary", middleware.WithLogging(postHandler.GetCommentSummary))
	mux.HandleFunc("GET /posts/{postId}/poll", middleware.WithLogging(pollHandler.GetPollByPost))

	// Polls
	mux.HandleFunc("POST /polls", middleware.WithLogging(pollHandler.CreatePoll))
	mux.HandleFunc("GET /polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("DELETE /polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))

	// Voting
	mux.HandleFunc("POST /polls/{id}/vote", middleware.WithLogging(votingHandler.CastVote))
	mux.HandleFunc("PUT /polls/{id}/vote", middleware.WithLogging(votingHandler.ChangeVote))

	// Results
	mux.HandleFunc("GET /polls/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("opencircle API v1"))
	})

	return mux
}
